package kcommon

import (
	"sync/atomic"
	"time"
)

var (
	currentTimeProvider TimeProvider = NewSystemTimeProvider()
)

// RunWithTimeProvider swaps the process time provider for the duration of fn.
// Goroutines started by fn must be joined before fn returns.
func RunWithTimeProvider(tp TimeProvider, fn func()) {
	old := currentTimeProvider
	currentTimeProvider = tp
	defer func() {
		currentTimeProvider = old
	}()

	fn()
}

type TimeProvider interface {
	GetWallTimeMs() int64
	// GetMonoTimeUs is microseconds since the provider was created
	GetMonoTimeUs() int64
}

func GetWallTimeMs() int64 {
	return currentTimeProvider.GetWallTimeMs()
}

func GetMonoTimeUs() int64 {
	return currentTimeProvider.GetMonoTimeUs()
}

func GetMonoTimeMs() int64 {
	return currentTimeProvider.GetMonoTimeUs() / 1000
}

// SystemTimeProvider: implements TimeProvider interface
type SystemTimeProvider struct {
	startTime time.Time
}

func NewSystemTimeProvider() *SystemTimeProvider {
	return &SystemTimeProvider{
		startTime: time.Now(),
	}
}

func (provider *SystemTimeProvider) GetWallTimeMs() int64 {
	return time.Now().UnixMilli()
}

func (provider *SystemTimeProvider) GetMonoTimeUs() int64 {
	return time.Since(provider.startTime).Microseconds()
}

// MockTimeProvider: implements TimeProvider interface.
// When AutoStepUs is non-zero every GetMonoTimeUs call advances the clock by that amount,
// which lets a busy loop reach its deadline without real time passing.
type MockTimeProvider struct {
	monoTimeUs atomic.Int64
	wallTimeMs atomic.Int64
	autoStepUs atomic.Int64
}

func NewMockTimeProvider() *MockTimeProvider {
	return &MockTimeProvider{}
}

func (provider *MockTimeProvider) GetWallTimeMs() int64 {
	return provider.wallTimeMs.Load()
}

func (provider *MockTimeProvider) GetMonoTimeUs() int64 {
	step := provider.autoStepUs.Load()
	if step == 0 {
		return provider.monoTimeUs.Load()
	}
	return provider.monoTimeUs.Add(step) - step
}

func (provider *MockTimeProvider) SetTimeUs(us int64) *MockTimeProvider {
	provider.monoTimeUs.Store(us)
	provider.wallTimeMs.Store(us / 1000)
	return provider
}

func (provider *MockTimeProvider) AddTimeMs(diffMs int64) *MockTimeProvider {
	provider.monoTimeUs.Add(diffMs * 1000)
	provider.wallTimeMs.Add(diffMs)
	return provider
}

func (provider *MockTimeProvider) WithAutoStepUs(us int64) *MockTimeProvider {
	provider.autoStepUs.Store(us)
	return provider
}
