package kcommon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemTimeMonotonic(t *testing.T) {
	t1 := GetMonoTimeUs()
	t2 := GetMonoTimeUs()
	assert.True(t, t2 >= t1)
	assert.True(t, GetWallTimeMs() > 0)
}

func TestMockTimeProvider(t *testing.T) {
	mock := NewMockTimeProvider().SetTimeUs(5000)
	RunWithTimeProvider(mock, func() {
		assert.Equal(t, int64(5000), GetMonoTimeUs())
		assert.Equal(t, int64(5), GetMonoTimeMs())
		mock.AddTimeMs(2)
		assert.Equal(t, int64(7000), GetMonoTimeUs())
		assert.Equal(t, int64(7), GetWallTimeMs())
	})
}

func TestMockTimeProviderAutoStep(t *testing.T) {
	mock := NewMockTimeProvider().WithAutoStepUs(10)
	RunWithTimeProvider(mock, func() {
		assert.Equal(t, int64(0), GetMonoTimeUs())
		assert.Equal(t, int64(10), GetMonoTimeUs())
		assert.Equal(t, int64(20), GetMonoTimeUs())
	})
	_, isSystem := currentTimeProvider.(*SystemTimeProvider)
	assert.True(t, isSystem)
}
