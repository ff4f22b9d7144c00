package klogging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// Level type
type Level uint32

const (
	FatalLevel Level = iota + 1
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	VerboseLevel
)

func (e Level) String() string {
	switch e {
	case FatalLevel:
		return "fatal"
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case VerboseLevel:
		return "verbose"
	default:
		return fmt.Sprintf("%d", int(e))
	}
}

// ParseLogLevel panics with a kerror when str is not a known level.
func ParseLogLevel(str string) Level {
	switch {
	case strings.EqualFold("fatal", str):
		return FatalLevel
	case strings.EqualFold("error", str) || strings.EqualFold("err", str):
		return ErrorLevel
	case strings.EqualFold("warning", str) || strings.EqualFold("warn", str):
		return WarnLevel
	case strings.EqualFold("information", str) || strings.EqualFold("info", str):
		return InfoLevel
	case strings.EqualFold("debug", str):
		return DebugLevel
	case strings.EqualFold("verbose", str) || strings.EqualFold("trace", str):
		return VerboseLevel
	default:
		panic(kerror.Create("UnknownLogLevel", "parse log level failed").With("str", str).WithErrorCode(kerror.EC_INVALID_PARAMETER))
	}
}

func NeedLog(importance Level, threshold Level) bool {
	return int(importance) <= int(threshold)
}

type Logger interface {
	Log(entry *LogEntry, shouldLog bool)
	Level() Level
}

type loggerHolder struct {
	logger Logger
}

var currentLogger atomic.Value

func GetLogger() Logger {
	if h, ok := currentLogger.Load().(*loggerHolder); ok {
		return h.logger
	}
	logger := &BasicLogger{LogLevel: DebugLevel}
	currentLogger.Store(&loggerHolder{logger})
	return logger
}

func SetDefaultLogger(logger Logger) {
	currentLogger.Store(&loggerHolder{logger})
}

type Keypair struct {
	K string
	V interface{}
}

type LogEntry struct {
	Logger             Logger
	Level              Level
	EffectiveThreshold Level
	ShouldLog          bool
	LogType            string
	Msg                string
	Details            []Keypair
	Ctx                context.Context
	Timestamp          time.Time
}

func NewEntry(ctx context.Context, level Level) *LogEntry {
	logger := GetLogger()
	threshold := logger.Level()
	entry := &LogEntry{
		Logger:             logger,
		Level:              level,
		EffectiveThreshold: threshold,
		ShouldLog:          NeedLog(level, threshold),
		Ctx:                ctx,
		Timestamp:          time.Now(),
	}
	if entry.ShouldLog {
		GetCurrentCtxInfo(ctx).VisitForward(func(k, v string) bool {
			entry.Details = append(entry.Details, Keypair{k, v})
			return true
		}, threshold)
	}
	return entry
}

func (entry *LogEntry) With(k string, v interface{}) *LogEntry {
	if entry.ShouldLog {
		entry.Details = append(entry.Details, Keypair{k, v})
	}
	return entry
}

func (entry *LogEntry) WithError(err error) *LogEntry {
	if !entry.ShouldLog || err == nil {
		return entry
	}
	var ke *kerror.Kerror
	if errors.As(err, &ke) {
		for _, item := range ke.Details {
			entry.Details = append(entry.Details, Keypair{item.K, item.V})
		}
		entry.Details = append(entry.Details, Keypair{"errorType", ke.GetType()}, Keypair{"errorMsg", ke.Msg}, Keypair{"errorCode", ke.ErrorCode.String()}, Keypair{"causedBy", ke.CausedByString()})
		if ke.Stack != "" {
			entry.Details = append(entry.Details, Keypair{"stack", ke.Stack})
		}
	} else {
		entry.Details = append(entry.Details, Keypair{"error", err.Error()})
	}
	return entry
}

func (entry *LogEntry) WithPanic(r interface{}) *LogEntry {
	if err, ok := r.(error); ok {
		return entry.WithError(err)
	}
	return entry.With("panic", r).With("stack", kerror.GetCallStack(1))
}

func (entry *LogEntry) Log(logType, msg string) {
	entry.LogType = logType
	entry.Msg = msg
	entry.Logger.Log(entry, entry.ShouldLog)
	if entry.Level == FatalLevel {
		OsExit(1)
	}
}

func (entry *LogEntry) String() string {
	var b strings.Builder
	b.Grow(256)
	fmt.Fprintf(&b, "level=%v, event=%s, msg=%s", entry.Level.String(), entry.LogType, entry.Msg)
	for _, item := range entry.Details {
		fmt.Fprintf(&b, ", %s=%v", item.K, item.V)
	}
	return b.String()
}

func Fatal(ctx context.Context) *LogEntry {
	return NewEntry(ctx, FatalLevel)
}
func Error(ctx context.Context) *LogEntry {
	return NewEntry(ctx, ErrorLevel)
}
func Warning(ctx context.Context) *LogEntry {
	return NewEntry(ctx, WarnLevel)
}
func Info(ctx context.Context) *LogEntry {
	return NewEntry(ctx, InfoLevel)
}
func Debug(ctx context.Context) *LogEntry {
	return NewEntry(ctx, DebugLevel)
}
func Verbose(ctx context.Context) *LogEntry {
	return NewEntry(ctx, VerboseLevel)
}

/********************************* BasicLogger ************************************/

// BasicLogger writes to stdout. Search runs log from several goroutines, so the last message is guarded.
type BasicLogger struct {
	LogLevel Level
}

var (
	lastLoggedMu      sync.Mutex
	lastLoggedMessage string
)

func (bl *BasicLogger) Log(entry *LogEntry, shouldLog bool) {
	if !shouldLog {
		return
	}
	str := entry.String()
	fmt.Println(str)
	lastLoggedMu.Lock()
	lastLoggedMessage = str
	lastLoggedMu.Unlock()
}

func (bl *BasicLogger) Level() Level {
	return bl.LogLevel
}

func GetLastLoggedMessage() string {
	lastLoggedMu.Lock()
	defer lastLoggedMu.Unlock()
	return lastLoggedMessage
}

// NullLogger discards all log entries
type NullLogger struct{}

func (nl *NullLogger) Log(entry *LogEntry, shouldLog bool) {}

func (nl *NullLogger) Level() Level {
	return VerboseLevel
}

func NewNullLogger() Logger {
	return &NullLogger{}
}

// MemoryLogger keeps every logged entry; used by tests that assert on emitted events.
type MemoryLogger struct {
	mu       sync.Mutex
	LogLevel Level
	entries  []*LogEntry
}

func NewMemoryLogger(level Level) *MemoryLogger {
	return &MemoryLogger{LogLevel: level}
}

func (ml *MemoryLogger) Log(entry *LogEntry, shouldLog bool) {
	if !shouldLog {
		return
	}
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.entries = append(ml.entries, entry)
}

func (ml *MemoryLogger) Level() Level {
	return ml.LogLevel
}

// FindByType returns all entries logged with the given event type.
func (ml *MemoryLogger) FindByType(logType string) []*LogEntry {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	var list []*LogEntry
	for _, e := range ml.entries {
		if e.LogType == logType {
			list = append(list, e)
		}
	}
	return list
}

// GetDetail returns the first value logged under key.
func (entry *LogEntry) GetDetail(key string) (interface{}, bool) {
	for _, item := range entry.Details {
		if item.K == key {
			return item.V, true
		}
	}
	return nil, false
}
