package klogging

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type ctxKey int

var ctxInfoKey ctxKey

// Importance decides at which log threshold a CtxInfo value is attached to entries.
type Importance uint32

const (
	HighImportance Importance = 1
	MidImportance  Importance = 5
	LowImportance  Importance = 6
)

type KVL struct {
	K string
	V string
	L Importance
}

// CtxInfo carries key/values (solveId, runId, ...) that every log entry under a ctx picks up.
type CtxInfo struct {
	Name    string
	Parent  *CtxInfo
	mu      sync.RWMutex
	details map[string]*KVL
}

func GetCurrentCtxInfo(ctx context.Context) *CtxInfo {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(ctxInfoKey).(*CtxInfo)
	return u
}

// CreateCtxInfo creates a child info, using the info in ctx (if any) as parent.
func CreateCtxInfo(ctx context.Context) (context.Context, *CtxInfo) {
	info := &CtxInfo{
		Parent:  GetCurrentCtxInfo(ctx),
		details: map[string]*KVL{},
	}
	return context.WithValue(ctx, ctxInfoKey, info), info
}

func GetOrCreateCtxInfo(ctx context.Context) (context.Context, *CtxInfo) {
	if info := GetCurrentCtxInfo(ctx); info != nil {
		return ctx, info
	}
	return CreateCtxInfo(ctx)
}

func (info *CtxInfo) With(k string, v string) *CtxInfo {
	return info.WithLevel(k, v, HighImportance)
}

func (info *CtxInfo) WithLevel(k string, v string, level Importance) *CtxInfo {
	info.mu.Lock()
	defer info.mu.Unlock()
	info.details[k] = &KVL{k, v, level}
	return info
}

func importance2LoggingLevel(imp Importance) Level {
	switch imp {
	case HighImportance:
		return FatalLevel
	case MidImportance:
		return DebugLevel
	default:
		return VerboseLevel
	}
}

// VisitForward visits the outermost parent first, down to this info. Keys within one info are visited in sorted order.
// visitor returns false to stop early; VisitForward then returns false too.
func (info *CtxInfo) VisitForward(visitor func(k string, v string) bool, threshold Level) bool {
	if info == nil {
		return true
	}
	if !info.Parent.VisitForward(visitor, threshold) {
		return false
	}
	info.mu.RLock()
	items := make([]*KVL, 0, len(info.details))
	for _, item := range info.details {
		items = append(items, item)
	}
	info.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].K < items[j].K })
	for _, item := range items {
		if item.V == "" || !NeedLog(importance2LoggingLevel(item.L), threshold) {
			continue
		}
		if !visitor(item.K, item.V) {
			return false
		}
	}
	return true
}

// FindByKey returns fallback if k is not found in this info or any parent.
func (info *CtxInfo) FindByKey(k string, fallback string) string {
	if info == nil {
		return fallback
	}
	info.mu.RLock()
	val, ok := info.details[k]
	info.mu.RUnlock()
	if ok {
		if val.V == "" {
			return fallback
		}
		return val.V
	}
	return info.Parent.FindByKey(k, fallback)
}

func (info *CtxInfo) ToString(threshold Level) string {
	var b strings.Builder
	info.VisitForward(func(k string, v string) bool {
		fmt.Fprintf(&b, ", %s=%v", k, v)
		return true
	}, threshold)
	return b.String()
}

func (info *CtxInfo) String() string {
	return info.ToString(InfoLevel)
}
