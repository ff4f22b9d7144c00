package ksysmetrics

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
	"go.opencensus.io/metric"
	"go.opencensus.io/metric/metricdata"
	"go.opencensus.io/metric/metricproducer"
)

// Snapshot is the process state at the last Collect.
type Snapshot struct {
	UserCpuSec     float64
	SystemCpuSec   float64
	HeapAllocBytes int64
	SysMemBytes    int64
	Goroutines     int64
	GcPauseTotalNs int64
	NumGc          int64
}

var (
	registry     = metric.NewRegistry()
	registerOnce sync.Once
	current      atomic.Pointer[Snapshot]
)

func init() {
	current.Store(&Snapshot{})
}

// Register adds the process gauges to the opencensus global producer manager, labeled with version. Only
// the first call has an effect.
func Register(version string) {
	registerOnce.Do(func() {
		if version == "" {
			version = "unknown"
		}
		label := metricdata.NewLabelValue(version)
		addFloat("process_user_cpu_seconds", "user CPU time", "seconds", label, func(s *Snapshot) float64 { return s.UserCpuSec })
		addFloat("process_system_cpu_seconds", "system CPU time", "seconds", label, func(s *Snapshot) float64 { return s.SystemCpuSec })
		addInt("process_heap_bytes", "heap in use", "bytes", label, func(s *Snapshot) int64 { return s.HeapAllocBytes })
		addInt("process_sys_memory_bytes", "memory obtained from the OS", "bytes", label, func(s *Snapshot) int64 { return s.SysMemBytes })
		addInt("process_goroutines", "number of goroutines", "", label, func(s *Snapshot) int64 { return s.Goroutines })
		addInt("process_gc_pause_total_ns", "total GC pause", "ns", label, func(s *Snapshot) int64 { return s.GcPauseTotalNs })
		addInt("process_gc_count", "completed GC cycles", "", label, func(s *Snapshot) int64 { return s.NumGc })
		metricproducer.GlobalManager().AddProducer(registry)
	})
}

func addFloat(name, desc, unit string, label metricdata.LabelValue, fn func(*Snapshot) float64) {
	gauge, err := registry.AddFloat64DerivedGauge(name, metric.WithDescription(desc), metric.WithUnit(metricdata.Unit(unit)), metric.WithLabelKeys("version"))
	if err != nil {
		klogging.Warning(context.Background()).WithError(err).With("metric", name).Log("SysMetricsRegisterError", "")
		return
	}
	gauge.UpsertEntry(func() float64 { return fn(current.Load()) }, label)
}

func addInt(name, desc, unit string, label metricdata.LabelValue, fn func(*Snapshot) int64) {
	gauge, err := registry.AddInt64DerivedGauge(name, metric.WithDescription(desc), metric.WithUnit(metricdata.Unit(unit)), metric.WithLabelKeys("version"))
	if err != nil {
		klogging.Warning(context.Background()).WithError(err).With("metric", name).Log("SysMetricsRegisterError", "")
		return
	}
	gauge.UpsertEntry(func() int64 { return fn(current.Load()) }, label)
}

// Collect refreshes the snapshot the gauges report and returns it.
func Collect(ctx context.Context) Snapshot {
	s := &Snapshot{}
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err == nil {
		userCPU := time.Duration(rusage.Utime.Sec)*time.Second + time.Duration(rusage.Utime.Usec)*time.Microsecond
		sysCPU := time.Duration(rusage.Stime.Sec)*time.Second + time.Duration(rusage.Stime.Usec)*time.Microsecond
		s.UserCpuSec = userCPU.Seconds()
		s.SystemCpuSec = sysCPU.Seconds()
	} else {
		klogging.Error(ctx).WithError(err).Log("CPUMetricsError", "Failed to collect CPU metrics")
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	s.HeapAllocBytes = int64(memStats.HeapAlloc)
	s.SysMemBytes = int64(memStats.Sys)
	s.Goroutines = int64(runtime.NumGoroutine())
	s.GcPauseTotalNs = int64(memStats.PauseTotalNs)
	s.NumGc = int64(memStats.NumGC)
	current.Store(s)
	return *s
}

func Current() Snapshot {
	return *current.Load()
}
