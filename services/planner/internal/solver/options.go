package solver

import (
	"math"
	"runtime"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// Auto marks a size dependent option, resolved against the number of variables at solve time.
const Auto = -1

// Options configures one Solver. It is copied by NewSolver and never mutated afterwards.
type Options struct {
	// start from the values declared on the model's variables instead of sampling
	CustomStartingPoint bool
	// continue every run from where the previous Solve left it
	ResumeSearch bool
	ParallelRuns bool
	// number of parallel runs; clamped to [1, NumCPU]
	NumberThreads int
	// formats the winning candidate for the SolverCandidate log event; nil means DefaultPrinter
	Printer Printer

	TabuTimeLocalMin     int
	TabuTimeSelected     int
	ResetThreshold       int
	RestartThreshold     int
	PercentToReset       int
	NumberStartSamplings int

	// 0 draws a seed from crypto/rand. Run i uses Seed+i.
	Seed int64
	// local moves per run per Solve, 0 = unlimited
	IterationLimit int64
}

func NewOptions() Options {
	return Options{
		NumberThreads:        Auto,
		TabuTimeLocalMin:     Auto,
		TabuTimeSelected:     Auto,
		ResetThreshold:       Auto,
		RestartThreshold:     Auto,
		PercentToReset:       10,
		NumberStartSamplings: 10,
	}
}

func invalidOption(name string, val interface{}) *kerror.Kerror {
	return kerror.Create("InvalidOption", "option value out of range").
		With("option", name).
		With("value", val).
		WithErrorCode(kerror.EC_INVALID_PARAMETER)
}

// Validate rejects values that cannot be resolved. A too large NumberThreads is not an error.
func (o Options) Validate() error {
	if o.PercentToReset < 0 || o.PercentToReset > 100 {
		return invalidOption("PercentToReset", o.PercentToReset)
	}
	if o.TabuTimeLocalMin < Auto {
		return invalidOption("TabuTimeLocalMin", o.TabuTimeLocalMin)
	}
	if o.TabuTimeSelected < Auto {
		return invalidOption("TabuTimeSelected", o.TabuTimeSelected)
	}
	if o.ResetThreshold < Auto {
		return invalidOption("ResetThreshold", o.ResetThreshold)
	}
	if o.RestartThreshold < Auto || o.RestartThreshold == 0 {
		return invalidOption("RestartThreshold", o.RestartThreshold)
	}
	if o.NumberStartSamplings < 1 && o.NumberStartSamplings != Auto {
		return invalidOption("NumberStartSamplings", o.NumberStartSamplings)
	}
	if o.NumberThreads < Auto || o.NumberThreads == 0 {
		return invalidOption("NumberThreads", o.NumberThreads)
	}
	if o.IterationLimit < 0 {
		return invalidOption("IterationLimit", o.IterationLimit)
	}
	return nil
}

type resolvedOptions struct {
	tabuTimeLocalMin int
	tabuTimeSelected int
	resetThreshold   int
	restartThreshold int
	// variables reassigned by one reset
	resetCount     int
	startSamplings int
	threads        int
	iterationLimit int64
}

func (o Options) resolve(n int) resolvedOptions {
	ro := resolvedOptions{
		tabuTimeLocalMin: o.TabuTimeLocalMin,
		tabuTimeSelected: o.TabuTimeSelected,
		resetThreshold:   o.ResetThreshold,
		restartThreshold: o.RestartThreshold,
		startSamplings:   o.NumberStartSamplings,
		threads:          1,
		iterationLimit:   o.IterationLimit,
	}
	if ro.tabuTimeLocalMin == Auto {
		ro.tabuTimeLocalMin = maxInt(minInt(5, n-1), ceilDiv(n, 5)) + 1
	}
	if ro.tabuTimeSelected == Auto {
		ro.tabuTimeSelected = 0
	}
	if ro.resetThreshold == Auto {
		ro.resetThreshold = maxInt(0, minInt(ro.tabuTimeLocalMin, n-1))
	}
	if ro.restartThreshold == Auto {
		ro.restartThreshold = maxInt(1, n)
	}
	if ro.startSamplings == Auto {
		ro.startSamplings = 10
	}
	ro.resetCount = int(math.Ceil(float64(o.PercentToReset) * float64(n) / 100))
	ro.resetCount = minInt(maxInt(1, ro.resetCount), maxInt(1, n))
	if o.ParallelRuns {
		ro.threads = clampThreads(o.NumberThreads)
	}
	return ro
}

func clampThreads(requested int) int {
	cpus := runtime.NumCPU()
	if requested == Auto || requested > cpus {
		return cpus
	}
	return maxInt(1, requested)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
