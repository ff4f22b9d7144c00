package config

import (
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/solver"
	"github.com/xinkaiwang/rtsplanner/services/planner/planjson"
)

// OptionsFromJson starts from solver.NewOptions and overrides every field set in obj.
// The result is not validated; NewSolver does that.
func OptionsFromJson(obj *planjson.SolverOptionsJson) solver.Options {
	return ApplyOptionsJson(solver.NewOptions(), obj)
}

// ApplyOptionsJson overrides the fields of base that obj sets.
func ApplyOptionsJson(base solver.Options, obj *planjson.SolverOptionsJson) solver.Options {
	cfg := base
	if obj == nil {
		return cfg
	}
	if obj.CustomStartingPoint != nil {
		cfg.CustomStartingPoint = *obj.CustomStartingPoint
	}
	if obj.ResumeSearch != nil {
		cfg.ResumeSearch = *obj.ResumeSearch
	}
	if obj.ParallelRuns != nil {
		cfg.ParallelRuns = *obj.ParallelRuns
	}
	if obj.NumberThreads != nil {
		cfg.NumberThreads = int(*obj.NumberThreads)
	}
	if obj.TabuTimeLocalMin != nil {
		cfg.TabuTimeLocalMin = int(*obj.TabuTimeLocalMin)
	}
	if obj.TabuTimeSelected != nil {
		cfg.TabuTimeSelected = int(*obj.TabuTimeSelected)
	}
	if obj.ResetThreshold != nil {
		cfg.ResetThreshold = int(*obj.ResetThreshold)
	}
	if obj.RestartThreshold != nil {
		cfg.RestartThreshold = int(*obj.RestartThreshold)
	}
	if obj.PercentToReset != nil {
		cfg.PercentToReset = int(*obj.PercentToReset)
	}
	if obj.NumberStartSamplings != nil {
		cfg.NumberStartSamplings = int(*obj.NumberStartSamplings)
	}
	if obj.Seed != nil {
		cfg.Seed = *obj.Seed
	}
	if obj.IterationLimit != nil {
		cfg.IterationLimit = *obj.IterationLimit
	}
	return cfg
}

// OptionsToJson writes every field, Printer excepted.
func OptionsToJson(opts solver.Options) *planjson.SolverOptionsJson {
	return &planjson.SolverOptionsJson{
		CustomStartingPoint:  planjson.NewBoolPointer(opts.CustomStartingPoint),
		ResumeSearch:         planjson.NewBoolPointer(opts.ResumeSearch),
		ParallelRuns:         planjson.NewBoolPointer(opts.ParallelRuns),
		NumberThreads:        planjson.NewInt32Pointer(int32(opts.NumberThreads)),
		TabuTimeLocalMin:     planjson.NewInt32Pointer(int32(opts.TabuTimeLocalMin)),
		TabuTimeSelected:     planjson.NewInt32Pointer(int32(opts.TabuTimeSelected)),
		ResetThreshold:       planjson.NewInt32Pointer(int32(opts.ResetThreshold)),
		RestartThreshold:     planjson.NewInt32Pointer(int32(opts.RestartThreshold)),
		PercentToReset:       planjson.NewInt32Pointer(int32(opts.PercentToReset)),
		NumberStartSamplings: planjson.NewInt32Pointer(int32(opts.NumberStartSamplings)),
		Seed:                 planjson.NewInt64Pointer(opts.Seed),
		IterationLimit:       planjson.NewInt64Pointer(opts.IterationLimit),
	}
}
