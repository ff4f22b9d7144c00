package config

import (
	"context"
	"time"

	"github.com/xinkaiwang/rtsplanner/services/planner/internal/rts"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/solver"
	"github.com/xinkaiwang/rtsplanner/services/planner/planjson"
)

// PlanConfig is everything one rtsplan invocation needs.
type PlanConfig struct {
	Name    string
	Params  rts.Params
	Options solver.Options
	Budget  time.Duration
}

// PlanConfigFromJson merges the problem document with option overrides (options file, then flags).
// Later overrides win over earlier ones and over the problem's embedded options; defaultBudget
// applies when budget_ms is missing.
func PlanConfigFromJson(ctx context.Context, obj *planjson.ProblemJson, defaultBudget time.Duration, overrides ...*planjson.SolverOptionsJson) (*PlanConfig, error) {
	if obj == nil {
		obj = &planjson.ProblemJson{}
	}
	cfg := &PlanConfig{
		Budget: defaultBudget,
	}
	if obj.Name != nil {
		cfg.Name = *obj.Name
	}
	if obj.BudgetMs != nil {
		cfg.Budget = time.Duration(*obj.BudgetMs) * time.Millisecond
	}
	cfg.Options = OptionsFromJson(obj.Options)
	for _, o := range overrides {
		cfg.Options = ApplyOptionsJson(cfg.Options, o)
	}
	cfg.Options.Printer = rts.NewPrinter()
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}

	params, err := ProblemFromJson(ctx, obj, cfg.Options.Seed)
	if err != nil {
		return nil, err
	}
	cfg.Params = params
	return cfg, nil
}

// PlanResultFromResult converts a solve of the rts model for printing.
func PlanResultFromResult(result *solver.Result) *planjson.PlanResultJson {
	obj := &planjson.PlanResultJson{
		SolveId:   result.SolveId,
		Feasible:  result.Feasible,
		Error:     result.Score.Error,
		Objective: result.ObjectiveValue,
		Values:    append([]int{}, result.Assignment...),
		ElapsedMs: result.Elapsed.Milliseconds(),
	}
	if len(result.Assignment) == rts.NumVariables {
		d := rts.DecisionFromValues(result.Assignment)
		obj.Assigned = make(map[string]map[string]int)
		obj.Produce = make(map[string]int)
		for _, mine := range rts.AllUnitTypes {
			row := make(map[string]int)
			for _, enemy := range rts.AllUnitTypes {
				row[enemy.String()] = d.Assigned[mine][enemy]
			}
			obj.Assigned[mine.String()] = row
			obj.Produce[mine.String()] = d.Produce[mine]
		}
	}
	for _, r := range result.Runs {
		run := &planjson.RunJson{
			RunIndex: r.RunIndex,
			Seed:     r.Seed,
			Error:    r.Best.Error,
			Cost:     r.Best.Cost,
			Moves:    r.Moves,
			Resets:   r.Resets,
			Restarts: r.Restarts,
		}
		if r.Err != nil {
			run.Failure = r.Err.Error()
		}
		obj.Runs = append(obj.Runs, run)
	}
	return obj
}
