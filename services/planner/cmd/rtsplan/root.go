package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kmetrics"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/ksysmetrics"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/config"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/rts"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/solver"
	"github.com/xinkaiwang/rtsplanner/services/planner/planjson"
)

const defaultBudgetMs = 90

type options struct {
	problemPath  string
	optionsPath  string
	budgetMs     int
	seed         int64
	parallel     bool
	threads      int
	iterations   int64
	riskAttitude string
	output       string
	dumpMetrics  bool
	version      bool
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:          "rtsplan",
		Short:        "Decides which units to produce and how to match them against sampled enemy armies",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.version {
				fmt.Fprintf(cmd.OutOrStdout(), "rtsplan %s (%s)\n", Version, GitCommit)
				return nil
			}
			if o.problemPath == "" {
				return kerror.Create("MissingProblem", "--problem is required").WithErrorCode(kerror.EC_INVALID_PARAMETER)
			}
			return o.run(cmd.Context(), o.overrides(cmd), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.problemPath, "problem", "", "problem document (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&o.optionsPath, "options", "", "solver options document, overrides the problem's options")
	cmd.Flags().IntVar(&o.budgetMs, "budget-ms", kcommon.GetEnvInt("RTSPLAN_BUDGET_MS", defaultBudgetMs), "solve budget in milliseconds when the problem has no budget_ms")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "base random seed, 0 picks one")
	cmd.Flags().BoolVar(&o.parallel, "parallel", false, "run one independent search per thread")
	cmd.Flags().IntVar(&o.threads, "threads", solver.Auto, "parallel runs, -1 uses every CPU")
	cmd.Flags().Int64Var(&o.iterations, "iteration-limit", 0, "local moves per run, 0 is unlimited")
	cmd.Flags().StringVar(&o.riskAttitude, "risk-attitude", "", "neutral, optimistic or pessimistic; overrides the problem")
	cmd.Flags().StringVar(&o.output, "output", "text", "text or json")
	cmd.Flags().BoolVar(&o.dumpMetrics, "dump-metrics", false, "print solver metrics after the plan")
	cmd.Flags().BoolVar(&o.version, "version", false, "print the version")
	return cmd
}

// overrides turns explicitly set flags into an options document.
func (o *options) overrides(cmd *cobra.Command) *planjson.SolverOptionsJson {
	obj := &planjson.SolverOptionsJson{}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		obj.Seed = planjson.NewInt64Pointer(o.seed)
	}
	if flags.Changed("parallel") {
		obj.ParallelRuns = planjson.NewBoolPointer(o.parallel)
	}
	if flags.Changed("threads") {
		obj.NumberThreads = planjson.NewInt32Pointer(int32(o.threads))
	}
	if flags.Changed("iteration-limit") {
		obj.IterationLimit = planjson.NewInt64Pointer(o.iterations)
	}
	return obj
}

func (o *options) run(ctx context.Context, flagOverrides *planjson.SolverOptionsJson, out io.Writer) error {
	ctx, info := klogging.GetOrCreateCtxInfo(ctx)
	info.With("planId", kcommon.RandomString(ctx, 8))
	if o.output != "text" && o.output != "json" {
		return kerror.Create("InvalidOutput", "--output must be text or json").With("output", o.output).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	problem, err := planjson.LoadProblemFile(o.problemPath)
	if err != nil {
		return err
	}
	if o.riskAttitude != "" {
		problem.RiskAttitude = planjson.NewStringPointer(o.riskAttitude)
	}
	var fileOverrides *planjson.SolverOptionsJson
	if o.optionsPath != "" {
		fileOverrides, err = planjson.LoadSolverOptionsFile(o.optionsPath)
		if err != nil {
			return err
		}
	}

	cfg, err := config.PlanConfigFromJson(ctx, problem, time.Duration(o.budgetMs)*time.Millisecond, fileOverrides, flagOverrides)
	if err != nil {
		return err
	}
	klogging.Info(ctx).
		With("problem", o.problemPath).
		With("name", cfg.Name).
		With("riskAttitude", cfg.Params.RiskAttitude).
		With("samples", len(cfg.Params.Samples)).
		With("budgetMs", cfg.Budget.Milliseconds()).
		With("options", config.OptionsToJson(cfg.Options).ToJson()).
		Log("PlanConfigLoaded", "")

	m, err := rts.BuildModel(cfg.Params)
	if err != nil {
		return err
	}
	kmetrics.RegisterGlobalProducer()
	result, err := solver.Solve(ctx, m, cfg.Budget, cfg.Options)
	if err != nil {
		return err
	}

	if o.output == "json" {
		fmt.Fprintln(out, config.PlanResultFromResult(result).ToJson())
	} else {
		fmt.Fprint(out, result.Candidate)
		fmt.Fprintf(out, "feasible=%t error=%g objective=%g elapsed=%dms\n", result.Feasible, result.Score.Error, result.ObjectiveValue, result.Elapsed.Milliseconds())
	}
	if o.dumpMetrics {
		ksysmetrics.Register(Version)
		ksysmetrics.Collect(ctx)
		return kmetrics.DumpText(out)
	}
	return nil
}
