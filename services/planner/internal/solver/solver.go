package solver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/model"
)

// RunStats summarizes one search run of a Solve.
type RunStats struct {
	RunIndex     int
	Seed         int64
	Best         model.Score
	HasIncumbent bool
	Moves        int64
	Resets       int64
	Restarts     int64
	Err          error
}

// Result is the best assignment found by a Solve.
type Result struct {
	SolveId string
	// Score.Cost is normalized (lower is better), ObjectiveValue carries the objective's own sign
	Score          model.Score
	ObjectiveValue float64
	Assignment     []int
	Feasible       bool
	WinningRun     int
	Runs           []RunStats
	Elapsed        time.Duration
	// Printer output for Assignment
	Candidate string
}

// Solver runs tabu searches over an immutable model. A Solver is not safe for concurrent Solve calls.
type Solver struct {
	model   *model.Model
	options Options
	// kept for ResumeSearch
	runs []*searchRun
}

func NewSolver(m *model.Model, options Options) (*Solver, error) {
	if m == nil {
		return nil, kerror.Create("NilModel", "model is nil").WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return &Solver{
		model:   m,
		options: options,
	}, nil
}

func (s *Solver) Model() *model.Model {
	return s.model
}

// Solve searches for at most budget and returns the best assignment seen by any run.
// A budget <= 0 still performs one local move per run. Infeasibility is not an error;
// an error is returned only when no run produced an incumbent (the model code panicked).
func (s *Solver) Solve(ctx context.Context, budget time.Duration) (*Result, error) {
	startUs := kcommon.GetMonoTimeUs()
	solveId := uuid.NewString()
	ctx, info := klogging.CreateCtxInfo(ctx)
	info.With("solveId", solveId)

	n := s.model.NumVariables()
	ro := s.options.resolve(n)
	mode := "sequential"
	if ro.threads > 1 {
		mode = "parallel"
	}
	klogging.Info(ctx).
		With("variables", n).
		With("constraints", s.model.NumConstraints()).
		With("budgetMs", budget.Milliseconds()).
		With("mode", mode).
		With("threads", ro.threads).
		Log("SolveStart", "")

	if n == 0 {
		result := &Result{
			SolveId:    solveId,
			Assignment: []int{},
			Feasible:   true,
			Elapsed:    elapsedSince(startUs),
		}
		s.logDone(ctx, mode, result)
		return result, nil
	}

	runs := s.prepareRuns(ctx, ro)
	deadlineUs := startUs
	if budget > 0 {
		deadlineUs += budget.Microseconds()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	params := runParams{
		deadlineUs: deadlineUs,
		custom:     s.options.CustomStartingPoint,
		mode:       mode,
	}
	if !s.model.HasObjective() {
		params.onFeasible = cancel
	}

	if len(runs) == 1 {
		runs[0].search(runCtx, params)
	} else {
		// agents outlive cancellation so every queued run gets executed and wg.Wait returns
		pool := NewThreadPool(context.WithoutCancel(ctx), len(runs), "search")
		var wg sync.WaitGroup
		wg.Add(len(runs))
		for _, r := range runs {
			pool.EnqueueTask(&searchTask{ctx: runCtx, run: r, params: params, done: wg.Done})
		}
		wg.Wait()
		pool.StopAndWaitForExit()
	}
	s.runs = runs

	result := &Result{
		SolveId:    solveId,
		WinningRun: -1,
		Runs:       make([]RunStats, len(runs)),
	}
	var firstErr error
	for i, r := range runs {
		result.Runs[i] = RunStats{
			RunIndex:     r.index,
			Seed:         r.seed,
			Best:         r.best,
			HasIncumbent: r.hasBest,
			Moves:        r.moves,
			Resets:       r.solveResets,
			Restarts:     r.solveRestarts,
		}
		if r.err != nil {
			result.Runs[i].Err = r.err
			if firstErr == nil {
				firstErr = r.err
			}
		}
		if !r.hasBest {
			continue
		}
		// strict comparison keeps the lowest run index on ties
		if result.WinningRun < 0 || r.best.IsLowerThan(result.Score) {
			result.WinningRun = i
			result.Score = r.best
			result.Assignment = append([]int(nil), r.bestValues...)
		}
	}
	result.Elapsed = elapsedSince(startUs)
	if result.WinningRun < 0 {
		return nil, kerror.Wrap(firstErr, "SolveFailed", "no search run produced an assignment", false).
			With("solveId", solveId).
			WithErrorCode(kerror.EC_INTERNAL_ERROR)
	}
	result.Feasible = result.Score.IsFeasible()
	if s.model.HasObjective() {
		result.ObjectiveValue = s.model.ObjectiveValue(result.Score.Cost)
	}
	result.Candidate = s.printCandidate(ctx, result.Assignment)
	s.logDone(ctx, mode, result)
	return result, nil
}

// prepareRuns reuses the previous runs when resuming with the same run count, else creates fresh ones.
func (s *Solver) prepareRuns(ctx context.Context, ro resolvedOptions) []*searchRun {
	if s.options.ResumeSearch && len(s.runs) == ro.threads {
		return s.runs
	}
	baseSeed := s.options.Seed
	if baseSeed == 0 {
		baseSeed = kcommon.CryptoSeed(ctx)
	}
	runs := make([]*searchRun, ro.threads)
	for i := range runs {
		runs[i] = newSearchRun(s.model, ro, i, baseSeed+int64(i))
	}
	return runs
}

func (s *Solver) printCandidate(ctx context.Context, values []int) string {
	printer := s.options.Printer
	if printer == nil {
		printer = NewDefaultPrinter(s.model.VariableNames())
	}
	var out string
	ke := kcommon.TryCatchRun(ctx, func() {
		out = printer.PrintCandidate(append([]int(nil), values...))
	})
	if ke != nil {
		klogging.Warning(ctx).WithError(ke).Log("PrinterPanic", "candidate printer failed")
		return ""
	}
	klogging.Info(ctx).With("candidate", out).Log("SolverCandidate", "")
	return out
}

func (s *Solver) logDone(ctx context.Context, mode string, result *Result) {
	SolveElapsedMsMetrics.GetTimeSequence(ctx, mode).Add(result.Elapsed.Milliseconds())
	klogging.Info(ctx).
		With("error", result.Score.Error).
		With("cost", result.Score.Cost).
		With("feasible", result.Feasible).
		With("winningRun", result.WinningRun).
		With("elapsedMs", result.Elapsed.Milliseconds()).
		Log("SolveDone", "")
}

func elapsedSince(startUs int64) time.Duration {
	return time.Duration(kcommon.GetMonoTimeUs()-startUs) * time.Microsecond
}

// Solve builds a one shot Solver for m.
func Solve(ctx context.Context, m *model.Model, budget time.Duration, options Options) (*Result, error) {
	s, err := NewSolver(m, options)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, budget)
}

// SolveDeclared builds the model declared by d, then solves it.
func SolveDeclared(ctx context.Context, d model.Declarer, budget time.Duration, options Options) (*Result, error) {
	m, err := model.Build(d)
	if err != nil {
		return nil, err
	}
	return Solve(ctx, m, budget, options)
}
