package solver

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/model"
)

// searchRun is one independent tabu search. It owns its value vector, tabu table, counters and rng;
// only the model is shared between runs.
type searchRun struct {
	index int
	seed  int64
	model *model.Model
	opts  resolvedOptions
	rnd   *rand.Rand

	values    []int
	conErr    []float64 // weighted error per constraint
	projErr   []float64 // scratch for projected moves
	varErr    []float64
	scratch   [][]int // per constraint scope values
	current   model.Score
	tabuUntil []int64
	// total local moves since the run was created, survives resume
	iteration int64

	best       model.Score
	bestValues []int
	hasBest    bool

	initialized bool
	resets      int64
	restarts    int64

	// per Solve
	moves         int64
	solveResets   int64
	solveRestarts int64
	err           *kerror.Kerror
}

func newSearchRun(m *model.Model, opts resolvedOptions, index int, seed int64) *searchRun {
	n := m.NumVariables()
	r := &searchRun{
		index:     index,
		seed:      seed,
		model:     m,
		opts:      opts,
		rnd:       kcommon.NewSeededRand(seed),
		values:    make([]int, n),
		conErr:    make([]float64, m.NumConstraints()),
		projErr:   make([]float64, m.NumConstraints()),
		varErr:    make([]float64, n),
		scratch:   make([][]int, m.NumConstraints()),
		tabuUntil: make([]int64, n),
	}
	for ci := range r.scratch {
		r.scratch[ci] = make([]int, len(m.Scope(ci)))
	}
	return r
}

func (r *searchRun) GetName() string {
	return "searchRun"
}

// initialize sets the starting assignment: the declared values when custom is set, else the best of the start samplings.
func (r *searchRun) initialize(ctx context.Context, custom bool) {
	if custom {
		copy(r.values, r.model.InitialValues())
		r.recomputeAll()
	} else {
		r.sampleStart()
	}
	r.clearTabu()
	r.initialized = true
	r.updateIncumbent(ctx)
}

func (r *searchRun) sampleStart() {
	n := r.model.NumVariables()
	bestValues := make([]int, n)
	var bestScore model.Score
	for k := 0; k < r.opts.startSamplings; k++ {
		for i := 0; i < n; i++ {
			v := r.model.Variable(i)
			r.values[i] = v.RandomValue(r.rnd)
		}
		r.recomputeAll()
		if k == 0 || r.current.IsLowerThan(bestScore) {
			bestScore = r.current
			copy(bestValues, r.values)
		}
	}
	copy(r.values, bestValues)
	r.recomputeAll()
}

func (r *searchRun) recomputeAll() {
	for ci := range r.conErr {
		r.conErr[ci] = r.model.ConstraintError(ci, r.values, r.scratch[ci])
	}
	r.current = model.Score{Error: sumInOrder(r.conErr), Cost: r.cost()}
}

func (r *searchRun) cost() float64 {
	if !r.model.HasObjective() {
		return 0
	}
	return r.model.Cost(r.values)
}

// sums in constraint order so that a projected error and a recomputed one are bit-identical
func sumInOrder(errs []float64) float64 {
	total := 0.0
	for _, e := range errs {
		total += e
	}
	return total
}

// project scores the assignment with variable vi set to val, leaving the run unchanged.
func (r *searchRun) project(vi int, val int) model.Score {
	old := r.values[vi]
	r.values[vi] = val
	copy(r.projErr, r.conErr)
	for _, ci := range r.model.ConstraintsOf(vi) {
		r.projErr[ci] = r.model.ConstraintError(ci, r.values, r.scratch[ci])
	}
	score := model.Score{Error: sumInOrder(r.projErr), Cost: r.cost()}
	r.values[vi] = old
	return score
}

func (r *searchRun) commit(vi int, val int) {
	r.values[vi] = val
	for _, ci := range r.model.ConstraintsOf(vi) {
		r.conErr[ci] = r.model.ConstraintError(ci, r.values, r.scratch[ci])
	}
	r.current = model.Score{Error: sumInOrder(r.conErr), Cost: r.cost()}
}

func (r *searchRun) isTabu(vi int) bool {
	return r.iteration < r.tabuUntil[vi]
}

// makeTabu forbids selecting vi for the next moves local moves.
func (r *searchRun) makeTabu(vi int, moves int) {
	r.tabuUntil[vi] = r.iteration + 1 + int64(moves)
}

func (r *searchRun) clearTabu() {
	for i := range r.tabuUntil {
		r.tabuUntil[i] = 0
	}
}

func (r *searchRun) tabuCount() int {
	count := 0
	for vi := range r.tabuUntil {
		if r.isTabu(vi) {
			count++
		}
	}
	return count
}

// selectVariable picks among non tabu variables the ones with maximal error contribution
// (any non tabu variable once feasible). When every variable is tabu the restriction is lifted.
func (r *searchRun) selectVariable() int {
	n := len(r.values)
	candidates := make([]int, 0, n)
	for vi := 0; vi < n; vi++ {
		if !r.isTabu(vi) {
			candidates = append(candidates, vi)
		}
	}
	if len(candidates) == 0 {
		for vi := 0; vi < n; vi++ {
			candidates = append(candidates, vi)
		}
	}
	if r.current.Error > 0 {
		for _, vi := range candidates {
			contribution := 0.0
			for _, ci := range r.model.ConstraintsOf(vi) {
				contribution += r.conErr[ci]
			}
			r.varErr[vi] = contribution
		}
		maxErr := -1.0
		worst := candidates[:0:0]
		for _, vi := range candidates {
			switch {
			case r.varErr[vi] > maxErr:
				maxErr = r.varErr[vi]
				worst = append(worst[:0], vi)
			case r.varErr[vi] == maxErr:
				worst = append(worst, vi)
			}
		}
		candidates = worst
	}
	return candidates[r.rnd.Intn(len(candidates))]
}

// bestValueFor tries every other value of vi; ties are broken uniformly at random.
func (r *searchRun) bestValueFor(vi int) (int, model.Score, bool) {
	v := r.model.Variable(vi)
	cur := r.values[vi]
	bestVal := 0
	var bestScore model.Score
	ties := 0
	// stops on Max without incrementing past it, so Max == math.MaxInt cannot wrap
	for val := v.Min; ; val++ {
		if val != cur {
			score := r.project(vi, val)
			switch {
			case ties == 0 || score.IsLowerThan(bestScore):
				bestVal, bestScore, ties = val, score, 1
			case score.IsEqualTo(bestScore):
				ties++
				if r.rnd.Intn(ties) == 0 {
					bestVal = val
				}
			}
		}
		if val == v.Max {
			break
		}
	}
	return bestVal, bestScore, ties > 0
}

// step performs one local move.
func (r *searchRun) step(ctx context.Context) {
	vi := r.selectVariable()
	val, score, ok := r.bestValueFor(vi)
	switch {
	case ok && score.IsLowerThan(r.current):
		r.commit(vi, val)
		r.makeTabu(vi, r.opts.tabuTimeSelected)
	case ok && score.IsEqualTo(r.current):
		r.commit(vi, val)
		r.makeTabu(vi, r.opts.tabuTimeLocalMin)
	default:
		r.makeTabu(vi, r.opts.tabuTimeLocalMin)
		r.aspiration(vi)
	}
	r.iteration++
	r.moves++
	r.updateIncumbent(ctx)
	if r.tabuCount() > r.opts.resetThreshold {
		r.reset(ctx)
	}
}

// aspiration overrides the tabu status of a variable when its best move beats the run incumbent.
func (r *searchRun) aspiration(skip int) {
	bestVar := -1
	bestVal := 0
	var bestScore model.Score
	for vi := range r.values {
		if vi == skip || !r.isTabu(vi) {
			continue
		}
		val, score, ok := r.bestValueFor(vi)
		if !ok || !score.IsLowerThan(r.best) {
			continue
		}
		if bestVar < 0 || score.IsLowerThan(bestScore) {
			bestVar, bestVal, bestScore = vi, val, score
		}
	}
	if bestVar >= 0 {
		r.commit(bestVar, bestVal)
		r.makeTabu(bestVar, r.opts.tabuTimeSelected)
	}
}

func (r *searchRun) reset(ctx context.Context) {
	n := len(r.values)
	for _, vi := range kcommon.ShuffledIndexes(r.rnd, n)[:r.opts.resetCount] {
		v := r.model.Variable(vi)
		r.values[vi] = v.RandomValue(r.rnd)
	}
	r.recomputeAll()
	r.clearTabu()
	r.resets++
	r.solveResets++
	klogging.Verbose(ctx).With("resets", r.resets).With("score", r.current.String()).Log("RunReset", "")
	if r.resets%int64(r.opts.restartThreshold) == 0 {
		r.restart(ctx)
	}
	r.updateIncumbent(ctx)
}

// restart discards the working state but keeps the incumbent.
func (r *searchRun) restart(ctx context.Context) {
	r.sampleStart()
	r.clearTabu()
	r.restarts++
	r.solveRestarts++
	klogging.Verbose(ctx).With("restarts", r.restarts).With("score", r.current.String()).Log("RunRestart", "")
}

func (r *searchRun) updateIncumbent(ctx context.Context) {
	if r.hasBest && !r.current.IsLowerThan(r.best) {
		return
	}
	if r.bestValues == nil {
		r.bestValues = make([]int, len(r.values))
	}
	copy(r.bestValues, r.values)
	r.best = r.current
	r.hasBest = true
	klogging.Verbose(ctx).With("iteration", r.iteration).With("score", r.best.String()).Log("IncumbentImproved", "")
}

func (r *searchRun) feasibilityReached() bool {
	return !r.model.HasObjective() && r.hasBest && r.best.Error == 0
}

// runParams are the per Solve inputs of a run.
type runParams struct {
	deadlineUs int64
	custom     bool
	mode       string
	// called when the run finds a zero error assignment of a feasibility only model
	onFeasible func()
}

// search runs local moves until the deadline, the iteration limit, cancellation or feasibility.
// At least one local move is made unless the start is already feasible for a feasibility only model.
func (r *searchRun) search(ctx context.Context, p runParams) {
	r.moves, r.solveResets, r.solveRestarts, r.err = 0, 0, 0, nil
	ctx, info := klogging.CreateCtxInfo(ctx)
	info.With("runId", strconv.Itoa(r.index))
	startUs := kcommon.GetMonoTimeUs()
	klogging.Debug(ctx).With("seed", r.seed).With("resumed", r.initialized).Log("RunStart", "")

	r.err = kcommon.TryCatchRun(ctx, func() {
		if !r.initialized {
			r.initialize(ctx, p.custom)
		}
		for !r.feasibilityReached() {
			r.step(ctx)
			if ctx.Err() != nil || kcommon.GetMonoTimeUs() >= p.deadlineUs {
				break
			}
			if r.opts.iterationLimit > 0 && r.moves >= r.opts.iterationLimit {
				break
			}
		}
	})
	if r.err != nil {
		klogging.Error(ctx).WithError(r.err).With("hasIncumbent", r.hasBest).Log("RunPanic", "search run aborted")
		// working state may be half updated, a resumed Solve starts this run over
		r.initialized = false
	}
	if r.feasibilityReached() && p.onFeasible != nil {
		p.onFeasible()
	}

	elapsedMs := (kcommon.GetMonoTimeUs() - startUs) / 1000
	LocalMovesMetrics.GetTimeSequence(ctx, p.mode).Add(r.moves)
	ResetsMetrics.GetTimeSequence(ctx).Add(r.solveResets)
	RestartsMetrics.GetTimeSequence(ctx).Add(r.solveRestarts)
	RunElapsedMsMetrics.GetTimeSequence(ctx).Add(elapsedMs)
	klogging.Debug(ctx).
		With("moves", r.moves).
		With("resets", r.solveResets).
		With("restarts", r.solveRestarts).
		With("best", r.best.String()).
		With("elapsedMs", elapsedMs).
		Log("RunDone", "")
}

// searchTask adapts a run to the thread pool.
type searchTask struct {
	ctx    context.Context
	run    *searchRun
	params runParams
	done   func()
}

func (t *searchTask) GetName() string {
	return t.run.GetName()
}

func (t *searchTask) Execute() {
	defer t.done()
	t.run.search(t.ctx, t.params)
}
