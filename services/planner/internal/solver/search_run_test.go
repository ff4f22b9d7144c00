package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/model"
)

func newTestRun(t *testing.T, m *model.Model, seed int64) *searchRun {
	return newSearchRun(m, NewOptions().resolve(m.NumVariables()), 0, seed)
}

func TestTabuDuration(t *testing.T) {
	r := newTestRun(t, chainModel(t, 4), 1)
	r.makeTabu(2, 3)
	for i := 0; i < 3; i++ {
		r.iteration++
		assert.True(t, r.isTabu(2), "iteration %d", r.iteration)
	}
	r.iteration++
	assert.False(t, r.isTabu(2))

	// zero length tabu never blocks the next move
	r.makeTabu(1, 0)
	r.iteration++
	assert.False(t, r.isTabu(1))
	assert.Equal(t, 0, r.tabuCount())
}

func TestSelectVariablePicksWorst(t *testing.T) {
	m := chainModel(t, 4)
	r := newTestRun(t, m, 1)
	r.initialized = true
	// pairs: (0,1)=0 (1,2)=0 (2,3)=|4+9-9|=4
	copy(r.values, []int{4, 5, 4, 9})
	r.recomputeAll()
	assert.Equal(t, 4.0, r.current.Error)
	for i := 0; i < 20; i++ {
		vi := r.selectVariable()
		assert.True(t, vi == 2 || vi == 3, "picked %d", vi)
	}
	r.makeTabu(2, 5)
	r.makeTabu(3, 5)
	// with the worst variables tabu, x0 and x1 tie at zero contribution
	for i := 0; i < 20; i++ {
		vi := r.selectVariable()
		assert.True(t, vi == 0 || vi == 1, "picked %d", vi)
	}
	for vi := range r.tabuUntil {
		r.makeTabu(vi, 5)
	}
	// everything tabu lifts the restriction
	vi := r.selectVariable()
	assert.True(t, vi == 2 || vi == 3)
}

func TestProjectLeavesRunUnchanged(t *testing.T) {
	m := chainModel(t, 3)
	r := newTestRun(t, m, 1)
	copy(r.values, []int{1, 1, 1})
	r.recomputeAll()
	before := r.current
	s := r.project(1, 8)
	assert.Equal(t, model.NewScore(0, 0), s)
	assert.Equal(t, []int{1, 1, 1}, r.values)
	assert.Equal(t, before, r.current)
	assert.Equal(t, m.Evaluate([]int{1, 8, 1}), s)
}

func TestStepImprovesAndTracksIncumbent(t *testing.T) {
	m := cappedSumModel(t)
	r := newTestRun(t, m, 3)
	ctx := context.Background()
	r.initialize(ctx, false)
	start := r.best
	for i := 0; i < 50; i++ {
		prevBest := r.best
		r.step(ctx)
		assert.False(t, r.best.IsGreaterThan(prevBest))
		assert.Equal(t, m.Evaluate(r.values), r.current)
		assert.Equal(t, m.Evaluate(r.bestValues), r.best)
	}
	assert.False(t, r.best.IsGreaterThan(start))
	assert.Equal(t, int64(50), r.iteration)
}

func TestResetAndRestartCounters(t *testing.T) {
	m := unsatisfiableModel(t)
	opts := NewOptions()
	opts.ResetThreshold = 0
	opts.RestartThreshold = 2
	r := newSearchRun(m, opts.resolve(2), 0, 5)
	ctx := context.Background()
	r.initialize(ctx, false)
	// every local minimum leaves a tabu variable, which exceeds a zero reset threshold
	for i := 0; i < 40; i++ {
		r.step(ctx)
	}
	assert.True(t, r.resets > 0)
	assert.Equal(t, r.resets/2, r.restarts)
	assert.Equal(t, 82.0, r.best.Error)
}

func TestBestValueAtMaxInt(t *testing.T) {
	b := model.NewBuilder()
	b.AddVariable("x", math.MaxInt-2, math.MaxInt)
	b.AddConstraint(model.NewConstraintFunc("top", []int{0}, func(v []int) float64 {
		return float64(math.MaxInt - v[0])
	}))
	m, err := b.Build()
	assert.Nil(t, err)
	r := newTestRun(t, m, 1)
	r.values[0] = math.MaxInt - 2
	r.recomputeAll()
	val, score, ok := r.bestValueFor(0)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, val)
	assert.Equal(t, 0.0, score.Error)
}

func TestAspirationTakesTabuMoveBeatingIncumbent(t *testing.T) {
	m := chainModel(t, 3)
	opts := NewOptions()
	opts.TabuTimeSelected = 3
	r := newSearchRun(m, opts.resolve(3), 0, 1)
	ctx := context.Background()
	// pairs: (0,1)=0 (1,2)=|9+5-9|=5
	copy(r.values, []int{0, 9, 5})
	r.recomputeAll()
	r.updateIncumbent(ctx)
	assert.Equal(t, 5.0, r.best.Error)

	r.iteration = 10
	r.makeTabu(2, 4)
	r.aspiration(1)
	// x2=0 clears the only violation
	assert.Equal(t, []int{0, 9, 0}, r.values)
	assert.Equal(t, 0.0, r.current.Error)
	assert.Equal(t, int64(10+1+3), r.tabuUntil[2])
}

func TestAspirationIgnoresTabuMoveNotBeatingIncumbent(t *testing.T) {
	m := chainModel(t, 3)
	r := newTestRun(t, m, 1)
	ctx := context.Background()
	copy(r.values, []int{0, 9, 5})
	r.recomputeAll()
	r.updateIncumbent(ctx)
	r.iteration = 10

	// x2=0 would only match an incumbent of error 0
	r.best = model.NewScore(0, 0)
	r.makeTabu(2, 4)
	r.aspiration(1)
	assert.Equal(t, []int{0, 9, 5}, r.values)
	assert.Equal(t, int64(15), r.tabuUntil[2])

	// every move of x0 breaks the first pair, worse than the incumbent
	r.clearTabu()
	r.best = r.current
	r.makeTabu(0, 4)
	r.aspiration(1)
	assert.Equal(t, []int{0, 9, 5}, r.values)
	assert.Equal(t, int64(15), r.tabuUntil[0])
	assert.Equal(t, 5.0, r.current.Error)
}
