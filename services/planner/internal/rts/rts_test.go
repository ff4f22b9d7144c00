package rts

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/model"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/solver"
)

func TestStockScenario(t *testing.T) {
	c := NewStock([3]int{9, 10, 11}, UnitCounts{3, 2, 2}, 10)
	assert.Equal(t, 0.0, c.RequiredError([]int{2, 1, 1}))
	assert.Equal(t, 3.0, c.RequiredError([]int{3, 1, 1}))
	assert.Equal(t, 0.0, c.RequiredError([]int{0, 0, 0}))
	assert.Equal(t, []int{9, 10, 11}, c.Scope())
}

func TestAssignmentScenario(t *testing.T) {
	c := NewAssignment(Heavy, [4]int{0, 3, 6, 9}, 5)
	assert.Equal(t, "Assignment_H", c.Name())
	assert.Equal(t, 2.0, c.RequiredError([]int{3, 2, 2, 0}))
	assert.Equal(t, 0.0, c.RequiredError([]int{3, 2, 2, 2}))
	assert.Equal(t, 5.0, c.RequiredError([]int{0, 0, 0, 0}))
	// purity
	values := []int{3, 2, 2, 0}
	assert.Equal(t, c.RequiredError(values), c.RequiredError(values))
}

func TestProductionCapacity(t *testing.T) {
	c := NewProductionCapacity([3]int{9, 10, 11}, 2, 1)
	assert.Equal(t, 1.0, c.RequiredError([]int{1, 1, 1}))
	assert.Equal(t, 0.0, c.RequiredError([]int{2, 0, 0}))
}

func TestRegulation(t *testing.T) {
	assert.Equal(t, 2.0, Regulation(2))
	assert.Equal(t, 0.0, Regulation(0))
	assert.Equal(t, 0.0, Regulation(-1))
	assert.Equal(t, -4.0, Regulation(-3))
}

func TestPhi(t *testing.T) {
	assert.Equal(t, 0.3, PhiNeutral.Apply(0.3))
	assert.InDelta(t, 0.5, PhiPessimistic.Apply(0.65), 1e-12)
	assert.Equal(t, 1.0, PhiOptimistic.Apply(1))
	assert.Equal(t, 0.0, PhiOptimistic.Apply(0.001))
	assert.InDelta(t, 1+math.Log(0.5/1.5)/10, PhiOptimistic.Apply(0.5), 1e-12)

	p, err := ParsePhi("Pessimistic")
	assert.Nil(t, err)
	assert.Equal(t, PhiPessimistic, p)
	_, err = ParsePhi("reckless")
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))
	assert.Equal(t, PhiOptimistic, PhiFromSolverType(1))
	assert.Equal(t, PhiNeutral, PhiFromSolverType(0))
}

func TestOWA(t *testing.T) {
	for _, phi := range []Phi{PhiNeutral, PhiOptimistic, PhiPessimistic} {
		assert.Equal(t, -2.5, OWA([]float64{-2.5, -2.5, -2.5}, phi), phi.String())
	}
	// neutral: 1 + (3-1)*phi(1/2) = 2
	assert.Equal(t, 2.0, OWA([]float64{3, 1}, PhiNeutral))
	assert.Equal(t, 0.0, OWA(nil, PhiNeutral))
	// input is not reordered
	scores := []float64{3, 1}
	OWA(scores, PhiNeutral)
	assert.Equal(t, []float64{3, 1}, scores)
}

func TestBestCompositionIdenticalSamples(t *testing.T) {
	m, err := BuildModel(paramsWithSamples([]UnitCounts{{2, 1, 3}, {2, 1, 3}, {2, 1, 3}}))
	assert.Nil(t, err)
	obj := m.Objective().(*BestComposition)
	values := make([]int, NumVariables)
	values[AssignIndex(Heavy, Heavy)] = 2
	values[AssignIndex(Ranged, Light)] = 1
	values[AssignIndex(Light, Ranged)] = 1
	common := obj.ScenarioScore(values, UnitCounts{2, 1, 3})
	for _, phi := range []Phi{PhiNeutral, PhiOptimistic, PhiPessimistic} {
		o := NewBestComposition(obj.assignIdx, DefaultEfficiency, obj.samples, phi)
		assert.Equal(t, common, o.RequiredCost(values), phi.String())
	}
	// vs heavy: 2 - 2 = 0; vs light: 0.472 - 1 -> -(0.472)^2; vs ranged: 2.119 - 3 -> -(0.119)^2
	assert.InDelta(t, -(0.472*0.472)-(0.119*0.119), common, 1e-9)
}

func paramsWithSamples(samples []UnitCounts) Params {
	p := NewParams()
	p.MyUnits = UnitCounts{2, 1, 1}
	p.Resources = 10
	p.Samples = samples
	return p
}

func TestBuilderModel(t *testing.T) {
	m, err := BuildModel(paramsWithSamples(nil))
	assert.Nil(t, err)
	assert.Equal(t, NumVariables, m.NumVariables())
	assert.Equal(t, 4, m.NumConstraints())
	assert.Equal(t, model.Maximize, m.Objective().Direction())
	assert.Equal(t, "assign_Hh", m.Variable(0).Name)
	assert.Equal(t, "assign_Rr", m.Variable(8).Name)
	assert.Equal(t, "to_prod_R", m.Variable(11).Name)
	assert.Equal(t, 22, m.Variable(AssignIndex(Heavy, Light)).Max)
	assert.Equal(t, 21, m.Variable(AssignIndex(Light, Light)).Max)
	assert.Equal(t, MaxProduction, m.Variable(ProduceIndex(Light)).Max)

	p := paramsWithSamples(nil)
	p.NbBarracks = 1
	m, err = BuildModel(p)
	assert.Nil(t, err)
	assert.Equal(t, 5, m.NumConstraints())
}

func TestBuilderEvaluatesFeasibleAssignment(t *testing.T) {
	m, err := BuildModel(paramsWithSamples([]UnitCounts{{1, 1, 1}}))
	assert.Nil(t, err)
	values := make([]int, NumVariables)
	values[AssignIndex(Heavy, Heavy)] = 2
	values[AssignIndex(Light, Ranged)] = 1
	values[AssignIndex(Ranged, Light)] = 0
	values[AssignIndex(Ranged, Heavy)] = 1
	values[ProduceIndex(Light)] = 0
	s := m.Evaluate(values)
	assert.Equal(t, 0.0, s.Error)

	d := DecisionFromValues(values)
	assert.Equal(t, 2, d.Assigned[Heavy][Heavy])
	assert.Equal(t, 1, d.Assigned[Ranged][Heavy])
	assert.Equal(t, UnitCounts{}, d.Produce)

	values[ProduceIndex(Heavy)] = 4 // 12 > 10 resources and heavy no longer balanced
	assert.Equal(t, 2.0+4.0, m.Evaluate(values).Error)
}

func TestParamsValidate(t *testing.T) {
	p := NewParams()
	p.UnitCosts[Light] = 0
	_, err := BuildModel(p)
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))

	p = NewParams()
	p.NbBarracks = 1
	p.UnitsPerBarracks = 0
	assert.NotNil(t, p.Validate())

	p = NewParams()
	p.Samples = []UnitCounts{{0, -1, 0}}
	assert.NotNil(t, p.Validate())
}

func testObservation() EnemyObservation {
	return EnemyObservation{
		Time:                    1000,
		MinDistanceResourceBase: -1,
		MaxDistanceResourceBase: -1,
		NbInitialBarracks:       1,
		InitialResources:        5,
		WorkerMoveTime:          1,
		WorkerHarvestTime:       20,
		WorkerReturnTime:        10,
		HarvestAmount:           1,
		BaseCost:                10,
		BarracksCost:            5,
		UnitCosts:               UnitCounts{3, 2, 2},
		InitialEnemyWorker:      1,
		Observed:                UnitCounts{1, 0, 0},
		ObservedInTotal:         UnitCounts{2, 0, 0},
	}
}

func TestEstimateRemainingResources(t *testing.T) {
	o := testObservation()
	// trip = 20*1*2 + 20 + 10 = 70, gathered = int(1000/70) = 14, cumulated 19, spent 5 + 3
	assert.Equal(t, 11, o.EstimateRemainingResources())

	o.MinDistanceResourceBase = 4
	o.MaxDistanceResourceBase = 6
	// trip = 5*2 + 30 = 40, gathered 25, cumulated 30
	assert.Equal(t, 22, o.EstimateRemainingResources())

	o.EnemyResourcesLoss = 1000
	assert.Equal(t, 0, o.EstimateRemainingResources())
}

func TestDistribution(t *testing.T) {
	d := testObservation().Distribution()
	assert.InDelta(t, 400.0/6, d[Heavy], 1e-9)
	assert.InDelta(t, 100.0/6, d[Light], 1e-9)
	assert.InDelta(t, 100.0, d[0]+d[1]+d[2], 1e-9)
}

func TestSampleEnemyCompositions(t *testing.T) {
	o := testObservation()
	remaining := o.EstimateRemainingResources()
	samples, err := SampleEnemyCompositions(kcommon.NewSeededRand(3), o, 50)
	assert.Nil(t, err)
	assert.Equal(t, 50, len(samples))
	for _, s := range samples {
		spent := 0
		for _, u := range AllUnitTypes {
			produced := s[u] - o.Observed[u]
			assert.True(t, produced >= 0)
			spent += produced * o.UnitCosts[u]
		}
		assert.True(t, spent <= remaining)
		// stops only when nothing is affordable any more
		assert.True(t, remaining-spent < 2)
	}
	again, _ := SampleEnemyCompositions(kcommon.NewSeededRand(3), o, 50)
	assert.Equal(t, samples, again)

	o.UnitCosts[Ranged] = 0
	_, err = SampleEnemyCompositions(kcommon.NewSeededRand(3), o, 5)
	assert.NotNil(t, err)
}

func TestSampleEnemyRejectsNegativeObservation(t *testing.T) {
	o := testObservation()
	o.Observed = UnitCounts{0, -1, -1}
	o.InitialResources = -2
	_, err := SampleEnemyCompositions(kcommon.NewSeededRand(3), o, 5)
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))

	o = testObservation()
	o.ObservedInTotal[Ranged] = -4
	assert.NotNil(t, o.Validate())

	o = testObservation()
	o.WorkerMoveTime = -1
	assert.NotNil(t, o.Validate())

	o = testObservation()
	o.MinDistanceResourceBase = -2
	assert.NotNil(t, o.Validate())

	assert.Nil(t, testObservation().Validate())
}

func TestCanDraw(t *testing.T) {
	costs := UnitCounts{3, 2, 2}
	// only heavy has weight and it is not affordable
	assert.False(t, canDraw([3]float64{1, 0, 0}, costs, 2))
	assert.False(t, canDraw([3]float64{1, -1, -1}, costs, 2))
	assert.True(t, canDraw([3]float64{1, 0, 0}, costs, 3))
	assert.True(t, canDraw([3]float64{0, 0, 1}, costs, 2))
}

func TestPrinter(t *testing.T) {
	values := make([]int, NumVariables)
	values[AssignIndex(Light, Ranged)] = 4
	values[ProduceIndex(Heavy)] = 2
	out := NewPrinter().PrintCandidate(values)
	assert.Contains(t, out, "vs heavy")
	assert.Contains(t, out, "light           0        0        4\n")
	assert.Contains(t, out, "produce: heavy=2 light=0 ranged=0")
}

func TestSolveRtsModel(t *testing.T) {
	o := testObservation()
	samples, err := SampleEnemyCompositions(kcommon.NewSeededRand(1), o, 20)
	assert.Nil(t, err)
	p := paramsWithSamples(samples)
	p.RiskAttitude = PhiPessimistic
	p.NbBarracks = 1
	p.UnitsPerBarracks = 2
	m, err := BuildModel(p)
	assert.Nil(t, err)

	opts := solver.NewOptions()
	opts.Seed = 21
	opts.IterationLimit = 3000
	opts.Printer = NewPrinter()
	kcommon.RunWithTimeProvider(kcommon.NewMockTimeProvider(), func() {
		result, err := solver.Solve(context.Background(), m, time.Second, opts)
		assert.Nil(t, err)
		assert.True(t, result.Feasible)
		assert.Equal(t, m.Evaluate(result.Assignment), result.Score)
		d := DecisionFromValues(result.Assignment)
		assert.True(t, d.Produce.Total() <= 2)
		assert.True(t, 3*d.Produce[Heavy]+2*d.Produce[Light]+2*d.Produce[Ranged] <= 10)
		assert.Contains(t, result.Candidate, "produce:")
	})
}
