package rts

import (
	"sort"

	"github.com/xinkaiwang/rtsplanner/services/planner/internal/model"
)

// DefaultEfficiency[enemy][mine] is how many enemy units of one type a unit of mine handles.
var DefaultEfficiency = [3][3]float64{
	Heavy:  {Heavy: 1, Light: 0.374, Ranged: 1.564},
	Light:  {Heavy: 2.675, Light: 1, Ranged: 0.472},
	Ranged: {Heavy: 0.639, Light: 2.119, Ranged: 1},
}

// Regulation keeps a surplus as is and penalizes a shortfall quadratically.
func Regulation(x float64) float64 {
	if x >= 0 {
		return x
	}
	return -(1 + x) * (1 + x)
}

// OWA sorts the scores ascending and returns s0 + sum((si - si-1) * phi((N-i)/N)).
func OWA(scores []float64, phi Phi) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	rdu := sorted[0]
	for i := 1; i < len(sorted); i++ {
		rdu += (sorted[i] - sorted[i-1]) * phi.Apply((n-float64(i))/n)
	}
	return rdu
}

// BestComposition rates how well the assignment matrix covers sampled enemy compositions.
// It is maximized.
type BestComposition struct {
	assignIdx  [3][3]int
	efficiency [3][3]float64
	samples    []UnitCounts
	phi        Phi
}

// NewBestComposition: assignIdx[enemy][mine] is the variable index of "mine assigned against enemy".
func NewBestComposition(assignIdx [3][3]int, efficiency [3][3]float64, samples []UnitCounts, phi Phi) *BestComposition {
	return &BestComposition{
		assignIdx:  assignIdx,
		efficiency: efficiency,
		samples:    append([]UnitCounts(nil), samples...),
		phi:        phi,
	}
}

func (o *BestComposition) Name() string                { return "BestComposition" }
func (o *BestComposition) Direction() model.Direction { return model.Maximize }

// ScenarioScore is the sum over enemy types of the regulated coverage for one sample.
func (o *BestComposition) ScenarioScore(values []int, sample UnitCounts) float64 {
	score := 0.0
	for _, enemy := range AllUnitTypes {
		coverage := 0.0
		for _, mine := range AllUnitTypes {
			coverage += o.efficiency[enemy][mine] * float64(values[o.assignIdx[enemy][mine]])
		}
		score += Regulation(coverage - float64(sample[enemy]))
	}
	return score
}

func (o *BestComposition) RequiredCost(values []int) float64 {
	scores := make([]float64, len(o.samples))
	for i, sample := range o.samples {
		scores[i] = o.ScenarioScore(values, sample)
	}
	return OWA(scores, o.phi)
}
