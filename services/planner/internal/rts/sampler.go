package rts

import (
	"math/rand"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// EnemyObservation is what the bot knows about the opponent when a decision is due.
type EnemyObservation struct {
	// game time elapsed
	Time int
	// -1 when unknown
	MinDistanceResourceBase int
	MaxDistanceResourceBase int
	NbInitialBase           int
	NbInitialBarracks       int
	InitialResources        int
	EnemyResourcesLoss      int
	WorkerMoveTime          int
	WorkerHarvestTime       int
	WorkerReturnTime        int
	HarvestAmount           int
	BaseCost                int
	BarracksCost            int
	UnitCosts               UnitCounts
	InitialEnemyWorker      int
	// currently visible enemy units
	Observed UnitCounts
	// every enemy unit ever seen, including the visible ones
	ObservedInTotal UnitCounts
}

// Validate rejects negative counts, costs and durations. Resource base distances may be -1 (unknown).
func (o EnemyObservation) Validate() error {
	if o.MinDistanceResourceBase < -1 {
		return invalidParam("MinDistanceResourceBase", o.MinDistanceResourceBase)
	}
	if o.MaxDistanceResourceBase < -1 {
		return invalidParam("MaxDistanceResourceBase", o.MaxDistanceResourceBase)
	}
	for _, f := range []struct {
		name string
		val  int
	}{
		{"Time", o.Time},
		{"NbInitialBase", o.NbInitialBase},
		{"NbInitialBarracks", o.NbInitialBarracks},
		{"InitialResources", o.InitialResources},
		{"EnemyResourcesLoss", o.EnemyResourcesLoss},
		{"WorkerMoveTime", o.WorkerMoveTime},
		{"WorkerHarvestTime", o.WorkerHarvestTime},
		{"WorkerReturnTime", o.WorkerReturnTime},
		{"HarvestAmount", o.HarvestAmount},
		{"BaseCost", o.BaseCost},
		{"BarracksCost", o.BarracksCost},
		{"InitialEnemyWorker", o.InitialEnemyWorker},
	} {
		if f.val < 0 {
			return invalidParam(f.name, f.val)
		}
	}
	for _, u := range AllUnitTypes {
		if o.UnitCosts[u] <= 0 {
			return invalidParam("UnitCosts."+u.String(), o.UnitCosts[u])
		}
		if o.Observed[u] < 0 {
			return invalidParam("Observed."+u.String(), o.Observed[u])
		}
		if o.ObservedInTotal[u] < 0 {
			return invalidParam("ObservedInTotal."+u.String(), o.ObservedInTotal[u])
		}
	}
	return nil
}

// unknown resource fields are considered far away
const defaultMeanDistance = 20.0

// EstimateRemainingResources guesses the resources the opponent gathered but has not been seen spending.
func (o EnemyObservation) EstimateRemainingResources() int {
	meanDistance := defaultMeanDistance
	if o.MinDistanceResourceBase != -1 {
		meanDistance = float64(o.MinDistanceResourceBase+o.MaxDistanceResourceBase) / 2
	}
	// workers beyond the first hinder each other
	tripTime := meanDistance*float64(o.WorkerMoveTime)*2 + float64(o.WorkerHarvestTime+o.WorkerReturnTime) + float64(20*(o.InitialEnemyWorker-1))
	gathered := 0
	if tripTime > 0 {
		gathered = int(float64(o.HarvestAmount*o.InitialEnemyWorker) * (float64(o.Time) / tripTime))
	}
	cumulated := o.InitialResources + gathered
	armyValue := 0
	for _, u := range AllUnitTypes {
		armyValue += o.Observed[u] * o.UnitCosts[u]
	}
	spent := o.NbInitialBase*o.BaseCost + o.NbInitialBarracks*o.BarracksCost + o.EnemyResourcesLoss + armyValue
	if cumulated-spent < 0 {
		return 0
	}
	return cumulated - spent
}

// Weights of the production distribution per unit type. Visible units count twice, units seen
// before once, and every type gets 1 so none has probability 0.
func (o EnemyObservation) Weights() [3]float64 {
	var w [3]float64
	for _, u := range AllUnitTypes {
		seenBefore := o.ObservedInTotal[u] - o.Observed[u]
		if seenBefore < 0 {
			seenBefore = 0
		}
		w[u] = float64(1 + 2*o.Observed[u] + seenBefore)
	}
	return w
}

// Distribution is Weights normalized to percentages.
func (o EnemyObservation) Distribution() [3]float64 {
	w := o.Weights()
	total := w[0] + w[1] + w[2]
	for i := range w {
		w[i] = w[i] * 100 / total
	}
	return w
}

func drawUnit(rnd *rand.Rand, weights [3]float64) UnitType {
	total := weights[0] + weights[1] + weights[2]
	x := rnd.Float64() * total
	for _, u := range AllUnitTypes {
		if x < weights[u] {
			return u
		}
		x -= weights[u]
	}
	return Ranged
}

// canDraw reports whether some affordable unit type has a positive weight.
func canDraw(weights [3]float64, costs UnitCounts, resources int) bool {
	for _, u := range AllUnitTypes {
		if weights[u] > 0 && costs[u] <= resources {
			return true
		}
	}
	return false
}

// SampleEnemyCompositions draws n plausible enemy armies: the remaining resources are spent
// unit by unit following Weights, then the visible units are added.
func SampleEnemyCompositions(rnd *rand.Rand, o EnemyObservation, n int) ([]UnitCounts, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	minCost := o.UnitCosts[Heavy]
	for _, u := range AllUnitTypes {
		if o.UnitCosts[u] < minCost {
			minCost = o.UnitCosts[u]
		}
	}
	if n < 0 {
		return nil, kerror.Create("InvalidSampleCount", "sample count must not be negative").With("n", n).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	weights := o.Weights()
	remaining := o.EstimateRemainingResources()
	samples := make([]UnitCounts, 0, n)
	for k := 0; k < n; k++ {
		resources := remaining
		var produced UnitCounts
		for resources >= minCost && canDraw(weights, o.UnitCosts, resources) {
			u := drawUnit(rnd, weights)
			if resources >= o.UnitCosts[u] {
				produced[u]++
				resources -= o.UnitCosts[u]
			}
		}
		for _, u := range AllUnitTypes {
			produced[u] += o.Observed[u]
		}
		samples = append(samples, produced)
	}
	return samples, nil
}
