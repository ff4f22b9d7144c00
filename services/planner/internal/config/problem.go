package config

import (
	"context"
	"fmt"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/rts"
	"github.com/xinkaiwang/rtsplanner/services/planner/planjson"
)

func unitCountsFromJson(obj *planjson.UnitCountsJson, defVal rts.UnitCounts) rts.UnitCounts {
	counts := defVal
	if obj == nil {
		return counts
	}
	if obj.Heavy != nil {
		counts[rts.Heavy] = int(*obj.Heavy)
	}
	if obj.Light != nil {
		counts[rts.Light] = int(*obj.Light)
	}
	if obj.Ranged != nil {
		counts[rts.Ranged] = int(*obj.Ranged)
	}
	return counts
}

func intOr(v *int32, defVal int) int {
	if v == nil {
		return defVal
	}
	return int(*v)
}

func NewEnemyObservation() rts.EnemyObservation {
	return rts.EnemyObservation{
		MinDistanceResourceBase: -1,
		MaxDistanceResourceBase: -1,
		NbInitialBase:           1,
		WorkerMoveTime:          10,
		WorkerHarvestTime:       20,
		WorkerReturnTime:        10,
		HarvestAmount:           1,
		BaseCost:                10,
		BarracksCost:            5,
		UnitCosts:               rts.NewParams().UnitCosts,
		InitialEnemyWorker:      1,
	}
}

func EnemyObservationFromJson(obj *planjson.EnemyObservationJson) rts.EnemyObservation {
	o := NewEnemyObservation()
	if obj == nil {
		return o
	}
	o.Time = intOr(obj.Time, o.Time)
	o.MinDistanceResourceBase = intOr(obj.MinDistanceResourceBase, o.MinDistanceResourceBase)
	o.MaxDistanceResourceBase = intOr(obj.MaxDistanceResourceBase, o.MaxDistanceResourceBase)
	o.NbInitialBase = intOr(obj.NbInitialBase, o.NbInitialBase)
	o.NbInitialBarracks = intOr(obj.NbInitialBarracks, o.NbInitialBarracks)
	o.InitialResources = intOr(obj.InitialResources, o.InitialResources)
	o.EnemyResourcesLoss = intOr(obj.EnemyResourcesLoss, o.EnemyResourcesLoss)
	o.WorkerMoveTime = intOr(obj.WorkerMoveTime, o.WorkerMoveTime)
	o.WorkerHarvestTime = intOr(obj.WorkerHarvestTime, o.WorkerHarvestTime)
	o.WorkerReturnTime = intOr(obj.WorkerReturnTime, o.WorkerReturnTime)
	o.HarvestAmount = intOr(obj.HarvestAmount, o.HarvestAmount)
	o.BaseCost = intOr(obj.BaseCost, o.BaseCost)
	o.BarracksCost = intOr(obj.BarracksCost, o.BarracksCost)
	o.UnitCosts = unitCountsFromJson(obj.UnitCosts, o.UnitCosts)
	o.InitialEnemyWorker = intOr(obj.InitialEnemyWorker, o.InitialEnemyWorker)
	o.Observed = unitCountsFromJson(obj.Observed, o.Observed)
	o.ObservedInTotal = unitCountsFromJson(obj.ObservedInTotal, o.ObservedInTotal)
	return o
}

// ProblemFromJson turns a problem document into validated rts.Params. Without explicit samples the
// enemy observation is sampled, seeded by enemy.sample_seed, else fallbackSeed, else crypto/rand.
func ProblemFromJson(ctx context.Context, obj *planjson.ProblemJson, fallbackSeed int64) (rts.Params, error) {
	params := rts.NewParams()
	if obj == nil {
		return params, nil
	}
	switch {
	case obj.RiskAttitude != nil:
		phi, err := rts.ParsePhi(*obj.RiskAttitude)
		if err != nil {
			return params, err
		}
		params.RiskAttitude = phi
	case obj.SolverType != nil:
		params.RiskAttitude = rts.PhiFromSolverType(int(*obj.SolverType))
	}
	params.MyUnits = unitCountsFromJson(obj.MyUnits, params.MyUnits)
	params.UnitCosts = unitCountsFromJson(obj.UnitCosts, params.UnitCosts)
	params.Resources = intOr(obj.Resources, params.Resources)
	params.NbBarracks = intOr(obj.NbBarracks, params.NbBarracks)
	params.UnitsPerBarracks = intOr(obj.UnitsPerBarracks, params.UnitsPerBarracks)

	for i, s := range obj.Samples {
		if s == nil {
			return params, kerror.Create("NilSample", "sample entry is null").With("index", i).WithErrorCode(kerror.EC_INVALID_PARAMETER)
		}
		params.Samples = append(params.Samples, unitCountsFromJson(s, rts.UnitCounts{}))
	}
	if len(params.Samples) == 0 && obj.Enemy != nil {
		samples, err := sampleEnemy(ctx, obj.Enemy, fallbackSeed)
		if err != nil {
			return params, err
		}
		params.Samples = samples
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

func sampleEnemy(ctx context.Context, obj *planjson.EnemyObservationJson, fallbackSeed int64) ([]rts.UnitCounts, error) {
	seed := fallbackSeed
	if obj.SampleSeed != nil && *obj.SampleSeed != 0 {
		seed = *obj.SampleSeed
	}
	if seed == 0 {
		seed = kcommon.CryptoSeed(ctx)
	}
	observation := EnemyObservationFromJson(obj)
	n := intOr(obj.NbSamples, 1)
	samples, err := rts.SampleEnemyCompositions(kcommon.NewSeededRand(seed), observation, n)
	if err != nil {
		return nil, err
	}
	klogging.Debug(ctx).
		With("seed", seed).
		With("nbSamples", n).
		With("remainingResources", observation.EstimateRemainingResources()).
		With("distribution", fmt.Sprintf("%.1f", observation.Distribution())).
		Log("EnemySampled", "")
	return samples, nil
}
