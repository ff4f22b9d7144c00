package planjson

import (
	"encoding/json"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// UnitCountsJson is one value per unit type. Missing types count as 0 unless the reader has a default.
type UnitCountsJson struct {
	Heavy  *int32 `json:"heavy,omitempty" yaml:"heavy,omitempty"`
	Light  *int32 `json:"light,omitempty" yaml:"light,omitempty"`
	Ranged *int32 `json:"ranged,omitempty" yaml:"ranged,omitempty"`
}

func NewUnitCountsJson(heavy, light, ranged int32) *UnitCountsJson {
	return &UnitCountsJson{
		Heavy:  NewInt32Pointer(heavy),
		Light:  NewInt32Pointer(light),
		Ranged: NewInt32Pointer(ranged),
	}
}

// EnemyObservationJson feeds the enemy composition sampler when a problem has no explicit samples.
type EnemyObservationJson struct {
	Time                    *int32          `json:"time,omitempty" yaml:"time,omitempty"`
	MinDistanceResourceBase *int32          `json:"min_distance_resource_base,omitempty" yaml:"min_distance_resource_base,omitempty"` // default -1 (unknown)
	MaxDistanceResourceBase *int32          `json:"max_distance_resource_base,omitempty" yaml:"max_distance_resource_base,omitempty"` // default -1 (unknown)
	NbInitialBase           *int32          `json:"nb_initial_base,omitempty" yaml:"nb_initial_base,omitempty"`                       // default 1
	NbInitialBarracks       *int32          `json:"nb_initial_barracks,omitempty" yaml:"nb_initial_barracks,omitempty"`
	InitialResources        *int32          `json:"initial_resources,omitempty" yaml:"initial_resources,omitempty"`
	EnemyResourcesLoss      *int32          `json:"enemy_resources_loss,omitempty" yaml:"enemy_resources_loss,omitempty"`
	WorkerMoveTime          *int32          `json:"worker_move_time,omitempty" yaml:"worker_move_time,omitempty"`       // default 10
	WorkerHarvestTime       *int32          `json:"worker_harvest_time,omitempty" yaml:"worker_harvest_time,omitempty"` // default 20
	WorkerReturnTime        *int32          `json:"worker_return_time,omitempty" yaml:"worker_return_time,omitempty"`   // default 10
	HarvestAmount           *int32          `json:"harvest_amount,omitempty" yaml:"harvest_amount,omitempty"`           // default 1
	BaseCost                *int32          `json:"base_cost,omitempty" yaml:"base_cost,omitempty"`                     // default 10
	BarracksCost            *int32          `json:"barracks_cost,omitempty" yaml:"barracks_cost,omitempty"`             // default 5
	UnitCosts               *UnitCountsJson `json:"unit_costs,omitempty" yaml:"unit_costs,omitempty"`
	InitialEnemyWorker      *int32          `json:"initial_enemy_worker,omitempty" yaml:"initial_enemy_worker,omitempty"` // default 1
	Observed                *UnitCountsJson `json:"observed,omitempty" yaml:"observed,omitempty"`
	ObservedInTotal         *UnitCountsJson `json:"observed_in_total,omitempty" yaml:"observed_in_total,omitempty"`

	// number of sampled compositions, default 1
	NbSamples *int32 `json:"nb_samples,omitempty" yaml:"nb_samples,omitempty"`
	// 0 or missing: derived from the solver seed
	SampleSeed *int64 `json:"sample_seed,omitempty" yaml:"sample_seed,omitempty"`
}

// ProblemJson is one production decision as read by rtsplan.
type ProblemJson struct {
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`
	// neutral, optimistic or pessimistic
	RiskAttitude *string `json:"risk_attitude,omitempty" yaml:"risk_attitude,omitempty"`
	// 1 optimistic, 2 pessimistic, else neutral. Ignored when risk_attitude is set.
	SolverType       *int32          `json:"solver_type,omitempty" yaml:"solver_type,omitempty"`
	MyUnits          *UnitCountsJson `json:"my_units,omitempty" yaml:"my_units,omitempty"`
	UnitCosts        *UnitCountsJson `json:"unit_costs,omitempty" yaml:"unit_costs,omitempty"` // default heavy=3 light=2 ranged=2
	Resources        *int32          `json:"resources,omitempty" yaml:"resources,omitempty"`
	NbBarracks       *int32          `json:"nb_barracks,omitempty" yaml:"nb_barracks,omitempty"`
	UnitsPerBarracks *int32          `json:"units_per_barracks,omitempty" yaml:"units_per_barracks,omitempty"` // default 1

	// explicit enemy compositions; when empty, Enemy is sampled
	Samples []*UnitCountsJson     `json:"samples,omitempty" yaml:"samples,omitempty"`
	Enemy   *EnemyObservationJson `json:"enemy,omitempty" yaml:"enemy,omitempty"`

	// solve budget, default comes from the command line
	BudgetMs *int32             `json:"budget_ms,omitempty" yaml:"budget_ms,omitempty"`
	Options  *SolverOptionsJson `json:"options,omitempty" yaml:"options,omitempty"`
}

func (obj *ProblemJson) ToJson() string {
	data, err := json.Marshal(obj)
	if err != nil {
		ke := kerror.Wrap(err, "MarshalError", "failed to marshal ProblemJson", false)
		panic(ke)
	}
	return string(data)
}

func ParseProblem(data []byte, format Format) (*ProblemJson, error) {
	obj := &ProblemJson{}
	if err := decode(data, format, obj); err != nil {
		return nil, kerror.Wrap(err, "UnmarshalError", "failed to unmarshal ProblemJson", false).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	return obj, nil
}

// LoadProblemFile reads a .json, .yaml or .yml problem document.
func LoadProblemFile(path string) (*ProblemJson, error) {
	data, format, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return ParseProblem(data, format)
}
