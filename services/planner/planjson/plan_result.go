package planjson

import (
	"encoding/json"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// PlanResultJson is what rtsplan prints after a solve.
type PlanResultJson struct {
	SolveId   string  `json:"solve_id"`
	Feasible  bool    `json:"feasible"`
	Error     float64 `json:"error"`
	Objective float64 `json:"objective"`
	// assigned[mine][enemy], keyed by unit type name
	Assigned  map[string]map[string]int `json:"assigned"`
	Produce   map[string]int            `json:"produce"`
	Values    []int                     `json:"values"`
	ElapsedMs int64                     `json:"elapsed_ms"`
	Runs      []*RunJson                `json:"runs,omitempty"`
}

type RunJson struct {
	RunIndex int     `json:"run_index"`
	Seed     int64   `json:"seed"`
	Error    float64 `json:"error"`
	Cost     float64 `json:"cost"`
	Moves    int64   `json:"moves"`
	Resets   int64   `json:"resets"`
	Restarts int64   `json:"restarts"`
	Failure  string  `json:"failure,omitempty"`
}

func (obj *PlanResultJson) ToJson() string {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		ke := kerror.Wrap(err, "MarshalError", "failed to marshal PlanResultJson", false)
		panic(ke)
	}
	return string(data)
}

func PlanResultJsonFromJson(data string) (*PlanResultJson, error) {
	obj := &PlanResultJson{}
	if err := json.Unmarshal([]byte(data), obj); err != nil {
		return nil, kerror.Wrap(err, "UnmarshalError", "failed to unmarshal PlanResultJson", false).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	return obj, nil
}
