package planjson

import (
	"encoding/json"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// SolverOptionsJson mirrors solver.Options. A nil field keeps the default; -1 asks for the size dependent value.
type SolverOptionsJson struct {
	CustomStartingPoint *bool `json:"custom_starting_point,omitempty" yaml:"custom_starting_point,omitempty"`
	ResumeSearch        *bool `json:"resume_search,omitempty" yaml:"resume_search,omitempty"`
	ParallelRuns        *bool `json:"parallel_runs,omitempty" yaml:"parallel_runs,omitempty"`
	// only used with parallel_runs
	NumberThreads *int32 `json:"number_threads,omitempty" yaml:"number_threads,omitempty"`

	TabuTimeLocalMin     *int32 `json:"tabu_time_local_min,omitempty" yaml:"tabu_time_local_min,omitempty"`
	TabuTimeSelected     *int32 `json:"tabu_time_selected,omitempty" yaml:"tabu_time_selected,omitempty"`
	ResetThreshold       *int32 `json:"reset_threshold,omitempty" yaml:"reset_threshold,omitempty"`
	RestartThreshold     *int32 `json:"restart_threshold,omitempty" yaml:"restart_threshold,omitempty"`
	PercentToReset       *int32 `json:"percent_to_reset,omitempty" yaml:"percent_to_reset,omitempty"`
	NumberStartSamplings *int32 `json:"number_start_samplings,omitempty" yaml:"number_start_samplings,omitempty"`

	Seed           *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	IterationLimit *int64 `json:"iteration_limit,omitempty" yaml:"iteration_limit,omitempty"`
}

func (obj *SolverOptionsJson) ToJson() string {
	data, err := json.Marshal(obj)
	if err != nil {
		ke := kerror.Wrap(err, "MarshalError", "failed to marshal SolverOptionsJson", false)
		panic(ke)
	}
	return string(data)
}

// ParseSolverOptions decodes an options document. format is "json" or "yaml".
func ParseSolverOptions(data []byte, format Format) (*SolverOptionsJson, error) {
	obj := &SolverOptionsJson{}
	if err := decode(data, format, obj); err != nil {
		return nil, kerror.Wrap(err, "UnmarshalError", "failed to unmarshal SolverOptionsJson", false).WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	return obj, nil
}

func LoadSolverOptionsFile(path string) (*SolverOptionsJson, error) {
	data, format, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return ParseSolverOptions(data, format)
}
