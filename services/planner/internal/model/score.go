package model

import "fmt"

// Score ranks assignments: Error first (constraint violation, 0 = feasible), then Cost.
// Cost is always "lower is better"; a maximized objective contributes its negated value.
type Score struct {
	Error float64
	Cost  float64
}

func NewScore(errorVal float64, cost float64) Score {
	return Score{
		Error: errorVal,
		Cost:  cost,
	}
}

func (s Score) IsLowerThan(other Score) bool {
	if s.Error < other.Error {
		return true
	}
	if s.Error > other.Error {
		return false
	}
	return s.Cost < other.Cost
}

func (s Score) IsEqualTo(other Score) bool {
	return s.Error == other.Error && s.Cost == other.Cost
}

func (s Score) IsGreaterThan(other Score) bool {
	return !s.IsLowerThan(other) && !s.IsEqualTo(other)
}

func (s Score) IsFeasible() bool {
	return s.Error == 0
}

func (s Score) String() string {
	return fmt.Sprintf("{%.3f, %.3f}", s.Error, s.Cost)
}
