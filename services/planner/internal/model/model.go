package model

import (
	"math"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// Model is the immutable result of a Builder. It is shared read-only by all search runs;
// each run keeps its own value vector.
type Model struct {
	variables   []Variable
	constraints []Constraint
	scopes      [][]int
	weights     []float64
	objective   Objective
	hasObj      bool
	// variable index -> indexes of constraints whose scope contains it
	varToConstraints [][]int
}

func newModel(variables []Variable, constraints []Constraint, weights []float64, objective Objective) *Model {
	m := &Model{
		variables:        append([]Variable(nil), variables...),
		constraints:      append([]Constraint(nil), constraints...),
		weights:          append([]float64(nil), weights...),
		objective:        objective,
		hasObj:           objective != nil,
		varToConstraints: make([][]int, len(variables)),
	}
	if m.objective == nil {
		m.objective = NullObjective{}
	}
	m.scopes = make([][]int, len(constraints))
	for ci, c := range constraints {
		m.scopes[ci] = append([]int(nil), c.Scope()...)
		seen := map[int]bool{}
		for _, vi := range m.scopes[ci] {
			if !seen[vi] {
				seen[vi] = true
				m.varToConstraints[vi] = append(m.varToConstraints[vi], ci)
			}
		}
	}
	return m
}

func (m *Model) NumVariables() int {
	return len(m.variables)
}

func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// Variable returns a copy; its value is the declared starting value.
func (m *Model) Variable(idx int) Variable {
	return m.variables[idx]
}

func (m *Model) VariableNames() []string {
	names := make([]string, len(m.variables))
	for i, v := range m.variables {
		names[i] = v.Name
	}
	return names
}

// InitialValues is the declared starting assignment.
func (m *Model) InitialValues() []int {
	values := make([]int, len(m.variables))
	for i, v := range m.variables {
		values[i] = v.value
	}
	return values
}

func (m *Model) Constraint(ci int) Constraint {
	return m.constraints[ci]
}

func (m *Model) Scope(ci int) []int {
	return m.scopes[ci]
}

func (m *Model) Weight(ci int) float64 {
	return m.weights[ci]
}

func (m *Model) ConstraintsOf(vi int) []int {
	return m.varToConstraints[vi]
}

func (m *Model) Objective() Objective {
	return m.objective
}

// HasObjective is false when the model only asks for feasibility.
func (m *Model) HasObjective() bool {
	return m.hasObj
}

// ConstraintError is the weighted error of constraint ci. scratch must have len(Scope(ci)).
// A negative or NaN error is a fault of the constraint and panics with EC_INTERNAL_ERROR.
func (m *Model) ConstraintError(ci int, values []int, scratch []int) float64 {
	for i, vi := range m.scopes[ci] {
		scratch[i] = values[vi]
	}
	e := m.constraints[ci].RequiredError(scratch)
	if !(e >= 0) || math.IsInf(e, 1) {
		panic(kerror.Create("InvalidConstraintError", "constraint returned a negative, NaN or infinite error").
			With("constraint", m.constraints[ci].Name()).
			With("error", e).
			With("values", append([]int(nil), scratch...)).
			WithErrorCode(kerror.EC_INTERNAL_ERROR))
	}
	return e * m.weights[ci]
}

// Cost is the objective value normalized so that lower is better.
func (m *Model) Cost(values []int) float64 {
	c := m.objective.RequiredCost(values)
	if math.IsNaN(c) {
		panic(kerror.Create("InvalidObjectiveCost", "objective returned NaN").
			With("objective", m.objective.Name()).
			WithErrorCode(kerror.EC_INTERNAL_ERROR))
	}
	if m.objective.Direction() == Maximize {
		return -c
	}
	return c
}

// ObjectiveValue converts a normalized cost back to the objective's own sign.
func (m *Model) ObjectiveValue(cost float64) float64 {
	if m.objective.Direction() == Maximize {
		return -cost
	}
	return cost
}

// Evaluate scores a full assignment from scratch.
func (m *Model) Evaluate(values []int) Score {
	total := 0.0
	for ci := range m.constraints {
		scratch := make([]int, len(m.scopes[ci]))
		total += m.ConstraintError(ci, values, scratch)
	}
	return Score{Error: total, Cost: m.Cost(values)}
}

// InDomain reports whether every value lies within its variable's domain.
func (m *Model) InDomain(values []int) bool {
	if len(values) != len(m.variables) {
		return false
	}
	for i := range m.variables {
		if !m.variables[i].Contains(values[i]) {
			return false
		}
	}
	return true
}
