package model

import (
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

type BuildPhase int

const (
	PhaseVariables BuildPhase = iota
	PhaseConstraints
	PhaseObjective
	PhaseBuilt
)

func (p BuildPhase) String() string {
	switch p {
	case PhaseVariables:
		return "variables"
	case PhaseConstraints:
		return "constraints"
	case PhaseObjective:
		return "objective"
	default:
		return "built"
	}
}

// Declarer splits a model definition into three hooks that Build calls in order.
type Declarer interface {
	DeclareVariables(b *Builder)
	DeclareConstraints(b *Builder)
	DeclareObjective(b *Builder)
}

// Builder collects variables, then constraints, then an objective.
// The first fault (out of order declaration, bad index, empty domain) is kept and returned by Build;
// later calls are ignored once a fault is recorded.
type Builder struct {
	phase       BuildPhase
	variables   []Variable
	constraints []Constraint
	weights     []float64
	objective   Objective
	err         error
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) fail(err *kerror.Kerror) {
	if b.err == nil {
		b.err = err.WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
}

func (b *Builder) enter(phase BuildPhase, what string) bool {
	if b.err != nil {
		return false
	}
	if phase < b.phase {
		b.fail(kerror.Create("DeclarationOutOfOrder", "declarations must follow variables, constraints, objective order").
			With("declaring", what).
			With("phase", b.phase.String()))
		return false
	}
	b.phase = phase
	return true
}

// AddVariable returns the index of the new variable, or -1 after a fault.
func (b *Builder) AddVariable(name string, min, max int) int {
	if !b.enter(PhaseVariables, "variable") {
		return -1
	}
	if max < min {
		b.fail(kerror.Create("EmptyDomain", "variable domain is empty").With("variable", name).With("min", min).With("max", max))
		return -1
	}
	// distance computed unsigned so that extreme bounds cannot overflow
	if uint64(max)-uint64(min) >= MaxDomainSize {
		b.fail(kerror.Create("DomainTooLarge", "variable domain exceeds MaxDomainSize").With("variable", name).With("min", min).With("max", max))
		return -1
	}
	b.variables = append(b.variables, *NewVariable(name, min, max))
	return len(b.variables) - 1
}

// SetInitialValue sets the custom starting value of variable idx.
func (b *Builder) SetInitialValue(idx int, val int) *Builder {
	if b.err != nil {
		return b
	}
	if idx < 0 || idx >= len(b.variables) {
		b.fail(kerror.Create("VariableIndexOutOfRange", "no such variable").With("index", idx).With("numVariables", len(b.variables)))
		return b
	}
	if err := b.variables[idx].SetValue(val); err != nil {
		b.fail(err.(*kerror.Kerror))
	}
	return b
}

func (b *Builder) AddConstraint(c Constraint) *Builder {
	return b.AddWeightedConstraint(c, 1)
}

// AddWeightedConstraint: the constraint's error is multiplied by weight (> 0) in the total error.
func (b *Builder) AddWeightedConstraint(c Constraint, weight float64) *Builder {
	if !b.enter(PhaseConstraints, "constraint") {
		return b
	}
	if c == nil {
		b.fail(kerror.Create("NilConstraint", "constraint is nil").With("position", len(b.constraints)))
		return b
	}
	if !(weight > 0) {
		b.fail(kerror.Create("InvalidWeight", "constraint weight must be positive").With("constraint", c.Name()).With("weight", weight))
		return b
	}
	scope := c.Scope()
	if len(scope) == 0 {
		b.fail(kerror.Create("EmptyScope", "constraint references no variable").With("constraint", c.Name()))
		return b
	}
	for _, idx := range scope {
		if idx < 0 || idx >= len(b.variables) {
			b.fail(kerror.Create("VariableIndexOutOfRange", "constraint references an undeclared variable").
				With("constraint", c.Name()).
				With("index", idx).
				With("numVariables", len(b.variables)))
			return b
		}
	}
	b.constraints = append(b.constraints, c)
	b.weights = append(b.weights, weight)
	return b
}

// SetObjective may be called once.
func (b *Builder) SetObjective(o Objective) *Builder {
	if !b.enter(PhaseObjective, "objective") {
		return b
	}
	if o == nil {
		b.fail(kerror.Create("NilObjective", "objective is nil"))
		return b
	}
	if b.objective != nil {
		b.fail(kerror.Create("ObjectiveRedeclared", "objective already declared").With("objective", b.objective.Name()))
		return b
	}
	b.objective = o
	return b
}

func (b *Builder) NumVariables() int {
	return len(b.variables)
}

// Build freezes the declarations into a Model. The builder cannot be reused afterwards.
func (b *Builder) Build() (*Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.phase == PhaseBuilt {
		return nil, kerror.Create("BuilderReused", "builder already built").WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	b.phase = PhaseBuilt
	return newModel(b.variables, b.constraints, b.weights, b.objective), nil
}

// Build runs the three hooks of d in order and returns the resulting model.
func Build(d Declarer) (*Model, error) {
	b := NewBuilder()
	d.DeclareVariables(b)
	if b.err == nil {
		b.phase = PhaseConstraints
	}
	d.DeclareConstraints(b)
	if b.err == nil {
		b.phase = PhaseObjective
	}
	d.DeclareObjective(b)
	return b.Build()
}
