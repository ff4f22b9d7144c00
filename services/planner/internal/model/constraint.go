package model

// Constraint measures how much its variables violate a relation.
// Scope is fixed at construction; RequiredError receives the current values of the
// scope variables in Scope order and must return a value >= 0 (0 = satisfied).
// RequiredError must be pure: the solver calls it concurrently from several runs
// and repeatedly for projected moves.
type Constraint interface {
	Name() string
	Scope() []int
	RequiredError(values []int) float64
}

type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Objective ranks assignments of equal error. RequiredCost receives the full assignment.
type Objective interface {
	Name() string
	Direction() Direction
	RequiredCost(values []int) float64
}

// NullObjective is used when a model declares no objective: every assignment costs 0.
type NullObjective struct{}

func (NullObjective) Name() string                      { return "NullObjective" }
func (NullObjective) Direction() Direction              { return Minimize }
func (NullObjective) RequiredCost(values []int) float64 { return 0 }

// ConstraintFunc adapts a plain function to Constraint.
type ConstraintFunc struct {
	name  string
	scope []int
	fn    func(values []int) float64
}

func NewConstraintFunc(name string, scope []int, fn func(values []int) float64) *ConstraintFunc {
	return &ConstraintFunc{name: name, scope: append([]int(nil), scope...), fn: fn}
}

func (c *ConstraintFunc) Name() string                      { return c.name }
func (c *ConstraintFunc) Scope() []int                      { return c.scope }
func (c *ConstraintFunc) RequiredError(values []int) float64 { return c.fn(values) }

// ObjectiveFunc adapts a plain function to Objective.
type ObjectiveFunc struct {
	name      string
	direction Direction
	fn        func(values []int) float64
}

func NewObjectiveFunc(name string, direction Direction, fn func(values []int) float64) *ObjectiveFunc {
	return &ObjectiveFunc{name: name, direction: direction, fn: fn}
}

func (o *ObjectiveFunc) Name() string                      { return o.name }
func (o *ObjectiveFunc) Direction() Direction              { return o.direction }
func (o *ObjectiveFunc) RequiredCost(values []int) float64 { return o.fn(values) }
