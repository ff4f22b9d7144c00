package model

import (
	"fmt"
	"math/rand"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// MaxDomainSize bounds Max-Min+1 of a model variable. Every local move enumerates the domain.
const MaxDomainSize = 1 << 24

// Variable is a named integer decision variable over the inclusive domain [Min, Max].
// Identity is its index in the model, names may collide.
type Variable struct {
	Name  string
	Min   int
	Max   int
	value int
}

// NewVariable starts at min.
func NewVariable(name string, min, max int) *Variable {
	return &Variable{
		Name:  name,
		Min:   min,
		Max:   max,
		value: min,
	}
}

func (v *Variable) GetValue() int {
	return v.value
}

// SetValue fails with EC_INVALID_PARAMETER when val is outside [Min, Max]; the value is left unchanged.
func (v *Variable) SetValue(val int) error {
	if !v.Contains(val) {
		return kerror.Create("ValueOutOfDomain", "value outside variable domain").
			With("variable", v.Name).
			With("value", val).
			With("min", v.Min).
			With("max", v.Max).
			WithErrorCode(kerror.EC_INVALID_PARAMETER)
	}
	v.value = val
	return nil
}

// DomainSize assumes Max-Min+1 fits in an int, which Builder enforces through MaxDomainSize.
func (v *Variable) DomainSize() int {
	if v.Max < v.Min {
		return 0
	}
	return v.Max - v.Min + 1
}

func (v *Variable) Contains(val int) bool {
	return val >= v.Min && val <= v.Max
}

// RandomValue draws uniformly from the domain.
func (v *Variable) RandomValue(rnd *rand.Rand) int {
	return v.Min + rnd.Intn(v.DomainSize())
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s=%d[%d..%d]", v.Name, v.value, v.Min, v.Max)
}
