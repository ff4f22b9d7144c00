package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

func sumEquals(target int) func(values []int) float64 {
	return func(values []int) float64 {
		sum := 0
		for _, v := range values {
			sum += v
		}
		d := float64(sum - target)
		if d < 0 {
			return -d
		}
		return d
	}
}

func TestVariableSetValue(t *testing.T) {
	v := NewVariable("x", 2, 5)
	assert.Equal(t, 2, v.GetValue())
	assert.Equal(t, 4, v.DomainSize())

	assert.Nil(t, v.SetValue(5))
	assert.Equal(t, 5, v.GetValue())

	err := v.SetValue(6)
	assert.NotNil(t, err)
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))
	assert.Equal(t, 5, v.GetValue())
}

func TestScoreOrdering(t *testing.T) {
	tests := []struct {
		a, b  Score
		lower bool
		equal bool
	}{
		{NewScore(0, 10), NewScore(1, 0), true, false},
		{NewScore(2, -5), NewScore(1, 100), false, false},
		{NewScore(1, 3), NewScore(1, 4), true, false},
		{NewScore(1, 3), NewScore(1, 3), false, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.lower, tt.a.IsLowerThan(tt.b), "%v < %v", tt.a, tt.b)
		assert.Equal(t, tt.equal, tt.a.IsEqualTo(tt.b))
		assert.Equal(t, !tt.lower && !tt.equal, tt.a.IsGreaterThan(tt.b))
	}
	assert.True(t, NewScore(0, 7).IsFeasible())
}

func TestBuilderBasic(t *testing.T) {
	b := NewBuilder()
	x := b.AddVariable("x", 0, 3)
	y := b.AddVariable("y", 0, 3)
	b.SetInitialValue(y, 2)
	b.AddConstraint(NewConstraintFunc("sum", []int{x, y}, sumEquals(4)))
	b.AddWeightedConstraint(NewConstraintFunc("x<=1", []int{x}, func(v []int) float64 {
		if v[0] > 1 {
			return float64(v[0] - 1)
		}
		return 0
	}), 2)
	m, err := b.Build()
	assert.Nil(t, err)
	assert.Equal(t, 2, m.NumVariables())
	assert.Equal(t, 2, m.NumConstraints())
	assert.False(t, m.HasObjective())
	assert.Equal(t, []int{0, 2}, m.InitialValues())
	assert.Equal(t, []int{0, 1}, m.ConstraintsOf(x))
	assert.Equal(t, []int{0}, m.ConstraintsOf(y))

	// x=3,y=3: |6-4| + 2*(3-1)
	assert.Equal(t, NewScore(6, 0), m.Evaluate([]int{3, 3}))
	assert.Equal(t, NewScore(0, 0), m.Evaluate([]int{1, 3}))
	assert.True(t, m.InDomain([]int{1, 3}))
	assert.False(t, m.InDomain([]int{4, 0}))
}

func TestBuilderFaults(t *testing.T) {
	{
		b := NewBuilder()
		b.AddVariable("x", 0, 1)
		b.AddConstraint(NewConstraintFunc("bad", []int{0, 1}, sumEquals(0)))
		_, err := b.Build()
		assert.NotNil(t, err)
		assert.Equal(t, "VariableIndexOutOfRange", err.(*kerror.Kerror).Type)
		assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))
	}
	{
		b := NewBuilder()
		b.AddVariable("x", 0, 1)
		b.AddConstraint(NewConstraintFunc("c", []int{0}, sumEquals(0)))
		assert.Equal(t, -1, b.AddVariable("late", 0, 1))
		_, err := b.Build()
		assert.Equal(t, "DeclarationOutOfOrder", err.(*kerror.Kerror).Type)
	}
	{
		b := NewBuilder()
		b.AddVariable("x", 3, 1)
		_, err := b.Build()
		assert.Equal(t, "EmptyDomain", err.(*kerror.Kerror).Type)
	}
	{
		b := NewBuilder()
		b.AddVariable("x", math.MinInt, math.MaxInt)
		_, err := b.Build()
		assert.Equal(t, "DomainTooLarge", err.(*kerror.Kerror).Type)
		assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))
	}
	{
		b := NewBuilder()
		b.AddVariable("x", 0, MaxDomainSize)
		_, err := b.Build()
		assert.Equal(t, "DomainTooLarge", err.(*kerror.Kerror).Type)
	}
	{
		b := NewBuilder()
		b.AddVariable("x", 0, 1)
		b.SetObjective(NullObjective{})
		b.SetObjective(NullObjective{})
		_, err := b.Build()
		assert.Equal(t, "ObjectiveRedeclared", err.(*kerror.Kerror).Type)
	}
	{
		b := NewBuilder()
		b.AddVariable("x", 0, 1)
		b.SetInitialValue(0, 9)
		_, err := b.Build()
		assert.Equal(t, "ValueOutOfDomain", err.(*kerror.Kerror).Type)
	}
}

type orderedDeclarer struct {
	lateVariable bool
}

func (d *orderedDeclarer) DeclareVariables(b *Builder) {
	b.AddVariable("a", 0, 9)
	b.AddVariable("b", 0, 9)
}

func (d *orderedDeclarer) DeclareConstraints(b *Builder) {
	if d.lateVariable {
		b.AddVariable("c", 0, 9)
	}
	b.AddConstraint(NewConstraintFunc("a+b=9", []int{0, 1}, sumEquals(9)))
}

func (d *orderedDeclarer) DeclareObjective(b *Builder) {
	b.SetObjective(NewObjectiveFunc("max a", Maximize, func(v []int) float64 { return float64(v[0]) }))
}

func TestBuildFromDeclarer(t *testing.T) {
	m, err := Build(&orderedDeclarer{})
	assert.Nil(t, err)
	assert.True(t, m.HasObjective())
	s := m.Evaluate([]int{7, 2})
	assert.Equal(t, 0.0, s.Error)
	// maximized objective is negated
	assert.Equal(t, -7.0, s.Cost)
	assert.Equal(t, 7.0, m.ObjectiveValue(s.Cost))

	_, err = Build(&orderedDeclarer{lateVariable: true})
	assert.NotNil(t, err)
	assert.Equal(t, "DeclarationOutOfOrder", err.(*kerror.Kerror).Type)
}

func TestDomainAtIntLimits(t *testing.T) {
	b := NewBuilder()
	b.AddVariable("top", math.MaxInt-2, math.MaxInt)
	b.AddVariable("bottom", math.MinInt, math.MinInt+MaxDomainSize-1)
	m, err := b.Build()
	assert.Nil(t, err)
	top := m.Variable(0)
	assert.Equal(t, 3, top.DomainSize())
	bottom := m.Variable(1)
	assert.Equal(t, MaxDomainSize, bottom.DomainSize())
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		assert.True(t, top.Contains(top.RandomValue(rnd)))
	}
}

func TestEmptyModel(t *testing.T) {
	m, err := NewBuilder().Build()
	assert.Nil(t, err)
	assert.Equal(t, 0, m.NumVariables())
	assert.Equal(t, NewScore(0, 0), m.Evaluate([]int{}))
}

func TestNegativeConstraintErrorPanics(t *testing.T) {
	b := NewBuilder()
	b.AddVariable("x", 0, 1)
	b.AddConstraint(NewConstraintFunc("neg", []int{0}, func([]int) float64 { return -1 }))
	m, err := b.Build()
	assert.Nil(t, err)
	assert.Panics(t, func() { m.Evaluate([]int{0}) })
}

func TestEvaluateIsPure(t *testing.T) {
	m, _ := Build(&orderedDeclarer{})
	values := []int{4, 4}
	first := m.Evaluate(values)
	second := m.Evaluate(values)
	assert.Equal(t, first, second)
	assert.Equal(t, []int{4, 4}, values)
}
