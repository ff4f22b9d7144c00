package rts

import (
	"fmt"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/services/planner/internal/model"
)

const (
	// per type, extra units on top of owned ones that may be assigned (i.e. produced)
	MaxProduction = 20
	NumVariables  = 12
)

// AssignIndex is the variable index of "mine assigned against enemy": 3*enemy + mine.
func AssignIndex(mine UnitType, enemy UnitType) int {
	return 3*int(enemy) + int(mine)
}

// ProduceIndex is the variable index of the production order for unit.
func ProduceIndex(unit UnitType) int {
	return 9 + int(unit)
}

// Params describes one production decision.
type Params struct {
	RiskAttitude Phi
	MyUnits      UnitCounts
	UnitCosts    UnitCounts
	Resources    int
	// 0 means unknown: no production capacity constraint
	NbBarracks       int
	UnitsPerBarracks int
	// sampled enemy compositions; the objective is 0 when empty
	Samples    []UnitCounts
	Efficiency [3][3]float64
}

func NewParams() Params {
	return Params{
		RiskAttitude:     PhiNeutral,
		UnitCosts:        UnitCounts{Heavy: 3, Light: 2, Ranged: 2},
		UnitsPerBarracks: 1,
		Efficiency:       DefaultEfficiency,
	}
}

func (p Params) Validate() error {
	for _, u := range AllUnitTypes {
		if p.MyUnits[u] < 0 {
			return invalidParam("MyUnits."+u.String(), p.MyUnits[u])
		}
		if p.UnitCosts[u] <= 0 {
			return invalidParam("UnitCosts."+u.String(), p.UnitCosts[u])
		}
	}
	if p.Resources < 0 {
		return invalidParam("Resources", p.Resources)
	}
	if p.NbBarracks < 0 {
		return invalidParam("NbBarracks", p.NbBarracks)
	}
	if p.NbBarracks > 0 && p.UnitsPerBarracks <= 0 {
		return invalidParam("UnitsPerBarracks", p.UnitsPerBarracks)
	}
	for i, s := range p.Samples {
		for _, u := range AllUnitTypes {
			if s[u] < 0 {
				return invalidParam(fmt.Sprintf("Samples[%d].%s", i, u), s[u])
			}
		}
	}
	return nil
}

func invalidParam(name string, val interface{}) *kerror.Kerror {
	return kerror.Create("InvalidProblemParam", "problem parameter out of range").With("param", name).With("value", val).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}

// Builder declares the 12 variable production model.
// Variables 0..8 are assign_<Mine><enemy> laid out by enemy (h, l, r), 9..11 are to_prod_<Type>.
type Builder struct {
	params Params
}

func NewBuilder(params Params) *Builder {
	return &Builder{params: params}
}

func (b *Builder) DeclareVariables(mb *model.Builder) {
	for _, enemy := range AllUnitTypes {
		for _, mine := range AllUnitTypes {
			name := fmt.Sprintf("assign_%s%s", mine.Letter(), enemy.String()[:1])
			mb.AddVariable(name, 0, MaxProduction+b.params.MyUnits[mine])
		}
	}
	for _, u := range AllUnitTypes {
		mb.AddVariable("to_prod_"+u.Letter(), 0, MaxProduction)
	}
}

func (b *Builder) DeclareConstraints(mb *model.Builder) {
	production := [3]int{ProduceIndex(Heavy), ProduceIndex(Light), ProduceIndex(Ranged)}
	for _, mine := range AllUnitTypes {
		scope := [4]int{AssignIndex(mine, Heavy), AssignIndex(mine, Light), AssignIndex(mine, Ranged), ProduceIndex(mine)}
		mb.AddConstraint(NewAssignment(mine, scope, b.params.MyUnits[mine]))
	}
	mb.AddConstraint(NewStock(production, b.params.UnitCosts, b.params.Resources))
	if b.params.NbBarracks > 0 {
		mb.AddConstraint(NewProductionCapacity(production, b.params.NbBarracks, b.params.UnitsPerBarracks))
	}
}

func (b *Builder) DeclareObjective(mb *model.Builder) {
	var idx [3][3]int
	for _, enemy := range AllUnitTypes {
		for _, mine := range AllUnitTypes {
			idx[enemy][mine] = AssignIndex(mine, enemy)
		}
	}
	mb.SetObjective(NewBestComposition(idx, b.params.Efficiency, b.params.Samples, b.params.RiskAttitude))
}

// BuildModel validates params and builds the model.
func BuildModel(params Params) (*model.Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return model.Build(NewBuilder(params))
}

// Decision is the readable form of a solved assignment.
type Decision struct {
	// Assigned[mine][enemy]
	Assigned [3][3]int
	Produce  UnitCounts
}

func DecisionFromValues(values []int) Decision {
	var d Decision
	for _, mine := range AllUnitTypes {
		for _, enemy := range AllUnitTypes {
			d.Assigned[mine][enemy] = values[AssignIndex(mine, enemy)]
		}
		d.Produce[mine] = values[ProduceIndex(mine)]
	}
	return d
}
