package rts

import (
	"math"
)

// Stock: the production of H, L and R units must fit in the available resources.
// error = max(0, heavyCost*H + lightCost*L + rangedCost*R - resources)
type Stock struct {
	scope     []int
	costs     UnitCounts
	resources int
}

// NewStock: scope holds the production variables in heavy, light, ranged order.
func NewStock(scope [3]int, costs UnitCounts, resources int) *Stock {
	return &Stock{
		scope:     scope[:],
		costs:     costs,
		resources: resources,
	}
}

func (c *Stock) Name() string { return "Stock" }
func (c *Stock) Scope() []int { return c.scope }

func (c *Stock) RequiredError(values []int) float64 {
	spent := 0
	for i, u := range AllUnitTypes {
		spent += c.costs[u] * values[i]
	}
	return math.Max(0, float64(spent-c.resources))
}

// Assignment: the units of one type sent against heavy, light and ranged enemies must equal
// the units owned plus the units produced.
// error = |assigned - (possessed + produced)|
type Assignment struct {
	name      string
	scope     []int
	possessed int
}

// NewAssignment: scope is the three assignment variables followed by the production variable.
func NewAssignment(unit UnitType, scope [4]int, possessed int) *Assignment {
	return &Assignment{
		name:      "Assignment_" + unit.Letter(),
		scope:     scope[:],
		possessed: possessed,
	}
}

func (c *Assignment) Name() string { return c.name }
func (c *Assignment) Scope() []int { return c.scope }

func (c *Assignment) RequiredError(values []int) float64 {
	assigned := values[0] + values[1] + values[2]
	own := c.possessed + values[3]
	return math.Abs(float64(assigned - own))
}

// ProductionCapacity: barracks bound how many units can be queued.
// error = max(0, H + L + R - barracks*unitsPerBarracks)
type ProductionCapacity struct {
	scope            []int
	barracks         int
	unitsPerBarracks int
}

func NewProductionCapacity(scope [3]int, barracks int, unitsPerBarracks int) *ProductionCapacity {
	return &ProductionCapacity{
		scope:            scope[:],
		barracks:         barracks,
		unitsPerBarracks: unitsPerBarracks,
	}
}

func (c *ProductionCapacity) Name() string { return "ProductionCapacity" }
func (c *ProductionCapacity) Scope() []int { return c.scope }

func (c *ProductionCapacity) RequiredError(values []int) float64 {
	queued := values[0] + values[1] + values[2]
	return math.Max(0, float64(queued-c.barracks*c.unitsPerBarracks))
}
