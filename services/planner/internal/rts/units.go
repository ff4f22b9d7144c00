package rts

import (
	"strings"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

type UnitType int

const (
	Heavy UnitType = iota
	Light
	Ranged
)

var AllUnitTypes = []UnitType{Heavy, Light, Ranged}

func (u UnitType) String() string {
	switch u {
	case Heavy:
		return "heavy"
	case Light:
		return "light"
	default:
		return "ranged"
	}
}

// Letter is the upper case initial used in variable names.
func (u UnitType) Letter() string {
	return strings.ToUpper(u.String()[:1])
}

// UnitCounts is indexed by UnitType.
type UnitCounts [3]int

func (c UnitCounts) Total() int {
	return c[Heavy] + c[Light] + c[Ranged]
}

func ParseUnitType(str string) (UnitType, error) {
	for _, u := range AllUnitTypes {
		if strings.EqualFold(u.String(), str) {
			return u, nil
		}
	}
	return Heavy, kerror.Create("UnknownUnitType", "unit type must be heavy, light or ranged").With("str", str).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}
