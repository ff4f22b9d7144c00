package rts

import (
	"fmt"
	"strings"
)

// Printer renders the assignment matrix and production orders of a candidate.
type Printer struct{}

func NewPrinter() *Printer {
	return &Printer{}
}

func (p *Printer) PrintCandidate(values []int) string {
	if len(values) != NumVariables {
		return fmt.Sprintf("unexpected candidate size %d", len(values))
	}
	d := DecisionFromValues(values)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s %8s %8s %8s\n", "", "vs heavy", "vs light", "vs ranged")
	for _, mine := range AllUnitTypes {
		fmt.Fprintf(&sb, "%-8s %8d %8d %8d\n", mine, d.Assigned[mine][Heavy], d.Assigned[mine][Light], d.Assigned[mine][Ranged])
	}
	fmt.Fprintf(&sb, "produce: heavy=%d light=%d ranged=%d\n", d.Produce[Heavy], d.Produce[Light], d.Produce[Ranged])
	return sb.String()
}
