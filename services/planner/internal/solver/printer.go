package solver

import (
	"fmt"
	"strings"
)

// Printer renders a candidate assignment for diagnostics. It never influences the search.
type Printer interface {
	PrintCandidate(values []int) string
}

// DefaultPrinter prints one "name: value" line per variable.
type DefaultPrinter struct {
	Names []string
}

func NewDefaultPrinter(names []string) *DefaultPrinter {
	return &DefaultPrinter{Names: names}
}

func (p *DefaultPrinter) PrintCandidate(values []int) string {
	var sb strings.Builder
	for i, v := range values {
		name := fmt.Sprintf("v%d", i)
		if i < len(p.Names) && p.Names[i] != "" {
			name = p.Names[i]
		}
		fmt.Fprintf(&sb, "%s: %d\n", name, v)
	}
	return sb.String()
}
