package rts

import (
	"math"
	"strings"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
)

// Phi is the risk attitude used to weight sorted scenario scores.
type Phi int

const (
	PhiNeutral Phi = iota
	PhiOptimistic
	PhiPessimistic
)

func (p Phi) String() string {
	switch p {
	case PhiOptimistic:
		return "optimistic"
	case PhiPessimistic:
		return "pessimistic"
	default:
		return "neutral"
	}
}

// Apply maps a rank position p in [0,1] to a weight in [0,1].
func (p Phi) Apply(x float64) float64 {
	switch p {
	case PhiOptimistic:
		return logit(10, x)
	case PhiPessimistic:
		return logistic(10, 1.3, x)
	default:
		return x
	}
}

func logistic(lambda float64, shift float64, x float64) float64 {
	return 1.0 / (1 + math.Exp(-lambda*(2*x-shift)))
}

func logit(lambda float64, x float64) float64 {
	if x < 0.005 {
		return 0
	}
	if x > 0.995 {
		return 1
	}
	return math.Max(0, 1+math.Log(x/(2-x))/lambda)
}

// ParsePhi accepts neutral (or identity), optimistic and pessimistic.
func ParsePhi(str string) (Phi, error) {
	switch strings.ToLower(str) {
	case "", "neutral", "identity":
		return PhiNeutral, nil
	case "optimistic":
		return PhiOptimistic, nil
	case "pessimistic":
		return PhiPessimistic, nil
	}
	return PhiNeutral, kerror.Create("UnknownRiskAttitude", "risk attitude must be neutral, optimistic or pessimistic").With("str", str).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}

// PhiFromSolverType maps the bot's numeric solver type: 1 optimistic, 2 pessimistic, anything else neutral.
func PhiFromSolverType(solverType int) Phi {
	switch solverType {
	case 1:
		return PhiOptimistic
	case 2:
		return PhiPessimistic
	default:
		return PhiNeutral
	}
}
