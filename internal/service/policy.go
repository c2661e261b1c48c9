package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

type Volatility string

const (
	// Stable fields should not change between turns (age, gender).
	Stable Volatility = "stable"
	// Mutable fields may legitimately change over time (income, state).
	Mutable Volatility = "mutable"
)

// FieldPolicy decides when a new value for a confirmed field is an update
// and when it contradicts what the user said before.
type FieldPolicy struct {
	Volatility Volatility
	// Tolerance is the numeric drift accepted as an update. Zero means the
	// values must match exactly.
	Tolerance float64
	// Exclusive makes the tolerance a strict upper bound.
	Exclusive bool
	Kind      domain.ContradictionType
}

// Conflicts reports whether replacing prev with next must raise a contradiction.
func (p FieldPolicy) Conflicts(prev, next any) bool {
	if p.Tolerance > 0 {
		o, okOld := number(prev)
		n, okNew := number(next)
		if okOld && okNew {
			d := math.Abs(o - n)
			if p.Exclusive {
				return d >= p.Tolerance
			}
			return d > p.Tolerance
		}
	}
	return !sameValue(prev, next)
}

// DefaultPolicies builds the per-field policy table.
func DefaultPolicies(ageTolerance, incomeTolerance int) map[domain.Field]FieldPolicy {
	return map[domain.Field]FieldPolicy{
		domain.FieldAge:        {Volatility: Stable, Tolerance: float64(ageTolerance), Kind: domain.ContradictionValue},
		domain.FieldGender:     {Volatility: Stable, Kind: domain.ContradictionValue},
		domain.FieldCategory:   {Volatility: Stable, Kind: domain.ContradictionValue},
		domain.FieldDisability: {Volatility: Stable, Kind: domain.ContradictionLogical},
		domain.FieldIncome: {
			Volatility: Mutable,
			Tolerance:  float64(incomeTolerance),
			Exclusive:  true,
			Kind:       domain.ContradictionTemporal,
		},
		domain.FieldState:      {Volatility: Mutable, Kind: domain.ContradictionTemporal},
		domain.FieldArea:       {Volatility: Mutable, Kind: domain.ContradictionTemporal},
		domain.FieldOccupation: {Volatility: Mutable, Kind: domain.ContradictionTemporal},
		domain.FieldBPL:        {Volatility: Mutable, Kind: domain.ContradictionLogical},
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func sameValue(a, b any) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	if x, ok := a.(string); ok {
		y, ok := b.(string)
		return ok && strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y))
	}
	if x, ok := a.(bool); ok {
		y, ok := b.(bool)
		return ok && x == y
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
