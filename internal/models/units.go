package models

import (
	"fmt"
	"strings"
)

const (
	lbsToKg = 0.453592
	kgToLbs = 2.20462
)

// ConvertWeight converts pounds to kilograms when toMetric is set, and
// kilograms to pounds otherwise.
func ConvertWeight(weight float64, toMetric bool) float64 {
	if toMetric {
		return weight * lbsToKg
	}
	return weight * kgToLbs
}

// Unit is the weight unit a client reads and writes. Stored weights are
// always kilograms.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lbs"
)

// UnitFor maps the useMetricSystem setting to a unit.
func UnitFor(metric bool) Unit {
	if metric {
		return Kilograms
	}
	return Pounds
}

// ParseUnit accepts kg or lbs (also lb), ignoring case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kg":
		return Kilograms, nil
	case "lbs", "lb":
		return Pounds, nil
	}
	return "", fmt.Errorf("unknown weight unit %q", s)
}

// FromKg converts a stored kilogram value into u.
func (u Unit) FromKg(kg float64) float64 {
	if u == Pounds {
		return ConvertWeight(kg, false)
	}
	return kg
}

// ToKg converts a value given in u into kilograms.
func (u Unit) ToKg(w float64) float64 {
	if u == Pounds {
		return ConvertWeight(w, true)
	}
	return w
}

func (u Unit) fromKgPtr(kg *float64) *float64 {
	if kg == nil {
		return nil
	}
	return Float(u.FromKg(*kg))
}

// InUnit returns a copy of s with its weight expressed in u.
func (s WorkoutSet) InUnit(u Unit) WorkoutSet {
	s.Weight = u.fromKgPtr(s.Weight)
	return s
}

// InUnit returns a copy of in with its weight converted from u to kilograms.
func (in SetInput) InUnit(u Unit) SetInput {
	if in.Weight != nil {
		in.Weight = Float(u.ToKg(*in.Weight))
	}
	return in
}

// InUnit returns a copy of pr with its value in u. Total reps records are
// counts and stay as they are.
func (pr PersonalRecord) InUnit(u Unit) PersonalRecord {
	if pr.Type != TotalReps {
		pr.Value = u.FromKg(pr.Value)
	}
	return pr
}

// SetsInUnit converts every set in list.
func SetsInUnit(list []WorkoutSet, u Unit) []WorkoutSet {
	out := make([]WorkoutSet, len(list))
	for i, s := range list {
		out[i] = s.InUnit(u)
	}
	return out
}

// RecordsInUnit converts every record in list.
func RecordsInUnit(list []PersonalRecord, u Unit) []PersonalRecord {
	out := make([]PersonalRecord, len(list))
	for i, pr := range list {
		out[i] = pr.InUnit(u)
	}
	return out
}
