package quantity

import (
	"errors"
	"fmt"
	"math"

	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

// MaxCount bounds counted inputs such as staircase risers.
const MaxCount = 1000

var ErrCountRange = errors.New("count out of range")

// Count turns a coerced number into a count. Fractions truncate toward zero
// and negatives become 0; values above MaxCount are rejected.
func Count(v float64) (int, error) {
	if !finite(v) || v > MaxCount {
		return 0, fmt.Errorf("%v: %w (max %d)", v, ErrCountRange, MaxCount)
	}
	if v < 0 {
		return 0, nil
	}
	return int(math.Trunc(v)), nil
}

// Geometry holds dimensional pairs by name ("length", "width", ...) in one unit system.
type Geometry struct {
	System     units.System          `json:"system"`
	Dimensions map[string]units.Pair `json:"dimensions"`
}

// Meters returns a dimension in meters; a missing dimension is 0.
func (g Geometry) Meters(name string) float64 {
	return g.Dimensions[name].Meters(g.System)
}

// Input is everything the closed-form families read besides the standard.
type Input struct {
	Geometry Geometry `json:"geometry"`
	Key      string   `json:"key,omitempty"`   // rate or density key
	Rate     *float64 `json:"rate,omitempty"`  // overrides the selected rate when set
	Count    int      `json:"count,omitempty"` // staircase risers
}

type Quantity struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Result struct {
	Family     standards.Family `json:"family"`
	Quantities []Quantity       `json:"quantities"`
}

// Value looks a quantity up by name.
func (r Result) Value(name string) (float64, bool) {
	for _, q := range r.Quantities {
		if q.Name == name {
			return q.Value, true
		}
	}
	return 0, false
}

// finite reports whether every quantity is a finite number. Results that
// overflow are treated as not computed.
func (r Result) finite() bool {
	for _, q := range r.Quantities {
		if !finite(q.Value) {
			return false
		}
	}
	return true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (r *Result) add(name string, value float64, unit string) {
	r.Quantities = append(r.Quantities, Quantity{Name: name, Value: value, Unit: unit})
}

// Evaluate runs the family's formula. The boolean is false when the input does
// not satisfy the family's preconditions; that is not an error.
func Evaluate(family standards.Family, std standards.Standard, in Input) (Result, bool, error) {
	switch family {
	case standards.FamilyVolumetric:
		r, ok := Volumetric(std, in)
		return r, ok, nil
	case standards.FamilyAreaRate:
		r, ok := AreaRate(std, in)
		return r, ok, nil
	case standards.FamilyStaircase:
		r, ok := Staircase(std, in)
		return r, ok, nil
	}
	return Result{}, false, fmt.Errorf("family %q has no geometric formula", family)
}

// SelectedRate resolves the rate entry for key, falling back to the first
// entry, and the numeric rate to use: the override when set, else the lower
// bound of the range.
func SelectedRate(std standards.Standard, key string, override *float64) (standards.RateRange, float64, bool) {
	rr, ok := std.Rate(key)
	if !ok {
		rr, ok = std.DefaultRate()
	}
	if !ok {
		return standards.RateRange{}, 0, false
	}
	if override != nil {
		return rr, units.Finite(*override), true
	}
	return rr, rr.Min, true
}
