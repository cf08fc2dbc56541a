package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// System is the unit system a dimensional pair is entered in.
type System string

const (
	Meter System = "meter" // primary meters, secondary centimeters
	Feet  System = "feet"  // primary feet, secondary inches
)

// Conversion constants. Values are fixed for compatibility with saved calculations.
const (
	CubicMeterToCubicFeet   = 35.3147
	SquareMeterToSquareFeet = 10.7639
	InchToMeter             = 0.0254
	FootToMeter             = 0.3048

	centimetersPerMeter = 100.0
	inchesPerFoot       = 12.0
)

// Pair is a dual-component dimension such as 3 m 25 cm or 10 ft 6 in.
type Pair struct {
	Primary   float64 `json:"primary" yaml:"primary"`
	Secondary float64 `json:"secondary" yaml:"secondary"`
}

// ParseSystem maps free-form input to a System. Anything that is not feet is meters.
func ParseSystem(s string) System {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "feet", "ft", "foot", "imperial":
		return Feet
	default:
		return Meter
	}
}

// ToMeters converts a (primary, secondary) pair into meters. Non-finite
// components count as 0.
func ToMeters(primary, secondary float64, system System) float64 {
	p, s := Finite(primary), Finite(secondary)
	if system == Feet {
		return (p + s/inchesPerFoot) * FootToMeter
	}
	return p + s/centimetersPerMeter
}

// Meters is ToMeters for a Pair.
func (p Pair) Meters(system System) float64 {
	return ToMeters(p.Primary, p.Secondary, system)
}

// FromMeters splits a length in meters into whole primary units plus the
// remainder in secondary units.
func FromMeters(m float64, system System) (primary, secondary float64) {
	m = Finite(m)
	total, per := m, centimetersPerMeter
	if system == Feet {
		total, per = m/FootToMeter, inchesPerFoot
	}
	sign := 1.0
	if total < 0 {
		sign, total = -1, -total
	}
	// absorb float noise such as 2.9999999999 ft
	primary = math.Floor(total + 1e-9)
	secondary = math.Max(0, (total-primary)*per)
	return sign * primary, sign * secondary
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Coerce turns any user-entered value into a finite number. Absent and
// malformed values become 0.
func Coerce(v any) float64 {
	f, _ := CoerceStrict(v)
	return f
}

// CoerceStrict is Coerce that also reports whether v was usable. Absent values
// (nil, empty text) count as usable zeros; text that is not a number does not.
func CoerceStrict(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, true
		}
		v = t
	case *float64:
		if t == nil {
			return 0, true
		}
		v = *t
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatLength renders meters in the given system, e.g. "3 m 25 cm" or "10 ft 6 in".
func FormatLength(m float64, system System) string {
	p, s := FromMeters(m, system)
	if system == Feet {
		return fmt.Sprintf("%.0f ft %.2f in", p, s)
	}
	return fmt.Sprintf("%.0f m %.2f cm", p, s)
}
