package quantity

import (
	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

// AreaRate computes L × W and the material needed at the selected spray rate.
func AreaRate(std standards.Standard, in Input) (Result, bool) {
	l := in.Geometry.Meters("length")
	w := in.Geometry.Meters("width")
	rr, rate, ok := SelectedRate(std, in.Key, in.Rate)
	if !ok || l <= 0 || w <= 0 || rate <= 0 {
		return Result{}, false
	}

	res := Result{Family: standards.FamilyAreaRate}
	area := l * w
	res.add("area_m2", area, "m²")
	res.add("area_ft2", area*units.SquareMeterToSquareFeet, "ft²")
	res.add("rate", rate, rr.Unit)

	unit := rr.QuantityUnit
	if unit == "" {
		unit = "kg"
	}
	qty := area * rate
	res.add("quantity", qty, unit)
	if unit == "kg" {
		res.add("quantity_t", qty/1000, "t")
	}
	return res, res.finite()
}
