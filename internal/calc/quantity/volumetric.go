package quantity

import (
	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

// Volumetric computes L × W × D and, when the standard has a density table,
// the mass of material for that volume.
func Volumetric(std standards.Standard, in Input) (Result, bool) {
	l := in.Geometry.Meters("length")
	w := in.Geometry.Meters("width")
	d := in.Geometry.Meters("depth")
	if l <= 0 || w <= 0 || d <= 0 {
		return Result{}, false
	}

	res := Result{Family: standards.FamilyVolumetric}
	volume := l * w * d
	res.add("volume_m3", volume, "m³")
	res.add("volume_ft3", volume*units.CubicMeterToCubicFeet, "ft³")

	if rr, density, ok := SelectedRate(std, in.Key, in.Rate); ok && density > 0 {
		kg := volume * density
		res.add("density", density, rr.Unit)
		res.add("total_quantity_kg", kg, "kg")
		res.add("total_quantity_t", kg/1000, "t")
	}
	return res, res.finite()
}
