package quantity

import (
	"math"

	"Civica/internal/calc/standards"
)

// Staircase material constants; a standard may override any of them by name.
const (
	DryVolumeFactor      = 1.524 // dry volume / wet volume
	CementBagVolume      = 0.035 // m³ per 50 kg bag
	SandTonnesPerM3      = 1.6
	AggregateTonnesPerM3 = 1.5
)

// Staircase computes the concrete in a flight of n steps on a waist slab and
// splits its dry volume into cement bags, sand and aggregate by the mix ratio.
func Staircase(std standards.Standard, in Input) (Result, bool) {
	riser := in.Geometry.Meters("riser")
	tread := in.Geometry.Meters("tread")
	width := in.Geometry.Meters("width")
	waist := math.Max(0, in.Geometry.Meters("waist"))
	n := float64(in.Count)
	if riser <= 0 || tread <= 0 || width <= 0 || n <= 0 || std.Mix == nil || std.Mix.Parts() <= 0 {
		return Result{}, false
	}

	steps := 0.5 * riser * tread * width * n
	slant := math.Hypot(riser*n, tread*n)
	slab := slant * width * waist
	wet := steps + slab
	dry := wet * std.Constant("dry_volume_factor", DryVolumeFactor)

	mix := *std.Mix
	parts := mix.Parts()
	cement := dry * mix.Cement / parts
	sand := dry * mix.Sand / parts
	aggregate := dry * mix.Aggregate / parts

	res := Result{Family: standards.FamilyStaircase}
	res.add("steps_m3", steps, "m³")
	res.add("slant_length_m", slant, "m")
	res.add("waist_slab_m3", slab, "m³")
	res.add("wet_volume_m3", wet, "m³")
	res.add("dry_volume_m3", dry, "m³")
	res.add("cement_m3", cement, "m³")
	res.add("cement_bags", math.Ceil(cement/std.Constant("cement_bag_m3", CementBagVolume)), "bags")
	res.add("sand_m3", sand, "m³")
	res.add("sand_t", sand*std.Constant("sand_t_per_m3", SandTonnesPerM3), "t")
	res.add("aggregate_m3", aggregate, "m³")
	res.add("aggregate_t", aggregate*std.Constant("aggregate_t_per_m3", AggregateTonnesPerM3), "t")
	return res, res.finite()
}
