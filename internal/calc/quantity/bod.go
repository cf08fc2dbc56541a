package quantity

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

// BODSample is one bottle pair: dissolved oxygen of sample and blank on day 0
// and after incubation, and the dilution factor, all in mg/L.
type BODSample struct {
	D1 float64 `json:"d1"`
	D5 float64 `json:"d5"`
	B1 float64 `json:"b1"`
	B5 float64 `json:"b5"`
	DF float64 `json:"df"`
}

type BODRow struct {
	SampleDepletion float64  `json:"sample_depletion"`
	BlankDepletion  float64  `json:"blank_depletion"`
	BOD             *float64 `json:"bod"` // nil when the row is not computed
}

type BODResult struct {
	Rows           []BODRow `json:"rows"`
	Average        *float64 `json:"average"`
	Computed       int      `json:"computed"`
	IncubationDays float64  `json:"incubation_days,omitempty"`
	TemperatureC   float64  `json:"temperature_c,omitempty"`
}

// BOD computes (sample depletion − blank depletion) × dilution factor per row,
// floored at 0. Rows without a positive D1 and dilution factor are skipped, as
// are rows whose arithmetic overflows.
// The average covers computed rows with a non-zero result.
func BOD(std standards.Standard, samples []BODSample) BODResult {
	res := BODResult{
		Rows:           make([]BODRow, 0, len(samples)),
		IncubationDays: std.Constant("incubation_days", 0),
		TemperatureC:   std.Constant("temperature_c", 0),
	}
	var nonZero []float64
	for _, s := range samples {
		d1, d5 := units.Finite(s.D1), units.Finite(s.D5)
		b1, b5 := units.Finite(s.B1), units.Finite(s.B5)
		df := units.Finite(s.DF)

		row := BODRow{SampleDepletion: d1 - d5, BlankDepletion: b1 - b5}
		v := math.Max(0, (row.SampleDepletion-row.BlankDepletion)*df)
		switch {
		case !finite(row.SampleDepletion, row.BlankDepletion, v):
			row = BODRow{}
		case d1 > 0 && df > 0:
			row.BOD = &v
			res.Computed++
			if v != 0 {
				nonZero = append(nonZero, v)
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if len(nonZero) > 0 {
		if avg := stat.Mean(nonZero, nil); finite(avg) {
			res.Average = &avg
		}
	}
	return res
}
