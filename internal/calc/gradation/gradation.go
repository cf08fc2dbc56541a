package gradation

import (
	"math"

	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

type Status string

const (
	Pass Status = "pass"
	Fail Status = "fail"
)

// Sample is a sieve analysis input. Retained is keyed by sieve label, in grams.
type Sample struct {
	TotalWeight float64            `json:"total_weight"`
	Retained    map[string]float64 `json:"retained"`
}

// Ready reports whether the sample has a usable total weight.
func (s Sample) Ready() bool {
	return units.Finite(s.TotalWeight) > 0
}

// Result is the outcome for one sieve.
type Result struct {
	Label                     string  `json:"label"`
	SizeMM                    float64 `json:"size_mm"`
	MinPassing                float64 `json:"min_passing"`
	MaxPassing                float64 `json:"max_passing"`
	Retained                  float64 `json:"retained"`
	PercentRetained           float64 `json:"percent_retained"`
	CumulativePercentRetained float64 `json:"cumulative_percent_retained"`
	PercentPassing            float64 `json:"percent_passing"`
	Status                    Status  `json:"status"`
}

// Evaluate runs a sieve analysis against the standard's envelope. The walk is
// coarse to fine in envelope order; cumulative figures depend on that order.
// A sample without a positive total yields no results, and so does one whose
// percentages overflow.
func Evaluate(std standards.Standard, sample Sample) []Result {
	if !sample.Ready() {
		return nil
	}
	total := sample.TotalWeight

	out := make([]Result, 0, len(std.Sieves))
	cumulative := 0.0
	for _, sv := range std.Sieves {
		retained := math.Max(0, units.Finite(sample.Retained[sv.Label]))
		cumulative += retained

		cumPct := cumulative / total * 100
		pctRetained := retained / total * 100
		if !finite(cumPct, pctRetained) {
			return nil
		}
		passing := clamp(100-cumPct, 0, 100)

		status := Fail
		if sv.Accepts(passing) {
			status = Pass
		}
		out = append(out, Result{
			Label:                     sv.Label,
			SizeMM:                    sv.SizeMM,
			MinPassing:                sv.MinPassing,
			MaxPassing:                sv.MaxPassing,
			Retained:                  retained,
			PercentRetained:           pctRetained,
			CumulativePercentRetained: cumPct,
			PercentPassing:            passing,
			Status:                    status,
		})
	}
	return out
}

// Summary aggregates a set of sieve results.
type Summary struct {
	TotalRetained float64  `json:"total_retained"`
	PanWeight     float64  `json:"pan_weight"`
	PanPercent    float64  `json:"pan_percent"`
	AllPass       bool     `json:"all_pass"`
	Failures      []string `json:"failures,omitempty"`
}

// Summarize reports what is left in the pan and which sieves failed.
// It returns nil when results is empty.
func Summarize(results []Result, sample Sample) *Summary {
	if len(results) == 0 || !sample.Ready() {
		return nil
	}
	s := &Summary{AllPass: true}
	for _, r := range results {
		s.TotalRetained += r.Retained
		if r.Status == Fail {
			s.AllPass = false
			s.Failures = append(s.Failures, r.Label)
		}
	}
	s.PanWeight = math.Max(0, sample.TotalWeight-s.TotalRetained)
	s.PanPercent = s.PanWeight / sample.TotalWeight * 100
	return s
}

// Deviation is how far a passing percentage lies outside its band, 0 inside.
func (r Result) Deviation() float64 {
	switch {
	case r.PercentPassing < r.MinPassing:
		return r.MinPassing - r.PercentPassing
	case r.PercentPassing > r.MaxPassing:
		return r.PercentPassing - r.MaxPassing
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
