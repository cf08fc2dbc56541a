package gradation

import (
	"sort"

	"Civica/internal/calc/standards"
)

// Fit scores how well a sample matches one standard.
type Fit struct {
	StandardID string  `json:"standard_id"`
	Title      string  `json:"title"`
	Failures   int     `json:"failures"`
	Deviation  float64 `json:"deviation"`
	Matched    int     `json:"matched"`
}

// Recommend evaluates the sample against every standard of the catalog and
// ranks them: fewest failing sieves first, then smallest total deviation.
// Sieve labels the sample reports that a standard lacks count as unmatched.
func Recommend(cat *standards.Catalog, sample Sample) []Fit {
	if !sample.Ready() {
		return nil
	}
	var fits []Fit
	for _, std := range cat.Standards() {
		results := Evaluate(std, sample)
		fit := Fit{StandardID: std.ID, Title: std.Metadata.Title}
		for _, r := range results {
			if r.Status == Fail {
				fit.Failures++
			}
			fit.Deviation += r.Deviation()
		}
		for label, w := range sample.Retained {
			if _, ok := std.Sieve(label); ok {
				fit.Matched++
			} else if w > 0 {
				fit.Failures++
			}
		}
		fits = append(fits, fit)
	}
	sort.SliceStable(fits, func(i, j int) bool {
		if fits[i].Failures != fits[j].Failures {
			return fits[i].Failures < fits[j].Failures
		}
		return fits[i].Deviation < fits[j].Deviation
	})
	return fits
}
