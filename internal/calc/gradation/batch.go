package gradation

import (
	"fmt"

	"Civica/internal/calc/standards"
)

// NamedSample is a sample with an identifier from a lab sheet.
type NamedSample struct {
	Name string `json:"name"`
	Sample
}

// Report is the evaluation of one NamedSample.
type Report struct {
	Name    string   `json:"name"`
	Ready   bool     `json:"ready"`
	Results []Result `json:"results"`
	Summary *Summary `json:"summary,omitempty"`
}

// Batch evaluates several samples against one standard, keeping input order.
func Batch(std standards.Standard, samples []NamedSample) ([]Report, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples")
	}
	out := make([]Report, 0, len(samples))
	for _, s := range samples {
		results := Evaluate(std, s.Sample)
		out = append(out, Report{
			Name:    s.Name,
			Ready:   s.Ready(),
			Results: results,
			Summary: Summarize(results, s.Sample),
		})
	}
	return out, nil
}
