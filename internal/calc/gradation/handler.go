package gradation

import (
	"encoding/json"
	"errors"
	"net/http"

	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

type Input struct {
	Calculator  string         `json:"calculator"`
	Standard    string         `json:"standard"`
	TotalWeight any            `json:"total_weight"`
	Retained    map[string]any `json:"retained"`
}

// Sample coerces the raw fields; malformed numbers become 0.
func (in Input) Sample() Sample {
	s := Sample{
		TotalWeight: units.Coerce(in.TotalWeight),
		Retained:    make(map[string]float64, len(in.Retained)),
	}
	for k, v := range in.Retained {
		s.Retained[k] = units.Coerce(v)
	}
	return s
}

type Output struct {
	Standard string   `json:"standard"`
	Results  []Result `json:"results"`
	Summary  *Summary `json:"summary"`
}

type Handler struct {
	Library *standards.Library
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	cat, err := h.Library.Catalog(input.Calculator)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if input.Standard == "" {
		input.Standard = cat.Calculator().DefaultStandard
	}
	std, err := cat.Get(input.Standard)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	sample := input.Sample()
	results := Evaluate(std, sample)
	writeJSON(w, http.StatusOK, Output{
		Standard: std.ID,
		Results:  results,
		Summary:  Summarize(results, sample),
	})
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	cat, err := h.Library.Catalog(input.Calculator)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Recommend(cat, input.Sample()))
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, standards.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "Calculation error", http.StatusBadRequest)
}

// writeJSON encodes before writing so an encoding failure can still become a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
