package quantity

import (
	"encoding/json"
	"errors"
	"net/http"

	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

// RawPair is a dimension as posted by a form; either component may be text.
type RawPair struct {
	Primary   any `json:"primary"`
	Secondary any `json:"secondary"`
}

type Request struct {
	Calculator string             `json:"calculator"`
	Standard   string             `json:"standard"`
	System     string             `json:"system"`
	Dimensions map[string]RawPair `json:"dimensions"`
	Key        string             `json:"key"`
	Rate       any                `json:"rate"`
	Count      any                `json:"count"`
}

// Input coerces the raw fields. Only an out-of-range count is an error.
func (req Request) Input() (Input, error) {
	g := Geometry{
		System:     units.ParseSystem(req.System),
		Dimensions: make(map[string]units.Pair, len(req.Dimensions)),
	}
	for name, p := range req.Dimensions {
		g.Dimensions[name] = units.Pair{
			Primary:   units.Coerce(p.Primary),
			Secondary: units.Coerce(p.Secondary),
		}
	}
	count, err := Count(units.Coerce(req.Count))
	if err != nil {
		return Input{}, err
	}
	in := Input{
		Geometry: g,
		Key:      req.Key,
		Count:    count,
	}
	if req.Rate != nil {
		rate := units.Coerce(req.Rate)
		in.Rate = &rate
	}
	return in, nil
}

type Response struct {
	Standard string  `json:"standard"`
	Computed bool    `json:"computed"`
	Result   *Result `json:"result"`
}

type BODRequest struct {
	Standard string           `json:"standard"`
	Samples  []map[string]any `json:"samples"`
}

type Handler struct {
	Library *standards.Library
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	cat, std, err := h.lookup(req.Calculator, req.Standard)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, ok, err := Evaluate(cat.Calculator().Family, std, in)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	out := Response{Standard: std.ID, Computed: ok}
	if ok {
		out.Result = &res
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) BOD(w http.ResponseWriter, r *http.Request) {
	var req BODRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	_, std, err := h.lookup("bod", req.Standard)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	samples := make([]BODSample, 0, len(req.Samples))
	for _, raw := range req.Samples {
		samples = append(samples, BODSample{
			D1: units.Coerce(raw["d1"]),
			D5: units.Coerce(raw["d5"]),
			B1: units.Coerce(raw["b1"]),
			B5: units.Coerce(raw["b5"]),
			DF: units.Coerce(raw["df"]),
		})
	}
	writeJSON(w, http.StatusOK, BOD(std, samples))
}

func (h *Handler) lookup(calculator, id string) (*standards.Catalog, standards.Standard, error) {
	cat, err := h.Library.Catalog(calculator)
	if err != nil {
		return nil, standards.Standard{}, err
	}
	if id == "" {
		id = cat.Calculator().DefaultStandard
	}
	std, err := cat.Get(id)
	if err != nil {
		return nil, standards.Standard{}, err
	}
	return cat, std, nil
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, standards.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "Calculation error", http.StatusBadRequest)
}

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
