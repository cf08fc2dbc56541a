package importer

import (
	"encoding/json"
	"errors"
	"net/http"

	"Civica/internal/calc/gradation"
	"Civica/internal/calc/standards"
)

const MaxUploadSize = 10 << 20

type Handler struct {
	Library *standards.Library
}

type ImportResult struct {
	Standard string             `json:"standard"`
	Count    int                `json:"count"`
	Reports  []gradation.Report `json:"reports"`
}

// Gradation evaluates every sample of an uploaded workbook. Form fields:
// calculator, standard (optional) and file.
func (h *Handler) Gradation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	cat, err := h.Library.Catalog(r.FormValue("calculator"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	stdID := r.FormValue("standard")
	if stdID == "" {
		stdID = cat.Calculator().DefaultStandard
	}
	std, err := cat.Get(stdID)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if cat.Calculator().Family != standards.FamilyGradation {
		http.Error(w, "Calculator has no sieve envelope", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	samples, err := Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reports, err := gradation.Batch(std, samples)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := json.Marshal(ImportResult{Standard: std.ID, Count: len(reports), Reports: reports})
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, standards.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "Calculation error", http.StatusBadRequest)
}
