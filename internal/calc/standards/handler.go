package standards

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	Library *Library
}

type catalogView struct {
	Calculator Calculator `json:"calculator"`
	Standards  []Summary  `json:"standards"`
}

func (h *Handler) Calculators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Library.Calculators())
}

func (h *Handler) Standards(w http.ResponseWriter, r *http.Request) {
	cat, err := h.Library.Catalog(mux.Vars(r)["calc"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, catalogView{Calculator: cat.Calculator(), Standards: cat.List()})
}

func (h *Handler) Standard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat, err := h.Library.Catalog(vars["calc"])
	if err != nil {
		writeError(w, err)
		return
	}
	std, err := cat.Get(vars["standard"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, std)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "Catalog error", http.StatusInternalServerError)
}
