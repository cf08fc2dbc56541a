package report

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"Civica/internal/calc/session"
)

type Handler struct {
	Registry *session.Registry
}

// Session renders the current state of a session as PDF.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	var snap session.Snapshot
	err := h.Registry.Do(mux.Vars(r)["id"], func(s *session.Session) error {
		snap = s.Snapshot()
		return nil
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, snap, time.Now()); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.CalculatorID+".pdf"))
	buf.WriteTo(w)
}
