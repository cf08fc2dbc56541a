// Package saved exposes the save and favorite operations for signed-in users.
package saved

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"Civica/internal/auth"
	"Civica/internal/calc/session"
	"Civica/internal/calc/standards"
	"Civica/internal/repo"
)

type Handler struct {
	Repo     repo.Repository
	Registry *session.Registry
	Log      logrus.FieldLogger
}

type saveResponse struct {
	OK bool `json:"ok"`
	ID int  `json:"id,omitempty"`
}

type favoriteResponse struct {
	OK         bool `json:"ok"`
	IsFavorite bool `json:"is_favorite"`
}

// FromSnapshot converts a session snapshot into a stored record.
func FromSnapshot(snap session.Snapshot) (repo.SavedCalculation, error) {
	input, err := json.Marshal(snap.Input)
	if err != nil {
		return repo.SavedCalculation{}, err
	}
	var output json.RawMessage
	if snap.Output != nil {
		if output, err = json.Marshal(snap.Output); err != nil {
			return repo.SavedCalculation{}, err
		}
	}
	return repo.SavedCalculation{
		CalculatorID:   snap.CalculatorID,
		CalculatorName: snap.CalculatorName,
		IconKey:        snap.IconKey,
		InputSnapshot:  input,
		OutputSnapshot: output,
	}, nil
}

// Save stores a snapshot of the session. The session itself is never changed.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var snap session.Snapshot
	err := h.Registry.Do(mux.Vars(r)["id"], func(s *session.Session) error {
		snap = s.Snapshot()
		return nil
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, saveResponse{OK: false})
		return
	}

	rec, err := FromSnapshot(snap)
	if err == nil {
		rec.ID, err = h.Repo.SaveCalculation(r.Context(), userID, rec)
	}
	if err != nil {
		h.logger().WithError(err).WithField("calculator", snap.CalculatorID).Error("save calculation")
		writeJSON(w, http.StatusInternalServerError, saveResponse{OK: false})
		return
	}
	writeJSON(w, http.StatusCreated, saveResponse{OK: true, ID: rec.ID})
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	cat, err := h.Registry.Library().Catalog(mux.Vars(r)["calculator"])
	if errors.Is(err, standards.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, favoriteResponse{OK: false})
		return
	}
	calc := cat.Calculator()

	on, err := h.Repo.ToggleFavorite(r.Context(), userID, repo.Favorite{
		CalculatorID:   calc.ID,
		CalculatorName: calc.Name,
		IconKey:        calc.Icon,
		Category:       calc.Category,
	})
	if err != nil {
		h.logger().WithError(err).WithField("calculator", calc.ID).Error("toggle favorite")
		writeJSON(w, http.StatusInternalServerError, favoriteResponse{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{OK: true, IsFavorite: on})
}

func (h *Handler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	on, err := h.Repo.CheckFavorite(r.Context(), userID, mux.Vars(r)["calculator"])
	if err != nil {
		h.logger().WithError(err).Error("check favorite")
		writeJSON(w, http.StatusInternalServerError, favoriteResponse{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{OK: true, IsFavorite: on})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Repo.ListSaved(r.Context(), userID)
	if err != nil {
		h.logger().WithError(err).Error("list saved")
		writeJSON(w, http.StatusInternalServerError, map[string]bool{"ok": false})
		return
	}
	if list == nil {
		list = []repo.SavedCalculation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
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
