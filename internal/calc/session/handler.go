package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"Civica/internal/calc/quantity"
	"Civica/internal/calc/standards"
)

type View struct {
	ID         string               `json:"id"`
	Calculator standards.Calculator `json:"calculator"`
	Standard   standards.Standard   `json:"standard"`
	State      State                `json:"state"`
	Input      Inputs               `json:"input"`
	Result     *Result              `json:"result"`
	Warnings   []string             `json:"warnings,omitempty"`
}

func viewOf(id string, s *Session) View {
	return View{
		ID:         id,
		Calculator: s.Calculator(),
		Standard:   s.Standard(),
		State:      s.State(),
		Input:      s.Inputs(),
		Result:     s.Result(),
		Warnings:   s.Warnings(),
	}
}

type createRequest struct {
	Calculator string `json:"calculator"`
}

type Handler struct {
	Registry *Registry
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	id, err := h.Registry.Create(req.Calculator)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, id, http.StatusCreated, nil)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, mux.Vars(r)["id"], http.StatusOK, nil)
}

// Events applies one event or a JSON array of events in order. Application
// stops at the first rejected event; the events before it stay applied.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := decodeEvents(r.Body)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	h.respond(w, mux.Vars(r)["id"], http.StatusOK, func(s *Session) error {
		for _, ev := range events {
			if err := s.Apply(ev); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, mux.Vars(r)["id"], http.StatusOK, (*Session).Reset)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Delete(mux.Vars(r)["id"]) {
		http.Error(w, ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respond(w http.ResponseWriter, id string, status int, fn func(*Session) error) {
	var view View
	err := h.Registry.Do(id, func(s *Session) error {
		if fn != nil {
			if err := fn(s); err != nil {
				return err
			}
		}
		view = viewOf(id, s)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := json.Marshal(view)
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func decodeEvents(body io.Reader) ([]Event, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var events []Event
		err := json.Unmarshal(raw, &events)
		return events, err
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	return []Event{ev}, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, standards.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnknownSieve), errors.Is(err, ErrUnknownField), errors.Is(err, quantity.ErrCountRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Calculation error", http.StatusInternalServerError)
	}
}
