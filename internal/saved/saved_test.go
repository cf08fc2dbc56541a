package saved

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Civica/internal/auth"
	"Civica/internal/calc/session"
	"Civica/internal/calc/standards"
	"Civica/internal/repo"
)

type failingRepo struct {
	repo.Repository
}

func (failingRepo) SaveCalculation(context.Context, int, repo.SavedCalculation) (int, error) {
	return 0, errors.New("disk full")
}

func (failingRepo) ToggleFavorite(context.Context, int, repo.Favorite) (bool, error) {
	return false, errors.New("disk full")
}

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/sessions/{id}/save", h.Save).Methods("POST")
	r.HandleFunc("/favorites/{calculator}", h.ToggleFavorite).Methods("POST")
	r.HandleFunc("/favorites/{calculator}", h.CheckFavorite).Methods("GET")
	r.HandleFunc("/saved", h.List).Methods("GET")
	return r
}

func call(r http.Handler, method, path string, userID int) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSaveAndList(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	id, err := reg.Create("asphalt")
	require.NoError(t, err)
	require.NoError(t, reg.Do(id, func(s *session.Session) error {
		for name, v := range map[string]float64{"length": 10, "width": 3.5, "depth": 0.2} {
			if err := s.SetDimension(name, v, 0); err != nil {
				return err
			}
		}
		return nil
	}))

	h := &Handler{Repo: repo.NewMemory(), Registry: reg}
	r := router(h)

	rec := call(r, "POST", "/sessions/"+id+"/save", 5)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true,"id":1}`, rec.Body.String())

	rec = call(r, "GET", "/saved", 5)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []repo.SavedCalculation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "asphalt", list[0].CalculatorID)
	assert.Contains(t, string(list[0].OutputSnapshot), "volume_m3")

	rec = call(r, "GET", "/saved", 6)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(r, "POST", "/sessions/missing/save", 5)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(r, "GET", "/saved", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveFailureLeavesSession(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	id, err := reg.Create("dbm")
	require.NoError(t, err)
	r := router(&Handler{Repo: failingRepo{repo.NewMemory()}, Registry: reg})

	rec := call(r, "POST", "/sessions/"+id+"/save", 5)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false}`, rec.Body.String())
	assert.Equal(t, 1, reg.Len())

	rec = call(r, "POST", "/favorites/dbm", 5)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"is_favorite":false}`, rec.Body.String())
}

func TestFavorites(t *testing.T) {
	r := router(&Handler{Repo: repo.NewMemory(), Registry: session.NewRegistry(standards.MustDefault(), 0)})

	rec := call(r, "GET", "/favorites/tack-coat", 3)
	assert.JSONEq(t, `{"ok":true,"is_favorite":false}`, rec.Body.String())

	rec = call(r, "POST", "/favorites/tack-coat", 3)
	assert.JSONEq(t, `{"ok":true,"is_favorite":true}`, rec.Body.String())

	rec = call(r, "GET", "/favorites/tack-coat", 3)
	assert.JSONEq(t, `{"ok":true,"is_favorite":true}`, rec.Body.String())

	rec = call(r, "POST", "/favorites/tack-coat", 3)
	assert.JSONEq(t, `{"ok":true,"is_favorite":false}`, rec.Body.String())

	rec = call(r, "POST", "/favorites/no-such-calc", 3)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveOverflowingSession(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	id, err := reg.Create("asphalt")
	require.NoError(t, err)
	require.NoError(t, reg.Do(id, func(s *session.Session) error {
		for name, v := range map[string]float64{"length": 1e200, "width": 1e200, "depth": 1} {
			if err := s.SetDimension(name, v, 0); err != nil {
				return err
			}
		}
		if s.State() != session.Empty {
			return errors.New("overflowing geometry computed")
		}
		return nil
	}))

	h := &Handler{Repo: repo.NewMemory(), Registry: reg}
	r := router(h)

	rec := call(r, "POST", "/sessions/"+id+"/save", 5)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true,"id":1}`, rec.Body.String())

	rec = call(r, "GET", "/saved", 5)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []repo.SavedCalculation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.NotContains(t, string(list[0].OutputSnapshot), "volume_m3")
}
