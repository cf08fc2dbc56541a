package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Civica/internal/calc/standards"
)

func newRouter(reg *Registry) *mux.Router {
	h := &Handler{Registry: reg}
	r := mux.NewRouter()
	r.HandleFunc("/sessions", h.Create).Methods("POST")
	r.HandleFunc("/sessions/{id}", h.Get).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/events", h.Events).Methods("POST")
	r.HandleFunc("/sessions/{id}/reset", h.Reset).Methods("POST")
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, View) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var v View
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	}
	return rec, v
}

func TestHandlerFlow(t *testing.T) {
	r := newRouter(NewRegistry(standards.MustDefault(), 0))

	rec, v := do(t, r, "POST", "/sessions", `{"calculator":"bituminous-macadam"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, v.ID)
	assert.Equal(t, Empty, v.State)
	assert.Nil(t, v.Result)
	path := "/sessions/" + v.ID

	rec, v = do(t, r, "POST", path+"/events", `[
		{"kind":"total_weight","value":"1000"},
		{"kind":"retained","key":"45 mm","value":0},
		{"kind":"retained","key":"37.5 mm","value":100}
	]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Computed, v.State)
	require.NotNil(t, v.Result)
	require.Len(t, v.Result.Gradation, 8)
	assert.InDelta(t, 90.0, v.Result.Gradation[1].PercentPassing, 1e-9)

	rec, _ = do(t, r, "POST", path+"/events", `{"kind":"retained","key":"19 mm","value":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, "POST", path+"/events", `{"kind":"standard","key":"Grading X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, v = do(t, r, "GET", path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Computed, v.State, "rejected events left the session alone")

	rec, v = do(t, r, "POST", path+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Empty, v.State)

	rec, _ = do(t, r, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = do(t, r, "GET", path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCreateUnknownCalculator(t *testing.T) {
	r := newRouter(NewRegistry(standards.MustDefault(), 0))
	rec, _ := do(t, r, "POST", "/sessions", `{"calculator":"bmi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, "POST", "/sessions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerOverflowReturnsEmptyState(t *testing.T) {
	r := newRouter(NewRegistry(standards.MustDefault(), 0))

	rec, v := do(t, r, "POST", "/sessions", `{"calculator":"bituminous-macadam"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/sessions/" + v.ID

	rec, v = do(t, r, "POST", path+"/events", `[
		{"kind":"total_weight","value":1e-320},
		{"kind":"retained","key":"45 mm","value":1}
	]`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotZero(t, rec.Body.Len())
	assert.Equal(t, Empty, v.State)
	assert.Nil(t, v.Result)
}

func TestHandlerCountOutOfRange(t *testing.T) {
	r := newRouter(NewRegistry(standards.MustDefault(), 0))

	rec, v := do(t, r, "POST", "/sessions", `{"calculator":"staircase"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/sessions/" + v.ID

	rec, _ = do(t, r, "POST", path+"/events", `{"kind":"count","value":1e30}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, v = do(t, r, "GET", path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Computed, v.State)
	assert.Equal(t, 11, v.Input.Count)
}
