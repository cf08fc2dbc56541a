package report

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Civica/internal/calc/session"
	"Civica/internal/calc/standards"
)

func TestRenderFamilies(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, calc := range []string{"dbm", "asphalt", "tack-coat", "staircase", "bod"} {
		t.Run(calc, func(t *testing.T) {
			id, err := reg.Create(calc)
			require.NoError(t, err)
			var snap session.Snapshot
			require.NoError(t, reg.Do(id, func(s *session.Session) error {
				snap = s.Snapshot()
				return nil
			}))

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, snap, now))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
		})
	}
}

func TestRenderComputedGradation(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	id, err := reg.Create("bituminous-macadam")
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, reg.Do(id, func(s *session.Session) error {
		if err := s.SetTotalWeight(1000); err != nil {
			return err
		}
		if err := s.SetRetained("37.5 mm", 100); err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	}))
	require.NotNil(t, snap.Output)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, snap, time.Now()))
	assert.Greater(t, buf.Len(), 1000)
}

func TestHandler(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	id, err := reg.Create("asphalt")
	require.NoError(t, err)

	r := mux.NewRouter()
	r.HandleFunc("/sessions/{id}/report.pdf", (&Handler{Registry: reg}).Session)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/report.pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "asphalt.pdf")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/nope/report.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderEncodesUnitSymbols(t *testing.T) {
	reg := session.NewRegistry(standards.MustDefault(), 0)
	id, err := reg.Create("asphalt")
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, reg.Do(id, func(s *session.Session) error {
		for name, v := range map[string]float64{"length": 10, "width": 7, "depth": 0.1} {
			if err := s.SetDimension(name, v, 0); err != nil {
				return err
			}
		}
		snap = s.Snapshot()
		return nil
	}))
	require.NotNil(t, snap.Output)

	var buf bytes.Buffer
	require.NoError(t, render(&buf, snap, time.Now(), false))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("m\xb3")), "cp1252 superscript three")
	assert.False(t, bytes.Contains(buf.Bytes(), []byte("\xc2\xb3")), "raw UTF-8 leaked into the page")
}
