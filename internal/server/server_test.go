package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Civica/internal/auth"
	"Civica/internal/calc/session"
	"Civica/internal/calc/standards"
	"Civica/internal/metrics"
	"Civica/internal/repo"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	log, _ := test.NewNullLogger()
	var reg *session.Registry
	m := metrics.New(prometheus.NewRegistry(), func() int { return reg.Len() })
	reg = session.NewRegistry(standards.MustDefault(), 0, session.WithObserver(m.Observer()))
	store := repo.NewMemory()

	srv := httptest.NewServer(New(Deps{
		Registry: reg,
		Repo:     store,
		Auth:     &auth.Authenv{JWTkey: []byte("k"), Repo: store, Log: log},
		Metrics:  m,
		Log:      log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, c *http.Client, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type jar struct{ cookies []*http.Cookie }

func (j *jar) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, c := range j.cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err == nil {
		j.cookies = append(j.cookies, resp.Cookies()...)
	}
	return resp, err
}

func TestEndToEnd(t *testing.T) {
	srv := newServer(t)
	client := &http.Client{Transport: &jar{}}

	resp := send(t, client, "GET", srv.URL+"/api/calculators", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = send(t, client, "POST", srv.URL+"/api/sessions", `{"calculator":"tack-coat"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view session.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))

	resp = send(t, client, "POST", srv.URL+"/api/user/sessions/"+view.ID+"/save", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, client, "POST", srv.URL+"/api/register", `{"login":"meera","email":"m@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, client, "POST", srv.URL+"/api/user/sessions/"+view.ID+"/save", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, client, "GET", srv.URL+"/api/sessions/"+view.ID+"/report.pdf", "")
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	resp = send(t, client, "GET", srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `civica_recomputations_total{calculator="tack-coat"`)
	assert.Contains(t, string(body), `route="/api/sessions"`)
}

func TestPreflight(t *testing.T) {
	srv := newServer(t)
	resp := send(t, http.DefaultClient, "OPTIONS", srv.URL+"/api/sessions", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
