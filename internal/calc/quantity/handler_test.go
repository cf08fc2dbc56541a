package quantity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Civica/internal/calc/standards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestHandlerCalc(t *testing.T) {
	h := &Handler{Library: standards.MustDefault()}

	rec := post(h.Calc, `{"calculator":"asphalt","standard":"HMA","system":"m",
		"dimensions":{"length":{"primary":"10"},"width":{"primary":7},"depth":{"secondary":10}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Computed)
	require.NotNil(t, out.Result)
	assert.InDelta(t, 7.0, value(t, *out.Result, "volume_m3"), 1e-9)

	rec = post(h.Calc, `{"calculator":"asphalt","standard":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCalcOverflow(t *testing.T) {
	h := &Handler{Library: standards.MustDefault()}

	rec := post(h.Calc, `{"calculator":"asphalt","standard":"HMA","system":"m",
		"dimensions":{"length":{"primary":1e200},"width":{"primary":1e200},"depth":{"primary":1}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotZero(t, rec.Body.Len())
	var out Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Computed)
	assert.Nil(t, out.Result)

	t.Run("bod", func(t *testing.T) {
		rec := post(h.BOD, `{"standard":"ASTM","samples":[{"d1":1e308,"d5":-1e308,"df":1}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var res BODResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Zero(t, res.Computed)
		assert.Nil(t, res.Average)
	})
}

func TestHandlerCalcCountRange(t *testing.T) {
	h := &Handler{Library: standards.MustDefault()}
	body := `{"calculator":"staircase","standard":"M20","system":"m","count":%s,
		"dimensions":{"riser":{"secondary":15},"tread":{"secondary":30},"width":{"primary":1},"waist":{"secondary":15}}}`

	rec := post(h.Calc, strings.Replace(body, "%s", "1e30", 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrCountRange.Error())

	rec = post(h.Calc, strings.Replace(body, "%s", `"11.9"`, 1))
	require.Equal(t, http.StatusOK, rec.Code)
	var out Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Computed)
}
