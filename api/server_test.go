package api

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledmotion/metrics"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.Started(metrics.KindAccelerated)
	h := Handler(m.Registry(), nil)

	code, body := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `ledmotion_animations_started_total{kind="accelerated"} 1`)
}

func TestHealthz(t *testing.T) {
	code, body := get(t, Handler(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, _ = get(t, Handler(nil, func() error { return errors.New("mqtt disconnected") }), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = get(t, Handler(nil, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)
}
