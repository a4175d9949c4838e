package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/sunset/internal/brightness"
	"github.com/scheerer/sunset/internal/display"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.Initialized(brightness.New(150))
	assert.Equal(t, 150.0, testutil.ToFloat64(r.brightness))
	assert.Equal(t, 50.0, testutil.ToFloat64(r.lightLevel))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.redshiftFactor))
	assert.Zero(t, testutil.ToFloat64(r.restarts))

	r.Restarted(brightness.New(50))
	assert.Equal(t, 50.0, testutil.ToFloat64(r.brightness))
	assert.Equal(t, brightness.MinLightLevel, testutil.ToFloat64(r.lightLevel))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.redshiftFactor))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.restarts))

	r.RestartFailed(display.StageBacklight, errors.New("boom"))
	r.RestartFailed(display.StageBacklight, errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.failures.WithLabelValues("backlight")))
	assert.Zero(t, testutil.ToFloat64(r.failures.WithLabelValues("redshift")))
}

func TestHandler(t *testing.T) {
	r := New()
	r.Restarted(brightness.New(120))

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sunset_brightness 120")
	assert.Contains(t, string(body), "sunset_restarts_total 1")
	assert.Contains(t, string(body), `sunset_restart_failures_total{stage="redshift"} 0`)
	assert.Contains(t, string(body), "go_goroutines")
}
