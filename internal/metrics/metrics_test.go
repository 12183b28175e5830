package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IncMutation("cv_records", "CREATE")
	m.IncMutation("cv_records", "CREATE")
	m.IncAuthAttempt("invalid")
	m.IncForbidden("canDeleteCVs")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Mutations.WithLabelValues("cv_records", "CREATE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthAttempts.WithLabelValues("invalid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Forbidden.WithLabelValues("canDeleteCVs")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncMutation("cv_records", "DELETE")
		m.IncAuthAttempt("success")
		m.IncForbidden("canEditCVs")
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.IncForbidden("canDeleteUsers")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cvportal_forbidden_total{capability="canDeleteUsers"} 1`)
}
