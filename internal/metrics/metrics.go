package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can build as many instances as they need.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Mutations    *prometheus.CounterVec
	AuthAttempts *prometheus.CounterVec
	Forbidden    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cvportal_mutations_total",
			Help: "Audited mutations by entity and action",
		}, []string{"entity", "action"}),
		AuthAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cvportal_auth_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		Forbidden: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cvportal_forbidden_total",
			Help: "Operations rejected for a missing capability",
		}, []string{"capability"}),
	}
}

func (m *Metrics) IncMutation(entity, action string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(entity, action).Inc()
}

// IncAuthAttempt records a login outcome: success, invalid or missing.
func (m *Metrics) IncAuthAttempt(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncForbidden(capability string) {
	if m == nil {
		return
	}
	m.Forbidden.WithLabelValues(capability).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
