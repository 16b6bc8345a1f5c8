package tracker

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the tracker's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	authOutcomes    *prometheus.CounterVec
	policyDenials   *prometheus.CounterVec
}

// NewMetrics registers the tracker collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		authOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_auth_outcomes_total",
				Help: "Authentication pipeline outcomes",
			},
			[]string{"outcome"},
		),
		policyDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_policy_denials_total",
				Help: "Access policy denials by resource and action",
			},
			[]string{"resource", "action"},
		),
	}
}

// ObserveRequest records the duration of a served request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "/"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordAuthOutcome counts one authentication pipeline run
func (m *Metrics) RecordAuthOutcome(outcome AuthOutcome) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(string(outcome)).Inc()
}

// RecordDenial counts one policy denial
func (m *Metrics) RecordDenial(resource, action string) {
	if m == nil {
		return
	}
	m.policyDenials.WithLabelValues(resource, action).Inc()
}

// AuthOutcomeCounter exposes the outcome counter for inspection
func (m *Metrics) AuthOutcomeCounter() *prometheus.CounterVec {
	return m.authOutcomes
}

// PolicyDenialCounter exposes the denial counter for inspection
func (m *Metrics) PolicyDenialCounter() *prometheus.CounterVec {
	return m.policyDenials
}
