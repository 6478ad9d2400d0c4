// Package metrics provides observability for the gate verification path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks gate decisions and the latency of the verification path.
type Metrics struct {
	Decisions      *prometheus.CounterVec
	TokensIssued   prometheus.Counter
	MatchDistance  prometheus.Histogram
	VerifyDuration prometheus.Histogram
}

// New registers all gate metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_decisions_total",
			Help: "Total gate decisions by outcome and reason",
		}, []string{"outcome", "reason"}),
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_tokens_issued_total",
			Help: "Total gate passes issued",
		}),
		MatchDistance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatekeeper_match_distance",
			Help:    "Cosine distance between probe and enrolled embedding",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 1.0, 1.5, 2.0},
		}),
		VerifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatekeeper_verify_duration_seconds",
			Help:    "Duration of full two-factor verification",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// RecordDecision counts one gate decision.
func (m *Metrics) RecordDecision(outcome, reason string) {
	m.Decisions.WithLabelValues(outcome, reason).Inc()
}

// RecordTokenIssued counts one issued gate pass.
func (m *Metrics) RecordTokenIssued() {
	m.TokensIssued.Inc()
}

// ObserveDistance records the face-match distance of a verification that
// reached the face factor.
func (m *Metrics) ObserveDistance(distance float64) {
	m.MatchDistance.Observe(distance)
}

// ObserveVerify records the duration of a full verification.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
