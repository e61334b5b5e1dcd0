// Package metrics wires the Authentication Service's lifecycle events to
// Prometheus counters and histograms, and serves them alongside /health
// and /ready on a side-channel HTTP listener.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the verifier daemon.
type Metrics struct {
	Registrations     prometheus.Counter
	ChallengesIssued  prometheus.Counter
	VerifySuccesses   prometheus.Counter
	VerifyFailures    prometheus.Counter
	ProofLatency      prometheus.Histogram
	ActiveConnections prometheus.Gauge
	PendingChallenges prometheus.GaugeFunc
}

// New registers and returns a fresh Metrics set. pendingCount is polled
// lazily whenever Prometheus scrapes PendingChallenges.
func New(pendingCount func() float64) *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkpauth_registrations_total",
			Help: "Total number of Register calls.",
		}),
		ChallengesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkpauth_challenges_issued_total",
			Help: "Total number of authentication challenges issued.",
		}),
		VerifySuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkpauth_verify_success_total",
			Help: "Total number of successful authentication verifications.",
		}),
		VerifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zkpauth_verify_failure_total",
			Help: "Total number of failed authentication verifications.",
		}),
		ProofLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "zkpauth_verify_duration_seconds",
			Help:    "Latency of the Chaum-Pedersen verification equation.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "zkpauth_active_connections",
			Help: "Number of currently open RPC connections.",
		}),
		PendingChallenges: promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "zkpauth_pending_challenges",
			Help: "Number of outstanding (unresolved) authentication challenges.",
		}, pendingCount),
	}
}

// ObserveVerify records the outcome and latency of one
// VerifyAuthentication call.
func (m *Metrics) ObserveVerify(success bool, took time.Duration) {
	m.ProofLatency.Observe(took.Seconds())
	if success {
		m.VerifySuccesses.Inc()
	} else {
		m.VerifyFailures.Inc()
	}
}

// IncActive marks one more in-flight call, used by rpcwire's Metrics
// middleware while a request is being handled.
func (m *Metrics) IncActive() {
	m.ActiveConnections.Inc()
}

// DecActive marks one fewer in-flight call.
func (m *Metrics) DecActive() {
	m.ActiveConnections.Dec()
}
