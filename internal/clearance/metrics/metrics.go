package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the clearance workflow.
type Metrics struct {
	TransitionsTotal      *prometheus.CounterVec
	TransitionDurationMs  *prometheus.HistogramVec
	ConfirmationsTotal    *prometheus.CounterVec
	PaymentsTotal         prometheus.Counter
	CasesRejectedTotal    prometheus.Counter
	IdempotentReplayTotal *prometheus.CounterVec
}

// New creates and registers all clearance metrics.
func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portflow_transitions_total",
			Help: "Workflow transition attempts by action and outcome",
		}, []string{"action", "outcome"}),
		TransitionDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portflow_transition_duration_ms",
			Help:    "Latency of workflow transitions in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}, []string{"action"}),
		ConfirmationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portflow_confirmations_total",
			Help: "Confirmation gate resolutions by action and result",
		}, []string{"action", "result"}),
		PaymentsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portflow_payments_total",
			Help: "Customs duty payments executed",
		}),
		CasesRejectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portflow_cases_rejected_total",
			Help: "Cases terminated in the Rejected stage",
		}),
		IdempotentReplayTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portflow_idempotent_replays_total",
			Help: "Requests answered from recorded history without re-invoking external systems",
		}, []string{"action"}),
	}
}

// ObserveTransition records one transition attempt.
func (m *Metrics) ObserveTransition(action, outcome string, elapsed time.Duration) {
	m.TransitionsTotal.WithLabelValues(action, outcome).Inc()
	m.TransitionDurationMs.WithLabelValues(action).
		Observe(float64(elapsed.Microseconds()) / 1000.0)
}
