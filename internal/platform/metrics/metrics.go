package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and turns every recording method into a no-op, which keeps unit tests
// free of global registry collisions.
type Metrics struct {
	RegistrationsStarted   prometheus.Counter
	RegistrationsCompleted prometheus.Counter
	RegistrationsExpired   prometheus.Counter
	StepFailures           *prometheus.CounterVec
	CommitDuration         prometheus.Histogram
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medregistry_registrations_started_total",
			Help: "Total number of registration wizards started (step 1 accepted)",
		}),
		RegistrationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medregistry_registrations_completed_total",
			Help: "Total number of registrations committed at step 4",
		}),
		RegistrationsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medregistry_registrations_expired_total",
			Help: "Total number of wizard sessions reclaimed after expiry",
		}),
		StepFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medregistry_step_failures_total",
			Help: "Total number of rejected wizard step submissions",
		}, []string{"step"}),
		CommitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "medregistry_commit_duration_seconds",
			Help:    "Latency of the final four-record commit transaction",
			Buckets: prometheus.DefBuckets,
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medregistry_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) IncStarted() {
	if m != nil {
		m.RegistrationsStarted.Inc()
	}
}

func (m *Metrics) IncCompleted() {
	if m != nil {
		m.RegistrationsCompleted.Inc()
	}
}

func (m *Metrics) IncExpired() {
	if m != nil {
		m.RegistrationsExpired.Inc()
	}
}

func (m *Metrics) IncStepFailure(step string) {
	if m != nil {
		m.StepFailures.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) ObserveCommit(d time.Duration) {
	if m != nil {
		m.CommitDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveRequest(route, method string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	}
}
