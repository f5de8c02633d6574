package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes recorded by the processor.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
	OutcomeDuplicate = "duplicate"
)

// Metrics are the generation worker's Prometheus instruments. A nil *Metrics
// records nothing.
type Metrics struct {
	JobsProcessed   *prometheus.CounterVec
	AttemptDuration prometheus.Histogram
	Retries         prometheus.Counter
	DeadLetters     prometheus.Counter
	InFlight        prometheus.Gauge
}

// NewMetrics registers the worker metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fortune",
			Subsystem: "jobs",
			Name:      "processed_total",
			Help:      "Generation jobs processed, by outcome.",
		}, []string{"outcome"}),
		AttemptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fortune",
			Subsystem: "jobs",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of one generation attempt.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fortune",
			Subsystem: "jobs",
			Name:      "retries_total",
			Help:      "Generation jobs rescheduled after a transient failure.",
		}),
		DeadLetters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fortune",
			Subsystem: "jobs",
			Name:      "dead_letters_total",
			Help:      "Generation jobs moved to the dead letter set.",
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fortune",
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Generation jobs currently being processed.",
		}),
	}
}

func (m *Metrics) observe(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.JobsProcessed.WithLabelValues(outcome).Inc()
	m.AttemptDuration.Observe(took.Seconds())
	switch outcome {
	case OutcomeRetried:
		m.Retries.Inc()
	case OutcomeFailed:
		m.DeadLetters.Inc()
	}
}

func (m *Metrics) started() {
	if m != nil {
		m.InFlight.Inc()
	}
}

func (m *Metrics) finished() {
	if m != nil {
		m.InFlight.Dec()
	}
}
