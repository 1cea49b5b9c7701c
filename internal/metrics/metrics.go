// Package metrics records Prometheus metrics for automaton operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors on a registry of its own, so several
// instances can live in one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	states   *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fa_operations_total",
				Help: "Automaton operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fa_operation_duration_seconds",
				Help:    "Duration of automaton operations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"op"},
		),
		states: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fa_states",
				Help:    "Number of states in operation results",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.ops, m.duration, m.states)
	return m
}

// Observe records one operation that started at start. states is the
// size of the result; pass a negative value when there is none.
func (m *Metrics) Observe(op string, start time.Time, states int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.ops.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil && states >= 0 {
		m.states.WithLabelValues(op).Observe(float64(states))
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
