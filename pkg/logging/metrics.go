package logging

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks the health of the fallback chain with Prometheus
// counters. All methods are nil-safe so a Logger without metrics pays
// only a nil check per call.
type Metrics struct {
	records           *prometheus.CounterVec
	backendAttempts   *prometheus.CounterVec
	backendFailures   *prometheus.CounterVec
	fallbackExhausted prometheus.Counter
}

// NewMetrics registers the logging counters on registry (the default
// registerer when nil) under the given namespace.
func NewMetrics(namespace string, registry prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "poincare"
	}
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "logging",
			Name:      "records_total",
			Help:      "Log records accepted, by level.",
		}, []string{"level"}),
		backendAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "logging",
			Name:      "backend_attempts_total",
			Help:      "Backend write attempts, by backend name.",
		}, []string{"backend"}),
		backendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "logging",
			Name:      "backend_failures_total",
			Help:      "Backend write failures leading to permanent eviction.",
		}, []string{"backend"}),
		fallbackExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "logging",
			Name:      "fallback_exhausted_total",
			Help:      "Calls for which every registered backend failed.",
		}),
	}

	registry.MustRegister(m.records, m.backendAttempts, m.backendFailures, m.fallbackExhausted)
	return m
}

func (m *Metrics) recordAccepted(level Level) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(level.String()).Inc()
}

func (m *Metrics) recordAttempt(backend string) {
	if m == nil {
		return
	}
	m.backendAttempts.WithLabelValues(backend).Inc()
}

func (m *Metrics) recordFailure(backend string) {
	if m == nil {
		return
	}
	m.backendFailures.WithLabelValues(backend).Inc()
}

func (m *Metrics) recordExhausted() {
	if m == nil {
		return
	}
	m.fallbackExhausted.Inc()
}
