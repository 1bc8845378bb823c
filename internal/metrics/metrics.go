package metrics

import (
	"time"

	"github.com/goliatone/go-transsaction-cache/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheLookups       *prometheus.CounterVec
	Fallbacks          *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	CircuitState       *prometheus.GaugeVec
	CircuitTransitions *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transsaction_cache_lookups_total",
			Help: "Cache lookups by operation and result (hit or miss)",
		}, []string{"operation", "result"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transsaction_fallbacks_total",
			Help: "Degraded results served by a fallback, by operation and reason",
		}, []string{"operation", "reason"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transsaction_operation_duration_seconds",
			Help:    "Duration of cache-aside operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		CircuitState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transsaction_circuit_state",
			Help: "Current circuit state (0 closed, 1 open, 2 half-open)",
		}, []string{"circuit"}),
		CircuitTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transsaction_circuit_transitions_total",
			Help: "Circuit state transitions",
		}, []string{"circuit", "from", "to"}),
	}
}

func (m *Metrics) CacheHit(operation string) {
	m.CacheLookups.WithLabelValues(operation, "hit").Inc()
}

func (m *Metrics) CacheMiss(operation string) {
	m.CacheLookups.WithLabelValues(operation, "miss").Inc()
}

func (m *Metrics) Fallback(operation string, reason resilience.Reason) {
	m.Fallbacks.WithLabelValues(operation, string(reason)).Inc()
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CircuitListener mirrors breaker transitions into the circuit collectors.
func (m *Metrics) CircuitListener() resilience.Listener {
	return func(change resilience.StateChange) {
		m.CircuitState.WithLabelValues(change.Name).Set(float64(change.To))
		m.CircuitTransitions.WithLabelValues(change.Name, change.From.String(), change.To.String()).Inc()
	}
}

// CircuitCreated exports the initial state of a new circuit so the gauge
// exists before its first transition.
func (m *Metrics) CircuitCreated() func(resilience.Snapshot) {
	return func(snap resilience.Snapshot) {
		m.CircuitState.WithLabelValues(snap.Name).Set(float64(snap.State))
	}
}
