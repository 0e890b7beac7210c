package ragedb

// metrics.go mirrors the teacher's no-op/Prometheus sink split: Database
// never pays for a metrics update unless the caller opts in via
// WithMetrics. The sink satisfies internal/peered.MetricsSink, which in
// turn embeds internal/shard.MetricsSink, so the same counters are fed from
// both layers.

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ragedb/ragedb/internal/peered"
)

type noopMetrics struct{}

func (noopMetrics) IncOp(string)             {}
func (noopMetrics) IncOverloaded()           {}
func (noopMetrics) IncPartialFailure()       {}
func (noopMetrics) IncOrphanedRelationship() {}

type promMetrics struct {
	ops                   *prometheus.CounterVec
	overloaded            prometheus.Counter
	partialFailures       prometheus.Counter
	orphanedRelationships prometheus.Counter
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	m := &promMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragedb",
			Name:      "ops_total",
			Help:      "Number of shard operations submitted, by operation name.",
		}, []string{"op"}),
		overloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ragedb",
			Name:      "overloaded_total",
			Help:      "Number of operations rejected because a shard's inbox was full.",
		}),
		partialFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ragedb",
			Name:      "partial_failures_total",
			Help:      "Number of peered operations where at least one shard sub-call failed.",
		}),
		orphanedRelationships: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ragedb",
			Name:      "orphaned_relationships_total",
			Help:      "Number of relationships left orphaned after a best-effort remote leg failed.",
		}),
	}
	reg.MustRegister(m.ops, m.overloaded, m.partialFailures, m.orphanedRelationships)
	return m
}

func (m *promMetrics) IncOp(op string)          { m.ops.WithLabelValues(op).Inc() }
func (m *promMetrics) IncOverloaded()           { m.overloaded.Inc() }
func (m *promMetrics) IncPartialFailure()       { m.partialFailures.Inc() }
func (m *promMetrics) IncOrphanedRelationship() { m.orphanedRelationships.Inc() }

// newMetricsSink decides which implementation to use; reg == nil disables
// metrics entirely.
func newMetricsSink(reg *prometheus.Registry) peered.MetricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
