package shard

// MetricsSink is the hook a Shard reports operational counters through.
// Mirrors the teacher's metricsSink split: a Prometheus-backed
// implementation lives in pkg/ragedb, and a no-op default means the hot
// path never pays for metric updates when no registry is configured.
type MetricsSink interface {
	IncOp(op string)
	IncOverloaded()
}

type noopMetrics struct{}

func (noopMetrics) IncOp(string)   {}
func (noopMetrics) IncOverloaded() {}
