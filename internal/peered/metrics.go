package peered

import "github.com/ragedb/ragedb/internal/shard"

// MetricsSink extends shard.MetricsSink with the counters only the
// coordinator can observe: a fan-out that only partially succeeded, and a
// cross-shard relationship whose second leg failed and was left orphaned
// (spec §4.7 "Cross-shard relationship creation", step 4).
type MetricsSink interface {
	shard.MetricsSink
	IncPartialFailure()
	IncOrphanedRelationship()
}

type noopMetrics struct{}

func (noopMetrics) IncOp(string)            {}
func (noopMetrics) IncOverloaded()          {}
func (noopMetrics) IncPartialFailure()      {}
func (noopMetrics) IncOrphanedRelationship() {}
