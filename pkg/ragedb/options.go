// Package ragedb is the public, in-process embedding facade over
// internal/peered: construct a Database, register a schema, and call its
// node/relationship/query methods directly — there is no network hop, the
// whole graph lives in this process's memory (spec §2).
package ragedb

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// config bundles every knob New accepts. All fields are immutable once the
// Database is constructed.
type config struct {
	logger         *zap.Logger
	registry       *prometheus.Registry
	shardInboxSize int
}

func defaultConfig() *config {
	return &config{
		logger:         zap.NewNop(),
		shardInboxSize: 1024,
	}
}

// Option configures a Database at construction.
type Option func(*config)

// WithLogger plugs an external zap.Logger into every shard and the
// coordinator. The database never logs on the hot path; the only lines
// emitted are warnings when a best-effort cross-shard leg (remote
// relationship cleanup, or a cross-shard relationship's second leg) fails
// and leaves a relationship orphaned.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation, registering counters
// against reg. Passing nil (the default) leaves metrics collection
// disabled, so the hot path never pays for a label lookup.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithShardInboxSize sets every shard's bounded executor inbox capacity
// (spec §5: a full inbox rejects new work with ErrOverloaded rather than
// growing unbounded).
func WithShardInboxSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.shardInboxSize = n
		}
	}
}

var errInvalidShardCount = errors.New("ragedb: shard count must be > 0")
