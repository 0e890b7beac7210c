// Package peered composes the single-shard operations of internal/shard
// into cluster-wide graph operations: cross-shard relationship creation,
// neighbor aggregation, paginated scans, set algebra, bulk CSV import, and
// replay-log restore (spec §4.7).
//
// A Coordinator owns every shard in-process (spec §2: a single process owns
// all shards, so a peered dispatch is a direct call submitted to the target
// shard's Executor, never an RPC). Fan-out over multiple shards uses
// golang.org/x/sync/errgroup as the all-succeed combinator (spec §4.7, step
// 3); a failure on any leg aborts the gather and surfaces as a single
// error, except for the two operations spec §7 documents as best-effort
// (cross-shard relationship add's second leg, node removal's remote
// counterpart cleanup).
package peered

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/shard"
)

// Coordinator is the process-wide entry point: every shard plus the shared
// type registries that name their node and relationship types.
type Coordinator struct {
	logger  *zap.Logger
	metrics MetricsSink

	nodeTypes *schema.TypeRegistry
	relTypes  *schema.TypeRegistry

	shards    []*shard.Shard
	executors []*shard.Executor

	// schemaMu serializes type/property registration (spec §5's "process-
	// wide write lock"). nodeTypes/relTypes are themselves copy-on-write
	// registries shared by pointer with every Shard, so once Insert/
	// Register returns under this lock every shard already observes the
	// new id on its next Snapshot() — there is no separate broadcast step
	// to perform, unlike a networked deployment where shards are distinct
	// processes.
	schemaMu sync.Mutex

	// nodeAddGroup collapses concurrent NodeAdd/NodeAddEmpty calls racing on
	// the same (type, key) pair into one dispatch, the same thundering-herd
	// protection the cache layer this module grew out of gives concurrent
	// GetOrLoad callers.
	nodeAddGroup singleflight.Group
}

// Option configures a Coordinator at construction.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	metrics        MetricsSink
	shardInboxSize int
}

// WithLogger plugs an external zap.Logger into every shard and the
// coordinator itself.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics plugs a metrics sink. Passing nil uses a no-op sink.
func WithMetrics(m MetricsSink) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithShardInboxSize sets every shard Executor's inbox capacity.
func WithShardInboxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shardInboxSize = n
		}
	}
}

// New constructs a Coordinator owning shardCount shards, each pinned to its
// own Executor goroutine.
func New(shardCount uint16, opts ...Option) *Coordinator {
	cfg := options{
		logger:         zap.NewNop(),
		metrics:        noopMetrics{},
		shardInboxSize: 1024,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	nodeTypes := schema.NewTypeRegistry()
	relTypes := schema.NewTypeRegistry()

	c := &Coordinator{
		logger:    cfg.logger,
		metrics:   cfg.metrics,
		nodeTypes: nodeTypes,
		relTypes:  relTypes,
		shards:    make([]*shard.Shard, shardCount),
		executors: make([]*shard.Executor, shardCount),
	}
	for i := uint16(0); i < shardCount; i++ {
		c.shards[i] = shard.New(i, shardCount, nodeTypes, relTypes,
			shard.WithLogger(cfg.logger),
			shard.WithMetrics(cfg.metrics))
		c.executors[i] = shard.NewExecutor(cfg.shardInboxSize)
	}
	return c
}

// ShardCount returns the number of shards this Coordinator owns.
func (c *Coordinator) ShardCount() uint16 { return uint16(len(c.shards)) }

// NodeTypes returns the shared node type registry, for callers that need to
// resolve a type name to an id directly (e.g. the HTTP layer, bulk import).
func (c *Coordinator) NodeTypes() *schema.TypeRegistry { return c.nodeTypes }

// RelationshipTypes returns the shared relationship type registry.
func (c *Coordinator) RelationshipTypes() *schema.TypeRegistry { return c.relTypes }

// Close stops every shard's Executor. In-flight operations are not
// guaranteed to complete.
func (c *Coordinator) Close() {
	for _, e := range c.executors {
		e.Close()
	}
}

// dispatch submits fn to shardID's executor and blocks for its result. It is
// the single point every peered operation routes a sub-call through, so
// that every cross-shard call is visible in one place.
func dispatch[T any](c *Coordinator, shardID uint16, fn func(s *shard.Shard) (T, error)) (T, error) {
	v, err := shard.Submit(c.executors[shardID], func() (T, error) {
		return fn(c.shards[shardID])
	})
	if errors.Is(err, shard.ErrOverloaded) {
		c.metrics.IncOverloaded()
	}
	return v, err
}

// fanOut runs fn once per shard in work (skipping shards whose context has
// already been cancelled before their turn, per spec §5's "dropping pending
// sub-call futures"; sub-calls already started run to completion), gathers
// with an all-succeed combinator, and returns the per-shard results keyed
// by shard id.
func fanOut[T any](ctx context.Context, c *Coordinator, work map[uint16][]uint64, fn func(s *shard.Shard, ids []uint64) (T, error)) (map[uint16]T, error) {
	results := make(map[uint16]T, len(work))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for sh, group := range work {
		sh, group := sh, group
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			r, err := dispatch(c, sh, func(s *shard.Shard) (T, error) {
				return fn(s, group)
			})
			if err != nil {
				return err
			}
			mu.Lock()
			results[sh] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
