package ragedb

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ragedb/ragedb/internal/peered"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/typetable"
)

// Re-exported types so callers never need to (and, since these packages are
// internal/, cannot) import below pkg/. Mirrors the teacher's
// `type EjectReason = clockpro.EvictionReason` re-export pattern.
type (
	Node      = peered.Node
	Operation = peered.Operation
	OpKind    = peered.OpKind
	Kind      = schema.Kind
	Direction = typetable.Direction
	Op        = propstore.Op
	Value     = propstore.Value
	SortDir   = propstore.SortDir
)

// Property kinds.
const (
	KindBoolean     = schema.KindBoolean
	KindI64         = schema.KindI64
	KindF64         = schema.KindF64
	KindString      = schema.KindString
	KindListBoolean = schema.KindListBoolean
	KindListI64     = schema.KindListI64
	KindListF64     = schema.KindListF64
	KindListString  = schema.KindListString
)

// Traversal directions.
const (
	DirOut  = typetable.DirOut
	DirIn   = typetable.DirIn
	DirBoth = typetable.DirBoth
)

// Filter comparison operators.
const (
	OpEq         = propstore.OpEq
	OpNeq        = propstore.OpNeq
	OpLt         = propstore.OpLt
	OpLte        = propstore.OpLte
	OpGt         = propstore.OpGt
	OpGte        = propstore.OpGte
	OpStartsWith = propstore.OpStartsWith
	OpEndsWith   = propstore.OpEndsWith
	OpContains   = propstore.OpContains
	OpIsNull     = propstore.OpIsNull
	OpNotNull    = propstore.OpNotNull
)

// Result sort order.
const (
	SortNone       = propstore.SortNone
	SortAscending  = propstore.SortAscending
	SortDescending = propstore.SortDescending
)

// Replay operation kinds, for callers building a log to feed Restore.
const (
	OpRegisterNodeType         = peered.OpRegisterNodeType
	OpRegisterRelationshipType = peered.OpRegisterRelationshipType
	OpRegisterNodeProperty     = peered.OpRegisterNodeProperty
	OpRegisterRelProperty      = peered.OpRegisterRelationshipProperty
	OpNodeAdd                  = peered.OpNodeAdd
	OpNodeRemove               = peered.OpNodeRemove
	OpRelationshipAdd          = peered.OpRelationshipAdd
	OpRelationshipRemove       = peered.OpRelationshipRemove
)

// Database is the embeddable, in-process RageDB graph: construct one with
// New, register a schema, then call its node/relationship/query methods.
// Every method is safe for concurrent use.
type Database struct {
	c *peered.Coordinator
}

// New constructs a Database owning shardCount shards, each pinned to its
// own goroutine (spec §2, §5).
func New(shardCount uint16, opts ...Option) (*Database, error) {
	if shardCount == 0 {
		return nil, errInvalidShardCount
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := peered.New(shardCount,
		peered.WithLogger(cfg.logger),
		peered.WithMetrics(newMetricsSink(cfg.registry)),
		peered.WithShardInboxSize(cfg.shardInboxSize),
	)
	return &Database{c: c}, nil
}

// Close stops every shard's executor. In-flight operations are not
// guaranteed to complete.
func (d *Database) Close() { d.c.Close() }

// ShardCount returns the number of shards this Database owns.
func (d *Database) ShardCount() uint16 { return d.c.ShardCount() }

// Schema

func (d *Database) RegisterNodeType(name string) uint16 { return d.c.RegisterNodeType(name) }
func (d *Database) RegisterRelationshipType(name string) uint16 {
	return d.c.RegisterRelationshipType(name)
}
func (d *Database) RegisterNodeProperty(typeName, property string, kind Kind) (uint8, error) {
	return d.c.RegisterNodeProperty(typeName, property, kind)
}
func (d *Database) RegisterRelationshipProperty(typeName, property string, kind Kind) (uint8, error) {
	return d.c.RegisterRelationshipProperty(typeName, property, kind)
}

// Nodes

func (d *Database) NodeGetID(ctx context.Context, typeName, key string) (uint64, error) {
	return d.c.NodeGetID(ctx, typeName, key)
}
func (d *Database) NodeGetIDs(ctx context.Context, typeName string, keys []string) (map[string]uint64, error) {
	return d.c.NodeGetIDs(ctx, typeName, keys)
}
func (d *Database) NodeAddEmpty(ctx context.Context, typeName, key string) (uint64, error) {
	return d.c.NodeAddEmpty(ctx, typeName, key)
}
func (d *Database) NodeAdd(ctx context.Context, typeName, key string, properties map[string]interface{}) (uint64, error) {
	return d.c.NodeAdd(ctx, typeName, key, properties)
}
func (d *Database) NodeKeys(ctx context.Context, nodeIDs []uint64) (map[uint64]string, error) {
	return d.c.NodeKeys(ctx, nodeIDs)
}
func (d *Database) NodeRemove(ctx context.Context, id uint64) (bool, error) {
	return d.c.NodeRemove(ctx, id)
}
func (d *Database) AllNodeIDs(ctx context.Context, typeName string, skip, limit int) ([]uint64, error) {
	return d.c.AllNodeIDs(ctx, typeName, skip, limit)
}
func (d *Database) NodeTypeCount(ctx context.Context, typeName string) (uint64, error) {
	return d.c.NodeTypeCount(ctx, typeName)
}

// Relationships

func (d *Database) RelationshipAdd(ctx context.Context, relTypeName string, id1, id2 uint64, properties map[string]interface{}) (uint64, error) {
	return d.c.RelationshipAdd(ctx, relTypeName, id1, id2, properties)
}
func (d *Database) RelationshipRemove(ctx context.Context, relID uint64) (bool, error) {
	return d.c.RelationshipRemove(ctx, relID)
}
func (d *Database) AllRelationshipIDs(ctx context.Context, typeName string, skip, limit int) ([]uint64, error) {
	return d.c.AllRelationshipIDs(ctx, typeName, skip, limit)
}
func (d *Database) RelationshipTypeCount(ctx context.Context, typeName string) (uint64, error) {
	return d.c.RelationshipTypeCount(ctx, typeName)
}

// Neighbors resolves nodeIDs' neighbor set in direction, optionally
// restricted to relTypes (pass nil for every type).
func (d *Database) Neighbors(ctx context.Context, nodeIDs []uint64, direction Direction, relTypes []uint16) (map[uint64][]Node, error) {
	return d.c.Neighbors(ctx, nodeIDs, direction, relTypes)
}

// Filtering & set algebra

func (d *Database) FilterNodeCount(ctx context.Context, typeName string, candidateIDs []uint64, name string, op Op, value Value) (int, error) {
	return d.c.FilterNodeCount(ctx, typeName, candidateIDs, name, op, value)
}
func (d *Database) FilterNodeIDs(ctx context.Context, typeName string, candidateIDs []uint64, name string, op Op, value Value, skip, limit int, sortDir SortDir) ([]uint64, error) {
	return d.c.FilterNodeIDs(ctx, typeName, candidateIDs, name, op, value, skip, limit, sortDir)
}
func (d *Database) FilterRelationshipCount(ctx context.Context, typeName string, candidateIDs []uint64, name string, op Op, value Value) (int, error) {
	return d.c.FilterRelationshipCount(ctx, typeName, candidateIDs, name, op, value)
}
func (d *Database) FilterRelationshipIDs(ctx context.Context, typeName string, candidateIDs []uint64, name string, op Op, value Value, skip, limit int, sortDir SortDir) ([]uint64, error) {
	return d.c.FilterRelationshipIDs(ctx, typeName, candidateIDs, name, op, value, skip, limit, sortDir)
}

// IntersectNodeIDs ANDs several already-sorted id sets without a per-set
// shard round trip.
func IntersectNodeIDs(sortedIDSets ...[]uint64) []uint64 { return peered.IntersectNodeIDs(sortedIDSets...) }

// DifferenceNodeIDs returns the sorted ids in a that are not in b.
func DifferenceNodeIDs(a, b []uint64) []uint64 { return peered.DifferenceNodeIDs(a, b) }

// Bulk import & persistence

func (d *Database) LoadNodesCSV(ctx context.Context, typeName string, r io.Reader) (int, error) {
	return d.c.LoadNodesCSV(ctx, typeName, r)
}
func (d *Database) LoadRelationshipsCSV(ctx context.Context, relTypeName string, r io.Reader) (int, error) {
	return d.c.LoadRelationshipsCSV(ctx, relTypeName, r)
}

// Restore replays a recorded operation log against the database, rebuilding
// its contents after a restart (spec §6, "Persisted state layout").
func (d *Database) Restore(ctx context.Context, ops []Operation) error {
	return d.c.Restore(ctx, ops)
}

// Stats is a point-in-time snapshot of the database's contents, suitable
// for a debug/inspection endpoint (see cmd/ragedb-inspect).
type Stats struct {
	ShardCount               uint16            `json:"shard_count"`
	NodeTypes                []string          `json:"node_types"`
	RelationshipTypes        []string          `json:"relationship_types"`
	NodeCountsByType         map[string]uint64 `json:"node_counts_by_type"`
	RelationshipCountsByType map[string]uint64 `json:"relationship_counts_by_type"`
}

// Stats gathers a Stats snapshot across every registered type.
func (d *Database) Stats(ctx context.Context) (Stats, error) {
	nodeTypes := d.c.NodeTypes().Snapshot().Types()
	relTypes := d.c.RelationshipTypes().Snapshot().Types()

	s := Stats{
		ShardCount:               d.c.ShardCount(),
		NodeTypes:                nodeTypes,
		RelationshipTypes:        relTypes,
		NodeCountsByType:         make(map[string]uint64, len(nodeTypes)),
		RelationshipCountsByType: make(map[string]uint64, len(relTypes)),
	}
	for _, name := range nodeTypes {
		n, err := d.c.NodeTypeCount(ctx, name)
		if err != nil {
			return Stats{}, err
		}
		s.NodeCountsByType[name] = n
	}
	for _, name := range relTypes {
		n, err := d.c.RelationshipTypeCount(ctx, name)
		if err != nil {
			return Stats{}, err
		}
		s.RelationshipCountsByType[name] = n
	}
	return s, nil
}

// PrometheusRegistry is a convenience re-export so callers that already hold
// a *prometheus.Registry don't need a second import for WithMetrics.
type PrometheusRegistry = prometheus.Registry
