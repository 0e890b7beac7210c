// Package shard implements the atomic, single-shard operations spec §4.6
// composes into peered calls: node and relationship CRUD, traversal and
// filter primitives, all running to completion without yielding (spec §5).
//
// A Shard owns its node/relationship type tables exclusively; nothing here
// is safe for concurrent use except through its Executor, which serializes
// every call onto one goroutine.
package shard

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/typetable"
)

// Shard holds every node and relationship type table assigned to one
// partition, plus the type registries that name them.
type Shard struct {
	id         uint16
	shardCount uint16
	logger     *zap.Logger
	metrics    MetricsSink

	nodeTypes *schema.TypeRegistry
	relTypes  *schema.TypeRegistry

	nodeTables map[uint16]*typetable.NodeTable
	relTables  map[uint16]*typetable.RelTable
}

// Option configures a Shard at construction.
type Option func(*Shard)

// WithLogger plugs an external zap.Logger. Shard-local operations are
// CPU-bound and short, and no Shard operation writes to the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shard) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics plugs a metrics sink. Passing nil (the default) uses a no-op
// sink.
func WithMetrics(m MetricsSink) Option {
	return func(s *Shard) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Shard with id among shardCount total shards, sharing
// nodeTypes/relTypes with every other shard in the same coordinator (they
// are copy-on-write registries shared by pointer, so a newly registered id
// is visible to every shard on its next Snapshot, with no broadcast step).
func New(id, shardCount uint16, nodeTypes, relTypes *schema.TypeRegistry, opts ...Option) *Shard {
	s := &Shard{
		id:         id,
		shardCount: shardCount,
		logger:     zap.NewNop(),
		metrics:    noopMetrics{},
		nodeTypes:  nodeTypes,
		relTypes:   relTypes,
		nodeTables: make(map[uint16]*typetable.NodeTable),
		relTables:  make(map[uint16]*typetable.RelTable),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns this shard's index.
func (s *Shard) ID() uint16 { return s.id }

func (s *Shard) nodeTable(typeID uint16) (*typetable.NodeTable, error) {
	t, ok := s.nodeTables[typeID]
	if !ok {
		props := s.nodeTypes.Properties(typeID)
		if props == nil {
			return nil, fmt.Errorf("%w: unknown node type id %d", ErrInvalidArgument, typeID)
		}
		t = typetable.NewNodeTable(s.id, typeID, props)
		s.nodeTables[typeID] = t
	}
	return t, nil
}

func (s *Shard) relTable(typeID uint16) (*typetable.RelTable, error) {
	t, ok := s.relTables[typeID]
	if !ok {
		props := s.relTypes.Properties(typeID)
		if props == nil {
			return nil, fmt.Errorf("%w: unknown relationship type id %d", ErrInvalidArgument, typeID)
		}
		t = typetable.NewRelTable(s.id, typeID, props)
		s.relTables[typeID] = t
	}
	return t, nil
}

// NodeGetID returns the id of the node keyed by key under typeID, if one
// exists on this shard.
func (s *Shard) NodeGetID(typeID uint16, key string) (uint64, bool, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return 0, false, err
	}
	id, ok := t.GetID(key)
	return id, ok, nil
}

// NodeValid reports whether id names a live node on this shard. Used to
// validate a cross-shard relationship's endpoint before the starting shard
// commits to allocating relationship state (spec §4.7, §8: an invalid
// endpoint must make no state change at all, not just fail the second leg).
func (s *Shard) NodeValid(id uint64) (bool, error) {
	t, err := s.nodeTable(ids.TypeOf(id))
	if err != nil {
		return false, err
	}
	return t.Valid(id), nil
}

// NodeAddEmpty returns the node keyed by key under typeID, creating it with
// no properties if absent.
func (s *Shard) NodeAddEmpty(typeID uint16, key string) (uint64, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return 0, err
	}
	return t.AddEmpty(key), nil
}

// NodeAdd returns the node keyed by key under typeID, creating it if absent
// and applying properties (nil for none).
func (s *Shard) NodeAdd(typeID uint16, key string, properties map[string]interface{}) (uint64, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return 0, err
	}
	id, err := t.Add(key, properties)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return id, nil
}

// NodeGetDegree returns id's degree in direction, optionally filtered to
// relTypes.
func (s *Shard) NodeGetDegree(id uint64, direction typetable.Direction, relTypes []uint16) (uint64, error) {
	t, err := s.nodeTable(ids.TypeOf(id))
	if err != nil {
		return 0, err
	}
	if !t.Valid(id) {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	return t.Degree(id, direction, relTypes), nil
}

// NodeGetRelationshipsIDs returns id's (otherID, relID) links in direction,
// optionally filtered to relTypes.
func (s *Shard) NodeGetRelationshipsIDs(id uint64, direction typetable.Direction, relTypes []uint16) ([]typetable.Link, error) {
	t, err := s.nodeTable(ids.TypeOf(id))
	if err != nil {
		return nil, err
	}
	if !t.Valid(id) {
		return nil, fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	var out []typetable.Link
	if direction == typetable.DirOut || direction == typetable.DirBoth {
		out = append(out, t.Outgoing(id).Iter(relTypes)...)
	}
	if direction == typetable.DirIn || direction == typetable.DirBoth {
		out = append(out, t.Incoming(id).Iter(relTypes)...)
	}
	return out, nil
}

// Relationship describes a relationship as seen from a single shard: its
// own id, type, and endpoints. Properties are fetched separately through
// the owning RelTable's Properties() store.
type Relationship struct {
	ID         uint64
	Type       uint16
	StartingID uint64
	EndingID   uint64
}

// NodeGetOutgoingRelationships returns id's outgoing relationships,
// optionally filtered to relTypes. Outgoing is always local to id's shard,
// so this is the local leg peered "get relationships" composes.
func (s *Shard) NodeGetOutgoingRelationships(id uint64, relTypes []uint16) ([]Relationship, error) {
	t, err := s.nodeTable(ids.TypeOf(id))
	if err != nil {
		return nil, err
	}
	if !t.Valid(id) {
		return nil, fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	links := t.Outgoing(id).Iter(relTypes)
	out := make([]Relationship, len(links))
	for i, link := range links {
		out[i] = Relationship{
			ID:         link.RelID,
			Type:       ids.TypeOf(link.RelID),
			StartingID: id,
			EndingID:   link.OtherID,
		}
	}
	return out, nil
}

// NodeKey returns id's key, or "" if id does not name a live node on this
// shard. Absence is not an error (spec §7): callers stitching batch results
// treat a missing key as "this id no longer exists."
func (s *Shard) NodeKey(id uint64) (string, error) {
	t, err := s.nodeTable(ids.TypeOf(id))
	if err != nil {
		return "", err
	}
	if !t.Valid(id) {
		return "", nil
	}
	return t.Key(id), nil
}

// NodeProperties returns the property store for typeID's nodes, for direct
// get/set/delete/filter access.
func (s *Shard) NodeProperties(typeID uint16) (*propstore.Store, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return nil, err
	}
	return t.Properties(), nil
}

// RelationshipProperties returns the property store for typeID's
// relationships.
func (s *Shard) RelationshipProperties(typeID uint16) (*propstore.Store, error) {
	t, err := s.relTable(typeID)
	if err != nil {
		return nil, err
	}
	return t.Properties(), nil
}
