package typetable

import (
	"github.com/ragedb/ragedb/internal/arena"
	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/linkgroup"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/slotalloc"
)

// NodeTable holds every node of one type on one shard: keys, the
// key-to-id index, outgoing/incoming adjacency and properties, all indexed
// by slot (spec §4.4 "Nodes").
type NodeTable struct {
	shard    uint16
	typeID   uint16
	alloc    *slotalloc.Allocator
	keys     *arena.Column[string]
	keyIndex map[string]uint64
	outgoing []*linkgroup.List
	incoming []*linkgroup.List
	props    *propstore.Store
}

// NewNodeTable constructs an empty NodeTable for typeID on shard, with
// properties validated against registry.
func NewNodeTable(shard, typeID uint16, registry *schema.Registry) *NodeTable {
	return &NodeTable{
		shard:    shard,
		typeID:   typeID,
		alloc:    slotalloc.New(),
		keys:     arena.NewColumn[string](),
		keyIndex: make(map[string]uint64),
		props:    propstore.New(registry),
	}
}

func (t *NodeTable) growAdjacency(slot uint64) {
	for uint64(len(t.outgoing)) <= slot {
		t.outgoing = append(t.outgoing, linkgroup.NewList())
		t.incoming = append(t.incoming, linkgroup.NewList())
	}
}

// GetID returns the external id of the node keyed by key, if one exists.
func (t *NodeTable) GetID(key string) (uint64, bool) {
	id, ok := t.keyIndex[key]
	return id, ok
}

// AddEmpty returns the node keyed by key, creating it with no properties if
// it does not already exist (spec §4's lifecycle: "if key already present,
// return existing id").
func (t *NodeTable) AddEmpty(key string) uint64 {
	if id, ok := t.keyIndex[key]; ok {
		return id
	}
	slot := t.alloc.Allocate()
	id := ids.Encode(t.shard, t.typeID, slot)
	t.keys.Set(slot, key)
	t.keyIndex[key] = id
	t.growAdjacency(slot)
	return id
}

// Add creates (or returns the existing) node keyed by key and, if
// properties is non-nil, applies it via SetFromJSON.
func (t *NodeTable) Add(key string, properties map[string]interface{}) (uint64, error) {
	id := t.AddEmpty(key)
	if properties == nil {
		return id, nil
	}
	if err := t.props.SetFromJSON(ids.SlotOf(id), properties); err != nil {
		return id, err
	}
	return id, nil
}

// Remove deletes the node's key, properties and adjacency lists and frees
// its slot for reuse. It does not touch remote counterparts of any
// relationship -- that is the calling shard/coordinator's responsibility
// (spec §3). Returns false if id was not a live node of this table.
func (t *NodeTable) Remove(id uint64) bool {
	slot := ids.SlotOf(id)
	if !t.alloc.Live(slot) {
		return false
	}
	key := t.keys.Get(slot)
	delete(t.keyIndex, key)
	t.keys.Reset(slot)
	t.outgoing[slot] = linkgroup.NewList()
	t.incoming[slot] = linkgroup.NewList()
	t.props.DeleteAll(slot)
	t.alloc.Free(slot)
	return true
}

// Valid reports whether id names a live node of this table (spec §4.4
// "valid_node").
func (t *NodeTable) Valid(id uint64) bool {
	if ids.ShardOf(id) != t.shard || ids.TypeOf(id) != t.typeID {
		return false
	}
	return t.alloc.Live(ids.SlotOf(id))
}

// Key returns the key of id, or "" if id is not live.
func (t *NodeTable) Key(id uint64) string {
	return t.keys.Get(ids.SlotOf(id))
}

// Outgoing returns id's outgoing adjacency list. Always present (possibly
// empty) for a live id.
func (t *NodeTable) Outgoing(id uint64) *linkgroup.List {
	slot := ids.SlotOf(id)
	if int(slot) >= len(t.outgoing) {
		return linkgroup.NewList()
	}
	return t.outgoing[slot]
}

// Incoming returns id's incoming adjacency list.
func (t *NodeTable) Incoming(id uint64) *linkgroup.List {
	slot := ids.SlotOf(id)
	if int(slot) >= len(t.incoming) {
		return linkgroup.NewList()
	}
	return t.incoming[slot]
}

// Degree returns the number of relationships attached to id in direction,
// optionally filtered to relTypes (nil/empty means every type).
func (t *NodeTable) Degree(id uint64, direction Direction, relTypes []uint16) uint64 {
	var n uint64
	if direction == DirOut || direction == DirBoth {
		n += t.Outgoing(id).Degree(relTypes)
	}
	if direction == DirIn || direction == DirBoth {
		n += t.Incoming(id).Degree(relTypes)
	}
	return n
}

// Properties returns the property store backing this table's nodes.
func (t *NodeTable) Properties() *propstore.Store { return t.props }

// LiveIDs returns every currently live node id, ascending by slot.
func (t *NodeTable) LiveIDs() []uint64 {
	slots := t.alloc.LiveSlots()
	out := make([]uint64, len(slots))
	for i, slot := range slots {
		out[i] = ids.Encode(t.shard, t.typeID, slot)
	}
	return out
}

// Count returns the number of live nodes.
func (t *NodeTable) Count() uint64 { return t.alloc.LiveCount() }
