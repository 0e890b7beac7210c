package typetable

import (
	"github.com/ragedb/ragedb/internal/arena"
	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/slotalloc"
)

// RelTable holds every relationship of one type on one shard: its starting
// and ending node ids, properties and deletion bookkeeping, all indexed by
// slot (spec §4.4 "Relationships").
type RelTable struct {
	shard      uint16
	typeID     uint16
	alloc      *slotalloc.Allocator
	startingID *arena.Column[uint64]
	endingID   *arena.Column[uint64]
	props      *propstore.Store
}

// NewRelTable constructs an empty RelTable for typeID on shard.
func NewRelTable(shard, typeID uint16, registry *schema.Registry) *RelTable {
	return &RelTable{
		shard:      shard,
		typeID:     typeID,
		alloc:      slotalloc.New(),
		startingID: arena.NewColumn[uint64](),
		endingID:   arena.NewColumn[uint64](),
		props:      propstore.New(registry),
	}
}

// Add allocates a new relationship slot, recording its endpoints and
// applying properties (if non-nil). The caller is responsible for the
// adjacency-list bookkeeping on both endpoint nodes.
func (t *RelTable) Add(startingID, endingID uint64, properties map[string]interface{}) (uint64, error) {
	slot := t.alloc.Allocate()
	id := ids.Encode(t.shard, t.typeID, slot)
	t.startingID.Set(slot, startingID)
	t.endingID.Set(slot, endingID)
	if properties == nil {
		return id, nil
	}
	if err := t.props.SetFromJSON(slot, properties); err != nil {
		return id, err
	}
	return id, nil
}

// Remove frees id's slot and clears its endpoints and properties. The
// caller is responsible for removing the mirrored adjacency-list entries.
// Returns false if id was not live.
func (t *RelTable) Remove(id uint64) bool {
	slot := ids.SlotOf(id)
	if !t.alloc.Live(slot) {
		return false
	}
	t.startingID.Reset(slot)
	t.endingID.Reset(slot)
	t.props.DeleteAll(slot)
	t.alloc.Free(slot)
	return true
}

// Endpoints returns id's starting and ending node ids. ok is false if id is
// not a live relationship of this table.
func (t *RelTable) Endpoints(id uint64) (startingID, endingID uint64, ok bool) {
	slot := ids.SlotOf(id)
	if !t.alloc.Live(slot) {
		return 0, 0, false
	}
	return t.startingID.Get(slot), t.endingID.Get(slot), true
}

// Valid reports whether id names a live relationship of this table (spec
// §4.4 "valid_rel").
func (t *RelTable) Valid(id uint64) bool {
	if ids.ShardOf(id) != t.shard || ids.TypeOf(id) != t.typeID {
		return false
	}
	return t.alloc.Live(ids.SlotOf(id))
}

// Properties returns the property store backing this table's relationships.
func (t *RelTable) Properties() *propstore.Store { return t.props }

// LiveIDs returns every currently live relationship id, ascending by slot.
func (t *RelTable) LiveIDs() []uint64 {
	slots := t.alloc.LiveSlots()
	out := make([]uint64, len(slots))
	for i, slot := range slots {
		out[i] = ids.Encode(t.shard, t.typeID, slot)
	}
	return out
}

// Count returns the number of live relationships.
func (t *RelTable) Count() uint64 { return t.alloc.LiveCount() }
