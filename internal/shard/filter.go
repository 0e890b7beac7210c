package shard

import (
	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/propstore"
)

// AllNodeIDs returns a [skip, skip+limit) window of typeID's live node ids
// in stable slot order (spec §4.7's pagination algorithm requires this
// stability). limit < 0 means "no limit".
func (s *Shard) AllNodeIDs(typeID uint16, skip, limit int) ([]uint64, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return nil, err
	}
	return window(t.LiveIDs(), skip, limit), nil
}

// AllRelationshipIDs returns a [skip, skip+limit) window of typeID's live
// relationship ids in stable slot order.
func (s *Shard) AllRelationshipIDs(typeID uint16, skip, limit int) ([]uint64, error) {
	t, err := s.relTable(typeID)
	if err != nil {
		return nil, err
	}
	return window(t.LiveIDs(), skip, limit), nil
}

// NodeTypeCount returns the number of live nodes of typeID on this shard,
// used by the peered pagination algorithm to compute each shard's local
// skip/limit.
func (s *Shard) NodeTypeCount(typeID uint16) (uint64, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return 0, err
	}
	return t.Count(), nil
}

// RelationshipTypeCount returns the number of live relationships of typeID
// on this shard.
func (s *Shard) RelationshipTypeCount(typeID uint16) (uint64, error) {
	t, err := s.relTable(typeID)
	if err != nil {
		return 0, err
	}
	return t.Count(), nil
}

// FilterNodeCount counts how many of nodeIDs (nodes of typeID) satisfy
// name op value.
func (s *Shard) FilterNodeCount(typeID uint16, nodeIDs []uint64, name string, op propstore.Op, value propstore.Value) (int, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return 0, err
	}
	return t.Properties().Count(slotsOf(nodeIDs), name, op, value)
}

// FilterNodeIDs returns the subset of nodeIDs (nodes of typeID) satisfying
// name op value, windowed by skip/limit and ordered by sortDir.
func (s *Shard) FilterNodeIDs(typeID uint16, nodeIDs []uint64, name string, op propstore.Op, value propstore.Value, skip, limit int, sortDir propstore.SortDir) ([]uint64, error) {
	t, err := s.nodeTable(typeID)
	if err != nil {
		return nil, err
	}
	matched, err := t.Properties().Ids(slotsOf(nodeIDs), name, op, value, skip, limit, sortDir)
	if err != nil {
		return nil, err
	}
	return encodeSlots(s.id, typeID, matched), nil
}

// FilterRelationshipCount counts how many of relIDs (relationships of
// typeID) satisfy name op value.
func (s *Shard) FilterRelationshipCount(typeID uint16, relIDs []uint64, name string, op propstore.Op, value propstore.Value) (int, error) {
	t, err := s.relTable(typeID)
	if err != nil {
		return 0, err
	}
	return t.Properties().Count(slotsOf(relIDs), name, op, value)
}

// FilterRelationshipIDs returns the subset of relIDs (relationships of
// typeID) satisfying name op value, windowed by skip/limit and ordered by
// sortDir.
func (s *Shard) FilterRelationshipIDs(typeID uint16, relIDs []uint64, name string, op propstore.Op, value propstore.Value, skip, limit int, sortDir propstore.SortDir) ([]uint64, error) {
	t, err := s.relTable(typeID)
	if err != nil {
		return nil, err
	}
	matched, err := t.Properties().Ids(slotsOf(relIDs), name, op, value, skip, limit, sortDir)
	if err != nil {
		return nil, err
	}
	return encodeSlots(s.id, typeID, matched), nil
}

// slotsOf strips the shard/type prefix from every external id, since
// propstore.Store indexes its columns and presence bitmap by slot
// (internal/propstore/column.go), not by the caller's external id.
func slotsOf(externalIDs []uint64) []uint64 {
	slots := make([]uint64, len(externalIDs))
	for i, id := range externalIDs {
		slots[i] = ids.SlotOf(id)
	}
	return slots
}

// encodeSlots restamps the shard/type prefix stripped by slotsOf back onto
// a set of matched slots, restoring the external id shape callers expect.
func encodeSlots(shardID, typeID uint16, slots []uint64) []uint64 {
	out := make([]uint64, len(slots))
	for i, slot := range slots {
		out[i] = ids.Encode(shardID, typeID, slot)
	}
	return out
}

func window(all []uint64, skip, limit int) []uint64 {
	if skip >= len(all) {
		return nil
	}
	all = all[skip:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
