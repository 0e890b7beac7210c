package shard

import (
	"fmt"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/linkgroup"
	"github.com/ragedb/ragedb/internal/typetable"
)

// RelationshipAddSameShard creates a relTypeID relationship id1->id2 when
// both endpoints are local to this shard, updating both adjacency lists in
// one atomic-per-shard step.
func (s *Shard) RelationshipAddSameShard(relTypeID uint16, id1, id2 uint64, properties map[string]interface{}) (uint64, error) {
	n1, err := s.nodeTable(ids.TypeOf(id1))
	if err != nil {
		return 0, err
	}
	if !n1.Valid(id1) {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, id1)
	}
	n2, err := s.nodeTable(ids.TypeOf(id2))
	if err != nil {
		return 0, err
	}
	if !n2.Valid(id2) {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, id2)
	}

	rt, err := s.relTable(relTypeID)
	if err != nil {
		return 0, err
	}
	relID, err := rt.Add(id1, id2, properties)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	n1.Outgoing(id1).Add(relTypeID, linkgroup.Link{OtherID: id2, RelID: relID})
	n2.Incoming(id2).Add(relTypeID, linkgroup.Link{OtherID: id1, RelID: relID})
	return relID, nil
}

// RelationshipAddToOutgoing creates the starting-side leg of a cross-shard
// relationship: id1 is local, id2 may be remote. The caller (peered) is
// responsible for completing the mirror via RelationshipAddToIncoming on
// id2's shard.
func (s *Shard) RelationshipAddToOutgoing(relTypeID uint16, id1, id2 uint64, properties map[string]interface{}) (uint64, error) {
	n1, err := s.nodeTable(ids.TypeOf(id1))
	if err != nil {
		return 0, err
	}
	if !n1.Valid(id1) {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, id1)
	}
	rt, err := s.relTable(relTypeID)
	if err != nil {
		return 0, err
	}
	relID, err := rt.Add(id1, id2, properties)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	n1.Outgoing(id1).Add(relTypeID, linkgroup.Link{OtherID: id2, RelID: relID})
	return relID, nil
}

// RelationshipAddToIncoming completes the mirror of a cross-shard
// relationship on id2's shard. It does not allocate a relationship slot
// (the starting shard already owns that); it only records the incoming
// adjacency entry.
func (s *Shard) RelationshipAddToIncoming(relTypeID uint16, relID, id1, id2 uint64) error {
	n2, err := s.nodeTable(ids.TypeOf(id2))
	if err != nil {
		return err
	}
	if !n2.Valid(id2) {
		return fmt.Errorf("%w: node %d", ErrNotFound, id2)
	}
	n2.Incoming(id2).Add(relTypeID, linkgroup.Link{OtherID: id1, RelID: relID})
	return nil
}

// RelationshipRemoveGetIncoming erases relID from its starting node's
// outgoing adjacency and frees its slot, returning the relationship's type
// and ending node id so the caller can dispatch the mirror removal to the
// ending shard (which may be this same shard, if the relationship is
// same-shard).
func (s *Shard) RelationshipRemoveGetIncoming(relID uint64) (relType uint16, endingNodeID uint64, err error) {
	relType = ids.TypeOf(relID)
	rt, err := s.relTable(relType)
	if err != nil {
		return 0, 0, err
	}
	startingID, endingID, ok := rt.Endpoints(relID)
	if !ok {
		return 0, 0, fmt.Errorf("%w: relationship %d", ErrNotFound, relID)
	}
	if n, nerr := s.nodeTable(ids.TypeOf(startingID)); nerr == nil {
		n.Outgoing(startingID).RemoveLink(relType, endingID, relID)
	}
	rt.Remove(relID)
	return relType, endingID, nil
}

// RelationshipRemoveIncoming erases the mirror of relType's relID from
// endingNodeID's incoming adjacency. Returns false if endingNodeID has no
// such incoming link (e.g. the relationship was already an orphan).
func (s *Shard) RelationshipRemoveIncoming(relType uint16, relID, endingNodeID uint64) (bool, error) {
	n, err := s.nodeTable(ids.TypeOf(endingNodeID))
	if err != nil {
		return false, err
	}
	return n.Incoming(endingNodeID).RemoveRelID(relID), nil
}

// RemoteRelRemoval describes a relationship removal that node removal
// discovered must be dispatched to another shard, because the
// relationship's counterpart side lives there.
type RemoteRelRemoval struct {
	RelID      uint64
	RelType    uint16
	OtherShard uint16
	// OtherID is the counterpart node id on OtherShard: the relationship's
	// ending node when WasOutgoing is true, its starting node otherwise.
	// The peered dispatcher needs it as the argument to whichever remote
	// removal method WasOutgoing selects.
	OtherID uint64
	// WasOutgoing reports whether the removed node held this link as
	// outgoing (so the remote shard must erase it from its incoming side)
	// or incoming (remote erases from its outgoing side).
	WasOutgoing bool
}

// NodeRemove erases id's key, properties and adjacency, freeing its slot.
// Every link whose counterpart is local is severed on both sides and its
// relationship slot freed; every link whose counterpart is remote is
// reported back as a RemoteRelRemoval for the peered caller to dispatch.
func (s *Shard) NodeRemove(id uint64) ([]RemoteRelRemoval, error) {
	t, err := s.nodeTable(ids.TypeOf(id))
	if err != nil {
		return nil, err
	}
	if !t.Valid(id) {
		return nil, fmt.Errorf("%w: node %d", ErrNotFound, id)
	}

	var remote []RemoteRelRemoval

	for _, group := range t.Outgoing(id).Groups() {
		for _, link := range group.Links {
			otherShard := ids.ShardOf(link.OtherID)
			if otherShard == s.id {
				if otherTable, oerr := s.nodeTable(ids.TypeOf(link.OtherID)); oerr == nil {
					otherTable.Incoming(link.OtherID).RemoveRelID(link.RelID)
				}
				if rt, rerr := s.relTable(group.RelType); rerr == nil {
					rt.Remove(link.RelID)
				}
				continue
			}
			remote = append(remote, RemoteRelRemoval{
				RelID:       link.RelID,
				RelType:     group.RelType,
				OtherShard:  otherShard,
				OtherID:     link.OtherID,
				WasOutgoing: true,
			})
			if rt, rerr := s.relTable(group.RelType); rerr == nil {
				rt.Remove(link.RelID)
			}
		}
	}

	for _, group := range t.Incoming(id).Groups() {
		for _, link := range group.Links {
			otherShard := ids.ShardOf(link.OtherID)
			if otherShard == s.id {
				if otherTable, oerr := s.nodeTable(ids.TypeOf(link.OtherID)); oerr == nil {
					otherTable.Outgoing(link.OtherID).RemoveLink(group.RelType, id, link.RelID)
				}
				if rt, rerr := s.relTable(group.RelType); rerr == nil {
					rt.Remove(link.RelID)
				}
				continue
			}
			remote = append(remote, RemoteRelRemoval{
				RelID:       link.RelID,
				RelType:     group.RelType,
				OtherShard:  otherShard,
				OtherID:     link.OtherID,
				WasOutgoing: false,
			})
		}
	}

	t.Remove(id)
	return remote, nil
}

// RelationshipRemoveOutgoingAndSlot erases relID from startingNodeID's
// outgoing adjacency and frees its relationship slot. This is the remote
// leg a peered NodeRemove dispatches when the removed node held relID as
// an incoming link whose relationship slot lives on the starting node's
// shard (RemoteRelRemoval.WasOutgoing == false).
func (s *Shard) RelationshipRemoveOutgoingAndSlot(relType uint16, relID, startingNodeID uint64) (bool, error) {
	n, err := s.nodeTable(ids.TypeOf(startingNodeID))
	if err != nil {
		return false, err
	}
	removed := n.Outgoing(startingNodeID).RemoveRelID(relID)
	rt, err := s.relTable(relType)
	if err != nil {
		return removed, err
	}
	rt.Remove(relID)
	return removed, nil
}

// direction is exported via typetable.Direction for callers composing
// traversal operations; kept as an alias so this package's public surface
// doesn't force importers to know about typetable separately.
type Direction = typetable.Direction

const (
	DirOut  = typetable.DirOut
	DirIn   = typetable.DirIn
	DirBoth = typetable.DirBoth
)
