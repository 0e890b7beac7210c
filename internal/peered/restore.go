package peered

import (
	"context"
	"fmt"

	"github.com/ragedb/ragedb/internal/schema"
)

// RageDB keeps no on-disk state of its own (spec §6, "Persisted state
// layout"): durability is the caller's responsibility, achieved by
// recording every mutating call to an external append-only log and
// replaying it through Restore to rebuild a Coordinator after a restart.
// This module ships no log store of its own; the caller records the
// Operations and hands them back in order.

// OpKind tags which Coordinator method an Operation replays.
type OpKind uint8

const (
	OpRegisterNodeType OpKind = iota
	OpRegisterRelationshipType
	OpRegisterNodeProperty
	OpRegisterRelationshipProperty
	OpNodeAdd
	OpNodeRemove
	OpRelationshipAdd
	OpRelationshipRemove
)

// Operation is one recorded mutation. Only the fields relevant to Op are
// read; the rest are left zero.
type Operation struct {
	Op OpKind

	TypeName string         // RegisterNodeType/RelationshipType, RegisterNodeProperty/RelationshipProperty, NodeAdd, RelationshipAdd
	Property string         // RegisterNodeProperty/RelationshipProperty
	PropKind schema.Kind    // RegisterNodeProperty/RelationshipProperty
	Key      string         // NodeAdd
	Properties map[string]interface{} // NodeAdd, RelationshipAdd

	NodeID uint64 // NodeRemove
	ID1    uint64 // RelationshipAdd: starting node
	ID2    uint64 // RelationshipAdd: ending node
	RelID  uint64 // RelationshipRemove
}

// Restore replays ops in order against c, stopping at the first failure.
// The caller is expected to have recorded ops in the same order the
// original calls were issued; Restore does not reorder or batch them, so
// a log that interleaves schema registration with data mutation replays
// correctly as long as it was recorded that way.
func (c *Coordinator) Restore(ctx context.Context, ops []Operation) error {
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.replayOne(ctx, op); err != nil {
			return fmt.Errorf("peered: restore operation %d: %w", i, err)
		}
	}
	return nil
}

func (c *Coordinator) replayOne(ctx context.Context, op Operation) error {
	switch op.Op {
	case OpRegisterNodeType:
		c.RegisterNodeType(op.TypeName)
		return nil
	case OpRegisterRelationshipType:
		c.RegisterRelationshipType(op.TypeName)
		return nil
	case OpRegisterNodeProperty:
		_, err := c.RegisterNodeProperty(op.TypeName, op.Property, op.PropKind)
		return err
	case OpRegisterRelationshipProperty:
		_, err := c.RegisterRelationshipProperty(op.TypeName, op.Property, op.PropKind)
		return err
	case OpNodeAdd:
		_, err := c.NodeAdd(ctx, op.TypeName, op.Key, op.Properties)
		return err
	case OpNodeRemove:
		_, err := c.NodeRemove(ctx, op.NodeID)
		return err
	case OpRelationshipAdd:
		_, err := c.RelationshipAdd(ctx, op.TypeName, op.ID1, op.ID2, op.Properties)
		return err
	case OpRelationshipRemove:
		_, err := c.RelationshipRemove(ctx, op.RelID)
		return err
	default:
		return fmt.Errorf("unknown operation kind %d", op.Op)
	}
}
