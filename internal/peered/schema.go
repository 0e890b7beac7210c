package peered

import (
	"fmt"

	"github.com/ragedb/ragedb/internal/schema"
)

// RegisterNodeType registers name as a node type if it is not already
// known, returning its id either way (spec §5: process-wide write lock
// around type registration).
func (c *Coordinator) RegisterNodeType(name string) uint16 {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	return c.nodeTypes.Insert(name)
}

// RegisterRelationshipType registers name as a relationship type.
func (c *Coordinator) RegisterRelationshipType(name string) uint16 {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	return c.relTypes.Insert(name)
}

// RegisterNodeProperty registers a property name/kind on an already-known
// node type.
func (c *Coordinator) RegisterNodeProperty(typeName, property string, kind schema.Kind) (uint8, error) {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return 0, fmt.Errorf("%w: node type %q", ErrUnknownType, typeName)
	}
	return c.nodeTypes.Properties(typeID).Register(property, kind)
}

// RegisterRelationshipProperty registers a property name/kind on an
// already-known relationship type.
func (c *Coordinator) RegisterRelationshipProperty(typeName, property string, kind schema.Kind) (uint8, error) {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	typeID, ok := c.relTypes.Snapshot().TypeID(typeName)
	if !ok {
		return 0, fmt.Errorf("%w: relationship type %q", ErrUnknownType, typeName)
	}
	return c.relTypes.Properties(typeID).Register(property, kind)
}
