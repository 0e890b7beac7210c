// Package typetable implements the per-type slot-indexed storage described
// in spec §4.4: a NodeTable per node type and a RelTable per relationship
// type, each owning its own slot allocation, key/endpoint columns and
// property store. Both tables compose internal/slotalloc for deleted-slot
// reuse, internal/arena for dense columns, internal/linkgroup for adjacency
// and internal/propstore for properties -- typetable itself holds no
// storage primitives of its own, only the wiring spec §4.4 names.
package typetable

// Direction selects which side of a node's adjacency an operation reads.
// Per DESIGN.md's resolution of the spec's direction/filter overloads,
// every adjacency operation takes one Direction (defaulting to DirBoth) and
// an optional relationship-type filter instead of separate per-direction
// entry points.
type Direction int

const (
	DirBoth Direction = iota
	DirOut
	DirIn
)
