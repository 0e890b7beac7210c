// Package linkgroup implements RageDB's adjacency representation: for a
// single node and direction (outgoing or incoming), a list of groups keyed
// by relationship type, each holding a sorted sequence of links (spec
// §4.5). Grouping by relationship type keeps per-node memory proportional
// to degree rather than to the number of relationship types in the schema,
// and sorted-within-group insertion makes set operations over one node's
// adjacency cheap.
//
// Adapted from the reference implementation's Group/Link structs
// (originally a rel-type-keyed vector of a boost unordered_multimap); here
// a single sorted slice per group is used since sorted insert is mandated
// by spec §4.5 regardless of the backing structure, and a sorted slice is
// the idiomatic Go way to get that for free.
package linkgroup

import "sort"

// Link pairs a relationship's counterpart node id with the relationship's
// own id.
type Link struct {
	OtherID uint64
	RelID   uint64
}

// Group bundles every link of one relationship type attached to one node.
type Group struct {
	RelType uint16
	Links   []Link
}

// List is a node's adjacency for one direction: groups sorted by RelType,
// found by binary search.
type List struct {
	groups []Group
}

// NewList constructs an empty List.
func NewList() *List { return &List{} }

func (l *List) find(relType uint16) (int, bool) {
	i := sort.Search(len(l.groups), func(i int) bool { return l.groups[i].RelType >= relType })
	if i < len(l.groups) && l.groups[i].RelType == relType {
		return i, true
	}
	return i, false
}

// Add inserts link into the group for relType (creating it if necessary),
// keeping the group's Links sorted by (OtherID, RelID).
func (l *List) Add(relType uint16, link Link) {
	i, found := l.find(relType)
	if !found {
		l.groups = append(l.groups, Group{})
		copy(l.groups[i+1:], l.groups[i:])
		l.groups[i] = Group{RelType: relType}
	}
	g := &l.groups[i]
	j := sort.Search(len(g.Links), func(j int) bool {
		if g.Links[j].OtherID != link.OtherID {
			return g.Links[j].OtherID >= link.OtherID
		}
		return g.Links[j].RelID >= link.RelID
	})
	g.Links = append(g.Links, Link{})
	copy(g.Links[j+1:], g.Links[j:])
	g.Links[j] = link
}

// Remove deletes every link in relType's group matching pred, dropping the
// group entirely if it becomes empty. Returns the number of links removed.
func (l *List) Remove(relType uint16, pred func(Link) bool) int {
	i, found := l.find(relType)
	if !found {
		return 0
	}
	g := &l.groups[i]
	kept := g.Links[:0]
	removed := 0
	for _, link := range g.Links {
		if pred(link) {
			removed++
			continue
		}
		kept = append(kept, link)
	}
	g.Links = kept
	if len(g.Links) == 0 {
		l.groups = append(l.groups[:i], l.groups[i+1:]...)
	}
	return removed
}

// RemoveLink is a convenience wrapper around Remove matching a specific
// (otherID, relID) pair; at most one link is removed since links are
// unique within a group.
func (l *List) RemoveLink(relType uint16, otherID, relID uint64) bool {
	n := l.Remove(relType, func(link Link) bool {
		return link.OtherID == otherID && link.RelID == relID
	})
	return n > 0
}

// RemoveRelID removes the single link carrying relID, across every group
// (relType unknown to the caller). Returns whether a link was removed.
func (l *List) RemoveRelID(relID uint64) bool {
	for i := 0; i < len(l.groups); i++ {
		g := &l.groups[i]
		for j, link := range g.Links {
			if link.RelID == relID {
				g.Links = append(g.Links[:j], g.Links[j+1:]...)
				if len(g.Links) == 0 {
					l.groups = append(l.groups[:i], l.groups[i+1:]...)
				}
				return true
			}
		}
	}
	return false
}

// Group returns the group for relType, if any.
func (l *List) Group(relType uint16) (Group, bool) {
	i, found := l.find(relType)
	if !found {
		return Group{}, false
	}
	return l.groups[i], true
}

// Groups returns every group, ordered by relationship type.
func (l *List) Groups() []Group {
	return l.groups
}

// RelTypes returns every relationship type with at least one link.
func (l *List) RelTypes() []uint16 {
	out := make([]uint16, len(l.groups))
	for i, g := range l.groups {
		out[i] = g.RelType
	}
	return out
}

// Degree returns the total number of links, optionally filtered to a set
// of relationship types (nil/empty means "all types", per spec §9's
// collapsed-overload decision).
func (l *List) Degree(relTypes []uint16) uint64 {
	if len(relTypes) == 0 {
		var n uint64
		for _, g := range l.groups {
			n += uint64(len(g.Links))
		}
		return n
	}
	var n uint64
	for _, rt := range relTypes {
		if g, ok := l.Group(rt); ok {
			n += uint64(len(g.Links))
		}
	}
	return n
}

// Iter returns every link matching an optional relationship-type filter
// (nil/empty = all types). Unfiltered, links come in ascending RelType then
// (OtherID, RelID) order; with a filter, groups come in the order of
// relTypes, each sorted by (OtherID, RelID).
func (l *List) Iter(relTypes []uint16) []Link {
	if len(relTypes) == 0 {
		var out []Link
		for _, g := range l.groups {
			out = append(out, g.Links...)
		}
		return out
	}
	var out []Link
	for _, rt := range relTypes {
		if g, ok := l.Group(rt); ok {
			out = append(out, g.Links...)
		}
	}
	return out
}

// Empty reports whether the list has no links at all.
func (l *List) Empty() bool { return len(l.groups) == 0 }
