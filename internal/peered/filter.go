package peered

import (
	"context"
	"fmt"
	"sort"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/setalgebra"
	"github.com/ragedb/ragedb/internal/shard"
)

// FilterNodeCount returns how many of candidateIDs (nodes of typeName)
// satisfy name op value, summed across every shard that owns one.
func (c *Coordinator) FilterNodeCount(ctx context.Context, typeName string, candidateIDs []uint64, name string, op propstore.Op, value propstore.Value) (int, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	sharded := partitionIDsByShard(candidateIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) (int, error) {
		return s.FilterNodeCount(typeID, group, name, op, value)
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range perShard {
		total += n
	}
	return total, nil
}

// FilterNodeIDs returns the subset of candidateIDs (nodes of typeName)
// satisfying name op value, windowed by skip/limit. Each contributing shard
// is asked for its own unsorted match set in one dispatch (spec §4.7, step
// 2); when sortDir requests an order, the matched ids' property values are
// re-fetched in a second O(shards) fan-out and the combined set is sorted
// at this layer before the window is applied, since no single shard holds
// every candidate's value.
func (c *Coordinator) FilterNodeIDs(ctx context.Context, typeName string, candidateIDs []uint64, name string, op propstore.Op, value propstore.Value, skip, limit int, sortDir propstore.SortDir) ([]uint64, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	sharded := partitionIDsByShard(candidateIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) ([]uint64, error) {
		return s.FilterNodeIDs(typeID, group, name, op, value, 0, -1, propstore.SortNone)
	})
	if err != nil {
		return nil, err
	}

	var matched []uint64
	for _, ids := range perShard {
		matched = append(matched, ids...)
	}

	if sortDir != propstore.SortNone && len(matched) > 1 {
		values, err := c.nodePropertyValues(ctx, typeID, matched, name)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(values[matched[i]], values[matched[j]])
			if sortDir == propstore.SortDescending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	return window(matched, skip, limit), nil
}

// nodePropertyValues fetches name's value for each of matchIDs, grouped by
// owning shard into O(shards) dispatches.
func (c *Coordinator) nodePropertyValues(ctx context.Context, typeID uint16, matchIDs []uint64, name string) (map[uint64]propstore.Value, error) {
	sharded := partitionIDsByShard(matchIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) (map[uint64]propstore.Value, error) {
		store, err := s.NodeProperties(typeID)
		if err != nil {
			return nil, err
		}
		out := make(map[uint64]propstore.Value, len(group))
		for _, id := range group {
			v, err := store.Get(ids.SlotOf(id), name)
			if err != nil {
				return nil, err
			}
			out[id] = v
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	combined := make(map[uint64]propstore.Value, len(matchIDs))
	for _, m := range perShard {
		for id, v := range m {
			combined[id] = v
		}
	}
	return combined, nil
}

// compareValues orders two property values for the cross-shard merge step;
// an adaptation of propstore's internal ordering restricted to what a
// caller needs to know about Kind from outside the package (scalar kinds
// order naturally, lists compare equal — there is no natural list order).
func compareValues(a, b propstore.Value) int {
	switch a.Kind {
	case schema.KindBoolean:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case schema.KindI64:
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	case schema.KindF64:
		switch {
		case a.F64 < b.F64:
			return -1
		case a.F64 > b.F64:
			return 1
		default:
			return 0
		}
	case schema.KindString:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// window returns [skip, skip+limit) of all. limit < 0 means "no limit."
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

// IntersectNodeIDs combines the results of several already-sorted
// predicates (spec §4.7 "Set algebra"), e.g. ANDing multiple FilterNodeIDs
// calls without a per-predicate round trip to every shard.
func IntersectNodeIDs(sortedIDSets ...[]uint64) []uint64 {
	return setalgebra.IntersectMany(sortedIDSets)
}

// DifferenceNodeIDs returns the sorted ids in a that are not in b.
func DifferenceNodeIDs(a, b []uint64) []uint64 {
	return setalgebra.Difference(a, b)
}
