package peered

import (
	"context"
	"fmt"
	"sort"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/shard"
)

// FilterRelationshipCount is FilterNodeCount for relationships.
func (c *Coordinator) FilterRelationshipCount(ctx context.Context, typeName string, candidateIDs []uint64, name string, op propstore.Op, value propstore.Value) (int, error) {
	typeID, ok := c.relTypes.Snapshot().TypeID(typeName)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	sharded := partitionIDsByShard(candidateIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) (int, error) {
		return s.FilterRelationshipCount(typeID, group, name, op, value)
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

// FilterRelationshipIDs is FilterNodeIDs for relationships.
func (c *Coordinator) FilterRelationshipIDs(ctx context.Context, typeName string, candidateIDs []uint64, name string, op propstore.Op, value propstore.Value, skip, limit int, sortDir propstore.SortDir) ([]uint64, error) {
	typeID, ok := c.relTypes.Snapshot().TypeID(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	sharded := partitionIDsByShard(candidateIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) ([]uint64, error) {
		return s.FilterRelationshipIDs(typeID, group, name, op, value, 0, -1, propstore.SortNone)
	})
	if err != nil {
		return nil, err
	}

	var matched []uint64
	for _, ids := range perShard {
		matched = append(matched, ids...)
	}

	if sortDir != propstore.SortNone && len(matched) > 1 {
		values, err := c.relationshipPropertyValues(ctx, typeID, matched, name)
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

func (c *Coordinator) relationshipPropertyValues(ctx context.Context, typeID uint16, matchIDs []uint64, name string) (map[uint64]propstore.Value, error) {
	sharded := partitionIDsByShard(matchIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) (map[uint64]propstore.Value, error) {
		store, err := s.RelationshipProperties(typeID)
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

// RelationshipTypeCount is NodeTypeCount for relationships.
func (c *Coordinator) RelationshipTypeCount(ctx context.Context, typeName string) (uint64, error) {
	typeID, ok := c.relTypes.Snapshot().TypeID(typeName)
	if !ok {
		return 0, nil
	}
	var total uint64
	for sh := uint16(0); sh < c.ShardCount(); sh++ {
		n, err := dispatch(c, sh, func(s *shard.Shard) (uint64, error) {
			return s.RelationshipTypeCount(typeID)
		})
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// AllRelationshipIDs is AllNodeIDs for relationships, following the same
// pagination algorithm (spec §4.7).
func (c *Coordinator) AllRelationshipIDs(ctx context.Context, typeName string, skip, limit int) ([]uint64, error) {
	typeID, ok := c.relTypes.Snapshot().TypeID(typeName)
	if !ok {
		return nil, nil
	}

	counts := make([]uint64, c.ShardCount())
	for sh := uint16(0); sh < c.ShardCount(); sh++ {
		n, err := dispatch(c, sh, func(s *shard.Shard) (uint64, error) {
			return s.RelationshipTypeCount(typeID)
		})
		if err != nil {
			return nil, err
		}
		counts[sh] = n
	}

	plan := planPagination(counts, skip, limit)
	var out []uint64
	for _, w := range plan {
		got, err := dispatch(c, w.shard, func(s *shard.Shard) ([]uint64, error) {
			return s.AllRelationshipIDs(typeID, w.skip, w.limit)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}
