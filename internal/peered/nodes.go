package peered

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/shard"
)

// NodeGetID resolves (typeName, key) to a node id, or the invalid sentinel
// if typeName is unknown or the node doesn't exist.
func (c *Coordinator) NodeGetID(ctx context.Context, typeName, key string) (uint64, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return ids.Invalid, nil
	}
	sh := ids.OwningShard(c.ShardCount(), typeName, key)
	return dispatch(c, sh, func(s *shard.Shard) (uint64, error) {
		id, found, err := s.NodeGetID(typeID, key)
		if err != nil || !found {
			return ids.Invalid, err
		}
		return id, nil
	})
}

// NodeAddEmpty returns the node keyed by (typeName, key), creating it with
// no properties if absent.
func (c *Coordinator) NodeAddEmpty(ctx context.Context, typeName, key string) (uint64, error) {
	return c.NodeAdd(ctx, typeName, key, nil)
}

// NodeAdd returns the node keyed by (typeName, key), creating it with
// properties if absent. Concurrent calls for the same (typeName, key) are
// collapsed into a single dispatch via nodeAddGroup, so racing callers (bulk
// import, concurrent upserts) never create the same key twice nor pay for
// more than one shard round trip.
func (c *Coordinator) NodeAdd(ctx context.Context, typeName, key string, properties map[string]interface{}) (uint64, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return ids.Invalid, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	sh := ids.OwningShard(c.ShardCount(), typeName, key)

	v, err, _ := c.nodeAddGroup.Do(typeName+"\x00"+key, func() (interface{}, error) {
		return dispatch(c, sh, func(s *shard.Shard) (uint64, error) {
			if properties == nil {
				return s.NodeAddEmpty(typeID, key)
			}
			return s.NodeAdd(typeID, key, properties)
		})
	})
	if err != nil {
		return ids.Invalid, err
	}
	return v.(uint64), nil
}

// NodeKeys resolves a batch of ids to their keys in O(shards) dispatches
// (spec §4.7, step 2: "never one sub-call per id"). Ids that no longer name
// a live node are simply absent from the result map.
func (c *Coordinator) NodeKeys(ctx context.Context, nodeIDs []uint64) (map[uint64]string, error) {
	sharded := partitionIDsByShard(nodeIDs)
	perShard, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) (map[uint64]string, error) {
		out := make(map[uint64]string, len(group))
		for _, id := range group {
			key, err := s.NodeKey(id)
			if err != nil {
				return nil, err
			}
			if key != "" {
				out[id] = key
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	combined := make(map[uint64]string, len(nodeIDs))
	for _, m := range perShard {
		for id, key := range m {
			combined[id] = key
		}
	}
	return combined, nil
}

// NodeGetIDs resolves a batch of (typeName, key) pairs to ids in O(shards)
// dispatches, grounded on the reference's NodesGetIdsPeered
// (peered/Nodes.cpp). Keys that don't name a live node are simply absent
// from the result, following the same absence-never-errors convention as
// NodeGetID. Used by bulk CSV relationship import to resolve every
// endpoint key before choreographing the cross-shard add.
func (c *Coordinator) NodeGetIDs(ctx context.Context, typeName string, keys []string) (map[string]uint64, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	sharded := partitionKeysByShard(c.ShardCount(), typeName, keys)

	results := make(map[uint16]map[string]uint64, len(sharded))
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for sh, group := range sharded {
		sh, group := sh, group
		g.Go(func() error {
			out, err := dispatch(c, sh, func(s *shard.Shard) (map[string]uint64, error) {
				found := make(map[string]uint64, len(group))
				for _, key := range group {
					id, ok, err := s.NodeGetID(typeID, key)
					if err != nil {
						return nil, err
					}
					if ok {
						found[key] = id
					}
				}
				return found, nil
			})
			if err != nil {
				return err
			}
			mu.Lock()
			results[sh] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	combined := make(map[string]uint64, len(keys))
	for _, m := range results {
		for key, id := range m {
			combined[key] = id
		}
	}
	return combined, nil
}

// NodeRemove erases id, severing every relationship it participates in.
// Local counterparts are severed as part of the owning shard's NodeRemove;
// remote counterparts are cleaned up with a best-effort second pass (spec
// §7: "node removal's remote counterpart cleanup" is documented
// best-effort) — a failure there is logged and does not fail the overall
// removal, since the node itself is already gone.
func (c *Coordinator) NodeRemove(ctx context.Context, id uint64) (bool, error) {
	sh := ids.ShardOf(id)
	remote, err := dispatch(c, sh, func(s *shard.Shard) ([]shard.RemoteRelRemoval, error) {
		return s.NodeRemove(id)
	})
	if err != nil {
		if errors.Is(err, shard.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	var wg sync.WaitGroup
	for _, r := range remote {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cleanupErr error
			if r.WasOutgoing {
				_, cleanupErr = dispatch(c, r.OtherShard, func(s *shard.Shard) (bool, error) {
					return s.RelationshipRemoveIncoming(r.RelType, r.RelID, r.OtherID)
				})
			} else {
				_, cleanupErr = dispatch(c, r.OtherShard, func(s *shard.Shard) (bool, error) {
					return s.RelationshipRemoveOutgoingAndSlot(r.RelType, r.RelID, r.OtherID)
				})
			}
			if cleanupErr != nil {
				c.metrics.IncOrphanedRelationship()
				c.logger.Warn("peered: remote relationship cleanup failed, relationship left orphaned",
					zap.Uint64("rel_id", r.RelID), zap.Error(cleanupErr))
			}
		}()
	}
	wg.Wait()
	return true, nil
}

// AllNodeIDs implements the pagination algorithm of spec §4.7: query every
// shard's live count for typeName, compute each contributing shard's local
// [skip, skip+limit) window so the concatenation in ascending shard-id
// order is exactly the caller's global window, then dispatch only to the
// shards that contribute.
func (c *Coordinator) AllNodeIDs(ctx context.Context, typeName string, skip, limit int) ([]uint64, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return nil, nil
	}

	counts := make([]uint64, c.ShardCount())
	g, _ := errgroup.WithContext(ctx)
	for sh := uint16(0); sh < c.ShardCount(); sh++ {
		sh := sh
		g.Go(func() error {
			n, err := dispatch(c, sh, func(s *shard.Shard) (uint64, error) {
				return s.NodeTypeCount(typeID)
			})
			if err != nil {
				return err
			}
			counts[sh] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := planPagination(counts, skip, limit)
	if len(plan) == 0 {
		return nil, nil
	}

	type windowResult struct {
		shard uint16
		ids   []uint64
	}
	results := make([]windowResult, len(plan))
	eg, egctx := errgroup.WithContext(ctx)
	for i, w := range plan {
		i, w := i, w
		eg.Go(func() error {
			if egctx.Err() != nil {
				return egctx.Err()
			}
			got, err := dispatch(c, w.shard, func(s *shard.Shard) ([]uint64, error) {
				return s.AllNodeIDs(typeID, w.skip, w.limit)
			})
			if err != nil {
				return err
			}
			results[i] = windowResult{shard: w.shard, ids: got}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].shard < results[j].shard })
	var out []uint64
	for _, r := range results {
		out = append(out, r.ids...)
	}
	return out, nil
}

// NodeTypeCount returns the total number of live nodes of typeName across
// every shard, the same per-shard count AllNodeIDs gathers for its
// pagination plan, exposed standalone for callers that just need a total
// (e.g. a stats/inspection endpoint).
func (c *Coordinator) NodeTypeCount(ctx context.Context, typeName string) (uint64, error) {
	typeID, ok := c.nodeTypes.Snapshot().TypeID(typeName)
	if !ok {
		return 0, nil
	}
	var total uint64
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for sh := uint16(0); sh < c.ShardCount(); sh++ {
		sh := sh
		g.Go(func() error {
			n, err := dispatch(c, sh, func(s *shard.Shard) (uint64, error) {
				return s.NodeTypeCount(typeID)
			})
			if err != nil {
				return err
			}
			mu.Lock()
			total += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

// shardWindow is one shard's contribution to a global pagination window.
type shardWindow struct {
	shard       uint16
	skip, limit int
}

// planPagination computes, per spec §4.7's pagination algorithm, the local
// skip/limit each shard (in ascending id order) must apply so that
// concatenating their results yields exactly [skip, skip+limit) of the
// global ordering implied by counts. limit < 0 means "no limit."
func planPagination(counts []uint64, skip, limit int) []shardWindow {
	var plan []shardWindow
	remaining := limit
	current := 0 // global index of the first id on the shard being considered
	for sh, count := range counts {
		shardStart := current
		shardEnd := current + int(count)
		current = shardEnd

		if shardEnd <= skip {
			continue // this shard's whole range is before the window
		}
		if limit >= 0 && remaining <= 0 {
			break
		}

		localSkip := 0
		if skip > shardStart {
			localSkip = skip - shardStart
		}
		localCount := int(count) - localSkip
		if localCount <= 0 {
			continue
		}
		localLimit := -1
		if limit >= 0 {
			localLimit = localCount
			if remaining < localLimit {
				localLimit = remaining
			}
			remaining -= localLimit
		}
		plan = append(plan, shardWindow{shard: uint16(sh), skip: localSkip, limit: localLimit})
	}
	return plan
}
