package peered

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/shard"
)

// RelationshipAdd creates a relTypeName relationship id1->id2, choreographed
// per spec §4.7 "Cross-shard relationship creation":
//  1. the relationship type must already be registered process-wide;
//  2. id1 and id2 are validated on their own shards in parallel, mirroring
//     the reference's RelationshipAddPeered: if either is invalid, the
//     call returns 0 with no state change at all — no relationship slot is
//     allocated and no adjacency entry is written;
//  3. only once both endpoints are confirmed live does the starting shard
//     allocate the relationship and the ending shard record the mirror;
//  4. if the second leg still fails (e.g. the node was removed between the
//     validation check and the second dispatch), the relationship is
//     orphaned on id1's side and RelationshipAdd returns 0 — this residual
//     race is deliberate (spec §4.7, step 4): stronger semantics require a
//     commit log, out of scope here.
func (c *Coordinator) RelationshipAdd(ctx context.Context, relTypeName string, id1, id2 uint64, properties map[string]interface{}) (uint64, error) {
	relTypeID, ok := c.relTypes.Snapshot().TypeID(relTypeName)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, relTypeName)
	}

	shard1, shard2 := ids.ShardOf(id1), ids.ShardOf(id2)

	if shard1 == shard2 {
		return dispatch(c, shard1, func(s *shard.Shard) (uint64, error) {
			return s.RelationshipAddSameShard(relTypeID, id1, id2, properties)
		})
	}

	valid1, valid2, err := c.validateEndpoints(ctx, shard1, id1, shard2, id2)
	if err != nil {
		return 0, err
	}
	if !valid1 || !valid2 {
		return 0, nil
	}

	relID, err := dispatch(c, shard1, func(s *shard.Shard) (uint64, error) {
		return s.RelationshipAddToOutgoing(relTypeID, id1, id2, properties)
	})
	if err != nil {
		return 0, err
	}

	if err := shard.SubmitVoid(c.executors[shard2], func() error {
		return c.shards[shard2].RelationshipAddToIncoming(relTypeID, relID, id1, id2)
	}); err != nil {
		c.metrics.IncOrphanedRelationship()
		c.logger.Warn("peered: cross-shard relationship second leg failed, orphaned on starting shard",
			zap.Uint64("rel_id", relID), zap.Error(err))
		return 0, nil
	}
	return relID, nil
}

// validateEndpoints checks id1 on shard1 and id2 on shard2 in parallel,
// the same "validate both before touching either" choreography the
// reference's RelationshipAddPeered/RelationshipAddEmptyPeered use ahead of
// RelationshipAddToOutgoing.
func (c *Coordinator) validateEndpoints(ctx context.Context, shard1 uint16, id1 uint64, shard2 uint16, id2 uint64) (valid1, valid2 bool, err error) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := dispatch(c, shard1, func(s *shard.Shard) (bool, error) {
			return s.NodeValid(id1)
		})
		valid1 = v
		return err
	})
	g.Go(func() error {
		v, err := dispatch(c, shard2, func(s *shard.Shard) (bool, error) {
			return s.NodeValid(id2)
		})
		valid2 = v
		return err
	})
	if err := g.Wait(); err != nil {
		return false, false, err
	}
	return valid1, valid2, nil
}

// RelationshipRemove erases relID: first on its starting shard (which also
// reports the relationship's type and ending node id), then dispatches the
// mirror erasure to the ending shard.
func (c *Coordinator) RelationshipRemove(ctx context.Context, relID uint64) (bool, error) {
	startingShard := ids.ShardOf(relID)

	type legResult struct {
		relType  uint16
		endingID uint64
	}
	leg, err := dispatch(c, startingShard, func(s *shard.Shard) (legResult, error) {
		relType, endingID, err := s.RelationshipRemoveGetIncoming(relID)
		return legResult{relType: relType, endingID: endingID}, err
	})
	if err != nil {
		if errors.Is(err, shard.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	endingShard := ids.ShardOf(leg.endingID)
	return dispatch(c, endingShard, func(s *shard.Shard) (bool, error) {
		return s.RelationshipRemoveIncoming(leg.relType, relID, leg.endingID)
	})
}
