package peered

import (
	"context"

	"github.com/ragedb/ragedb/internal/idbitmap"
	"github.com/ragedb/ragedb/internal/shard"
	"github.com/ragedb/ragedb/internal/typetable"
)

// Node is a lightweight node reference returned by neighbor aggregation:
// enough to identify and re-fetch a node (id, key) without forcing every
// caller to pay for a full property fetch.
type Node struct {
	ID  uint64
	Key string
}

// Neighbors resolves the neighbor set of every id in nodeIDs, in direction
// and optionally restricted to relTypes, following spec §4.7's five-step
// algorithm: partition by shard, resolve each id's link list locally,
// flatten and deduplicate the counterpart ids via a compressed bitmap,
// re-fetch those nodes in a second fan-out, then stitch results back using
// a node-id→key table. Grounded on the reference's
// NodeIdsGetNeighborsPeered (peered/Connected.cpp).
func (c *Coordinator) Neighbors(ctx context.Context, nodeIDs []uint64, direction typetable.Direction, relTypes []uint16) (map[uint64][]Node, error) {
	sharded := partitionIDsByShard(nodeIDs)

	linksByNode, err := fanOut(ctx, c, sharded, func(s *shard.Shard, group []uint64) (map[uint64][]typetable.Link, error) {
		out := make(map[uint64][]typetable.Link, len(group))
		for _, id := range group {
			links, err := s.NodeGetRelationshipsIDs(id, direction, relTypes)
			if err != nil {
				return nil, err
			}
			out[id] = links
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	combined := make(map[uint64][]typetable.Link, len(nodeIDs))
	var counterparts []uint64
	for _, perShard := range linksByNode {
		for id, links := range perShard {
			combined[id] = links
			for _, l := range links {
				counterparts = append(counterparts, l.OtherID)
			}
		}
	}
	counterparts = idbitmap.Dedup(counterparts)

	keys, err := c.NodeKeys(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	result := make(map[uint64][]Node, len(combined))
	for id, links := range combined {
		nodes := make([]Node, 0, len(links))
		for _, l := range links {
			nodes = append(nodes, Node{ID: l.OtherID, Key: keys[l.OtherID]})
		}
		result[id] = nodes
	}
	return result, nil
}
