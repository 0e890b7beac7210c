package peered

import (
	"sort"

	"github.com/ragedb/ragedb/internal/ids"
)

// partitionIDsByShard groups ids by owning shard, preserving each shard's
// relative input order (spec §4.7, step 1: "preserves per-shard input
// order"). Grounded on the reference's PartitionIdsByShardId
// (peered/Helpers.cpp), which inserts into a per-shard sorted vector; here
// the caller is responsible for pre-sorting idList when ordered output
// matters, and partitioning by append alone preserves that order.
func partitionIDsByShard(idList []uint64) map[uint16][]uint64 {
	out := make(map[uint16][]uint64)
	for _, id := range idList {
		sh := ids.ShardOf(id)
		out[sh] = append(out[sh], id)
	}
	return out
}

// partitionKeysByShard groups (type, key) pairs by owning shard using the
// id codec's hash, mirroring PartitionNodesByNodeKeys.
func partitionKeysByShard(shardCount uint16, typeName string, keys []string) map[uint16][]string {
	out := make(map[uint16][]string)
	for _, key := range keys {
		sh := ids.OwningShard(shardCount, typeName, key)
		out[sh] = append(out[sh], key)
	}
	return out
}

// ascendingShardIDs returns the shard ids present in a partition map, sorted
// ascending. The pagination algorithm (spec §4.7) and any merge that must
// reproduce a deterministic global order walk shards in this order.
func ascendingShardIDs[T any](m map[uint16]T) []uint16 {
	out := make([]uint16, 0, len(m))
	for sh := range m {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
