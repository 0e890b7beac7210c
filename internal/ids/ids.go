// Package ids implements RageDB's external identifier codec: the
// branch-free packing of (shard, type, slot) into a single 64-bit value,
// and the owning-shard hash used to place freshly created nodes.
//
// The bit layout is part of the public wire contract (spec §6) and must
// never change without a version bump of the whole module:
//
//	bits  0..9   shard id          (10 bits, up to 1024 shards)
//	bits 10..25  type id           (16 bits, up to 65535 types per kind)
//	bits 26..63  slot              (38 bits, up to ~2.7e11 live per type)
//
// Id 0 is reserved as the absent/invalid sentinel.
package ids

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

const (
	ShardBits = 10
	TypeBits  = 16
	SlotBits  = 64 - ShardBits - TypeBits

	MaxShards = 1 << ShardBits
	MaxTypes  = 1 << TypeBits
	MaxSlot   = 1 << SlotBits

	shardMask = uint64(MaxShards - 1)
	typeMask  = uint64(MaxTypes - 1)
)

// Invalid is the reserved sentinel id meaning "absent."
const Invalid uint64 = 0

// Encode packs (shard, typeID, slot) into an external id. Callers are
// responsible for keeping shard < MaxShards, typeID < MaxTypes and
// slot < MaxSlot; out-of-range inputs are masked, not rejected, to keep the
// operation branch-free as required by spec §4.1.
func Encode(shard uint16, typeID uint16, slot uint64) uint64 {
	return (slot << (ShardBits + TypeBits)) | (uint64(typeID) << ShardBits) | (uint64(shard) & shardMask)
}

// ShardOf returns the shard component of an external id.
func ShardOf(id uint64) uint16 {
	return uint16(id & shardMask)
}

// TypeOf returns the type component of an external id.
func TypeOf(id uint64) uint16 {
	return uint16((id >> ShardBits) & typeMask)
}

// SlotOf returns the slot component of an external id.
func SlotOf(id uint64) uint64 {
	return id >> (ShardBits + TypeBits)
}

// Decode is the inverse of Encode, returning all three components at once.
func Decode(id uint64) (shard uint16, typeID uint16, slot uint64) {
	return ShardOf(id), TypeOf(id), SlotOf(id)
}

// OwningShard computes the shard that owns a node identified by
// (typeName, key), using a process-stable hash (xxhash, unseeded) so that a
// replay log built from external ids stays coherent across restarts of the
// same build. shardCount must be > 0.
//
// The bucket selection is a 128-bit multiply-high: hash(type+"-"+key) is
// multiplied by shardCount and the top 64 bits of the 128-bit product are
// taken as the bucket, matching the reference implementation's
// `(unsigned __int128)hash * cpus >> 64`.
func OwningShard(shardCount uint16, typeName, key string) uint16 {
	h := HashTypeKey(typeName, key)
	return MulHighBucket(h, shardCount)
}

// HashTypeKey computes the stable 64-bit hash of a (type, key) pair, using
// the reference implementation's "type-key" concatenation.
func HashTypeKey(typeName, key string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(typeName)
	_, _ = d.WriteString("-")
	_, _ = d.WriteString(key)
	return d.Sum64()
}

// MulHighBucket buckets a 64-bit hash uniformly into [0, n) using a
// multiply-high, avoiding the hash%n modulo-bias pitfall for non-power-of-
// two n.
func MulHighBucket(h uint64, n uint16) uint16 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(h, uint64(n))
	return uint16(hi)
}

// ShardOfID returns the shard owning an already-encoded id, or 0 for the
// invalid sentinel (spec §4.1: "Decoding the reserved id 0 returns shard=0,
// type=0, slot=0").
func ShardOfID(id uint64) uint16 {
	if id == Invalid {
		return 0
	}
	return ShardOf(id)
}
