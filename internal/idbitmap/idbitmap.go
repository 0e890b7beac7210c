// Package idbitmap provides a compressed 64-bit id set, used by the peered
// coordinator to deduplicate neighbor fan-out across shards when
// cardinality is high (spec §4.7 "Neighbor aggregation", step 3).
//
// Grounded directly on the reference implementation's Roar.h/Roar.cpp,
// which wraps roaring::Roaring64Map for exactly this purpose. Go's
// equivalent, github.com/RoaringBitmap/roaring/v2/roaring64, is sourced
// from the AKJUS-bsc-erigon sibling example (the teacher itself has no
// compressed-bitmap dependency to reuse here).
package idbitmap

import "github.com/RoaringBitmap/roaring/v2/roaring64"

// Set is a compressed, ordered set of uint64 ids.
type Set struct {
	bm *roaring64.Bitmap
}

// New constructs an empty Set.
func New() *Set {
	return &Set{bm: roaring64.New()}
}

// Add inserts id, returning true if it was not already present (mirrors
// the reference Roar::addChecked).
func (s *Set) Add(id uint64) bool {
	return s.bm.CheckedAdd(id)
}

// AddAll inserts every id in ids.
func (s *Set) AddAll(ids []uint64) {
	for _, id := range ids {
		s.bm.Add(id)
	}
}

// Contains reports whether id is present.
func (s *Set) Contains(id uint64) bool {
	return s.bm.Contains(id)
}

// Remove deletes id. Returns true if it had been present.
func (s *Set) Remove(id uint64) bool {
	return s.bm.CheckedRemove(id)
}

// Cardinality returns the number of distinct ids in the set.
func (s *Set) Cardinality() uint64 {
	return s.bm.GetCardinality()
}

// ToSlice returns every id in ascending order.
func (s *Set) ToSlice() []uint64 {
	return s.bm.ToArray()
}

// Union merges other into s in place.
func (s *Set) Union(other *Set) {
	s.bm.Or(other.bm)
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	return s.bm.IsEmpty()
}

// Dedup returns the sorted, deduplicated contents of ids using a Set as
// scratch space. This is the primitive the peered coordinator uses to
// collapse "every neighbor id mentioned by every source node" down to the
// distinct set of ids it must fetch in the second fan-out.
func Dedup(ids []uint64) []uint64 {
	s := New()
	s.AddAll(ids)
	return s.ToSlice()
}
