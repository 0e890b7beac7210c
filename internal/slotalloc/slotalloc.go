// Package slotalloc implements the per-type slot allocation discipline
// shared by node and relationship type tables (spec §3 "Slot stability":
// slots freed by removal are reused from a deleted-slot set, minimum-first,
// on the next insertion of that type).
//
// Adapted from the teacher's internal/genring, which hands out
// monotonically increasing generation ids and recycles ring slots on
// rotation; here the "monotonic counter plus recycling bookkeeping"
// discipline is turned around: slots recycle before the counter advances,
// chosen minimum-first via a container/heap min-heap, matching the
// reference implementation's getDeletedIdsMinimum.
package slotalloc

import (
	"container/heap"

	"github.com/ragedb/ragedb/internal/arena"
)

// Allocator hands out slot indices for one (kind-of-entity, type) arena.
type Allocator struct {
	next    uint64
	deleted minHeap
	live    *arena.Bitset
}

// New constructs an empty Allocator.
func New() *Allocator {
	return &Allocator{live: arena.NewBitset()}
}

// Allocate returns a slot for a fresh insertion: the minimum deleted slot
// if one exists, else the next never-used slot. The returned slot is
// marked live.
func (a *Allocator) Allocate() uint64 {
	var slot uint64
	if a.deleted.Len() > 0 {
		slot = heap.Pop(&a.deleted).(uint64)
	} else {
		slot = a.next
		a.next++
	}
	a.live.Set(slot)
	return slot
}

// Free vacates slot, inserting it into the deleted set for future reuse.
// Freeing an already-free slot is a no-op (defensive; callers are expected
// to check Live first).
func (a *Allocator) Free(slot uint64) {
	if !a.live.Test(slot) {
		return
	}
	a.live.Clear(slot)
	heap.Push(&a.deleted, slot)
}

// Live reports whether slot is currently allocated.
func (a *Allocator) Live(slot uint64) bool {
	return a.live.Test(slot)
}

// LiveSlots returns every currently allocated slot, ascending.
func (a *Allocator) LiveSlots() []uint64 {
	return a.live.Slots()
}

// LiveCount returns the number of currently allocated slots.
func (a *Allocator) LiveCount() uint64 {
	return a.live.Count()
}

// MaxAssigned returns one past the highest slot ever handed out (the size
// the backing columns must be grown to). Equals Allocate-call count minus
// reused allocations, i.e. the high-water mark.
func (a *Allocator) MaxAssigned() uint64 {
	return a.next
}

// minHeap is a container/heap of free slots, popped minimum-first.
type minHeap []uint64

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(uint64)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
