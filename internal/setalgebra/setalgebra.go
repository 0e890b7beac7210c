// Package setalgebra implements sorted-sequence intersection and
// difference, including a k-way leapfrog join, over the sorted id lists
// RageDB's filter and link-group machinery produce (spec §4.7 "Set
// algebra").
//
// Grounded on the reference implementation's benchmark/intersection.cpp
// and benchmark/multi_set_intersection.cpp, which compare unordered-set,
// sorted-merge and galloping strategies; here the sorted-merge-with-
// galloping strategy is the production path rather than a benchmarked
// alternative. All functions assume their inputs are already sorted
// ascending; callers sort first if needed.
package setalgebra

import "sort"

// Intersect returns the sorted intersection of two sorted, deduplicated
// uint64 sequences, using a merge with galloping advance when one side is
// much longer than the other.
func Intersect(a, b []uint64) []uint64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	// Always gallop through the longer sequence using the shorter one's
	// cursor, so the complexity is O(min(|a|,|b|) * log(max(|a|,|b|))).
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make([]uint64, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			out = append(out, a[i])
			i++
			j++
			continue
		}
		if a[i] < b[j] {
			i++
			continue
		}
		// a[i] > b[j]: gallop j forward in b to catch up to a[i].
		j = gallop(b, j, a[i])
	}
	return out
}

// Difference returns the sorted sequence of elements in a that do not
// appear in b (a \ b).
func Difference(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a))
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) || a[i] < b[j] {
			out = append(out, a[i])
			i++
			continue
		}
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		// a[i] > b[j]: gallop j forward.
		j = gallop(b, j, a[i])
	}
	return out
}

// gallop advances idx within sorted s to the first position whose value is
// >= target, using an exponential probe followed by a binary search over
// the bracketed range -- the "exponential-then-binary seek" specified for
// leapfrog advances in spec §4.7.
func gallop(s []uint64, idx int, target uint64) int {
	if idx >= len(s) || s[idx] >= target {
		return idx
	}
	step := 1
	next := idx
	for next < len(s) && s[next] < target {
		idx = next
		next += step
		step *= 2
	}
	hi := next
	if hi > len(s) {
		hi = len(s)
	}
	lo := idx
	offset := sort.Search(hi-lo, func(k int) bool { return s[lo+k] >= target })
	return lo + offset
}

// IntersectMany computes the k-way intersection of sorted sequences using
// the leapfrog join algorithm: sort the sequences by first element,
// maintain one cursor per sequence and a running maximum, and on each round
// advance whichever cursor lags the maximum via gallop. Returns nil if any
// input sequence is empty (their intersection is necessarily empty).
func IntersectMany(sequences [][]uint64) []uint64 {
	n := len(sequences)
	if n == 0 {
		return nil
	}
	if n == 1 {
		out := make([]uint64, len(sequences[0]))
		copy(out, sequences[0])
		return out
	}
	cursors := make([]int, n)
	for _, seq := range sequences {
		if len(seq) == 0 {
			return nil
		}
	}
	sorted := make([][]uint64, n)
	copy(sorted, sequences)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a][0] < sorted[b][0] })
	sequences = sorted

	var out []uint64
	for {
		max := sequences[0][cursors[0]]
		for k := 1; k < n; k++ {
			if v := sequences[k][cursors[k]]; v > max {
				max = v
			}
		}

		allMatch := true
		for k := 0; k < n; k++ {
			if sequences[k][cursors[k]] != max {
				cursors[k] = gallop(sequences[k], cursors[k], max)
				if cursors[k] >= len(sequences[k]) {
					return out
				}
				allMatch = false
			}
		}
		if allMatch {
			out = append(out, max)
			for k := 0; k < n; k++ {
				cursors[k]++
				if cursors[k] >= len(sequences[k]) {
					return out
				}
			}
		}
	}
}
