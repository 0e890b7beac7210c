package linkgroup

import "testing"

func TestAddSortedWithinGroup(t *testing.T) {
	l := NewList()
	l.Add(1, Link{OtherID: 30, RelID: 3})
	l.Add(1, Link{OtherID: 10, RelID: 1})
	l.Add(1, Link{OtherID: 20, RelID: 2})

	g, ok := l.Group(1)
	if !ok {
		t.Fatalf("expected group 1 to exist")
	}
	want := []uint64{10, 20, 30}
	if len(g.Links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(g.Links))
	}
	for i, link := range g.Links {
		if link.OtherID != want[i] {
			t.Fatalf("links not sorted: %v", g.Links)
		}
	}
}

func TestGroupsSortedByRelType(t *testing.T) {
	l := NewList()
	l.Add(5, Link{OtherID: 1, RelID: 1})
	l.Add(1, Link{OtherID: 2, RelID: 2})
	l.Add(3, Link{OtherID: 3, RelID: 3})

	groups := l.Groups()
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	prev := uint16(0)
	for _, g := range groups {
		if g.RelType < prev {
			t.Fatalf("groups not sorted by rel type: %v", groups)
		}
		prev = g.RelType
	}
}

func TestRemoveDropsEmptyGroup(t *testing.T) {
	l := NewList()
	l.Add(1, Link{OtherID: 10, RelID: 1})
	if !l.RemoveLink(1, 10, 1) {
		t.Fatalf("expected RemoveLink to report success")
	}
	if _, ok := l.Group(1); ok {
		t.Fatalf("expected empty group to be dropped")
	}
	if !l.Empty() {
		t.Fatalf("expected list to be empty")
	}
}

func TestRemoveRelID(t *testing.T) {
	l := NewList()
	l.Add(1, Link{OtherID: 10, RelID: 100})
	l.Add(2, Link{OtherID: 20, RelID: 200})
	if !l.RemoveRelID(200) {
		t.Fatalf("expected RemoveRelID to find rel 200")
	}
	if _, ok := l.Group(2); ok {
		t.Fatalf("expected group 2 to be dropped once its only link is removed")
	}
	if _, ok := l.Group(1); !ok {
		t.Fatalf("expected group 1 to remain untouched")
	}
}

func TestDegreeAndIterFiltering(t *testing.T) {
	l := NewList()
	l.Add(1, Link{OtherID: 10, RelID: 1})
	l.Add(1, Link{OtherID: 11, RelID: 2})
	l.Add(2, Link{OtherID: 20, RelID: 3})

	if got := l.Degree(nil); got != 3 {
		t.Fatalf("expected degree 3 across all types, got %d", got)
	}
	if got := l.Degree([]uint16{1}); got != 2 {
		t.Fatalf("expected degree 2 for type 1, got %d", got)
	}
	if got := len(l.Iter([]uint16{2})); got != 1 {
		t.Fatalf("expected 1 link for type 2, got %d", got)
	}
}
