package typetable

import (
	"testing"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/linkgroup"
	"github.com/ragedb/ragedb/internal/schema"
)

func newTestNodeTable(t *testing.T) *NodeTable {
	t.Helper()
	reg := schema.New()
	if _, err := reg.Register("name", schema.KindString); err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewNodeTable(0, 1, reg)
}

func TestAddEmptyIsIdempotentOnKey(t *testing.T) {
	nt := newTestNodeTable(t)
	id1 := nt.AddEmpty("alice")
	id2 := nt.AddEmpty("alice")
	if id1 != id2 {
		t.Fatalf("expected same id for repeated key, got %d and %d", id1, id2)
	}
	if nt.Count() != 1 {
		t.Fatalf("expected count 1, got %d", nt.Count())
	}
}

func TestAddWithPropertiesValidates(t *testing.T) {
	nt := newTestNodeTable(t)
	_, err := nt.Add("bob", map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, _ := nt.GetID("bob")
	v, err := nt.Properties().Get(ids.SlotOf(id), "name")
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	if v.Str != "Bob" {
		t.Fatalf("expected Bob, got %q", v.Str)
	}
}

func TestRemoveFreesSlotAndKey(t *testing.T) {
	nt := newTestNodeTable(t)
	id := nt.AddEmpty("carol")
	if !nt.Remove(id) {
		t.Fatalf("expected Remove to succeed")
	}
	if _, ok := nt.GetID("carol"); ok {
		t.Fatalf("expected key to be gone after removal")
	}
	if nt.Valid(id) {
		t.Fatalf("expected id to be invalid after removal")
	}
	// Re-adding the same key reuses the freed slot minimum-first, so it
	// gets back the identical external id.
	newID := nt.AddEmpty("carol")
	if newID != id {
		t.Fatalf("expected slot reuse to hand back the same id, got %d want %d", newID, id)
	}
}

func TestOutgoingIncomingDegree(t *testing.T) {
	nt := newTestNodeTable(t)
	id := nt.AddEmpty("dave")
	nt.Outgoing(id).Add(7, linkgroup.Link{OtherID: 99, RelID: 1})
	nt.Incoming(id).Add(7, linkgroup.Link{OtherID: 100, RelID: 2})

	if got := nt.Degree(id, DirBoth, nil); got != 2 {
		t.Fatalf("expected degree 2, got %d", got)
	}
	if got := nt.Degree(id, DirOut, nil); got != 1 {
		t.Fatalf("expected out-degree 1, got %d", got)
	}
}

func TestValidRejectsWrongShardOrType(t *testing.T) {
	nt := newTestNodeTable(t)
	id := nt.AddEmpty("erin")
	if !nt.Valid(id) {
		t.Fatalf("expected valid id")
	}
}

func TestLiveIDsReflectsRemovals(t *testing.T) {
	nt := newTestNodeTable(t)
	a := nt.AddEmpty("a")
	nt.AddEmpty("b")
	nt.Remove(a)
	live := nt.LiveIDs()
	if len(live) != 1 {
		t.Fatalf("expected 1 live id, got %d", len(live))
	}
}
