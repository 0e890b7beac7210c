package typetable

import (
	"testing"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/schema"
)

func newTestRelTable(t *testing.T) *RelTable {
	t.Helper()
	reg := schema.New()
	if _, err := reg.Register("since", schema.KindI64); err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewRelTable(0, 5, reg)
}

func TestRelAddEndpoints(t *testing.T) {
	rt := newTestRelTable(t)
	start := ids.Encode(0, 1, 3)
	end := ids.Encode(0, 1, 4)
	relID, err := rt.Add(start, end, map[string]interface{}{"since": float64(2020)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotStart, gotEnd, ok := rt.Endpoints(relID)
	if !ok {
		t.Fatalf("expected relationship to be live")
	}
	if gotStart != start || gotEnd != end {
		t.Fatalf("endpoints mismatch: got (%d,%d) want (%d,%d)", gotStart, gotEnd, start, end)
	}
}

func TestRelRemove(t *testing.T) {
	rt := newTestRelTable(t)
	relID, _ := rt.Add(ids.Encode(0, 1, 1), ids.Encode(0, 1, 2), nil)
	if !rt.Remove(relID) {
		t.Fatalf("expected Remove to succeed")
	}
	if rt.Valid(relID) {
		t.Fatalf("expected relationship to be invalid after removal")
	}
	if _, _, ok := rt.Endpoints(relID); ok {
		t.Fatalf("expected Endpoints to report not-ok after removal")
	}
}

func TestRelCountAndLiveIDs(t *testing.T) {
	rt := newTestRelTable(t)
	rt.Add(ids.Encode(0, 1, 1), ids.Encode(0, 1, 2), nil)
	rt.Add(ids.Encode(0, 1, 2), ids.Encode(0, 1, 3), nil)
	if rt.Count() != 2 {
		t.Fatalf("expected count 2, got %d", rt.Count())
	}
	if len(rt.LiveIDs()) != 2 {
		t.Fatalf("expected 2 live ids, got %d", len(rt.LiveIDs()))
	}
}
