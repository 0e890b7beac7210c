package schema

import (
	"errors"
	"testing"
)

func TestRegisterIdempotent(t *testing.T) {
	r := New()
	id1, err := r.Register("age", KindI64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := r.Register("age", KindI64)
	if err != nil {
		t.Fatalf("idempotent re-register should not error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id on idempotent re-register, got %d and %d", id1, id2)
	}
}

func TestRegisterConflict(t *testing.T) {
	r := New()
	if _, err := r.Register("age", KindI64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := r.Register("age", KindString)
	if !errors.Is(err, ErrSchemaConflict) {
		t.Fatalf("expected ErrSchemaConflict, got %v", err)
	}

	snap := r.Snapshot()
	p, ok := snap.Lookup("age")
	if !ok || p.Kind != KindI64 {
		t.Fatalf("schema conflict must not mutate existing registration, got %+v ok=%v", p, ok)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := New()
	snapBefore := r.Snapshot()
	if _, err := r.Register("name", KindString); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := snapBefore.Lookup("name"); ok {
		t.Fatalf("snapshot taken before Register must not observe the new property")
	}
	snapAfter := r.Snapshot()
	if _, ok := snapAfter.Lookup("name"); !ok {
		t.Fatalf("snapshot taken after Register must observe the new property")
	}
}

func TestDelete(t *testing.T) {
	r := New()
	if _, err := r.Register("age", KindI64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Delete("age") {
		t.Fatalf("expected Delete to succeed")
	}
	if r.Delete("age") {
		t.Fatalf("expected second Delete to report false")
	}
	if _, ok := r.Snapshot().Lookup("age"); ok {
		t.Fatalf("deleted property must not be visible in a new snapshot")
	}
}

func TestTypeRegistryInsertIdempotent(t *testing.T) {
	tr := NewTypeRegistry()
	id1 := tr.Insert("Person")
	id2 := tr.Insert("Person")
	if id1 != id2 {
		t.Fatalf("expected idempotent type insert, got %d and %d", id1, id2)
	}
	if tr.Properties(id1) == nil {
		t.Fatalf("expected a property registry to be allocated for the new type")
	}
}

func TestTypeRegistryInsertWithID(t *testing.T) {
	tr := NewTypeRegistry()
	if !tr.InsertWithID("Person", 1) {
		t.Fatalf("expected broadcast insert to succeed")
	}
	if !tr.InsertWithID("Person", 1) {
		t.Fatalf("expected idempotent broadcast insert to succeed")
	}
	if tr.InsertWithID("Company", 1) {
		t.Fatalf("expected conflicting broadcast insert to fail")
	}
	name, ok := tr.Snapshot().TypeName(1)
	if !ok || name != "Person" {
		t.Fatalf("expected type 1 to remain Person, got %q ok=%v", name, ok)
	}
}
