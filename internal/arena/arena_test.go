package arena

import "testing"

func TestColumnGetSetDefault(t *testing.T) {
	c := NewColumn[int64]()
	if got := c.Get(5); got != 0 {
		t.Fatalf("expected zero value for ungrown slot, got %d", got)
	}
	c.Set(5, 42)
	if got := c.Get(5); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := c.Get(3); got != 0 {
		t.Fatalf("expected zero value for slot below the set one, got %d", got)
	}
}

func TestColumnReset(t *testing.T) {
	c := NewColumn[string]()
	c.Set(0, "hello")
	c.Reset(0)
	if got := c.Get(0); got != "" {
		t.Fatalf("expected empty string after reset, got %q", got)
	}
}

func TestBitsetSetClearTest(t *testing.T) {
	b := NewBitset()
	for _, slot := range []uint64{0, 1, 63, 64, 65, 200} {
		b.Set(slot)
	}
	for _, slot := range []uint64{0, 1, 63, 64, 65, 200} {
		if !b.Test(slot) {
			t.Fatalf("expected slot %d to be set", slot)
		}
	}
	if b.Test(2) {
		t.Fatalf("slot 2 should not be set")
	}
	b.Clear(64)
	if b.Test(64) {
		t.Fatalf("slot 64 should be cleared")
	}
	if b.Count() != 5 {
		t.Fatalf("expected 5 set bits, got %d", b.Count())
	}
}

func TestBitsetSlotsOrdered(t *testing.T) {
	b := NewBitset()
	want := []uint64{2, 5, 130}
	for _, s := range want {
		b.Set(s)
	}
	got := b.Slots()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot mismatch at %d: want %d got %d", i, want[i], got[i])
		}
	}
}
