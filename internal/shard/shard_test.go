package shard

import (
	"errors"
	"testing"

	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/typetable"
)

func newTestShard(t *testing.T) (*Shard, uint16, uint16) {
	t.Helper()
	nodeTypes := schema.NewTypeRegistry()
	relTypes := schema.NewTypeRegistry()
	personType := nodeTypes.Insert("Person")
	knowsType := relTypes.Insert("KNOWS")

	props := nodeTypes.Properties(personType)
	if _, err := props.Register("name", schema.KindString); err != nil {
		t.Fatalf("register name: %v", err)
	}

	s := New(0, 1, nodeTypes, relTypes)
	return s, personType, knowsType
}

func TestNodeAddEmptyIsIdempotent(t *testing.T) {
	s, personType, _ := newTestShard(t)
	id1, err := s.NodeAddEmpty(personType, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := s.NodeAddEmpty(personType, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected idempotent id, got %d and %d", id1, id2)
	}
}

func TestNodeAddUnknownTypeIsInvalidArgument(t *testing.T) {
	s, _, _ := newTestShard(t)
	_, err := s.NodeAddEmpty(999, "nope")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRelationshipAddSameShardUpdatesBothSides(t *testing.T) {
	s, personType, knowsType := newTestShard(t)
	a, _ := s.NodeAddEmpty(personType, "a")
	b, _ := s.NodeAddEmpty(personType, "b")

	relID, err := s.RelationshipAddSameShard(knowsType, a, b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	degree, err := s.NodeGetDegree(a, typetable.DirOut, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if degree != 1 {
		t.Fatalf("expected out-degree 1, got %d", degree)
	}

	links, err := s.NodeGetRelationshipsIDs(b, typetable.DirIn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 1 || links[0].RelID != relID || links[0].OtherID != a {
		t.Fatalf("expected b's incoming link to reference a via relID %d, got %v", relID, links)
	}
}

func TestNodeRemoveSeversLocalRelationships(t *testing.T) {
	s, personType, knowsType := newTestShard(t)
	a, _ := s.NodeAddEmpty(personType, "a")
	b, _ := s.NodeAddEmpty(personType, "b")
	s.RelationshipAddSameShard(knowsType, a, b, nil)

	remote, err := s.NodeRemove(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote) != 0 {
		t.Fatalf("expected no remote removals (single shard), got %v", remote)
	}

	degree, err := s.NodeGetDegree(b, typetable.DirIn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if degree != 0 {
		t.Fatalf("expected b's incoming degree to drop to 0 after a is removed, got %d", degree)
	}
}

func TestRelationshipRemoveGetIncomingThenIncoming(t *testing.T) {
	s, personType, knowsType := newTestShard(t)
	a, _ := s.NodeAddEmpty(personType, "a")
	b, _ := s.NodeAddEmpty(personType, "b")
	relID, _ := s.RelationshipAddSameShard(knowsType, a, b, nil)

	relType, endingID, err := s.RelationshipRemoveGetIncoming(relID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if endingID != b {
		t.Fatalf("expected ending id %d, got %d", b, endingID)
	}

	ok, err := s.RelationshipRemoveIncoming(relType, relID, endingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected incoming removal to find the mirrored link")
	}

	degree, _ := s.NodeGetDegree(a, typetable.DirOut, nil)
	if degree != 0 {
		t.Fatalf("expected a's out-degree 0 after removal, got %d", degree)
	}
}

func TestFilterNodeIDsByProperty(t *testing.T) {
	s, personType, _ := newTestShard(t)
	alice, _ := s.NodeAdd(personType, "alice", map[string]interface{}{"name": "Alice"})
	bob, _ := s.NodeAdd(personType, "bob", map[string]interface{}{"name": "Bob"})

	got, err := s.FilterNodeIDs(personType, []uint64{alice, bob}, "name", propstore.OpEq, propstore.Value{Kind: schema.KindString, Str: "Alice"}, 0, -1, propstore.SortNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != alice {
		t.Fatalf("expected only alice to match, got %v", got)
	}
}

func TestAllNodeIDsPagination(t *testing.T) {
	s, personType, _ := newTestShard(t)
	var want []uint64
	for i := 0; i < 5; i++ {
		id, _ := s.NodeAddEmpty(personType, string(rune('a'+i)))
		want = append(want, id)
	}
	got, err := s.AllNodeIDs(personType, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != want[1] || got[1] != want[2] {
		t.Fatalf("got %v, want window %v", got, want[1:3])
	}
}
