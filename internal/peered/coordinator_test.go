package peered

import (
	"context"
	"strconv"
	"testing"

	"github.com/ragedb/ragedb/internal/ids"
	"github.com/ragedb/ragedb/internal/propstore"
	"github.com/ragedb/ragedb/internal/schema"
	"github.com/ragedb/ragedb/internal/typetable"
)

// keyOnShard finds a key that (typeName, key) hashes onto shard target,
// under shardCount shards. Tests use this to force ids onto specific
// shards without depending on the hash's exact output.
func keyOnShard(shardCount, target uint16, typeName string) string {
	for i := 0; ; i++ {
		key := "k" + strconv.Itoa(i)
		if ids.OwningShard(shardCount, typeName, key) == target {
			return key
		}
	}
}

// twoKeysOnShard finds two distinct keys that both hash onto shard target.
func twoKeysOnShard(shardCount, target uint16, typeName string) (string, string) {
	var found []string
	for i := 0; len(found) < 2; i++ {
		key := "k" + strconv.Itoa(i)
		if ids.OwningShard(shardCount, typeName, key) == target {
			found = append(found, key)
		}
	}
	return found[0], found[1]
}

func newTestCoordinator(t *testing.T, shardCount uint16) (*Coordinator, uint16, uint16) {
	t.Helper()
	c := New(shardCount)
	t.Cleanup(c.Close)

	personType := c.RegisterNodeType("Person")
	knowsType := c.RegisterRelationshipType("KNOWS")
	if _, err := c.RegisterNodeProperty("Person", "name", schema.KindString); err != nil {
		t.Fatalf("register name property: %v", err)
	}
	if _, err := c.RegisterNodeProperty("Person", "age", schema.KindI64); err != nil {
		t.Fatalf("register age property: %v", err)
	}
	return c, personType, knowsType
}

func TestNewCoordinatorShardCount(t *testing.T) {
	c := New(4)
	defer c.Close()
	if c.ShardCount() != 4 {
		t.Fatalf("expected 4 shards, got %d", c.ShardCount())
	}
}

func TestRegisterNodeTypeIsIdempotent(t *testing.T) {
	c := New(2)
	defer c.Close()
	id1 := c.RegisterNodeType("Person")
	id2 := c.RegisterNodeType("Person")
	if id1 != id2 {
		t.Fatalf("expected idempotent type id, got %d and %d", id1, id2)
	}
}

func TestRegisterNodePropertyUnknownType(t *testing.T) {
	c := New(2)
	defer c.Close()
	if _, err := c.RegisterNodeProperty("Ghost", "x", schema.KindI64); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestNodeAddSameShardIsIdempotent(t *testing.T) {
	c, _, _ := newTestCoordinator(t, 4)
	ctx := context.Background()

	id1, err := c.NodeAdd(ctx, "Person", "alice", map[string]interface{}{"name": "Alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := c.NodeAdd(ctx, "Person", "alice", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected idempotent id, got %d and %d", id1, id2)
	}

	got, err := c.NodeGetID(ctx, "Person", "alice")
	if err != nil || got != id1 {
		t.Fatalf("NodeGetID returned (%d, %v), expected (%d, nil)", got, err, id1)
	}
}

func TestNodeAddConcurrentDuplicateKeyCollapses(t *testing.T) {
	c, _, _ := newTestCoordinator(t, 4)
	ctx := context.Background()

	const n = 20
	ids := make([]uint64, n)
	errs := make([]error, n)
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			ids[i], errs[i] = c.NodeAdd(ctx, "Person", "shared", nil)
			done <- i
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("unexpected error: %v", errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("expected every concurrent NodeAdd to agree on the id, got %d and %d", ids[i], ids[0])
		}
	}
}

func TestRelationshipAddCrossShard(t *testing.T) {
	c, personType, knowsType := newTestCoordinator(t, 4)
	ctx := context.Background()
	_ = personType

	keyA := keyOnShard(4, 0, "Person")
	keyB := keyOnShard(4, 1, "Person")

	a, err := c.NodeAddEmpty(ctx, "Person", keyA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := c.NodeAddEmpty(ctx, "Person", keyB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids.ShardOf(a) == ids.ShardOf(b) {
		t.Fatalf("test fixture error: a and b landed on the same shard")
	}

	relID, err := c.RelationshipAdd(ctx, "KNOWS", a, b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relID == 0 {
		t.Fatalf("expected a non-zero relationship id")
	}

	neighbors, err := c.Neighbors(ctx, []uint64{a}, typetable.DirOut, []uint16{knowsType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ns := neighbors[a]
	if len(ns) != 1 || ns[0].ID != b || ns[0].Key != keyB {
		t.Fatalf("expected a's only outgoing neighbor to be b (%d, %q), got %v", b, keyB, ns)
	}

	ok, err := c.RelationshipRemove(ctx, relID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected RelationshipRemove to report success")
	}

	neighbors, err = c.Neighbors(ctx, []uint64{a}, typetable.DirOut, []uint16{knowsType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(neighbors[a]) != 0 {
		t.Fatalf("expected no outgoing neighbors after removal, got %v", neighbors[a])
	}
}

func TestRelationshipAddCrossShardInvalidEndpointNoStateChange(t *testing.T) {
	c, personType, knowsType := newTestCoordinator(t, 4)
	ctx := context.Background()

	keyA := keyOnShard(4, 0, "Person")
	a, err := c.NodeAddEmpty(ctx, "Person", keyA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ghost names a slot that was never allocated on shard 1, so it fails
	// NodeValid there without ever existing.
	ghost := ids.Encode(1, personType, 9999)
	if ids.ShardOf(a) == ids.ShardOf(ghost) {
		t.Fatalf("test fixture error: a and ghost landed on the same shard")
	}

	relID, err := c.RelationshipAdd(ctx, "KNOWS", a, ghost, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relID != 0 {
		t.Fatalf("expected RelationshipAdd to an invalid cross-shard endpoint to return 0, got %d", relID)
	}

	neighbors, err := c.Neighbors(ctx, []uint64{a}, typetable.DirOut, []uint16{knowsType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(neighbors[a]) != 0 {
		t.Fatalf("expected no outgoing relationship to have been left on a, got %v", neighbors[a])
	}
}

func TestRelationshipAddSameShardShortcut(t *testing.T) {
	c, _, _ := newTestCoordinator(t, 4)
	ctx := context.Background()

	keyA, keyB := twoKeysOnShard(4, 0, "Person")

	a, _ := c.NodeAddEmpty(ctx, "Person", keyA)
	b, _ := c.NodeAddEmpty(ctx, "Person", keyB)
	if ids.ShardOf(a) != ids.ShardOf(b) {
		t.Fatalf("test fixture error: expected a and b on the same shard")
	}

	relID, err := c.RelationshipAdd(ctx, "KNOWS", a, b, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relID == 0 {
		t.Fatalf("expected a non-zero relationship id")
	}
}

func TestNodeRemoveCleansUpRemoteRelationship(t *testing.T) {
	c, _, knowsType := newTestCoordinator(t, 4)
	ctx := context.Background()

	keyA := keyOnShard(4, 0, "Person")
	keyB := keyOnShard(4, 1, "Person")
	a, _ := c.NodeAddEmpty(ctx, "Person", keyA)
	b, _ := c.NodeAddEmpty(ctx, "Person", keyB)

	if _, err := c.RelationshipAdd(ctx, "KNOWS", a, b, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := c.NodeRemove(ctx, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Fatalf("expected NodeRemove to report success")
	}

	neighbors, err := c.Neighbors(ctx, []uint64{b}, typetable.DirIn, []uint16{knowsType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(neighbors[b]) != 0 {
		t.Fatalf("expected b's incoming relationship to have been cleaned up remotely, got %v", neighbors[b])
	}
}

func TestNodeRemoveUnknownIDReturnsFalse(t *testing.T) {
	c, personType, _ := newTestCoordinator(t, 4)
	ctx := context.Background()
	ghost := ids.Encode(0, personType, 9999)
	ok, err := c.NodeRemove(ctx, ghost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected NodeRemove of an unknown id to report false")
	}
}

func TestAllNodeIDsPaginatesAcrossShards(t *testing.T) {
	c, _, _ := newTestCoordinator(t, 3)
	ctx := context.Background()

	const total = 25
	want := make(map[uint64]bool, total)
	for i := 0; i < total; i++ {
		id, err := c.NodeAddEmpty(ctx, "Person", "p"+strconv.Itoa(i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want[id] = true
	}

	var got []uint64
	const page = 7
	for skip := 0; ; skip += page {
		batch, err := c.AllNodeIDs(ctx, "Person", skip, page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		got = append(got, batch...)
	}

	if len(got) != total {
		t.Fatalf("expected %d ids across all pages, got %d", total, len(got))
	}
	seen := make(map[uint64]bool, len(got))
	for _, id := range got {
		if seen[id] {
			t.Fatalf("id %d returned more than once across pages", id)
		}
		seen[id] = true
		if !want[id] {
			t.Fatalf("unexpected id %d in paginated results", id)
		}
	}
}

func TestFilterNodeIDsSortsAcrossShards(t *testing.T) {
	c, _, _ := newTestCoordinator(t, 3)
	ctx := context.Background()

	ages := []int64{30, 10, 25, 5, 40}
	var allIDs []uint64
	for i, age := range ages {
		id, err := c.NodeAdd(ctx, "Person", "p"+strconv.Itoa(i), map[string]interface{}{"age": float64(age)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		allIDs = append(allIDs, id)
	}

	matched, err := c.FilterNodeIDs(ctx, "Person", allIDs, "age", propstore.OpGt, propstore.Value{Kind: schema.KindI64, I64: 0}, 0, -1, propstore.SortAscending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != len(ages) {
		t.Fatalf("expected %d matches, got %d", len(ages), len(matched))
	}

	values, err := c.nodePropertyValues(ctx, mustTypeID(c.nodeTypes, "Person"), matched, "age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(matched); i++ {
		if values[matched[i-1]].I64 > values[matched[i]].I64 {
			t.Fatalf("expected ascending order, got %v then %v", values[matched[i-1]], values[matched[i]])
		}
	}
}

func TestIntersectAndDifferenceNodeIDs(t *testing.T) {
	a := []uint64{1, 2, 3, 4}
	b := []uint64{2, 4, 6}
	if got := IntersectNodeIDs(a, b); len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("unexpected intersection: %v", got)
	}
	if got := DifferenceNodeIDs(a, b); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected difference: %v", got)
	}
}

func TestRestoreReplaysOperationsInOrder(t *testing.T) {
	c := New(2)
	defer c.Close()
	ctx := context.Background()

	ops := []Operation{
		{Op: OpRegisterNodeType, TypeName: "Person"},
		{Op: OpRegisterRelationshipType, TypeName: "KNOWS"},
		{Op: OpRegisterNodeProperty, TypeName: "Person", Property: "name", PropKind: schema.KindString},
		{Op: OpNodeAdd, TypeName: "Person", Key: "alice", Properties: map[string]interface{}{"name": "Alice"}},
		{Op: OpNodeAdd, TypeName: "Person", Key: "bob"},
	}
	if err := c.Restore(ctx, ops); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aliceID, err := c.NodeGetID(ctx, "Person", "alice")
	if err != nil || aliceID == 0 {
		t.Fatalf("expected alice to exist after restore, got (%d, %v)", aliceID, err)
	}
	bobID, err := c.NodeGetID(ctx, "Person", "bob")
	if err != nil || bobID == 0 {
		t.Fatalf("expected bob to exist after restore, got (%d, %v)", bobID, err)
	}

	relOp := Operation{Op: OpRelationshipAdd, TypeName: "KNOWS", ID1: aliceID, ID2: bobID}
	if err := c.Restore(ctx, []Operation{relOp}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	neighbors, err := c.Neighbors(ctx, []uint64{aliceID}, typetable.DirOut, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(neighbors[aliceID]) != 1 || neighbors[aliceID][0].ID != bobID {
		t.Fatalf("expected alice to know bob after restore, got %v", neighbors[aliceID])
	}
}

func TestRestoreUnknownOperationFails(t *testing.T) {
	c := New(1)
	defer c.Close()
	err := c.Restore(context.Background(), []Operation{{Op: OpKind(99)}})
	if err == nil {
		t.Fatalf("expected error for unknown operation kind")
	}
}
