package schema

import (
	"sync"
	"sync/atomic"
)

// typeSnapshot is the copy-on-write value behind TypeRegistry.
type typeSnapshot struct {
	byName map[string]uint16
	byID   []string // index 0 unused
}

func emptyTypeSnapshot() *typeSnapshot {
	return &typeSnapshot{byName: map[string]uint16{}, byID: []string{""}}
}

// TypeRegistry is the process-wide string<->small-integer-id registry used
// for node types and relationship types (spec §4.2, §5: "registering a new
// node/relationship type... requires a process-wide write lock"). Each
// registered type id owns a Registry of its own (the property schema for
// that type).
type TypeRegistry struct {
	mu         sync.Mutex
	snap       atomic.Pointer[typeSnapshot]
	properties []*Registry // parallel to byID; index 0 unused
	propMu     sync.Mutex
}

// NewTypeRegistry constructs an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	t := &TypeRegistry{properties: []*Registry{nil}}
	t.snap.Store(emptyTypeSnapshot())
	return t
}

// TypeSnapshot is the read-only view returned by TypeRegistry.Snapshot.
type TypeSnapshot struct{ s *typeSnapshot }

// Snapshot returns a lock-free, point-in-time view.
func (t *TypeRegistry) Snapshot() *TypeSnapshot {
	return &TypeSnapshot{s: t.snap.Load()}
}

// TypeID returns the id registered for name, or (0, false) if unknown.
func (s *TypeSnapshot) TypeID(name string) (uint16, bool) {
	id, ok := s.s.byName[name]
	return id, ok
}

// TypeName returns the name registered for id, or ("", false) if unknown.
func (s *TypeSnapshot) TypeName(id uint16) (string, bool) {
	if id == 0 || int(id) >= len(s.s.byID) || s.s.byID[id] == "" {
		return "", false
	}
	return s.s.byID[id], true
}

// Types returns every registered type name.
func (s *TypeSnapshot) Types() []string {
	out := make([]string, 0, len(s.s.byID)-1)
	for _, n := range s.s.byID[1:] {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of registered types.
func (s *TypeSnapshot) Count() uint16 { return uint16(len(s.s.byID) - 1) }

// Insert registers name and returns its id, allocating a fresh property
// Registry for it. Re-inserting an already-registered name is idempotent
// and returns the existing id.
func (t *TypeRegistry) Insert(name string) uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.snap.Load()
	if id, ok := cur.byName[name]; ok {
		return id
	}

	nextID := uint16(len(cur.byID))
	next := &typeSnapshot{
		byName: make(map[string]uint16, len(cur.byName)+1),
		byID:   make([]string, len(cur.byID)+1),
	}
	for k, v := range cur.byName {
		next.byName[k] = v
	}
	copy(next.byID, cur.byID)
	next.byName[name] = nextID
	next.byID[nextID] = name

	t.propMu.Lock()
	t.properties = append(t.properties, New())
	t.propMu.Unlock()

	t.snap.Store(next)
	return nextID
}

// InsertWithID registers name under a specific, externally-chosen id, for
// callers that assign type ids themselves rather than taking the next free
// one from Insert. Idempotent when name and id
// already match; returns false on conflict (id taken by another name, or
// name taken by another id).
func (t *TypeRegistry) InsertWithID(name string, id uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.snap.Load()
	if existingID, ok := cur.byName[name]; ok {
		return existingID == id
	}
	if int(id) < len(cur.byID) && cur.byID[id] != "" {
		return false
	}

	size := len(cur.byID)
	if int(id) >= size {
		size = int(id) + 1
	}
	next := &typeSnapshot{
		byName: make(map[string]uint16, len(cur.byName)+1),
		byID:   make([]string, size),
	}
	for k, v := range cur.byName {
		next.byName[k] = v
	}
	copy(next.byID, cur.byID)
	next.byName[name] = id
	next.byID[id] = name

	t.propMu.Lock()
	for int(id) >= len(t.properties) {
		t.properties = append(t.properties, nil)
	}
	if t.properties[id] == nil {
		t.properties[id] = New()
	}
	t.propMu.Unlock()

	t.snap.Store(next)
	return true
}

// Delete removes name from the registry. Returns false if unknown.
func (t *TypeRegistry) Delete(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.snap.Load()
	id, ok := cur.byName[name]
	if !ok {
		return false
	}

	next := &typeSnapshot{
		byName: make(map[string]uint16, len(cur.byName)),
		byID:   make([]string, len(cur.byID)),
	}
	copy(next.byID, cur.byID)
	next.byID[id] = ""
	for k, v := range cur.byName {
		if k != name {
			next.byName[k] = v
		}
	}

	t.snap.Store(next)
	return true
}

// Properties returns the property Registry owned by type id, or nil if the
// id is unregistered.
func (t *TypeRegistry) Properties(id uint16) *Registry {
	t.propMu.Lock()
	defer t.propMu.Unlock()
	if int(id) >= len(t.properties) {
		return nil
	}
	return t.properties[id]
}
