// Package propstore implements RageDB's per-type columnar property store
// (spec §4.3): one arena column per registered property, a presence bitmap
// distinguishing "never set" from "explicitly set to the sentinel", and
// filter predicates that read the column directly rather than materializing
// whole objects.
//
// A Store is shard-local state: it is only ever touched from inside the
// owning shard's single-threaded executor goroutine (internal/shard), so it
// holds no internal locking of its own.
package propstore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ragedb/ragedb/internal/arena"
	"github.com/ragedb/ragedb/internal/schema"
)

// ErrUnknownProperty is returned for an operation naming a property that has
// not been registered in the store's schema.Registry.
var ErrUnknownProperty = errors.New("propstore: unknown property")

// ErrKindMismatch is returned when a Value's Kind does not match the
// property's registered Kind.
var ErrKindMismatch = errors.New("propstore: value kind does not match property kind")

// Op is a filter comparison operator (spec §4.3's op set).
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpStartsWith
	OpEndsWith
	OpContains
	OpIsNull
	OpNotNull
)

// SortDir orders the result of Ids.
type SortDir int

const (
	SortNone SortDir = iota
	SortAscending
	SortDescending
)

// column is the per-property storage and comparison surface; Store holds
// one per registered property id.
type column interface {
	get(slot uint64) (Value, bool)
	set(slot uint64, v Value)
	reset(slot uint64)
}

// Store is the property store for a single node type or relationship type.
type Store struct {
	registry *schema.Registry
	columns  map[uint8]column
}

// New constructs a Store backed by registry; registry remains the source of
// truth for which properties exist and their kinds.
func New(registry *schema.Registry) *Store {
	return &Store{registry: registry, columns: make(map[uint8]column)}
}

func newColumn(kind schema.Kind) column {
	switch kind {
	case schema.KindBoolean:
		return &genericColumn[bool]{
			kind:    kind,
			values:  arena.NewColumn[bool](),
			present: arena.NewBitset(),
			toValue: func(b bool) Value { return Value{Kind: kind, Bool: b} },
			fromVal: func(v Value) bool { return v.Bool },
		}
	case schema.KindI64:
		return &genericColumn[int64]{
			kind:    kind,
			values:  arena.NewColumn[int64](),
			present: arena.NewBitset(),
			toValue: func(i int64) Value { return Value{Kind: kind, I64: i} },
			fromVal: func(v Value) int64 { return v.I64 },
		}
	case schema.KindF64:
		return &genericColumn[float64]{
			kind:    kind,
			values:  arena.NewColumn[float64](),
			present: arena.NewBitset(),
			toValue: func(f float64) Value { return Value{Kind: kind, F64: f} },
			fromVal: func(v Value) float64 { return v.F64 },
		}
	case schema.KindString:
		return &genericColumn[string]{
			kind:    kind,
			values:  arena.NewColumn[string](),
			present: arena.NewBitset(),
			toValue: func(s string) Value { return Value{Kind: kind, Str: s} },
			fromVal: func(v Value) string { return v.Str },
		}
	case schema.KindListBoolean:
		return &genericColumn[[]bool]{
			kind:    kind,
			values:  arena.NewColumn[[]bool](),
			present: arena.NewBitset(),
			toValue: func(l []bool) Value { return Value{Kind: kind, ListB: l} },
			fromVal: func(v Value) []bool { return v.ListB },
		}
	case schema.KindListI64:
		return &genericColumn[[]int64]{
			kind:    kind,
			values:  arena.NewColumn[[]int64](),
			present: arena.NewBitset(),
			toValue: func(l []int64) Value { return Value{Kind: kind, ListI64: l} },
			fromVal: func(v Value) []int64 { return v.ListI64 },
		}
	case schema.KindListF64:
		return &genericColumn[[]float64]{
			kind:    kind,
			values:  arena.NewColumn[[]float64](),
			present: arena.NewBitset(),
			toValue: func(l []float64) Value { return Value{Kind: kind, ListF64: l} },
			fromVal: func(v Value) []float64 { return v.ListF64 },
		}
	case schema.KindListString:
		return &genericColumn[[]string]{
			kind:    kind,
			values:  arena.NewColumn[[]string](),
			present: arena.NewBitset(),
			toValue: func(l []string) Value { return Value{Kind: kind, ListStr: l} },
			fromVal: func(v Value) []string { return v.ListStr },
		}
	default:
		return nil
	}
}

func (s *Store) propertyAndColumn(name string) (schema.Property, column, error) {
	snap := s.registry.Snapshot()
	prop, ok := snap.Lookup(name)
	if !ok {
		return schema.Property{}, nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	col, ok := s.columns[prop.ID]
	if !ok {
		col = newColumn(prop.Kind)
		s.columns[prop.ID] = col
	}
	return prop, col, nil
}

// Get returns the value of name at slot. Absent values (never set, or
// explicitly deleted) come back as the kind's sentinel.
func (s *Store) Get(slot uint64, name string) (Value, error) {
	_, col, err := s.propertyAndColumn(name)
	if err != nil {
		return Value{}, err
	}
	v, present := col.get(slot)
	if !present {
		return v, nil
	}
	return v, nil
}

// Set writes value for name at slot after validating value.Kind against the
// registered kind.
func (s *Store) Set(slot uint64, name string, value Value) error {
	prop, col, err := s.propertyAndColumn(name)
	if err != nil {
		return err
	}
	if value.Kind != prop.Kind {
		return fmt.Errorf("%w: property %q is %s, value is %s", ErrKindMismatch, name, prop.Kind, value.Kind)
	}
	col.set(slot, value)
	return nil
}

// Delete clears name at slot, reverting it to the sentinel/absent state.
func (s *Store) Delete(slot uint64, name string) error {
	_, col, err := s.propertyAndColumn(name)
	if err != nil {
		return err
	}
	col.reset(slot)
	return nil
}

// DeleteAll clears every registered property at slot.
func (s *Store) DeleteAll(slot uint64) {
	for _, prop := range s.registry.Snapshot().Names() {
		col, ok := s.columns[prop.ID]
		if !ok {
			continue
		}
		col.reset(slot)
	}
}

// SetFromJSON validates every field of obj against the schema before writing
// any of them: if any field names an unregistered property or a value whose
// shape doesn't match the registered kind, no field is written and an error
// is returned (spec §4.3's "writes are applied only after full validation").
func (s *Store) SetFromJSON(slot uint64, obj map[string]interface{}) error {
	snap := s.registry.Snapshot()
	type pending struct {
		col   column
		value Value
	}
	writes := make([]pending, 0, len(obj))
	for name, raw := range obj {
		prop, ok := snap.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
		}
		v, ok := fromJSON(prop.Kind, raw)
		if !ok {
			return fmt.Errorf("%w: field %q does not match kind %s", ErrKindMismatch, name, prop.Kind)
		}
		col, exists := s.columns[prop.ID]
		if !exists {
			col = newColumn(prop.Kind)
			s.columns[prop.ID] = col
		}
		writes = append(writes, pending{col: col, value: v})
	}
	for _, w := range writes {
		w.col.set(slot, w.value)
	}
	return nil
}

// ResetFromJSON clears every property at slot then applies obj, atomically
// from any reader's perspective on this shard (the executor serializes
// access, so no reader observes the intermediate cleared state).
func (s *Store) ResetFromJSON(slot uint64, obj map[string]interface{}) error {
	snap := s.registry.Snapshot()
	for name, raw := range obj {
		prop, ok := snap.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
		}
		if _, ok := fromJSON(prop.Kind, raw); !ok {
			return fmt.Errorf("%w: field %q does not match kind %s", ErrKindMismatch, name, prop.Kind)
		}
	}
	s.DeleteAll(slot)
	return s.SetFromJSON(slot, obj)
}

// Count returns how many of ids satisfy name op value.
func (s *Store) Count(ids []uint64, name string, op Op, value Value) (int, error) {
	_, col, err := s.propertyAndColumn(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		actual, present := col.get(id)
		if matches(op, actual, present, value) {
			n++
		}
	}
	return n, nil
}

// Ids returns the subset of ids (order preserved from the input, modulo
// sortDir) satisfying name op value, after applying skip/limit.
func (s *Store) Ids(ids []uint64, name string, op Op, value Value, skip, limit int, sortDir SortDir) ([]uint64, error) {
	_, col, err := s.propertyAndColumn(name)
	if err != nil {
		return nil, err
	}
	matched := make([]uint64, 0, len(ids))
	matchedVals := make([]Value, 0, len(ids))
	for _, id := range ids {
		actual, present := col.get(id)
		if matches(op, actual, present, value) {
			matched = append(matched, id)
			matchedVals = append(matchedVals, actual)
		}
	}
	if sortDir != SortNone {
		idx := make([]int, len(matched))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			c := compareOrdered(matchedVals[idx[a]], matchedVals[idx[b]])
			if sortDir == SortDescending {
				return c > 0
			}
			return c < 0
		})
		sorted := make([]uint64, len(matched))
		for i, j := range idx {
			sorted[i] = matched[j]
		}
		matched = sorted
	}
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}
