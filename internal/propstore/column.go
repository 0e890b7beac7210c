package propstore

import (
	"strings"

	"github.com/ragedb/ragedb/internal/arena"
	"github.com/ragedb/ragedb/internal/schema"
)

// genericColumn is the single concrete column implementation, parameterized
// over the Go type a property's kind stores natively. toValue/fromVal
// convert between that native type and the Value boundary type so filter
// comparison logic (matches, compareOrdered) stays in one place instead of
// being duplicated per kind.
type genericColumn[T any] struct {
	kind    schema.Kind
	values  *arena.Column[T]
	present *arena.Bitset
	toValue func(T) Value
	fromVal func(Value) T
}

func (c *genericColumn[T]) get(slot uint64) (Value, bool) {
	present := c.present.Test(slot)
	return c.toValue(c.values.Get(slot)), present
}

func (c *genericColumn[T]) set(slot uint64, v Value) {
	c.values.Set(slot, c.fromVal(v))
	c.present.Set(slot)
}

func (c *genericColumn[T]) reset(slot uint64) {
	c.values.Reset(slot)
	c.present.Clear(slot)
}

// matches evaluates op against actual (the stored value, or the kind
// sentinel when present is false) and target (the filter's comparison
// value).
func matches(op Op, actual Value, present bool, target Value) bool {
	switch op {
	case OpIsNull:
		return !present
	case OpNotNull:
		return present
	}
	switch actual.Kind {
	case schema.KindBoolean:
		switch op {
		case OpEq:
			return actual.Bool == target.Bool
		case OpNeq:
			return actual.Bool != target.Bool
		default:
			return false
		}
	case schema.KindI64:
		switch op {
		case OpEq:
			return actual.I64 == target.I64
		case OpNeq:
			return actual.I64 != target.I64
		case OpLt:
			return actual.I64 < target.I64
		case OpLte:
			return actual.I64 <= target.I64
		case OpGt:
			return actual.I64 > target.I64
		case OpGte:
			return actual.I64 >= target.I64
		default:
			return false
		}
	case schema.KindF64:
		switch op {
		case OpEq:
			return actual.F64 == target.F64
		case OpNeq:
			return actual.F64 != target.F64
		case OpLt:
			return actual.F64 < target.F64
		case OpLte:
			return actual.F64 <= target.F64
		case OpGt:
			return actual.F64 > target.F64
		case OpGte:
			return actual.F64 >= target.F64
		default:
			return false
		}
	case schema.KindString:
		switch op {
		case OpEq:
			return actual.Str == target.Str
		case OpNeq:
			return actual.Str != target.Str
		case OpLt:
			return actual.Str < target.Str
		case OpLte:
			return actual.Str <= target.Str
		case OpGt:
			return actual.Str > target.Str
		case OpGte:
			return actual.Str >= target.Str
		case OpStartsWith:
			return strings.HasPrefix(actual.Str, target.Str)
		case OpEndsWith:
			return strings.HasSuffix(actual.Str, target.Str)
		case OpContains:
			return strings.Contains(actual.Str, target.Str)
		default:
			return false
		}
	case schema.KindListBoolean:
		return listEq(op, actual.ListB, target.ListB, func(a, b bool) bool { return a == b })
	case schema.KindListI64:
		return listEq(op, actual.ListI64, target.ListI64, func(a, b int64) bool { return a == b })
	case schema.KindListF64:
		return listEq(op, actual.ListF64, target.ListF64, func(a, b float64) bool { return a == b })
	case schema.KindListString:
		return listEq(op, actual.ListStr, target.ListStr, func(a, b string) bool { return a == b })
	default:
		return false
	}
}

// listEq implements eq/neq for list-kind properties by elementwise
// comparison; every other operator is unsupported for lists.
func listEq[T any](op Op, a, b []T, eq func(T, T) bool) bool {
	if op != OpEq && op != OpNeq {
		return false
	}
	same := len(a) == len(b)
	if same {
		for i := range a {
			if !eq(a[i], b[i]) {
				same = false
				break
			}
		}
	}
	if op == OpEq {
		return same
	}
	return !same
}

// compareOrdered returns -1/0/1 for sort ordering; used only by Ids'
// sortDir, so list kinds (which have no natural order) compare as equal.
func compareOrdered(a, b Value) int {
	switch a.Kind {
	case schema.KindBoolean:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case schema.KindI64:
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	case schema.KindF64:
		switch {
		case a.F64 < b.F64:
			return -1
		case a.F64 > b.F64:
			return 1
		default:
			return 0
		}
	case schema.KindString:
		return strings.Compare(a.Str, b.Str)
	default:
		return 0
	}
}
