package propstore

import (
	"fmt"

	"github.com/ragedb/ragedb/internal/schema"
)

// Value is a tagged property value at the schema/JSON boundary: exactly one
// of the fields matching Kind is meaningful. Internally each column stores
// its own Go type directly (bool, int64, float64, string, []bool, []int64,
// []float64, []string); Value exists only so get/set_from_json and the
// filter predicates have one boundary type to pass around regardless of
// kind (spec §4.3).
type Value struct {
	Kind schema.Kind

	Bool    bool
	I64     int64
	F64     float64
	Str     string
	ListB   []bool
	ListI64 []int64
	ListF64 []float64
	ListStr []string
}

// Zero returns the sentinel Value for kind: false / 0 / 0.0 / "" / an empty
// list, matching the arena's default-on-grow behavior (spec §4.3 "Absent
// values are represented by the arena's sentinel for that kind").
func Zero(kind schema.Kind) Value {
	v := Value{Kind: kind}
	switch kind {
	case schema.KindListBoolean:
		v.ListB = []bool{}
	case schema.KindListI64:
		v.ListI64 = []int64{}
	case schema.KindListF64:
		v.ListF64 = []float64{}
	case schema.KindListString:
		v.ListStr = []string{}
	}
	return v
}

func fromJSON(kind schema.Kind, raw interface{}) (Value, bool) {
	switch kind {
	case schema.KindBoolean:
		b, ok := raw.(bool)
		return Value{Kind: kind, Bool: b}, ok
	case schema.KindI64:
		f, ok := raw.(float64)
		if !ok || f != float64(int64(f)) {
			return Value{}, false
		}
		return Value{Kind: kind, I64: int64(f)}, true
	case schema.KindF64:
		f, ok := raw.(float64)
		return Value{Kind: kind, F64: f}, ok
	case schema.KindString:
		s, ok := raw.(string)
		return Value{Kind: kind, Str: s}, ok
	case schema.KindListBoolean:
		items, ok := raw.([]interface{})
		if !ok {
			return Value{}, false
		}
		out := make([]bool, len(items))
		for i, item := range items {
			b, ok := item.(bool)
			if !ok {
				return Value{}, false
			}
			out[i] = b
		}
		return Value{Kind: kind, ListB: out}, true
	case schema.KindListI64:
		items, ok := raw.([]interface{})
		if !ok {
			return Value{}, false
		}
		out := make([]int64, len(items))
		for i, item := range items {
			f, ok := item.(float64)
			if !ok || f != float64(int64(f)) {
				return Value{}, false
			}
			out[i] = int64(f)
		}
		return Value{Kind: kind, ListI64: out}, true
	case schema.KindListF64:
		items, ok := raw.([]interface{})
		if !ok {
			return Value{}, false
		}
		out := make([]float64, len(items))
		for i, item := range items {
			f, ok := item.(float64)
			if !ok {
				return Value{}, false
			}
			out[i] = f
		}
		return Value{Kind: kind, ListF64: out}, true
	case schema.KindListString:
		items, ok := raw.([]interface{})
		if !ok {
			return Value{}, false
		}
		out := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return Value{}, false
			}
			out[i] = s
		}
		return Value{Kind: kind, ListStr: out}, true
	default:
		return Value{}, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case schema.KindBoolean:
		return fmt.Sprintf("%v", v.Bool)
	case schema.KindI64:
		return fmt.Sprintf("%d", v.I64)
	case schema.KindF64:
		return fmt.Sprintf("%v", v.F64)
	case schema.KindString:
		return v.Str
	default:
		type plain Value
		return fmt.Sprintf("%+v", plain(v))
	}
}
