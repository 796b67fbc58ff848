package rete

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind is the declared type of a fact field or constraint literal.
//
// Adapted from the teacher's root-level ValueNode/DataType: the same
// closed set of JSON-shaped kinds, generalized into the typed field
// model the Pattern IR (spec §3) compiles against.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Ordered reports whether values of this kind support lt/lte/gt/gte.
func (k Kind) Ordered() bool {
	return k == KindNumber || k == KindString
}

// Value is a typed literal: a field's resolved value, or a constraint's
// literal operand. Facts are stored as gjson.Result underneath (per
// SPEC_FULL §3); Value is what the typed comparison/ordering logic in
// the alpha network and operator table actually operates on.
type Value struct {
	Kind Kind
	B    bool
	N    float64
	S    string
	A    []Value
	O    map[string]Value
}

// FromGjson converts a gjson.Result into a typed Value.
func FromGjson(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Value{Kind: KindNull}
	case gjson.True:
		return Value{Kind: KindBool, B: true}
	case gjson.False:
		return Value{Kind: KindBool, B: false}
	case gjson.Number:
		return Value{Kind: KindNumber, N: r.Num}
	case gjson.String:
		return Value{Kind: KindString, S: r.Str}
	case gjson.JSON:
		if r.IsArray() {
			arr := r.Array()
			out := make([]Value, len(arr))
			for i, v := range arr {
				out[i] = FromGjson(v)
			}
			return Value{Kind: KindArray, A: out}
		}
		if r.IsObject() {
			out := map[string]Value{}
			r.ForEach(func(key, val gjson.Result) bool {
				out[key.String()] = FromGjson(val)
				return true
			})
			return Value{Kind: KindObject, O: out}
		}
		return Value{Kind: KindNull}
	default:
		return Value{Kind: KindNull}
	}
}

// FromLiteral converts a decoded JSON literal (as produced by
// encoding/json into interface{}) into a typed Value. Rule authors
// supply constraint literals this way (see PatternIR/Constraint).
func FromLiteral(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, B: t}
	case float64:
		return Value{Kind: KindNumber, N: t}
	case int:
		return Value{Kind: KindNumber, N: float64(t)}
	case string:
		return Value{Kind: KindString, S: t}
	case []interface{}:
		out := make([]Value, len(t))
		for i, item := range t {
			out[i] = FromLiteral(item)
		}
		return Value{Kind: KindArray, A: out}
	case map[string]interface{}:
		out := map[string]Value{}
		for k, item := range t {
			out[k] = FromLiteral(item)
		}
		return Value{Kind: KindObject, O: out}
	default:
		return Value{Kind: KindString, S: fmt.Sprintf("%v", t)}
	}
}

// Raw returns the plain Go representation of v, suitable for hashing or
// JSON re-encoding.
func (v Value) Raw() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.B
	case KindNumber:
		return v.N
	case KindString:
		return v.S
	case KindArray:
		out := make([]interface{}, len(v.A))
		for i, item := range v.A {
			out[i] = item.Raw()
		}
		return out
	case KindObject:
		out := map[string]interface{}{}
		for k, item := range v.O {
			out[k] = item.Raw()
		}
		return out
	default:
		return nil
	}
}

// Equal implements eq/ne constraint semantics: equality by value of the
// declared field type (spec §4.3).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.B == o.B
	case KindNumber:
		return v.N == o.N
	case KindString:
		return v.S == o.S
	case KindArray:
		if len(v.A) != len(o.A) {
			return false
		}
		for i := range v.A {
			if !v.A[i].Equal(o.A[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.O) != len(o.O) {
			return false
		}
		for k, item := range v.O {
			other, ok := o.O[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders v against o for lt/lte/gt/gte constraints. ok is false
// when either value's kind does not support ordering, or the two kinds
// differ. Compare itself only reports the fact: compileRule rejects a
// non-ordered literal kind (B2), while a mismatch between a fact field's
// kind and the literal's is reported as a SchemaError by the operator
// when the constraint is evaluated.
func (v Value) Compare(o Value) (cmp int, ok bool) {
	if v.Kind != o.Kind || !v.Kind.Ordered() {
		return 0, false
	}
	switch v.Kind {
	case KindNumber:
		switch {
		case v.N < o.N:
			return -1, true
		case v.N > o.N:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		switch {
		case v.S < o.S:
			return -1, true
		case v.S > o.S:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// MemberOf implements the `in` operator: v must equal one element of
// list, which must itself be a KindArray value.
func (v Value) MemberOf(list Value) bool {
	if list.Kind != KindArray {
		return false
	}
	for _, item := range list.A {
		if v.Equal(item) {
			return true
		}
	}
	return false
}
