package rete

import (
	"github.com/mitchellh/hashstructure/v2"
	"github.com/tidwall/gjson"
)

// Fact is a validated, immutable structured record of a declared fact
// type (spec §3). Facts are addressed by id, not by value; field access
// resolves through gjson rather than reflection, following the teacher's
// Condition/Operator pairing of gjson.Result on both sides of a
// comparison (operator.go, condition.go).
type Fact struct {
	ID   uint64
	Type string
	data gjson.Result
}

// newFact parses raw JSON field values for a declared fact type. raw
// must already have passed the external validator (spec §6.1); the
// engine does not re-validate.
func newFact(id uint64, factType string, raw []byte) *Fact {
	return &Fact{ID: id, Type: factType, data: gjson.ParseBytes(raw)}
}

// Field resolves a field by name, returning ok=false if absent.
func (f *Fact) Field(name string) (Value, bool) {
	r := f.data.Get(name)
	if !r.Exists() {
		return Value{}, false
	}
	return FromGjson(r), true
}

// Raw returns the fact's underlying JSON field values.
func (f *Fact) Raw() gjson.Result {
	return f.data
}

// hashValues computes a stable hash over an ordered slice of Values,
// used to intern canonical constraint sets (§4.2/§9) and to build the
// beta network's join-key hash indices (§4.4). Grounded on the teacher's
// fact.go:HashFromObject, generalized from a per-fact cache key to a
// general content-addressing primitive.
func hashValues(vals []Value) (uint64, error) {
	raw := make([]interface{}, len(vals))
	for i, v := range vals {
		raw[i] = v.Raw()
	}
	return hashstructure.Hash(raw, hashstructure.FormatV2, nil)
}
