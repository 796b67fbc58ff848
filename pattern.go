package rete

import "sort"

// Op is a constraint comparison operator (spec §3).
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpIn  Op = "in"
)

// Constraint is an intra-fact filter: (field, op, literal) (spec §3).
type Constraint struct {
	Field   string
	Op      Op
	Literal Value
}

// Binding declares that the value of Field, on the fact matching a
// pattern, is bound to Var for use as a join key by later patterns
// (spec §3).
type Binding struct {
	Field string
	Var   string
}

// PatternIR is the compiled representation of one pattern: a fact type,
// its intra-fact constraints, and its variable bindings (spec §3).
type PatternIR struct {
	FactType    string
	Constraints []Constraint
	Bindings    []Binding
}

// canonicalConstraints returns a copy of cs sorted by (field, op,
// literal), so that semantically equal filters produce an identical
// ordering and therefore share one alpha memory (spec §4.2 step 1,
// §9 "sharing of alpha memories").
func canonicalConstraints(cs []Constraint) []Constraint {
	out := make([]Constraint, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return literalLess(out[i].Literal, out[j].Literal)
	})
	return out
}

// literalLess gives Values an arbitrary but stable total order, used
// only to make canonicalization deterministic (not user-facing
// ordering semantics — see Value.Compare for those).
func literalLess(a, b Value) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case KindBool:
		return !a.B && b.B
	case KindNumber:
		return a.N < b.N
	case KindString:
		return a.S < b.S
	default:
		ha, _ := hashValues([]Value{a})
		hb, _ := hashValues([]Value{b})
		return ha < hb
	}
}

// canonicalKey computes the interning key for an alpha memory: a hash
// over the fact type and its canonicalized constraint set (spec §4.2
// step 2, §9).
func canonicalKey(factType string, cs []Constraint) (uint64, error) {
	canon := canonicalConstraints(cs)
	parts := make([]Value, 0, 1+3*len(canon))
	parts = append(parts, Value{Kind: KindString, S: factType})
	for _, c := range canon {
		parts = append(parts,
			Value{Kind: KindString, S: c.Field},
			Value{Kind: KindString, S: string(c.Op)},
			c.Literal,
		)
	}
	return hashValues(parts)
}

// boundVars returns the set of variable names this pattern binds.
func (p PatternIR) boundVars() map[string]struct{} {
	out := make(map[string]struct{}, len(p.Bindings))
	for _, b := range p.Bindings {
		out[b.Var] = struct{}{}
	}
	return out
}

// fieldForVar returns the field name that binds var within this
// pattern, if any.
func (p PatternIR) fieldForVar(v string) (string, bool) {
	for _, b := range p.Bindings {
		if b.Var == v {
			return b.Field, true
		}
	}
	return "", false
}
