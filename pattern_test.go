package rete

import "testing"

func TestCanonicalConstraintsDeterministicOrdering(t *testing.T) {
	a := []Constraint{
		{Field: "b", Op: OpEq, Literal: Value{Kind: KindNumber, N: 1}},
		{Field: "a", Op: OpGt, Literal: Value{Kind: KindNumber, N: 2}},
		{Field: "a", Op: OpEq, Literal: Value{Kind: KindNumber, N: 1}},
	}
	b := []Constraint{
		{Field: "a", Op: OpEq, Literal: Value{Kind: KindNumber, N: 1}},
		{Field: "b", Op: OpEq, Literal: Value{Kind: KindNumber, N: 1}},
		{Field: "a", Op: OpGt, Literal: Value{Kind: KindNumber, N: 2}},
	}

	ca := canonicalConstraints(a)
	cb := canonicalConstraints(b)
	if len(ca) != len(cb) {
		t.Fatalf("canonicalized lengths differ: %d vs %d", len(ca), len(cb))
	}
	for i := range ca {
		if ca[i] != cb[i] {
			t.Errorf("index %d differs: %+v vs %+v", i, ca[i], cb[i])
		}
	}
}

func TestCanonicalKeySharesAcrossEquivalentOrderings(t *testing.T) {
	cs1 := []Constraint{
		{Field: "age", Op: OpGt, Literal: Value{Kind: KindNumber, N: 18}},
		{Field: "name", Op: OpEq, Literal: Value{Kind: KindString, S: "bob"}},
	}
	cs2 := []Constraint{
		{Field: "name", Op: OpEq, Literal: Value{Kind: KindString, S: "bob"}},
		{Field: "age", Op: OpGt, Literal: Value{Kind: KindNumber, N: 18}},
	}

	k1, err := canonicalKey("person", cs1)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := canonicalKey("person", cs2)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Error("expected canonical keys to match regardless of constraint order")
	}

	k3, err := canonicalKey("dog", cs1)
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k3 {
		t.Error("expected different fact types to produce different keys")
	}
}

func TestPatternBindingsLookup(t *testing.T) {
	p := PatternIR{
		FactType: "person",
		Bindings: []Binding{{Field: "id", Var: "?pid"}, {Field: "name", Var: "?pname"}},
	}

	if field, ok := p.fieldForVar("?pid"); !ok || field != "id" {
		t.Errorf("expected ?pid -> id, got %q ok=%v", field, ok)
	}
	if _, ok := p.fieldForVar("?missing"); ok {
		t.Error("expected lookup of unbound var to fail")
	}

	bound := p.boundVars()
	if _, ok := bound["?pid"]; !ok {
		t.Error("expected ?pid in boundVars()")
	}
	if _, ok := bound["?pname"]; !ok {
		t.Error("expected ?pname in boundVars()")
	}
}
