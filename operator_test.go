package rete

import "testing"

func TestEvaluateConstraint(t *testing.T) {
	f := newFact(1, "person", []byte(`{"age":30,"name":"bob","tags":["a","b"]}`))

	testCases := []struct {
		name     string
		c        Constraint
		expected bool
	}{
		{"eq match", Constraint{Field: "name", Op: OpEq, Literal: Value{Kind: KindString, S: "bob"}}, true},
		{"eq no match", Constraint{Field: "name", Op: OpEq, Literal: Value{Kind: KindString, S: "alice"}}, false},
		{"ne match", Constraint{Field: "name", Op: OpNe, Literal: Value{Kind: KindString, S: "alice"}}, true},
		{"gt match", Constraint{Field: "age", Op: OpGt, Literal: Value{Kind: KindNumber, N: 18}}, true},
		{"lt no match", Constraint{Field: "age", Op: OpLt, Literal: Value{Kind: KindNumber, N: 18}}, false},
		{"gte boundary", Constraint{Field: "age", Op: OpGte, Literal: Value{Kind: KindNumber, N: 30}}, true},
		{"in match", Constraint{Field: "name", Op: OpIn, Literal: Value{Kind: KindArray, A: []Value{
			{Kind: KindString, S: "bob"}, {Kind: KindString, S: "carl"},
		}}}, true},
		{"missing field", Constraint{Field: "missing", Op: OpEq, Literal: Value{Kind: KindString, S: "x"}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evaluateConstraint(tc.c, f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("evaluateConstraint() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestEvaluateConstraintUnorderedComparisonErrors(t *testing.T) {
	f := newFact(1, "person", []byte(`{"active":true}`))
	c := Constraint{Field: "active", Op: OpLt, Literal: Value{Kind: KindBool, B: false}}

	if _, err := evaluateConstraint(c, f); err == nil {
		t.Error("expected an error comparing bool with lt")
	}
}
