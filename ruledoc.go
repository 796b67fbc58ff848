package rete

import (
	"encoding/json"
	"fmt"
)

// RuleDocument is a JSON-authorable rule definition, the counterpart to
// the teacher's RuleConfig/ConditionProperties JSON grammar
// (shared_types.go) adapted to this spec's fixed conjunctive
// multi-pattern join model rather than a boolean all/any/not condition
// tree — that tree has no meaning once every pattern in a rule must
// join, so this grammar is original to this package rather than a
// port of the teacher's.
type RuleDocument struct {
	Name     string            `json:"name"`
	Salience int32             `json:"salience"`
	Patterns []PatternDocument `json:"patterns"`
	Event    EventDocument      `json:"event"`
}

// PatternDocument is one pattern in a RuleDocument: a fact type, its
// constraints, and the field bindings it exposes to later patterns.
type PatternDocument struct {
	Fact        string                 `json:"fact"`
	Constraints []ConstraintDocument   `json:"constraints,omitempty"`
	Bind        map[string]string      `json:"bind,omitempty"` // var -> field
}

// ConstraintDocument is one (field, operator, value) filter.
type ConstraintDocument struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// EventDocument mirrors the teacher's Event (shared_types.go): a type
// tag plus arbitrary parameters. Compile does not carry it into the
// RuleConfig; an action that needs it reads it from the RuleDocument.
type EventDocument struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

var docOperators = map[string]Op{
	"eq": OpEq, "==": OpEq, "equal": OpEq,
	"ne": OpNe, "!=": OpNe, "notEqual": OpNe,
	"lt": OpLt, "<": OpLt,
	"lte": OpLte, "<=": OpLte,
	"gt": OpGt, ">": OpGt,
	"gte": OpGte, ">=": OpGte,
	"in": OpIn,
}

// ParseRuleDocument decodes a JSON rule document, following the
// teacher's json.Unmarshal-driven rule-authoring convention (main.go).
func ParseRuleDocument(raw []byte) (RuleDocument, error) {
	var doc RuleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return RuleDocument{}, fmt.Errorf("rete: parsing rule document: %w", err)
	}
	return doc, nil
}

// Compile turns a RuleDocument into a RuleConfig ready for
// Engine.RegisterRule, resolving operator aliases and literal kinds.
// The caller still supplies the Action — a rule document only carries
// its event metadata, matching the teacher's separation between a
// rule's declarative condition/event shape and the callback code that
// observes OnSuccess/OnFailure (rule.go NewRule).
func (doc RuleDocument) Compile(action Action) (RuleConfig, error) {
	patterns := make([]PatternIR, len(doc.Patterns))
	for i, pd := range doc.Patterns {
		if pd.Fact == "" {
			return RuleConfig{}, NewSchemaError("MISSING_FACT_TYPE", fmt.Sprintf("rule %q pattern %d has no fact", doc.Name, i))
		}
		constraints := make([]Constraint, len(pd.Constraints))
		for j, cd := range pd.Constraints {
			op, ok := docOperators[cd.Operator]
			if !ok {
				return RuleConfig{}, NewSchemaError("UNKNOWN_OPERATOR", fmt.Sprintf("rule %q pattern %d: unknown operator %q", doc.Name, i, cd.Operator))
			}
			constraints[j] = Constraint{Field: cd.Field, Op: op, Literal: FromLiteral(cd.Value)}
		}
		bindings := make([]Binding, 0, len(pd.Bind))
		for v, field := range pd.Bind {
			bindings = append(bindings, Binding{Field: field, Var: v})
		}
		patterns[i] = PatternIR{FactType: pd.Fact, Constraints: constraints, Bindings: bindings}
	}

	return RuleConfig{
		Name:     doc.Name,
		Salience: doc.Salience,
		Patterns: patterns,
		Action:   action,
	}, nil
}
