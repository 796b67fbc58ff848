package rete

import "fmt"

// TypeRegistry declares, per fact type, the field names a rule is
// allowed to reference (spec §4.1/§6.1 "declared field types"). It is
// optional: an Engine with no declared types skips field-existence
// checking at compile time and only rejects constraints that can never
// evaluate (see checkConstraintSchema's ordering-operator check, which
// applies unconditionally).
type TypeRegistry struct {
	fields map[string]map[string]struct{}
}

func newTypeRegistry() *TypeRegistry {
	return &TypeRegistry{fields: map[string]map[string]struct{}{}}
}

// declare registers factType with the given field names, replacing any
// prior declaration for the same type.
func (t *TypeRegistry) declare(factType string, fields []string) {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	t.fields[factType] = set
}

// checkField reports a SchemaError if factType has a declaration and
// field is not among its declared fields. An undeclared factType is not
// an error here; only a SchemaValidator with AllowUndefinedFacts false
// rejects facts of an undeclared type, when they are declared.
func (t *TypeRegistry) checkField(factType, field string) error {
	fields, ok := t.fields[factType]
	if !ok {
		return nil
	}
	if _, ok := fields[field]; !ok {
		return NewSchemaError("UNKNOWN_FIELD", fmt.Sprintf("fact type %q has no declared field %q", factType, field))
	}
	return nil
}

// known reports whether factType has been declared at all.
func (t *TypeRegistry) known(factType string) bool {
	_, ok := t.fields[factType]
	return ok
}
