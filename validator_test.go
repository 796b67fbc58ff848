package rete

import "testing"

func TestPermissiveValidatorRejectsEmptyInput(t *testing.T) {
	v := PermissiveValidator{}
	if err := v.Validate("X", []byte("  ")); err == nil {
		t.Error("expected an error for blank input")
	}
	if err := v.Validate("X", []byte(`{"a":1}`)); err != nil {
		t.Errorf("expected well-formed JSON to pass, got %v", err)
	}
}

func TestSchemaValidatorRejectsUndeclaredFactType(t *testing.T) {
	types := newTypeRegistry()
	types.declare("Patient", []string{"heartbeat"})

	v := SchemaValidator{Types: types, AllowUndefinedFacts: false}
	if err := v.Validate("Ghost", []byte(`{}`)); err == nil {
		t.Error("expected an error for an undeclared fact type")
	}
	if err := v.Validate("Patient", []byte(`{"heartbeat":100}`)); err != nil {
		t.Errorf("expected declared fact type to pass, got %v", err)
	}

	v.AllowUndefinedFacts = true
	if err := v.Validate("Ghost", []byte(`{}`)); err != nil {
		t.Errorf("expected AllowUndefinedFacts to permit an undeclared type, got %v", err)
	}
}

func TestTypeRegistryCheckField(t *testing.T) {
	types := newTypeRegistry()
	types.declare("Patient", []string{"heartbeat", "name"})

	if err := types.checkField("Patient", "heartbeat"); err != nil {
		t.Errorf("expected declared field to pass, got %v", err)
	}
	if err := types.checkField("Patient", "nonexistent"); err == nil {
		t.Error("expected an error for an undeclared field")
	}
	if err := types.checkField("Undeclared", "anything"); err != nil {
		t.Errorf("expected an undeclared fact type to be skipped (not itself an error here), got %v", err)
	}
}
