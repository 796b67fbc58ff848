package rete

import "testing"

func TestRegistryDeclareBagSemantics(t *testing.T) {
	r := newRegistry()
	raw := []byte(`{"name":"bob","age":30}`)

	f1 := r.declare("person", raw)
	f2 := r.declare("person", raw)

	if f1.ID == f2.ID {
		t.Fatal("expected bag semantics: identical values get distinct ids (R2)")
	}
	if r.size() != 2 {
		t.Errorf("expected 2 resident facts, got %d", r.size())
	}
}

func TestRegistryRetractUnknown(t *testing.T) {
	r := newRegistry()
	if _, ok := r.retract(999); ok {
		t.Error("expected retract of unknown id to report ok=false")
	}
}

func TestRegistryGetAfterRetract(t *testing.T) {
	r := newRegistry()
	f := r.declare("person", []byte(`{"name":"bob"}`))

	if _, ok := r.retract(f.ID); !ok {
		t.Fatal("expected retract to succeed")
	}
	if _, ok := r.get(f.ID); ok {
		t.Error("expected get after retract to fail")
	}
}

func TestRegistryReset(t *testing.T) {
	r := newRegistry()
	r.declare("person", []byte(`{"name":"bob"}`))
	r.declare("person", []byte(`{"name":"alice"}`))
	r.reset()

	if r.size() != 0 {
		t.Errorf("expected empty registry after reset, got size %d", r.size())
	}
	f := r.declare("person", []byte(`{"name":"carl"}`))
	if f.ID != 1 {
		t.Errorf("expected id counter to restart at 1 after reset, got %d", f.ID)
	}
}
