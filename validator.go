package rete

// FactValidator gates every fact before it reaches the registry (spec
// §6.1). Engines run with PermissiveValidator unless configured
// otherwise, mirroring the teacher's AllowUndefinedFacts posture
// (almanac.go Options.AllowUndefinedFacts) generalized from "fact path
// known to the almanac" to "raw JSON is well-formed for this type".
type FactValidator interface {
	Validate(factType string, raw []byte) error
}

// PermissiveValidator rejects only empty or all-whitespace input and
// accepts everything else — the engine's default.
type PermissiveValidator struct{}

func (PermissiveValidator) Validate(factType string, raw []byte) error {
	if !jsonLooksValid(raw) {
		return NewValidationError("fact " + factType + ": malformed JSON")
	}
	return nil
}

// jsonLooksValid is a cheap check: it reports whether raw holds at
// least one non-whitespace byte. It does not check that raw is
// well-formed JSON or what its first token is.
func jsonLooksValid(raw []byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return true
		}
	}
	return false
}

// SchemaValidator additionally rejects facts of a type that was never
// declared via Engine.DeclareFactType, when AllowUndefinedFacts is
// false (spec §6.1, teacher's almanac.go allowUndefinedFacts flag).
type SchemaValidator struct {
	Types               *TypeRegistry
	AllowUndefinedFacts bool
}

func (v SchemaValidator) Validate(factType string, raw []byte) error {
	if !jsonLooksValid(raw) {
		return NewValidationError("fact " + factType + ": malformed JSON")
	}
	if !v.AllowUndefinedFacts && v.Types != nil && !v.Types.known(factType) {
		return NewValidationError("fact type " + factType + " is not declared")
	}
	return nil
}
