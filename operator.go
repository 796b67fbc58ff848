package rete

// operatorFunc evaluates a constraint's factValue against its literal.
// Shaped like the teacher's Operator.Callback, but over the typed Value
// model instead of a raw gjson.Result pair (operator.go, default_operators.go).
type operatorFunc func(factValue, literal Value) (bool, error)

var operators = map[Op]operatorFunc{
	OpEq: func(fv, lit Value) (bool, error) { return fv.Equal(lit), nil },
	OpNe: func(fv, lit Value) (bool, error) { return !fv.Equal(lit), nil },
	OpLt: func(fv, lit Value) (bool, error) {
		cmp, ok := fv.Compare(lit)
		if !ok {
			return false, NewSchemaError("UNORDERED_COMPARISON", "lt applied to non-ordered or mismatched types")
		}
		return cmp < 0, nil
	},
	OpLte: func(fv, lit Value) (bool, error) {
		cmp, ok := fv.Compare(lit)
		if !ok {
			return false, NewSchemaError("UNORDERED_COMPARISON", "lte applied to non-ordered or mismatched types")
		}
		return cmp <= 0, nil
	},
	OpGt: func(fv, lit Value) (bool, error) {
		cmp, ok := fv.Compare(lit)
		if !ok {
			return false, NewSchemaError("UNORDERED_COMPARISON", "gt applied to non-ordered or mismatched types")
		}
		return cmp > 0, nil
	},
	OpGte: func(fv, lit Value) (bool, error) {
		cmp, ok := fv.Compare(lit)
		if !ok {
			return false, NewSchemaError("UNORDERED_COMPARISON", "gte applied to non-ordered or mismatched types")
		}
		return cmp >= 0, nil
	},
	OpIn: func(fv, lit Value) (bool, error) { return fv.MemberOf(lit), nil },
}

// evaluateConstraint applies c to a fact, per spec §4.3 constraint
// evaluation semantics. Unknown fields of a declared fact type are
// rejected during rule compilation (checkConstraintSchema, rule.go); a
// field missing from a fact at runtime is treated as a non-match.
func evaluateConstraint(c Constraint, f *Fact) (bool, error) {
	fv, ok := f.Field(c.Field)
	if !ok {
		return false, nil
	}
	op, ok := operators[c.Op]
	if !ok {
		return false, NewSchemaError("UNKNOWN_OPERATOR", "unknown operator: "+string(c.Op))
	}
	return op(fv, c.Literal)
}
