package rete

import "fmt"

// Error kinds follow the teacher's root-level errors.go idiom:
// {Message, Code string} + Error() + New*Error constructors.

// SchemaError is a compile-time error raised while compiling a rule's
// patterns (spec §7): unknown field, an ordering operator applied to a
// non-ordered type, or a join-key variable with no earlier binding.
type SchemaError struct {
	Message string
	Code    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSchemaError(code, message string) *SchemaError {
	return &SchemaError{Message: message, Code: code}
}

// UnknownFactError is raised by Retract of an id not present in working
// memory (spec §7).
type UnknownFactError struct {
	Message string
	Code    string
}

func (e *UnknownFactError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewUnknownFactError(id uint64) *UnknownFactError {
	return &UnknownFactError{
		Message: fmt.Sprintf("unknown fact id: %d", id),
		Code:    "UNKNOWN_FACT",
	}
}

// ReentrancyError is raised when Run is called from within an action
// (spec §5, §7).
type ReentrancyError struct {
	Message string
	Code    string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewReentrancyError() *ReentrancyError {
	return &ReentrancyError{
		Message: "run() called reentrantly from within an action",
		Code:    "REENTRANT_RUN",
	}
}

// ValidationError is surfaced by the fact validator boundary (spec §6.1,
// §7) before a fact reaches declare().
type ValidationError struct {
	Message string
	Code    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Code: "VALIDATION_ERROR"}
}

// ActionError wraps a panic or error raised by a user action during
// run() (spec §7). The engine aborts run() and reports it to the caller.
type ActionError struct {
	Message string
	Code    string
	Cause   error
}

func (e *ActionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

func NewActionError(ruleName string, cause error) *ActionError {
	return &ActionError{
		Message: fmt.Sprintf("action of rule %q failed", ruleName),
		Code:    "ACTION_ERROR",
		Cause:   cause,
	}
}
