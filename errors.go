package config

import (
	"errors"
	"fmt"
)

// Schema-definition errors. Detected once, when a record type is defined,
// never at load time.
var (
	// ErrDisallowedType marks a field whose declared type is outside the
	// closed kind set: interface (union) fields, arrays (tuples), nested
	// containers, and the like.
	ErrDisallowedType = errors.New("disallowed field type")

	// ErrCyclicNesting marks a record type graph that nests itself.
	ErrCyclicNesting = errors.New("cyclic record nesting")

	// ErrDisallowedMethod marks a record type declaring any method other
	// than the PostLoad hook.
	ErrDisallowedMethod = errors.New("disallowed method on record")
)

// Load-time errors. Any of these aborts the entire load of the root
// record; a partially populated record is never returned as success.
var (
	// ErrMissingField marks a required field absent from the tree.
	ErrMissingField = errors.New("missing required field")

	// ErrTypeMismatch marks a tree value that cannot be coerced to the
	// field's declared type.
	ErrTypeMismatch = errors.New("field type mismatch")

	// ErrValidationFailed marks a PostLoad hook rejection.
	ErrValidationFailed = errors.New("validation failed")
)

// ErrConfigNotFound is returned by LoadFile when the file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// SchemaError describes why a record type was rejected at definition time.
type SchemaError struct {
	Record string // record type name
	Field  string // offending field, empty for type-level problems
	Err    error  // one of the schema-definition sentinels
	Detail string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("record %q", e.Record)
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// LoadError describes why loading a tree into a record graph failed.
type LoadError struct {
	Path     string // dotted field path, e.g. "chat.talk_value_rules.time"
	Err      error  // one of the load-time sentinels
	Expected string // declared type, set for ErrTypeMismatch
	Actual   string // tree value type, set for ErrTypeMismatch
	Reason   string // hook-provided reason, set for ErrValidationFailed
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("field %q: %s", e.Path, e.Err.Error())
	if e.Expected != "" {
		msg += fmt.Sprintf(" (expected %s, got %s)", e.Expected, e.Actual)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError is returned by PostLoad hooks to attribute a domain
// invariant failure to a specific field of the record being validated.
// The loader prefixes Field with the record's path in the tree.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
