package store

import (
	"errors"
	"fmt"
)

// StoreError represents a failed store operation.
//
// Store errors include:
//   - Out of range: an id is not live in the relevant kind
//   - Referential integrity: a morphism value does not reference a live
//     part of the correct codomain kind
//   - Type mismatch: an attribute value does not match its declared domain
//   - Dependent parts: a non-cascading delete hit live indexed dependents
//   - Unknown kind/field: a name does not exist in the schema
//
// Every operation is a single-shot in-memory mutation or query, so no error
// is retried internally; all surface synchronously to the caller.
type StoreError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Kind identifies the affected object kind, when known.
	Kind string

	// Field identifies the affected morphism or attribute, when known.
	Field string

	// ID identifies the affected part, when known.
	ID int
}

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeOutOfRange indicates an id not live in the target kind.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeRefIntegrity indicates a morphism value that does not
	// reference a live part of the correct codomain kind.
	ErrCodeRefIntegrity ErrorCode = "REF_INTEGRITY"

	// ErrCodeTypeMismatch indicates an attribute value whose domain tag
	// does not match the attribute's declaration.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeDependentParts indicates a non-cascading delete attempted on
	// a part with live indexed dependents.
	ErrCodeDependentParts ErrorCode = "DEPENDENT_PARTS"

	// ErrCodeUnknownKind indicates an object-kind name not in the schema.
	ErrCodeUnknownKind ErrorCode = "UNKNOWN_KIND"

	// ErrCodeUnknownField indicates a morphism or attribute name not in
	// the schema, or one that does not belong to the named kind.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	switch {
	case e.Kind != "" && e.Field != "":
		return fmt.Sprintf("%s: %s (kind=%s, field=%s, id=%d)", e.Code, e.Message, e.Kind, e.Field, e.ID)
	case e.Kind != "":
		return fmt.Sprintf("%s: %s (kind=%s, id=%d)", e.Code, e.Message, e.Kind, e.ID)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsOutOfRange reports whether err is an out-of-range error.
// Uses errors.As to handle wrapped errors.
func IsOutOfRange(err error) bool { return hasCode(err, ErrCodeOutOfRange) }

// IsRefIntegrity reports whether err is a referential-integrity violation.
func IsRefIntegrity(err error) bool { return hasCode(err, ErrCodeRefIntegrity) }

// IsTypeMismatch reports whether err is an attribute type mismatch.
func IsTypeMismatch(err error) bool { return hasCode(err, ErrCodeTypeMismatch) }

// IsDependentParts reports whether err is a dependent-parts-exist error.
func IsDependentParts(err error) bool { return hasCode(err, ErrCodeDependentParts) }

func hasCode(err error, code ErrorCode) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// NewOutOfRangeError creates a StoreError for an id not live in kind.
func NewOutOfRangeError(kind string, id int) *StoreError {
	return &StoreError{
		Code:    ErrCodeOutOfRange,
		Message: "id not live in kind",
		Kind:    kind,
		ID:      id,
	}
}

// NewRefIntegrityError creates a StoreError for an invalid morphism target.
func NewRefIntegrityError(kind, morphism string, target int, msg string) *StoreError {
	return &StoreError{
		Code:    ErrCodeRefIntegrity,
		Message: msg,
		Kind:    kind,
		Field:   morphism,
		ID:      target,
	}
}

// NewTypeMismatchError creates a StoreError for a mistyped attribute value.
func NewTypeMismatchError(kind, attribute, msg string) *StoreError {
	return &StoreError{
		Code:    ErrCodeTypeMismatch,
		Message: msg,
		Kind:    kind,
		Field:   attribute,
	}
}

// NewDependentPartsError creates a StoreError for a blocked direct delete.
func NewDependentPartsError(kind string, id int, morphism string) *StoreError {
	return &StoreError{
		Code:    ErrCodeDependentParts,
		Message: "part has live indexed dependents",
		Kind:    kind,
		Field:   morphism,
		ID:      id,
	}
}

// NewUnknownKindError creates a StoreError for an undeclared kind name.
func NewUnknownKindError(kind string) *StoreError {
	return &StoreError{
		Code:    ErrCodeUnknownKind,
		Message: "kind not declared in schema",
		Kind:    kind,
	}
}

// NewUnknownFieldError creates a StoreError for an undeclared field name.
func NewUnknownFieldError(field, msg string) *StoreError {
	return &StoreError{
		Code:    ErrCodeUnknownField,
		Message: msg,
		Field:   field,
	}
}
