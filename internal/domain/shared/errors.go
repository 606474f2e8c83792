package shared

import (
	"errors"
	"fmt"
	"maps"
)

// ErrorKind classifies domain errors so callers can decide how to surface them.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION"
	KindPermission   ErrorKind = "PERMISSION"
	KindConflict     ErrorKind = "CONFLICT"
	KindInvariant    ErrorKind = "INVARIANT_VIOLATION"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInvalidState ErrorKind = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind         `json:"kind"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches on Code so that errors.Is works against the package sentinels
// even after WithDetail has produced a copy.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error carrying an extra detail entry.
func (e *DomainError) WithDetail(key, value string) *DomainError {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	maps.Copy(cp.Details, e.Details)
	cp.Details[key] = value
	return &cp
}

// NewDomainError creates a domain error in the invalid-state kind, the
// classification used by state machine guards.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidState,
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed input on a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    "VALIDATION_FAILED",
		Message: message,
		Field:   field,
	}
}

// NewPermissionError reports an action the actor is not allowed to take.
func NewPermissionError(message string) *DomainError {
	return &DomainError{
		Kind:    KindPermission,
		Code:    "PERMISSION_DENIED",
		Message: message,
	}
}

// NewConflictError reports an operation that clashes with existing state.
func NewConflictError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    code,
		Message: message,
	}
}

// NewInvariantViolation reports a broken structural rule.
func NewInvariantViolation(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindInvariant,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrForbidden           = &DomainError{Kind: KindPermission, Code: "FORBIDDEN", Message: "Access to this resource is forbidden"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
)

// KindOf returns the kind of a domain error anywhere in err's chain, or the
// empty kind when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation reports a rejected input
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsPermission reports an action outside the actor's authority or scope
func IsPermission(err error) bool { return KindOf(err) == KindPermission }

// IsConflict reports a clash with the current state, such as a duplicate
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsInvariant reports an internal consistency failure
func IsInvariant(err error) bool { return KindOf(err) == KindInvariant }

// IsNotFound reports a missing resource
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
