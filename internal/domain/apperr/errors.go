package apperr

import "fmt"

// Kind classifies an application error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindInvalidState
)

// Error is the application-level error type shared by all domain packages.
type Error struct {
	kind    Kind
	message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.message }

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// NewValidationError creates an error for malformed or rejected input.
func NewValidationError(message string) *Error {
	return &Error{kind: KindValidation, message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{kind: KindNotFound, message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError creates an error for a business-rule conflict,
// including races detected by a re-check inside a lock.
func NewConflictError(message string) *Error {
	return &Error{kind: KindConflict, message: message}
}

// NewForbiddenError creates an error for a role or ownership mismatch.
func NewForbiddenError(message string) *Error {
	return &Error{kind: KindForbidden, message: message}
}

// NewUnauthorizedError creates an error for a missing or invalid credential.
func NewUnauthorizedError(message string) *Error {
	return &Error{kind: KindUnauthorized, message: message}
}

// NewInvalidStateError creates an error for a disallowed status transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{kind: KindInvalidState, message: fmt.Sprintf("invalid state transition from %s to %s", from, to)}
}
