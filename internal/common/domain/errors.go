package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the transport layer can render it uniformly.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidRange      Kind = "invalid_range"
	KindUnavailable       Kind = "unavailable"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidTransition Kind = "invalid_transition"
	KindConflict          Kind = "conflict"
	KindStoreFailure      Kind = "store_failure"
)

// Error is the error type returned by domain, application and repository code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NewInvalidRangeError reports a date range whose end is not after its start.
func NewInvalidRangeError(message string) *Error {
	return &Error{Kind: KindInvalidRange, Message: message}
}

// NewUnavailableError reports a conflicting reservation.
func NewUnavailableError(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewForbiddenError reports a role or ownership mismatch.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidStateError reports a state transition that the state machine does not allow.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewConflictError reports a uniqueness violation, e.g. a duplicate email.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewStoreError wraps a persistence failure.
func NewStoreError(op string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindStoreFailure for errors that are not domain errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStoreFailure
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
