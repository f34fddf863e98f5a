// Package domain defines the persistence models and the domain error taxonomy.
// This file centralizes the closed set of domain errors recognized by the API:
// services construct these values at the point a business rule is violated, and
// the HTTP layer's error dispatcher consumes them exactly once, converting them
// into status codes and response bodies. Anything that is not an *Error is
// treated as unclassified and masked from clients.
//
// The taxonomy is a tagged variant rather than a family of error types compared
// by name: classification happens with errors.As and a switch on Kind, never by
// string equality.
package domain

import "errors"

// Kind tags a domain error with the business-rule category it represents.
// The set is closed; the dispatcher maps each kind to exactly one HTTP status.
type Kind int

const (
	// KindNotFound marks a lookup for an entity that does not exist.
	KindNotFound Kind = iota + 1

	// KindValidation marks input that violates a domain rule (for example a
	// create payload with required fields missing).
	KindValidation
)

// String returns a stable label for logging. It is never used for dispatch.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a recognized business-rule violation carrying a client-safe
// message. Values are immutable once constructed: fields are unexported and
// only readable through accessors.
type Error struct {
	kind    Kind
	message string
}

// NotFound constructs a domain error for a missing entity.
func NotFound(message string) *Error {
	return &Error{kind: KindNotFound, message: message}
}

// Validation constructs a domain error for invalid domain input.
func Validation(message string) *Error {
	return &Error{kind: KindValidation, message: message}
}

// Error implements the error interface with the client-safe message.
func (e *Error) Error() string { return e.message }

// Kind returns the business-rule category of the error.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client-safe message carried by the error.
func (e *Error) Message() string { return e.message }

// IsNotFound reports whether err is (or wraps) a not-found domain error.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsValidation reports whether err is (or wraps) a validation domain error.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// hasKind unwraps err looking for a *Error of the given kind.
func hasKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.kind == k
}
