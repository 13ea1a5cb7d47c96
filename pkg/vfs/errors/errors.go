// Package errors provides the error taxonomy shared by the path resolver,
// the move orchestrator and the HTTP layer.
//
// This is a leaf package with no internal dependencies so that content
// backends, metadata stores and the API can all map into it without import
// cycles.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and for the client-facing status.
type Kind int

const (
	// KindNotFound indicates a path segment, directory, file or move
	// destination does not exist. Maps to HTTP 404.
	KindNotFound Kind = iota + 1

	// KindInvalidInput indicates a malformed path, a missing field or a
	// schema validation failure. Maps to HTTP 400.
	KindInvalidInput

	// KindConflict indicates a (parent, name) uniqueness violation or a
	// move target that is already occupied. Maps to HTTP 409.
	KindConflict

	// KindBackendFailure is any other content backend or metadata store
	// failure. Maps to HTTP 500.
	KindBackendFailure
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidInput:
		return "InvalidInput"
	case KindConflict:
		return "Conflict"
	case KindBackendFailure:
		return "BackendFailure"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// FieldError is a single structured validation failure.
type FieldError struct {
	// Field is the JSON pointer of the offending value ("" for the root object).
	Field string `json:"field"`

	// Message describes what is wrong with the value.
	Message string `json:"message"`
}

// Error is the error type returned across the filebank core.
type Error struct {
	Kind    Kind
	Message string
	Path    string

	// Details holds validation failures for KindInvalidInput.
	Details []FieldError

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a NotFound error with the given message.
func NewNotFoundError(path, message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Path: path}
}

// NewInvalidInputError creates an InvalidInput error carrying optional
// structured validation failures.
func NewInvalidInputError(message string, details ...FieldError) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Details: details}
}

// NewConflictError creates a Conflict error.
func NewConflictError(path, message string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: message, Path: path, Err: cause}
}

// NewBackendFailure wraps a content backend or store failure.
func NewBackendFailure(op string, cause error) *Error {
	return &Error{Kind: KindBackendFailure, Message: op + " failed", Err: cause}
}

// NewStateError reports a resolver accessor used before Populate.
func NewStateError(message string) *Error {
	return &Error{Kind: KindBackendFailure, Message: message}
}

// KindOf returns the Kind of err, or KindBackendFailure when err does not
// carry one. KindOf(nil) returns 0.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackendFailure
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidInput reports whether err is an InvalidInput error.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
