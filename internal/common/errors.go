// Package common defines the shared error taxonomy of the device registry.
// Callers match error kinds with errors.Is; the concrete *Error carries the
// caller-facing message and keeps the collapsed internal cause for logging.
package common

import "errors"

var (
	// ErrAlreadyExists signals a uniqueness conflict: an overlapping passport
	// range or a duplicate device serial number.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound signals a missing passport, device or user, or a serial
	// number no passport resolves.
	ErrNotFound = errors.New("not found")

	// ErrNotRegistered signals a failed device existence check on a dependent
	// operation (renovation recording).
	ErrNotRegistered = errors.New("not registered")

	// ErrInvalidSerialNumber signals that passport resolution failed during
	// device registration. The underlying lookup error is deliberately not
	// distinguished to the caller.
	ErrInvalidSerialNumber = errors.New("invalid serial number")

	// ErrOperationFailed signals a storage-level failure during a delete,
	// generalized and stripped of its original cause.
	ErrOperationFailed = errors.New("operation failed")

	// ErrUnauthorized signals a failed login or a missing/invalid token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken signals a malformed or unverifiable access token.
	ErrInvalidToken = errors.New("invalid token")
)

// Error is a service-level error with a stable caller-facing message.
// It matches its kind sentinel through errors.Is and unwraps to the internal
// cause, so logs keep the detail the caller never sees.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a service error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds a service error that retains the original cause.
func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
