// Package errors defines the typed errors the application allows to
// propagate as hard failures. Localized failures (missing binaries, bad
// config files) are reported as values in result structures instead.
package errors

import (
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided,
	// such as an unknown client identity.
	ErrInvalidArgument = "invalid_argument"

	// ErrLockContention is returned when the canonical configuration lock is
	// held by another process past the retry budget.
	ErrLockContention = "lock_contention"

	// ErrConfigParse is returned when the canonical configuration itself
	// cannot be parsed.
	ErrConfigParse = "config_parse"

	// ErrImportFailure is returned when an import cannot proceed at all.
	ErrImportFailure = "import_failure"

	// ErrInternal is returned when there is an internal error.
	ErrInternal = "internal"
)

// Error represents an error in the application.
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error.
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error.
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewLockContentionError creates a new lock contention error.
func NewLockContentionError(message string, cause error) *Error {
	return NewError(ErrLockContention, message, cause)
}

// NewConfigParseError creates a new config parse error.
func NewConfigParseError(message string, cause error) *Error {
	return NewError(ErrConfigParse, message, cause)
}

// NewImportFailureError creates a new import failure error.
func NewImportFailureError(message string, cause error) *Error {
	return NewError(ErrImportFailure, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsInvalidArgument checks if the error is an invalid argument error.
func IsInvalidArgument(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInvalidArgument
}

// IsLockContention checks if the error is a lock contention error.
func IsLockContention(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrLockContention
}

// IsConfigParse checks if the error is a config parse error.
func IsConfigParse(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrConfigParse
}

// IsImportFailure checks if the error is an import failure error.
func IsImportFailure(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrImportFailure
}

// IsInternal checks if the error is an internal error.
func IsInternal(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInternal
}
