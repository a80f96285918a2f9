package core

import "github.com/pkg/errors"

// FieldError attaches a message to the input field that caused it.
type FieldError struct {
	Field string
	Error string
}

// ValidationError wraps invalid-input failures, optionally carrying the
// offending fields so the API layer can render a per-field error map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdownError signals an unrecoverable state; the server starts a graceful
// shutdown when one surfaces from a handler.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (s shutdownError) Error() string {
	return s.message
}

// IsShutdown reports whether err, or its cause, requests a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
