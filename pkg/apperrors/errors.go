package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrOperationInFlight = errors.New("operation already in progress")
	ErrNotSubmittable    = errors.New("form is not submittable")
	ErrUploadDisabled    = errors.New("upload is not available yet")
	ErrSessionExpired    = errors.New("session token has expired")
)

// ValidationError is raised client-side before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConnectionError is a failed or non-successful database test/connect call.
// Message is what the user sees; Err keeps the underlying cause, if any.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ProcessingError is a failed reprocess. ErrorType carries the server's failure
// category (e.g. "ValueError") when one was reported.
type ProcessingError struct {
	SourceID  string
	Message   string
	ErrorType string
	Err       error
}

func (e *ProcessingError) Error() string {
	var b strings.Builder
	b.WriteString("reprocess failed")
	if e.SourceID != "" {
		b.WriteString(" for ")
		b.WriteString(e.SourceID)
	}
	if e.ErrorType != "" {
		b.WriteString(" (")
		b.WriteString(e.ErrorType)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
