package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// Is matches any *Error carrying the same code and message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code && e.Message == t.Message
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// ErrSkipWrite is returned from an UpdateFunc to abandon the write.
var ErrSkipWrite = errors.New("store: skip write")

// Sentinel errors.
var (
	ErrEmptyKey = &Error{
		Code:    http.StatusBadRequest,
		Message: "empty key",
	}

	ErrUpdateConflict = &Error{
		Code:    http.StatusConflict,
		Message: "update retries exhausted",
	}

	ErrClosed = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "store closed",
	}
)
