package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Error represents a typed client error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so that clones compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrAuthExpired        = New("AUTH_EXPIRED", http.StatusUnauthorized, "session expired, sign in again")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrScheduleTypeNeeded = New("SCHEDULE_TYPE_REQUIRED", http.StatusBadRequest, "scheduleType is required")
	ErrWindowClosed       = New("WINDOW_CLOSED", http.StatusConflict, "schedule window is not open")
	ErrAlreadyDecided     = New("ALREADY_DECIDED", http.StatusConflict, "application already decided")
	ErrTransport          = New("TRANSPORT_ERROR", http.StatusBadGateway, "request to portal backend failed")
	ErrUpstream           = New("UPSTREAM_ERROR", http.StatusBadGateway, "portal backend returned an error")
	ErrStorage            = New("STORAGE_ERROR", http.StatusInternalServerError, "session storage failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

const maxBodyMessage = 512

// FromStatus maps a non-2xx backend response into a typed error. The body, when
// present, becomes the message so callers can surface backend wording.
func FromStatus(status int, body []byte) *Error {
	message := truncate(strings.TrimSpace(string(body)), maxBodyMessage)

	var base *Error
	switch status {
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusUnauthorized:
		base = ErrUnauthorized
	case http.StatusForbidden:
		base = ErrForbidden
	case http.StatusConflict:
		base = ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		base = ErrValidation
	default:
		base = ErrUpstream
	}

	clone := Clone(base, message)
	clone.Status = status
	return clone
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// IsNotFound reports whether err carries a 404 signal.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err carries a 401 signal.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
