package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, guest count above trip capacity).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidTransition is returned when a booking status change is not allowed.
// Handlers should map this to HTTP 409 Conflict.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict is returned when a delete would leave dangling references.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned for bad credentials or a bad session token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrLocked is returned while login attempts are locked out.
// Handlers should map this to HTTP 429 Too Many Requests.
var ErrLocked = errors.New("locked")

// FieldErrors maps a form field name to its single human-readable error.
// Fields without an error are absent. A non-empty FieldErrors is an error
// that matches ErrValidation under errors.Is.
type FieldErrors map[string]string

// Error joins all field messages in field-name order.
func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) succeed.
func (e FieldErrors) Unwrap() error {
	return ErrValidation
}

// Set records msg for field unless msg is empty.
func (e FieldErrors) Set(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// Err returns e as an error, or nil when there are no field errors.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
