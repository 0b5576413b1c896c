package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// event does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is the sentinel behind every malformed-input failure.
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrAuth covers missing, invalid, or expired credentials and password
// mismatches. Handlers should map this to HTTP 401.
var ErrAuth = errors.New("unauthorized")

// ErrLocked is returned when a brand-new identity tries to sign in after the
// event's response limit has been reached. It is deliberately distinct from
// ErrAuth so clients can render a different message. Handlers map it to 403.
var ErrLocked = errors.New("event locked")

// ErrConflict is returned when a writer presents a stale version for an
// optimistic-concurrency-checked write. Handlers should map this to 409.
var ErrConflict = errors.New("version conflict")

// ValidationError reports every offending field of a request, not just the
// first one found. It unwraps to ErrValidation so callers can use errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// LockedError names the limit that was hit, so the client can say
// "this event only accepts N responses". Unwraps to ErrLocked.
type LockedError struct {
	Limit int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("event locked: response limit of %d reached", e.Limit)
}

func (e *LockedError) Unwrap() error { return ErrLocked }
