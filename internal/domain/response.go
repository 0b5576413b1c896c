package domain

import (
	"strings"
	"time"
)

// Response is one participant's availability record, keyed by a display name
// unique (case-insensitively) within its event.
//
// Password is only ever populated on the way in (sign-in, or a full-document
// replace that introduces a new identity); what is stored and returned is
// PasswordHash-backed and the plaintext never leaves the access layer.
type Response struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`

	// Password carries the inbound plaintext. It is hashed before storage
	// and never serialized outward: the service layer clears it.
	Password string `json:"password,omitempty"`

	// PasswordHash is the stored bcrypt hash. Never exposed over the wire.
	PasswordHash string `json:"-"`

	Availability []AvailabilityEntry `json:"availability"`

	// Version counts whole-snapshot replaces of this identity's availability.
	// A writer that presents a stale version is rejected with ErrConflict
	// instead of silently overwriting the other writer's snapshot.
	Version int `json:"version,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// AvailabilityEntry marks a single grid slot as available or not.
// Date and Time must be drawn from the event's candidate dates and derived
// slot labels; entries outside that grid are invalid input.
type AvailabilityEntry struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Available bool      `json:"available"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizeName lower-cases a display name for identity comparison and
// storage keying. "Ada" and "ada" denote the same participant.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
