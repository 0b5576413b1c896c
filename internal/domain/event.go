// Package domain contains the core data types for the MeetSync API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (timegrid, schedule, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Timezone is an IANA zone identifier paired with the human-readable label
// the event creator picked from the zone dropdown. Both parts are required:
// Value drives all time conversion, Label is display-only.
type Timezone struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Event is the aggregate root of the scheduling poll: the candidate dates,
// the daily time window, the declared timezone, and everything participants
// have answered so far.
//
// An event is created once and its identifying fields (ID, SelectedDates,
// StartTime, EndTime, Timezone, ResponseLimit) never change; only Responses
// mutates afterwards. There is no deletion path.
type Event struct {
	// DocID is the storage-assigned identifier, generated on insert.
	// ID is the client-chosen opaque identifier used in every URL.
	DocID uuid.UUID `json:"docId,omitempty"`
	ID    string    `json:"id"`
	Name  string    `json:"name"`

	// SelectedDates are ISO calendar dates ("2026-07-04"), no time component,
	// in the order the creator picked them.
	SelectedDates []string `json:"selectedDates"`

	// StartTime and EndTime are 12-hour wall-clock labels ("9:00 AM") in the
	// event's declared timezone. TimeSlots is the derived 15-minute label
	// list spanning the window, endpoints inclusive.
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Timezone  Timezone `json:"timezone"`
	TimeSlots []string `json:"timeSlots"`

	// ResponseLimit, when set, caps the number of distinct identities and
	// forces every sign-in to carry a password. nil means unlimited.
	ResponseLimit *int `json:"responseLimit,omitempty"`

	// HideResponses anonymizes other participants' names and emails on fetch.
	HideResponses bool `json:"hideResponses,omitempty"`

	Responses []Response `json:"responses"`

	// Version counts event-document writes. Clients that send it back on a
	// full-document replace get optimistic-concurrency protection; clients
	// that omit it keep last-write-wins.
	Version int `json:"version,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// RequiresPassword reports whether sign-in to this event must carry a
// password. A response limit implies password gating for every identity,
// including the first.
func (e *Event) RequiresPassword() bool {
	return e.ResponseLimit != nil && *e.ResponseLimit > 0
}

// LockedForNew reports whether the response limit has been reached.
// A locked event rejects brand-new identities but still lets existing
// identities update their own availability.
func (e *Event) LockedForNew() bool {
	return e.ResponseLimit != nil && len(e.Responses) >= *e.ResponseLimit
}

// FindResponse returns the response whose name matches under
// case-insensitive comparison, or nil. Name uniqueness within an event is
// defined by exactly this comparison.
func (e *Event) FindResponse(name string) *Response {
	norm := NormalizeName(name)
	for i := range e.Responses {
		if NormalizeName(e.Responses[i].Name) == norm {
			return &e.Responses[i]
		}
	}
	return nil
}
