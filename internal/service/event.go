// Package service contains the business logic for the MeetSync API.
// Services validate inputs, enforce the sign-in and response-limit rules,
// and orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/repo"
)

// EventService implements event creation, fetch, and full-document replace.
type EventService struct {
	repo   repo.EventRepo
	secret string
}

// NewEventService constructs an EventService. secret keys the stable
// pseudonyms used when hideResponses is set; sharing the session-signing
// secret is fine because pseudonyms only need to be unguessable, not
// independently rotatable.
func NewEventService(r repo.EventRepo, secret string) *EventService {
	return &EventService{repo: r, secret: secret}
}

// Create validates and persists a new event. Validation reports every
// missing field at once, using the wire field names.
func (s *EventService) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := validateEvent(event); err != nil {
		return domain.Event{}, err
	}

	for i := range event.Responses {
		if err := hashResponsePassword(&event.Responses[i]); err != nil {
			return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
		}
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	return scrubPasswords(created), nil
}

// GetByID returns an event with anonymization applied. viewer is the
// verified identity of the caller, or empty for an unauthenticated fetch.
//
// When hideResponses is set, every response not owned by the viewer has its
// name replaced with a stable pseudonym and its email cleared, while the
// availability data is preserved unmodified. The pseudonym is derived from
// the event and identity, so the same hidden participant keeps the same
// label across fetches.
func (s *EventService) GetByID(ctx context.Context, id, viewer string) (domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.GetByID: %w", err)
	}

	if event.HideResponses {
		viewerNorm := domain.NormalizeName(viewer)
		for i := range event.Responses {
			r := &event.Responses[i]
			if domain.NormalizeName(r.Name) == viewerNorm {
				continue
			}
			r.Name = pseudonym(s.secret, event.ID, r.Name)
			r.Email = ""
		}
	}

	return scrubPasswords(event), nil
}

// Replace performs the full-document replace behind PUT /events: mutable
// fields and the whole responses array. Stored password hashes are carried
// over by name so a replace can never strip an identity's password; a
// plaintext password on an incoming response is hashed only for names the
// event has not seen before.
//
// expectedVersion > 0 enables optimistic concurrency (domain.ErrConflict on
// mismatch); 0 keeps last-write-wins for clients that do not send a version.
func (s *EventService) Replace(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error) {
	current, err := s.repo.GetByID(ctx, event.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Replace: %w", err)
	}

	// The grid is fixed at creation, so incoming entries are checked against
	// the stored candidate dates and slot labels, not anything the body claims.
	var bad []string
	for i := range event.Responses {
		prefix := fmt.Sprintf("responses[%d].availability", i)
		if err := validateEntries(current, event.Responses[i].Availability, prefix); err != nil {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				return domain.Event{}, err
			}
			bad = append(bad, verr.Fields...)
		}
	}
	if len(bad) > 0 {
		return domain.Event{}, &domain.ValidationError{Fields: bad}
	}

	for i := range event.Responses {
		incoming := &event.Responses[i]
		if existing := current.FindResponse(incoming.Name); existing != nil {
			incoming.PasswordHash = existing.PasswordHash
			incoming.Password = ""
			continue
		}
		if err := hashResponsePassword(incoming); err != nil {
			return domain.Event{}, fmt.Errorf("service.EventService.Replace: %w", err)
		}
	}

	updated, err := s.repo.Replace(ctx, event, expectedVersion)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Replace: %w", err)
	}
	return scrubPasswords(updated), nil
}

// validateEvent checks the required creation fields and reports all missing
// ones together, not just the first.
func validateEvent(event domain.Event) error {
	var missing []string
	if strings.TrimSpace(event.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(event.Name) == "" {
		missing = append(missing, "name")
	}
	if len(event.SelectedDates) == 0 {
		missing = append(missing, "selectedDates")
	}
	if strings.TrimSpace(event.StartTime) == "" {
		missing = append(missing, "startTime")
	}
	if strings.TrimSpace(event.EndTime) == "" {
		missing = append(missing, "endTime")
	}
	if strings.TrimSpace(event.Timezone.Value) == "" {
		missing = append(missing, "timezone.value")
	}
	if strings.TrimSpace(event.Timezone.Label) == "" {
		missing = append(missing, "timezone.label")
	}
	if len(event.TimeSlots) == 0 {
		missing = append(missing, "timeSlots")
	}

	// A response limit forces password gating on every identity, so an
	// inline response without one could never sign in again.
	if event.RequiresPassword() {
		for i, r := range event.Responses {
			if r.Password == "" && r.PasswordHash == "" {
				missing = append(missing, fmt.Sprintf("responses[%d].password", i))
			}
		}
	}

	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}

	if _, err := domain.ParseClockLabel(event.StartTime); err != nil {
		return err
	}
	if _, err := domain.ParseClockLabel(event.EndTime); err != nil {
		return err
	}
	return nil
}

// hashResponsePassword moves an inbound plaintext password into the stored
// bcrypt hash. Responses without a password pass through unchanged.
func hashResponsePassword(r *domain.Response) error {
	if r.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	r.PasswordHash = string(hash)
	r.Password = ""
	return nil
}

// scrubPasswords clears inbound plaintext from every response before the
// event goes back over the wire. Hashes are never serialized to begin with.
func scrubPasswords(event domain.Event) domain.Event {
	for i := range event.Responses {
		event.Responses[i].Password = ""
	}
	return event
}
