package service

import (
	"context"
	"fmt"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/repo"
)

// AvailabilityService implements the narrow per-identity write path: a
// whole-snapshot replace of one identity's availability, leaving every other
// identity's entries untouched.
type AvailabilityService struct {
	repo repo.EventRepo
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(r repo.EventRepo) *AvailabilityService {
	return &AvailabilityService{repo: r}
}

// Upsert replaces the identity's entire availability snapshot. Entry keys
// must be drawn from the event's candidate dates and derived slot labels;
// anything outside that grid is rejected with a validation error that names
// every offending entry.
//
// expectedVersion > 0 detects a concurrent write from the same identity
// (two tabs, two devices) as domain.ErrConflict instead of silently
// dropping one writer's snapshot; 0 keeps last-write-wins.
func (s *AvailabilityService) Upsert(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return domain.Response{}, fmt.Errorf("service.AvailabilityService.Upsert: %w", err)
	}

	if err := validateEntries(event, entries, "availability"); err != nil {
		return domain.Response{}, err
	}

	resp, err := s.repo.ReplaceAvailability(ctx, eventID, name, entries, expectedVersion)
	if err != nil {
		return domain.Response{}, fmt.Errorf("service.AvailabilityService.Upsert: %w", err)
	}
	return resp, nil
}

// validateEntries checks every entry against the event's grid key space and
// reports all offenders at once. prefix names the wire field holding the
// entries, so both the narrow upsert and the full-document replace report
// offenders under the caller's field path.
func validateEntries(event domain.Event, entries []domain.AvailabilityEntry, prefix string) error {
	dates := make(map[string]bool, len(event.SelectedDates))
	for _, d := range event.SelectedDates {
		dates[d] = true
	}
	slots := make(map[string]bool, len(event.TimeSlots))
	for _, t := range event.TimeSlots {
		slots[t] = true
	}

	var bad []string
	for i, entry := range entries {
		if !dates[entry.Date] {
			bad = append(bad, fmt.Sprintf("%s[%d].date", prefix, i))
		}
		if !slots[entry.Time] {
			bad = append(bad, fmt.Sprintf("%s[%d].time", prefix, i))
		}
	}
	if len(bad) > 0 {
		return &domain.ValidationError{Fields: bad}
	}
	return nil
}
