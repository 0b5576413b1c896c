package service

import (
	"context"
	"fmt"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/repo"
	"github.com/mfreitag/meetsync/internal/schedule"
	"github.com/mfreitag/meetsync/internal/timegrid"
)

// ScheduleService exposes the read-side views: the slot grid for a date in
// the viewer's timezone, the everyone-view consensus, and best-times
// ranking. Views are recomputed from stored responses on every read.
type ScheduleService struct {
	repo repo.EventRepo
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(r repo.EventRepo) *ScheduleService {
	return &ScheduleService{repo: r}
}

// Summary is the everyone view plus best-times ranking for one event.
// NoMajority is set instead of silently returning an empty BestTimes list
// when no date has any qualifying slot.
type Summary struct {
	Days       []schedule.DaySummary `json:"days"`
	BestTimes  []schedule.Range      `json:"bestTimes"`
	NoMajority bool                  `json:"noMajority,omitempty"`
}

// Grid returns the slot sequence for one candidate date of an event,
// labeled in the viewer's timezone. An empty viewerZone means the event's
// declared zone. A date outside the event's candidate set is a validation
// error.
func (s *ScheduleService) Grid(ctx context.Context, eventID, date, viewerZone string) ([]timegrid.Slot, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.Grid: %w", err)
	}

	if !containsDate(event.SelectedDates, date) {
		return nil, fmt.Errorf("%w: date %q is not a candidate date of this event", domain.ErrValidation, date)
	}

	grid, err := timegrid.New(date, event.Timezone.Value, event.StartTime, event.EndTime, viewerZone)
	if err != nil {
		return nil, err
	}
	return grid.Slots(), nil
}

// Summarize computes the everyone view and best-times ranking, optionally
// restricted to a caller-selected subset of identity names.
func (s *ScheduleService) Summarize(ctx context.Context, eventID string, subset []string) (Summary, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return Summary{}, fmt.Errorf("service.ScheduleService.Summarize: %w", err)
	}

	days := schedule.Summarize(event.SelectedDates, event.TimeSlots, event.Responses, subset)
	best, ok := schedule.BestTimes(days)
	return Summary{Days: days, BestTimes: best, NoMajority: !ok}, nil
}

// Personal returns the signed-in identity's own availability entries
// verbatim.
func (s *ScheduleService) Personal(ctx context.Context, eventID, name string) ([]domain.AvailabilityEntry, error) {
	resp, err := s.repo.GetResponse(ctx, eventID, name)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.Personal: %w", err)
	}
	if resp.Availability == nil {
		return []domain.AvailabilityEntry{}, nil
	}
	return resp.Availability, nil
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}
