package service_test

import (
	"context"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/repo"
)

// mockEventRepo is a hand-written test double for repo.EventRepo.
// Each method is a function field — set only the ones your test needs.
type mockEventRepo struct {
	create              func(ctx context.Context, event domain.Event) (domain.Event, error)
	getByID             func(ctx context.Context, id string) (domain.Event, error)
	replace             func(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error)
	createResponse      func(ctx context.Context, eventID string, r domain.Response) (domain.Response, error)
	getResponse         func(ctx context.Context, eventID, name string) (domain.Response, error)
	replaceAvailability func(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error)
}

func (m *mockEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	return m.create(ctx, event)
}
func (m *mockEventRepo) GetByID(ctx context.Context, id string) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockEventRepo) Replace(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error) {
	return m.replace(ctx, event, expectedVersion)
}
func (m *mockEventRepo) CreateResponse(ctx context.Context, eventID string, r domain.Response) (domain.Response, error) {
	return m.createResponse(ctx, eventID, r)
}
func (m *mockEventRepo) GetResponse(ctx context.Context, eventID, name string) (domain.Response, error) {
	return m.getResponse(ctx, eventID, name)
}
func (m *mockEventRepo) ReplaceAvailability(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error) {
	return m.replaceAvailability(ctx, eventID, name, entries, expectedVersion)
}

// compile-time check: mockEventRepo must satisfy repo.EventRepo.
var _ repo.EventRepo = (*mockEventRepo)(nil)

// validEvent returns a minimal event that passes creation validation:
// one candidate date, a 9-to-5 window in New York.
func validEvent() domain.Event {
	return domain.Event{
		ID:            "team-offsite",
		Name:          "Team Offsite",
		SelectedDates: []string{"2026-07-04"},
		StartTime:     "9:00 AM",
		EndTime:       "5:00 PM",
		Timezone:      domain.Timezone{Value: "America/New_York", Label: "Eastern Time"},
		TimeSlots:     []string{"9:00 AM", "9:15 AM", "9:30 AM"},
		Version:       1,
	}
}

// fixedRepo returns a repo whose GetByID always yields event and whose
// write methods echo their input.
func fixedRepo(event domain.Event) *mockEventRepo {
	return &mockEventRepo{
		getByID: func(_ context.Context, id string) (domain.Event, error) {
			if id != event.ID {
				return domain.Event{}, domain.ErrNotFound
			}
			return event, nil
		},
		create: func(_ context.Context, e domain.Event) (domain.Event, error) { return e, nil },
		replace: func(_ context.Context, e domain.Event, _ int) (domain.Event, error) {
			return e, nil
		},
		createResponse: func(_ context.Context, _ string, r domain.Response) (domain.Response, error) {
			r.Version = 1
			return r, nil
		},
		replaceAvailability: func(_ context.Context, _, name string, entries []domain.AvailabilityEntry, _ int) (domain.Response, error) {
			return domain.Response{Name: name, Availability: entries, Version: 2}, nil
		},
	}
}
