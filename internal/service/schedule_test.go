package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/service"
)

func TestScheduleService_Grid_EventZone(t *testing.T) {
	svc := service.NewScheduleService(fixedRepo(validEvent()))

	slots, err := svc.Grid(context.Background(), "team-offsite", "2026-07-04", "")

	require.NoError(t, err)
	// 9:00 AM through 5:00 PM inclusive at 15-minute steps.
	require.Len(t, slots, 33)
	assert.Equal(t, "9:00 AM", slots[0].Key)
	assert.Equal(t, "9:00 AM", slots[0].Label)
	assert.Equal(t, "5:00 PM", slots[32].Key)
}

func TestScheduleService_Grid_ViewerZone(t *testing.T) {
	svc := service.NewScheduleService(fixedRepo(validEvent()))

	slots, err := svc.Grid(context.Background(), "team-offsite", "2026-07-04", "America/Los_Angeles")

	require.NoError(t, err)
	require.Len(t, slots, 33)
	// Keys stay in the event zone; labels shift three hours back.
	assert.Equal(t, "9:00 AM", slots[0].Key)
	assert.Equal(t, "6:00 AM", slots[0].Label)
}

func TestScheduleService_Grid_NonCandidateDate(t *testing.T) {
	svc := service.NewScheduleService(fixedRepo(validEvent()))

	_, err := svc.Grid(context.Background(), "team-offsite", "2026-12-25", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestScheduleService_Grid_BadViewerZone(t *testing.T) {
	svc := service.NewScheduleService(fixedRepo(validEvent()))

	_, err := svc.Grid(context.Background(), "team-offsite", "2026-07-04", "Not/AZone")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestScheduleService_Summarize(t *testing.T) {
	event := validEvent()
	event.Responses = []domain.Response{
		{Name: "Sam", Availability: []domain.AvailabilityEntry{
			{Date: "2026-07-04", Time: "9:00 AM", Available: true},
			{Date: "2026-07-04", Time: "9:15 AM", Available: true},
		}},
		{Name: "Lee", Availability: []domain.AvailabilityEntry{
			{Date: "2026-07-04", Time: "9:00 AM", Available: true},
		}},
	}
	svc := service.NewScheduleService(fixedRepo(event))

	summary, err := svc.Summarize(context.Background(), "team-offsite", nil)

	require.NoError(t, err)
	require.Len(t, summary.Days, 1)
	assert.False(t, summary.NoMajority)
	assert.NotEmpty(t, summary.BestTimes)
}

func TestScheduleService_Summarize_NoMajority(t *testing.T) {
	event := validEvent()
	event.Responses = []domain.Response{
		{Name: "Sam"},
		{Name: "Lee"},
	}
	svc := service.NewScheduleService(fixedRepo(event))

	summary, err := svc.Summarize(context.Background(), "team-offsite", nil)

	require.NoError(t, err)
	assert.True(t, summary.NoMajority)
	assert.Empty(t, summary.BestTimes)
}

func TestScheduleService_Personal(t *testing.T) {
	r := fixedRepo(validEvent())
	r.getResponse = func(_ context.Context, _, name string) (domain.Response, error) {
		return domain.Response{Name: name, Availability: []domain.AvailabilityEntry{
			{Date: "2026-07-04", Time: "9:00 AM", Available: true},
		}}, nil
	}
	svc := service.NewScheduleService(r)

	entries, err := svc.Personal(context.Background(), "team-offsite", "Sam")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "9:00 AM", entries[0].Time)
}

func TestScheduleService_Personal_EmptyNotNil(t *testing.T) {
	r := fixedRepo(validEvent())
	r.getResponse = func(_ context.Context, _, name string) (domain.Response, error) {
		return domain.Response{Name: name}, nil
	}
	svc := service.NewScheduleService(r)

	entries, err := svc.Personal(context.Background(), "team-offsite", "Sam")

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
