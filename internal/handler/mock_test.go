package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/handler"
	"github.com/mfreitag/meetsync/internal/service"
	"github.com/mfreitag/meetsync/internal/timegrid"
)

// Test doubles for the four servicer interfaces. Set only the method fields
// your test needs.

type mockEventServicer struct {
	create  func(ctx context.Context, event domain.Event) (domain.Event, error)
	getByID func(ctx context.Context, id, viewer string) (domain.Event, error)
	replace func(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error)
}

func (m *mockEventServicer) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	return m.create(ctx, event)
}
func (m *mockEventServicer) GetByID(ctx context.Context, id, viewer string) (domain.Event, error) {
	return m.getByID(ctx, id, viewer)
}
func (m *mockEventServicer) Replace(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error) {
	return m.replace(ctx, event, expectedVersion)
}

type mockAccessServicer struct {
	signIn func(ctx context.Context, eventID, name, password string) (string, domain.Response, error)
	verify func(eventID, credential string) (string, error)
}

func (m *mockAccessServicer) SignIn(ctx context.Context, eventID, name, password string) (string, domain.Response, error) {
	return m.signIn(ctx, eventID, name, password)
}
func (m *mockAccessServicer) Verify(eventID, credential string) (string, error) {
	return m.verify(eventID, credential)
}

type mockAvailabilityServicer struct {
	upsert func(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error)
}

func (m *mockAvailabilityServicer) Upsert(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error) {
	return m.upsert(ctx, eventID, name, entries, expectedVersion)
}

type mockScheduleServicer struct {
	grid      func(ctx context.Context, eventID, date, viewerZone string) ([]timegrid.Slot, error)
	summarize func(ctx context.Context, eventID string, subset []string) (service.Summary, error)
	personal  func(ctx context.Context, eventID, name string) ([]domain.AvailabilityEntry, error)
}

func (m *mockScheduleServicer) Grid(ctx context.Context, eventID, date, viewerZone string) ([]timegrid.Slot, error) {
	return m.grid(ctx, eventID, date, viewerZone)
}
func (m *mockScheduleServicer) Summarize(ctx context.Context, eventID string, subset []string) (service.Summary, error) {
	return m.summarize(ctx, eventID, subset)
}
func (m *mockScheduleServicer) Personal(ctx context.Context, eventID, name string) ([]domain.AvailabilityEntry, error) {
	return m.personal(ctx, eventID, name)
}

var (
	_ handler.EventServicer        = (*mockEventServicer)(nil)
	_ handler.AccessServicer       = (*mockAccessServicer)(nil)
	_ handler.AvailabilityServicer = (*mockAvailabilityServicer)(nil)
	_ handler.ScheduleServicer     = (*mockScheduleServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// deps bundles the four mocks so a test only fills in what it exercises.
type deps struct {
	events       *mockEventServicer
	access       *mockAccessServicer
	availability *mockAvailabilityServicer
	schedule     *mockScheduleServicer
}

// newHTTPHandler wires a Server with the given mocks into its router, the
// same way main.go wires the real services in production.
func newHTTPHandler(d deps) http.Handler {
	if d.events == nil {
		d.events = &mockEventServicer{}
	}
	if d.access == nil {
		// Most endpoints consult the credential; default to anonymous.
		d.access = &mockAccessServicer{
			verify: func(_, _ string) (string, error) {
				return "", domain.ErrAuth
			},
		}
	}
	if d.availability == nil {
		d.availability = &mockAvailabilityServicer{}
	}
	if d.schedule == nil {
		d.schedule = &mockScheduleServicer{}
	}
	srv := handler.NewServer(d.events, d.access, d.availability, d.schedule)
	return srv.Routes()
}

// verifyAs returns an access mock that accepts any credential as name.
func verifyAs(name string) *mockAccessServicer {
	return &mockAccessServicer{
		verify: func(_, _ string) (string, error) { return name, nil },
	}
}

func eventFixture() domain.Event {
	return domain.Event{
		ID:            "team-offsite",
		Name:          "Team Offsite",
		SelectedDates: []string{"2026-07-04"},
		StartTime:     "9:00 AM",
		EndTime:       "5:00 PM",
		Timezone:      domain.Timezone{Value: "America/New_York", Label: "Eastern Time"},
		TimeSlots:     []string{"9:00 AM", "9:15 AM"},
		Version:       1,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// errBody decodes the error envelope of a non-2xx response.
type errBody struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Fields  []string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, body *bytes.Buffer) errBody {
	t.Helper()
	var e errBody
	require.NoError(t, json.NewDecoder(body).Decode(&e))
	return e
}
