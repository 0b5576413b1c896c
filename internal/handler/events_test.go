package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/handler"
	"github.com/mfreitag/meetsync/internal/repo"
	"github.com/mfreitag/meetsync/internal/service"
)

// ---- POST /events ----------------------------------------------------------

func TestCreateEvent_OK(t *testing.T) {
	fixture := eventFixture()
	events := &mockEventServicer{
		create: func(_ context.Context, e domain.Event) (domain.Event, error) {
			assert.Equal(t, "team-offsite", e.ID)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/events", jsonBody(t, fixture))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, fixture.ID, got.ID)
	assert.Equal(t, fixture.TimeSlots, got.TimeSlots)
}

func TestCreateEvent_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec.Body).Error.Code)
}

func TestCreateEvent_ValidationFields(t *testing.T) {
	events := &mockEventServicer{
		create: func(_ context.Context, _ domain.Event) (domain.Event, error) {
			return domain.Event{}, &domain.ValidationError{Fields: []string{"id", "timeSlots"}}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/events", jsonBody(t, map[string]any{}))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec.Body)
	assert.Equal(t, "validation_error", e.Error.Code)
	assert.Equal(t, []string{"id", "timeSlots"}, e.Error.Fields)
}

// ---- GET /events -----------------------------------------------------------

func TestGetEvent_OK(t *testing.T) {
	fixture := eventFixture()
	events := &mockEventServicer{
		getByID: func(_ context.Context, id, viewer string) (domain.Event, error) {
			assert.Equal(t, "team-offsite", id)
			assert.Empty(t, viewer)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/events?id=team-offsite", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetEvent_PassesVerifiedViewer(t *testing.T) {
	events := &mockEventServicer{
		getByID: func(_ context.Context, _, viewer string) (domain.Event, error) {
			assert.Equal(t, "Sam", viewer)
			return eventFixture(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/events?id=team-offsite", nil)
	req.AddCookie(&http.Cookie{Name: "session-team-offsite", Value: "some-credential"})
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events, access: verifyAs("Sam")}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetEvent_MissingID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"id"}, decodeError(t, rec.Body).Error.Fields)
}

func TestGetEvent_NotFound(t *testing.T) {
	events := &mockEventServicer{
		getByID: func(_ context.Context, _, _ string) (domain.Event, error) {
			return domain.Event{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/events?id=nope", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec.Body).Error.Code)
}

// ---- PUT /events -----------------------------------------------------------

func TestReplaceEvent_OK(t *testing.T) {
	fixture := eventFixture()
	events := &mockEventServicer{
		replace: func(_ context.Context, e domain.Event, expectedVersion int) (domain.Event, error) {
			// The body's version rides along as the expected version.
			assert.Equal(t, 1, expectedVersion)
			return e, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/events", jsonBody(t, fixture))
	req.AddCookie(&http.Cookie{Name: "session-team-offsite", Value: "cred"})
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events, access: verifyAs("Sam")}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReplaceEvent_NoCredential(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/events", jsonBody(t, eventFixture()))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec.Body).Error.Code)
}

// eventRepoStub is a minimal repo.EventRepo returning one stored event, for
// tests that need a real service behind the handler.
type eventRepoStub struct {
	stored domain.Event
}

func (s *eventRepoStub) Create(_ context.Context, e domain.Event) (domain.Event, error) {
	return e, nil
}
func (s *eventRepoStub) GetByID(_ context.Context, id string) (domain.Event, error) {
	if id != s.stored.ID {
		return domain.Event{}, domain.ErrNotFound
	}
	return s.stored, nil
}
func (s *eventRepoStub) Replace(_ context.Context, e domain.Event, _ int) (domain.Event, error) {
	return e, nil
}
func (s *eventRepoStub) CreateResponse(_ context.Context, _ string, r domain.Response) (domain.Response, error) {
	return r, nil
}
func (s *eventRepoStub) GetResponse(_ context.Context, _, _ string) (domain.Response, error) {
	return domain.Response{}, domain.ErrNotFound
}
func (s *eventRepoStub) ReplaceAvailability(_ context.Context, _, _ string, entries []domain.AvailabilityEntry, _ int) (domain.Response, error) {
	return domain.Response{Availability: entries}, nil
}

var _ repo.EventRepo = (*eventRepoStub)(nil)

// TestReplaceEvent_OutOfGridAvailability drives the real event service
// through the PUT route: a response entry outside the stored grid must come
// back as a 400 naming the offending field, never reach the store.
func TestReplaceEvent_OutOfGridAvailability(t *testing.T) {
	events := service.NewEventService(&eventRepoStub{stored: eventFixture()}, "test-secret")

	update := eventFixture()
	update.Responses = []domain.Response{
		{Name: "Sam", Availability: []domain.AvailabilityEntry{
			{Date: "2026-12-25", Time: "9:00 AM", Available: true},
		}},
	}

	req := httptest.NewRequest(http.MethodPut, "/events", jsonBody(t, update))
	req.AddCookie(&http.Cookie{Name: "session-team-offsite", Value: "cred"})
	rec := httptest.NewRecorder()

	srv := handler.NewServer(events, verifyAs("Sam"), &mockAvailabilityServicer{}, &mockScheduleServicer{})
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec.Body)
	assert.Equal(t, "validation_error", e.Error.Code)
	assert.Equal(t, []string{"responses[0].availability[0].date"}, e.Error.Fields)
}

func TestReplaceEvent_VersionConflict(t *testing.T) {
	events := &mockEventServicer{
		replace: func(_ context.Context, _ domain.Event, _ int) (domain.Event, error) {
			return domain.Event{}, domain.ErrConflict
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/events", jsonBody(t, eventFixture()))
	req.AddCookie(&http.Cookie{Name: "session-team-offsite", Value: "cred"})
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{events: events, access: verifyAs("Sam")}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "version_conflict", decodeError(t, rec.Body).Error.Code)
}

// ---- GET /healthz ----------------------------------------------------------

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
