// Package handler implements the HTTP handlers for the MeetSync API.
// All handlers are methods on Server. Methods are split into files by
// concern (events.go, users.go, schedule.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/service"
	"github.com/mfreitag/meetsync/internal/timegrid"
)

// EventServicer defines the event operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type EventServicer interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id, viewer string) (domain.Event, error)
	Replace(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error)
}

// AccessServicer defines the sign-in and credential operations.
type AccessServicer interface {
	SignIn(ctx context.Context, eventID, name, password string) (string, domain.Response, error)
	Verify(eventID, credential string) (string, error)
}

// AvailabilityServicer defines the per-identity availability write path.
type AvailabilityServicer interface {
	Upsert(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error)
}

// ScheduleServicer defines the read-side views.
type ScheduleServicer interface {
	Grid(ctx context.Context, eventID, date, viewerZone string) ([]timegrid.Slot, error)
	Summarize(ctx context.Context, eventID string, subset []string) (service.Summary, error)
	Personal(ctx context.Context, eventID, name string) ([]domain.AvailabilityEntry, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	events       EventServicer
	access       AccessServicer
	availability AvailabilityServicer
	schedule     ScheduleServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(events EventServicer, access AccessServicer, availability AvailabilityServicer, schedule ScheduleServicer) *Server {
	return &Server{
		events:       events,
		access:       access,
		availability: availability,
		schedule:     schedule,
	}
}

// Routes mounts every endpoint on a fresh chi router. The paths and their
// query/body field names are a compatibility contract with existing clients.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", s.handleCreateEvent)
		r.Get("/", s.handleGetEvent)
		r.Put("/", s.handleReplaceEvent)

		r.Get("/grid", s.handleGrid)
		r.Get("/summary", s.handleSummary)

		r.Put("/responses", s.handleUpsertAvailability)
		r.Get("/responses", s.handlePersonal)

		r.Post("/users", s.handleSignIn)
		r.Get("/users", s.handleCurrentUser)
		r.Post("/users/signout", s.handleSignOut)
	})

	return r
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
