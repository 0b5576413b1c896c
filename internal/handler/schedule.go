package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mfreitag/meetsync/internal/domain"
)

// handleGrid handles GET /events/grid?id=&date=&timezone=. It returns the
// slot sequence for one candidate date, labeled in the viewer's timezone
// (the event's own zone when timezone is omitted).
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, date := q.Get("id"), q.Get("date")

	var missing []string
	if id == "" {
		missing = append(missing, "id")
	}
	if date == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		badRequest(w, "missing query parameters", missing...)
		return
	}

	slots, err := s.schedule.Grid(r.Context(), id, date, q.Get("timezone"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}

// handleSummary handles GET /events/summary?id=&names=a,b. names, when
// present, restricts the considered identities to the given subset.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		badRequest(w, "id query parameter is required", "id")
		return
	}

	var subset []string
	if names := q.Get("names"); names != "" {
		for _, name := range strings.Split(names, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				subset = append(subset, trimmed)
			}
		}
	}

	summary, err := s.schedule.Summarize(r.Context(), id, subset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// upsertAvailabilityRequest is the body of PUT /events/responses.
type upsertAvailabilityRequest struct {
	EventID      string                     `json:"eventId"`
	Availability []domain.AvailabilityEntry `json:"availability"`
	Version      int                        `json:"version,omitempty"`
}

// handleUpsertAvailability handles PUT /events/responses: the narrow,
// credential-gated replace of the caller's own availability snapshot.
// A non-zero version enables same-identity conflict detection.
func (s *Server) handleUpsertAvailability(w http.ResponseWriter, r *http.Request) {
	var req upsertAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.EventID == "" {
		badRequest(w, "eventId is required", "eventId")
		return
	}

	name, err := s.access.Verify(req.EventID, sessionCookie(r, req.EventID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.availability.Upsert(r.Context(), req.EventID, name, req.Availability, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handlePersonal handles GET /events/responses?eventId=: the caller's own
// availability entries, verbatim.
func (s *Server) handlePersonal(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		badRequest(w, "eventId query parameter is required", "eventId")
		return
	}

	name, err := s.access.Verify(eventID, sessionCookie(r, eventID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := s.schedule.Personal(r.Context(), eventID, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userName": name, "availability": entries})
}
