package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mfreitag/meetsync/internal/domain"
)

// handleCreateEvent handles POST /events. The body is the full event
// document; all identifying fields are required and missing ones are
// reported together.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	created, err := s.events.Create(r.Context(), event)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

// handleGetEvent handles GET /events?id=. A valid session credential is
// optional; when present it marks the caller as the owner of their own
// response so hideResponses redaction skips it.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id query parameter is required", "id")
		return
	}

	// Best effort: an absent or invalid credential just means an anonymous view.
	viewer := ""
	if name, err := s.access.Verify(id, sessionCookie(r, id)); err == nil {
		viewer = name
	}

	event, err := s.events.GetByID(r.Context(), id, viewer)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// handleReplaceEvent handles PUT /events: full-document replace of the
// event's mutable fields, responses array included. Requires a session
// credential scoped to the event's id. A non-zero version in the body is
// treated as the version the client last saw and enables conflict
// detection; clients that omit it keep last-write-wins.
func (s *Server) handleReplaceEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if event.ID == "" {
		badRequest(w, "id is required", "id")
		return
	}

	if _, err := s.access.Verify(event.ID, sessionCookie(r, event.ID)); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.events.Replace(r.Context(), event, event.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
