package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mfreitag/meetsync/internal/token"
)

// sessionCookieName returns the per-event cookie name, so a browser can hold
// independent sessions for different events at once.
func sessionCookieName(eventID string) string {
	return "session-" + eventID
}

// sessionCookie extracts the raw credential for an event from the request,
// or empty when absent.
func sessionCookie(r *http.Request, eventID string) string {
	c, err := r.Cookie(sessionCookieName(eventID))
	if err != nil {
		return ""
	}
	return c.Value
}

// setSessionCookie installs the event-scoped credential: httpOnly so scripts
// never see it, valid as long as the credential itself.
func setSessionCookie(w http.ResponseWriter, eventID, credential string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(eventID),
		Value:    credential,
		Path:     "/",
		MaxAge:   int(token.TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie deletes the event-scoped credential. The server is
// stateless, so deletion of the client-held cookie is the whole sign-out.
func clearSessionCookie(w http.ResponseWriter, eventID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(eventID),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// signInRequest is the body of POST /events/users. IsResponseLimited is
// carried by existing clients but ignored: whether a password is required is
// decided by the stored event, never by the caller's claim.
type signInRequest struct {
	EventID           string `json:"eventId"`
	UserName          string `json:"userName"`
	Password          string `json:"password,omitempty"`
	IsResponseLimited bool   `json:"isResponseLimited,omitempty"`
}

// handleSignIn handles POST /events/users. On success it sets the httpOnly
// event-scoped session cookie and returns the canonical identity name.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.EventID == "" {
		badRequest(w, "eventId is required", "eventId")
		return
	}

	credential, resp, err := s.access.SignIn(r.Context(), req.EventID, req.UserName, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, req.EventID, credential)
	writeJSON(w, http.StatusOK, map[string]string{"userName": resp.Name})
}

// handleCurrentUser handles GET /events/users?eventId=. Returns the caller's
// identity when the presented credential is valid for that event.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]string{"userName": name})
}

// handleSignOut handles POST /events/users/signout?eventId=.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		badRequest(w, "eventId query parameter is required", "eventId")
		return
	}

	clearSessionCookie(w, eventID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
