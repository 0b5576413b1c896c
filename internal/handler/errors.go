package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mfreitag/meetsync/internal/domain"
)

// errorResponse is the wire shape of every error body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// writeJSON serializes v with the right content type. Encoding failures at
// this point are unrecoverable (headers already written) and only logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses:
// validation 400, auth 401, locked 403, not found 404, conflict 409,
// anything else 500 with a generic message (internal detail logged, never
// exposed to the caller).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{
			Code:    "validation_error",
			Message: ve.Error(),
			Fields:  ve.Fields,
		}})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{
			Code:    "validation_error",
			Message: err.Error(),
		}})
	case errors.Is(err, domain.ErrAuth):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorDetail{
			Code:    "unauthorized",
			Message: err.Error(),
		}})
	case errors.Is(err, domain.ErrLocked):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: errorDetail{
			Code:    "event_locked",
			Message: err.Error(),
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorDetail{
			Code:    "not_found",
			Message: "event not found",
		}})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: errorDetail{
			Code:    "version_conflict",
			Message: "the document changed since it was read; re-fetch and retry",
		}})
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorDetail{
			Code:    "internal_error",
			Message: "something went wrong",
		}})
	}
}

// badRequest rejects malformed input before it reaches the service layer.
func badRequest(w http.ResponseWriter, message string, fields ...string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{
		Code:    "validation_error",
		Message: message,
		Fields:  fields,
	}})
}
