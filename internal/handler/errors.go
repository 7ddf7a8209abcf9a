package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	DuplicateIDs []string `json:"duplicate_ids,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// requestError writes a 422 for a request rejected before reaching the
// service layer (e.g. missing or malformed body).
func requestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", message))
}

// paramError writes a 400 for a path or query parameter that does not parse.
func paramError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody("invalid_parameter", err.Error()))
}

// serviceError maps a service error onto its HTTP status. resource names what
// was being looked up (e.g. "trip") for 404 and 403 messages. Anything
// unrecognised is logged and reported as a bare 500.
func serviceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var dup *domain.DuplicateError
	switch {
	case errors.As(err, &dup):
		body := errorBody("duplicate", resource+" duplicates an existing one")
		body.Error.DuplicateIDs = dup.IDs
		writeJSON(w, http.StatusConflict, body)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", notFoundMessage(err, resource)))
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorBody("forbidden", resource+" belongs to another user"))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err)))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", "the "+resource+" was changed concurrently; reload and retry"))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.TripService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err error) string {
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// notFoundMessage keeps "activity x" or "version 2" when the service named
// the missing thing, otherwise falls back to "<resource> not found".
func notFoundMessage(err error, resource string) string {
	msg := err.Error()
	for _, what := range []string{"activity ", "version "} {
		if i := strings.Index(msg, what); i >= 0 {
			return strings.TrimSuffix(msg[i:], ": "+domain.ErrNotFound.Error())
		}
	}
	return resource + " not found"
}
