package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/middleware"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already sent; nothing useful can be done.
	json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a JSON request body into dst. It writes the error
// response itself and reports false when the body is missing, malformed or
// too large.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
	case errors.Is(err, io.EOF):
		requestError(w, "request body is required")
	default:
		requestError(w, "malformed request body: "+err.Error())
	}
	return false
}

// pathUUID binds a UUID path parameter the way generated chi servers do.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return id, nil
}

// pathInt binds an integer path parameter.
func pathInt(r *http.Request, name string) (int, error) {
	var n int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &n,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return 0, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return n, nil
}

// chiParam returns a free-form path parameter such as an activity id.
func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// pageParams binds the optional ?page= and ?limit= query parameters.
func pageParams(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("invalid format for parameter page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return domain.NewPaginationParams(page, limit), nil
}

// ownerID is the caller identity placed in the context by middleware.RequireUser.
func ownerID(r *http.Request) string {
	return middleware.UserID(r.Context())
}

// Pagination is the envelope metadata of list responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
