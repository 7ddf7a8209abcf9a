package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// CreateConfirmationRequest is the body of POST /confirmations: the booking
// as extracted from an email, PDF or image.
type CreateConfirmationRequest struct {
	Category string         `json:"category"`
	Booking  domain.Booking `json:"booking"`
}

// LinkConfirmationsRequest is the body of POST /trips/{tripID}/confirmations.
type LinkConfirmationsRequest struct {
	ConfirmationIDs []uuid.UUID `json:"confirmation_ids"`
}

// ConfirmationList is the body of GET /confirmations.
type ConfirmationList struct {
	Data       []domain.ConfirmationRecord `json:"data"`
	Pagination Pagination                  `json:"pagination"`
}

// CreateConfirmation handles POST /confirmations.
// ?force=true skips the duplicate check.
func (s *Server) CreateConfirmation(w http.ResponseWriter, r *http.Request) {
	var force *bool
	if err := runtime.BindQueryParameter("form", true, false, "force", r.URL.Query(), &force); err != nil {
		paramError(w, err)
		return
	}
	var body CreateConfirmationRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.confirmations.Create(r.Context(), ownerID(r), domain.ConfirmationRecord{
		Category: domain.BookingCategory(strings.ToLower(strings.TrimSpace(body.Category))),
		Booking:  body.Booking,
	}, force != nil && *force)
	if err != nil {
		serviceError(w, r, err, "confirmation")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListConfirmations handles GET /confirmations, newest first.
func (s *Server) ListConfirmations(w http.ResponseWriter, r *http.Request) {
	params, err := pageParams(r)
	if err != nil {
		paramError(w, err)
		return
	}
	list, total, err := s.confirmations.List(r.Context(), ownerID(r), params)
	if err != nil {
		serviceError(w, r, err, "confirmation")
		return
	}
	writeJSON(w, http.StatusOK, ConfirmationList{
		Data:       list,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetConfirmation handles GET /confirmations/{confirmationID}.
func (s *Server) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "confirmationID")
	if err != nil {
		paramError(w, err)
		return
	}
	c, err := s.confirmations.GetByID(r.Context(), ownerID(r), id)
	if err != nil {
		serviceError(w, r, err, "confirmation")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteConfirmation handles DELETE /confirmations/{confirmationID}.
func (s *Server) DeleteConfirmation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "confirmationID")
	if err != nil {
		paramError(w, err)
		return
	}
	if err := s.confirmations.Delete(r.Context(), ownerID(r), id); err != nil {
		serviceError(w, r, err, "confirmation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkConfirmations handles POST /trips/{tripID}/confirmations. Each
// confirmation becomes a fixed activity on the day its booking falls on.
func (s *Server) LinkConfirmations(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		paramError(w, err)
		return
	}
	var body LinkConfirmationsRequest
	if !decodeBody(w, r, &body) {
		return
	}

	trip, err := s.confirmations.LinkToTrip(r.Context(), ownerID(r), tripID, body.ConfirmationIDs)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}
