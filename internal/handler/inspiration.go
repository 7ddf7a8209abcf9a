package handler

import (
	"net/http"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// CreateInspirationRequest is the body of POST /inspirations.
type CreateInspirationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location"`
	SourceRef   string `json:"source_ref,omitempty"`
}

// CreateInspiration handles POST /inspirations.
func (s *Server) CreateInspiration(w http.ResponseWriter, r *http.Request) {
	var body CreateInspirationRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.inspirations.Create(r.Context(), ownerID(r), domain.InspirationItem{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		Location:    body.Location,
		SourceRef:   body.SourceRef,
	})
	if err != nil {
		serviceError(w, r, err, "inspiration")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListInspirations handles GET /inspirations. Items come grouped by place.
func (s *Server) ListInspirations(w http.ResponseWriter, r *http.Request) {
	groups, err := s.inspirations.ListGrouped(r.Context(), ownerID(r))
	if err != nil {
		serviceError(w, r, err, "inspiration")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GetInspiration handles GET /inspirations/{inspirationID}.
func (s *Server) GetInspiration(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "inspirationID")
	if err != nil {
		paramError(w, err)
		return
	}
	item, err := s.inspirations.GetByID(r.Context(), ownerID(r), id)
	if err != nil {
		serviceError(w, r, err, "inspiration")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
