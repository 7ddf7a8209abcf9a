package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// CreateTripRequest is the body of POST /trips. Either both dates, a start
// date and a duration, or a duration alone must be given.
type CreateTripRequest struct {
	Name         string              `json:"name"`
	Destination  string              `json:"destination"`
	Vibe         string              `json:"vibe,omitempty"`
	Budget       string              `json:"budget,omitempty"`
	Status       string              `json:"status,omitempty"`
	StartDate    *openapi_types.Date `json:"start_date,omitempty"`
	EndDate      *openapi_types.Date `json:"end_date,omitempty"`
	DurationDays int                 `json:"duration_days,omitempty"`
}

// UpdateTripRequest is the body of PATCH /trips/{tripID}. Empty fields are
// left unchanged.
type UpdateTripRequest struct {
	Name        string `json:"name,omitempty"`
	Destination string `json:"destination,omitempty"`
	Vibe        string `json:"vibe,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Trip is the wire form of domain.Trip.
type Trip struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Destination  string              `json:"destination"`
	Vibe         string              `json:"vibe,omitempty"`
	Budget       string              `json:"budget,omitempty"`
	Status       string              `json:"status"`
	StartDate    *openapi_types.Date `json:"start_date,omitempty"`
	EndDate      *openapi_types.Date `json:"end_date,omitempty"`
	DurationDays int                 `json:"duration_days"`
	Days         []Day               `json:"days"`
	Version      int64               `json:"version"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Day is the wire form of domain.Day. History is served separately.
type Day struct {
	Number       int                 `json:"number"`
	Date         *openapi_types.Date `json:"date,omitempty"`
	Summary      string              `json:"summary,omitempty"`
	Activities   []domain.Activity   `json:"activities"`
	HistoryDepth int                 `json:"history_depth"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), ownerID(r), requestToTrip(body))
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, err := pageParams(r)
	if err != nil {
		paramError(w, err)
		return
	}
	trips, total, err := s.trips.List(r.Context(), ownerID(r), params)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripID")
	if err != nil {
		paramError(w, err)
		return
	}
	trip, err := s.trips.GetByID(r.Context(), ownerID(r), id)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PATCH /trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripID")
	if err != nil {
		paramError(w, err)
		return
	}
	var body UpdateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.trips.Update(r.Context(), ownerID(r), domain.Trip{
		ID:          id,
		Name:        body.Name,
		Destination: body.Destination,
		Vibe:        body.Vibe,
		Budget:      body.Budget,
		Status:      domain.TripStatus(body.Status),
	})
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripID")
	if err != nil {
		paramError(w, err)
		return
	}
	if err := s.trips.Delete(r.Context(), ownerID(r), id); err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a CreateTripRequest body into a domain.Trip.
func requestToTrip(body CreateTripRequest) domain.Trip {
	t := domain.Trip{
		Name:         body.Name,
		Destination:  body.Destination,
		Vibe:         body.Vibe,
		Budget:       body.Budget,
		Status:       domain.TripStatus(body.Status),
		DurationDays: body.DurationDays,
	}
	if body.StartDate != nil {
		sd := body.StartDate.Time
		t.StartDate = &sd
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		t.EndDate = &ed
	}
	return t
}

// tripToResponse converts a domain.Trip into its wire form.
func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:           t.ID,
		Name:         t.Name,
		Destination:  t.Destination,
		Vibe:         t.Vibe,
		Budget:       t.Budget,
		Status:       string(t.Status),
		StartDate:    toDate(t.StartDate),
		EndDate:      toDate(t.EndDate),
		DurationDays: t.Length(),
		Days:         make([]Day, len(t.Days)),
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	for i, d := range t.Days {
		resp.Days[i] = dayToResponse(d)
	}
	return resp
}

func dayToResponse(d domain.Day) Day {
	acts := d.Activities
	if acts == nil {
		acts = []domain.Activity{}
	}
	return Day{
		Number:       d.Number,
		Date:         toDate(d.Date),
		Summary:      d.Summary,
		Activities:   acts,
		HistoryDepth: len(d.History),
	}
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}
