package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// ActivityRequest is the body of the activity endpoints. On update, empty
// fields are left unchanged.
type ActivityRequest struct {
	Name         string `json:"name,omitempty"`
	TimeBlock    string `json:"time_block,omitempty"`
	SpecificTime string `json:"specific_time,omitempty"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type,omitempty"`
	Location     string `json:"location,omitempty"`
}

// ArrangeInspirationRequest is the body of POST .../days/{day}/inspirations.
type ArrangeInspirationRequest struct {
	InspirationID uuid.UUID `json:"inspiration_id"`
}

// RollbackRequest is the body of POST .../days/{day}/rollback.
// Version 1 is the newest history entry.
type RollbackRequest struct {
	Version int `json:"version"`
}

// Snapshot is the wire form of domain.VersionSnapshot.
type Snapshot struct {
	Version    int               `json:"version"`
	Activities []domain.Activity `json:"activities"`
	CreatedAt  time.Time         `json:"created_at"`
}

// dayTarget binds the {tripID} and {day} path parameters shared by every
// day endpoint.
func dayTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		paramError(w, err)
		return uuid.Nil, 0, false
	}
	day, err := pathInt(r, "day")
	if err != nil {
		paramError(w, err)
		return uuid.Nil, 0, false
	}
	return tripID, day, true
}

// AddActivity handles POST /trips/{tripID}/days/{day}/activities.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	tripID, dayNumber, ok := dayTarget(w, r)
	if !ok {
		return
	}
	var body ActivityRequest
	if !decodeBody(w, r, &body) {
		return
	}

	day, err := s.itinerary.AddManualActivity(r.Context(), ownerID(r), tripID, dayNumber, requestToActivity("", body))
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, dayToResponse(day))
}

// UpdateActivity handles PUT /trips/{tripID}/days/{day}/activities/{activityID}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, dayNumber, ok := dayTarget(w, r)
	if !ok {
		return
	}
	var body ActivityRequest
	if !decodeBody(w, r, &body) {
		return
	}

	patch := requestToActivity(chiParam(r, "activityID"), body)
	day, err := s.trips.UpdateActivity(r.Context(), ownerID(r), tripID, dayNumber, patch)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

// ArrangeInspiration handles POST /trips/{tripID}/days/{day}/inspirations.
func (s *Server) ArrangeInspiration(w http.ResponseWriter, r *http.Request) {
	tripID, dayNumber, ok := dayTarget(w, r)
	if !ok {
		return
	}
	var body ArrangeInspirationRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.InspirationID == uuid.Nil {
		requestError(w, "inspiration_id is required")
		return
	}

	day, err := s.itinerary.ArrangeInspiration(r.Context(), ownerID(r), tripID, dayNumber, body.InspirationID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

// RegenerateDay handles POST /trips/{tripID}/days/{day}/regenerate.
func (s *Server) RegenerateDay(w http.ResponseWriter, r *http.Request) {
	tripID, dayNumber, ok := dayTarget(w, r)
	if !ok {
		return
	}
	day, err := s.itinerary.RegenerateDay(r.Context(), ownerID(r), tripID, dayNumber)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

// GetDayHistory handles GET /trips/{tripID}/days/{day}/history.
func (s *Server) GetDayHistory(w http.ResponseWriter, r *http.Request) {
	tripID, dayNumber, ok := dayTarget(w, r)
	if !ok {
		return
	}
	history, err := s.itinerary.History(r.Context(), ownerID(r), tripID, dayNumber)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}

	out := make([]Snapshot, len(history))
	for i, h := range history {
		acts := h.Activities
		if acts == nil {
			acts = []domain.Activity{}
		}
		out[i] = Snapshot{Version: i + 1, Activities: acts, CreatedAt: h.CreatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

// RollbackDay handles POST /trips/{tripID}/days/{day}/rollback.
func (s *Server) RollbackDay(w http.ResponseWriter, r *http.Request) {
	tripID, dayNumber, ok := dayTarget(w, r)
	if !ok {
		return
	}
	var body RollbackRequest
	if !decodeBody(w, r, &body) {
		return
	}

	day, err := s.itinerary.Rollback(r.Context(), ownerID(r), tripID, dayNumber, body.Version)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

func requestToActivity(id string, body ActivityRequest) domain.Activity {
	return domain.Activity{
		ID:           id,
		Name:         body.Name,
		TimeBlock:    domain.TimeBlock(body.TimeBlock),
		SpecificTime: body.SpecificTime,
		Description:  body.Description,
		Type:         domain.ActivityType(body.Type),
		Location:     body.Location,
	}
}
