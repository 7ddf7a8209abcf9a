// Package domain contains the core data types for the trip itinerary service.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (itinerary, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusPlanning  TripStatus = "planning"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusArchive   TripStatus = "archive"
)

// Valid reports whether s is one of the known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusDraft, TripStatusPlanning, TripStatusActive, TripStatusCompleted, TripStatusArchive:
		return true
	}
	return false
}

// MaxTripDays bounds the length of a trip.
const MaxTripDays = 30

// Trip is the top-level document: one owner, one destination and an ordered
// list of days. Days[i].Number is always i+1.
//
// Version is the optimistic-concurrency counter maintained by the repo layer.
// Callers pass back the Version they loaded; a stale value is rejected with
// ErrConflict.
type Trip struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Name         string     `json:"name"`
	Destination  string     `json:"destination"`
	Vibe         string     `json:"vibe,omitempty"`
	Budget       string     `json:"budget,omitempty"`
	Status       TripStatus `json:"status"`
	StartDate    *time.Time `json:"start_date,omitempty"` // nil for undated trips planned by duration
	EndDate      *time.Time `json:"end_date,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
	Days         []Day      `json:"days"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Length returns the resolved number of days in the trip: the inclusive date
// range when both dates are set, otherwise DurationDays.
func (t Trip) Length() int {
	if t.StartDate != nil && t.EndDate != nil {
		return int(dateOnly(*t.EndDate).Sub(dateOnly(*t.StartDate)).Hours()/24) + 1
	}
	return t.DurationDays
}

// Day returns a pointer to the day with the given 1-based number so callers
// can mutate it in place. ok is false when n is outside 1..len(Days).
func (t *Trip) Day(n int) (*Day, bool) {
	if n < 1 || n > len(t.Days) {
		return nil, false
	}
	return &t.Days[n-1], true
}

// Day is one calendar day of a trip.
// History holds prior activity lists, newest first, at most two entries.
type Day struct {
	Number     int               `json:"number"`
	Date       *time.Time        `json:"date,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Activities []Activity        `json:"activities"`
	History    []VersionSnapshot `json:"history,omitempty"`
}

// VersionSnapshot is a value copy of a day's activities at a point in time.
type VersionSnapshot struct {
	Activities []Activity `json:"activities"`
	CreatedAt  time.Time  `json:"created_at"`
}

// dateOnly truncates t to midnight UTC of its calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
