// Package service contains the business logic of the trip itinerary API.
// Services check ownership, validate input and orchestrate the itinerary
// engine against the repo interfaces. No persistence code lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

// maxWriteAttempts bounds the reload-and-retry loop on version conflicts.
const maxWriteAttempts = 3

// errNoChange lets an updateTrip callback report that nothing needs writing.
var errNoChange = errors.New("no change")

// TripService implements business logic for Trip operations.
type TripService struct {
	trips         repo.TripRepo
	confirmations repo.ConfirmationRepo
}

// NewTripService constructs a TripService. The confirmation repo is used to
// unlink bookings when a trip is deleted.
func NewTripService(trips repo.TripRepo, confirmations repo.ConfirmationRepo) *TripService {
	return &TripService{trips: trips, confirmations: confirmations}
}

// Create validates a new trip and builds its contiguous days 1..N.
// Any days supplied by the caller are ignored.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error) {
	trip.OwnerID = ownerID
	trip.Name = strings.TrimSpace(trip.Name)
	trip.Destination = strings.TrimSpace(trip.Destination)
	if trip.Status == "" {
		trip.Status = domain.TripStatusDraft
	}
	if err := validateTrip(&trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip.Days = buildDays(trip.StartDate, trip.Length())

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns domain.ErrNotFound if the trip does not exist and
// domain.ErrUnauthorized if it belongs to someone else.
func (s *TripService) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	trip, err := getOwnedTrip(ctx, s.trips, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns one page of the owner's trips and the owner's total count.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update changes the descriptive fields of a trip: name, destination, vibe,
// budget and status. Dates and days are fixed at creation.
func (s *TripService) Update(ctx context.Context, ownerID string, patch domain.Trip) (domain.Trip, error) {
	name := strings.TrimSpace(patch.Name)
	destination := strings.TrimSpace(patch.Destination)
	if patch.Status != "" && !patch.Status.Valid() {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: unknown status %q", domain.ErrValidation, patch.Status)
	}

	updated, err := updateTrip(ctx, s.trips, ownerID, patch.ID, func(t *domain.Trip) error {
		if name != "" {
			t.Name = name
		}
		if destination != "" {
			t.Destination = destination
		}
		if patch.Vibe != "" {
			t.Vibe = patch.Vibe
		}
		if patch.Budget != "" {
			t.Budget = patch.Budget
		}
		if patch.Status != "" {
			t.Status = patch.Status
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a trip and unlinks every confirmation that pointed at it.
// The confirmations themselves are kept.
func (s *TripService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := getOwnedTrip(ctx, s.trips, ownerID, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	linked, err := s.confirmations.ListByTrip(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	for i := range linked {
		linked[i].TripID = nil
		linked[i].DayNumbers = nil
	}
	if err := s.confirmations.UpdateBatch(ctx, linked); err != nil {
		return fmt.Errorf("service.TripService.Delete: unlink confirmations: %w", err)
	}

	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// UpdateActivity edits one activity in place.
// A fixed activity only accepts changes to its description and specific
// time; any other change is rejected with domain.ErrValidation.
// Returns domain.ErrValidation when the activity id is missing or the day
// number is out of range, and domain.ErrNotFound when the activity is not on
// that day.
func (s *TripService) UpdateActivity(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, patch domain.Activity) (domain.Day, error) {
	if strings.TrimSpace(patch.ID) == "" {
		return domain.Day{}, fmt.Errorf("service.TripService.UpdateActivity: %w: activity id is required", domain.ErrValidation)
	}

	var day domain.Day
	_, err := updateTrip(ctx, s.trips, ownerID, tripID, func(t *domain.Trip) error {
		d, err := tripDay(t, dayNumber)
		if err != nil {
			return err
		}
		idx := indexOfActivity(d.Activities, patch.ID)
		if idx < 0 {
			return fmt.Errorf("activity %s: %w", patch.ID, domain.ErrNotFound)
		}
		next, err := applyActivityPatch(d.Activities[idx], patch)
		if err != nil {
			return err
		}
		d.Activities[idx] = next
		day = *d
		return nil
	})
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.TripService.UpdateActivity: %w", err)
	}
	return day, nil
}

// validateTrip enforces the trip creation rules and fills in EndDate when
// only a start date and a duration are given.
func validateTrip(t *domain.Trip) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if t.Destination == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}
	if t.EndDate != nil && t.StartDate == nil {
		return fmt.Errorf("%w: end_date requires start_date", domain.ErrValidation)
	}
	if t.StartDate != nil && t.EndDate == nil && t.DurationDays > 0 {
		end := t.StartDate.AddDate(0, 0, t.DurationDays-1)
		t.EndDate = &end
	}
	if t.StartDate != nil && t.EndDate != nil {
		if t.EndDate.Before(*t.StartDate) {
			return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
		}
		t.DurationDays = t.Length()
	}
	if n := t.Length(); n < 1 || n > domain.MaxTripDays {
		return fmt.Errorf("%w: trip must last between 1 and %d days", domain.ErrValidation, domain.MaxTripDays)
	}
	return nil
}

// buildDays returns days 1..n, dated from start when it is known.
func buildDays(start *time.Time, n int) []domain.Day {
	days := make([]domain.Day, n)
	for i := range days {
		days[i] = domain.Day{Number: i + 1, Activities: []domain.Activity{}}
		if start != nil {
			date := start.AddDate(0, 0, i)
			days[i].Date = &date
		}
	}
	return days
}

// applyActivityPatch merges the non-empty fields of patch into current.
// Source fields are never taken from the patch.
func applyActivityPatch(current, patch domain.Activity) (domain.Activity, error) {
	if current.IsFixed {
		if changed(patch.Name, current.Name) || changed(string(patch.TimeBlock), string(current.TimeBlock)) ||
			changed(string(patch.Type), string(current.Type)) || changed(patch.Location, current.Location) {
			return domain.Activity{}, fmt.Errorf("%w: fixed activity %q only accepts description and specific_time changes",
				domain.ErrValidation, current.Name)
		}
		if patch.Description != "" {
			current.Description = patch.Description
		}
		if patch.SpecificTime != "" {
			current.SpecificTime = patch.SpecificTime
		}
		return current, nil
	}

	next := current
	if patch.Name != "" {
		next.Name = patch.Name
	}
	if patch.Description != "" {
		next.Description = patch.Description
	}
	if patch.Location != "" {
		next.Location = patch.Location
	}
	if patch.Type != "" {
		if !patch.Type.Valid() {
			return domain.Activity{}, fmt.Errorf("%w: unknown activity type %q", domain.ErrValidation, patch.Type)
		}
		next.Type = patch.Type
	}
	if patch.SpecificTime != "" {
		next.SpecificTime = patch.SpecificTime
		if patch.TimeBlock == "" {
			next.TimeBlock = itinerary.ResolveTimeBlock(patch.SpecificTime, next.Type)
		}
	}
	if patch.TimeBlock != "" {
		if !patch.TimeBlock.Valid() {
			return domain.Activity{}, fmt.Errorf("%w: unknown time block %q", domain.ErrValidation, patch.TimeBlock)
		}
		next.TimeBlock = patch.TimeBlock
	}
	return itinerary.NormalizeActivity(next, nil)
}

func changed(patch, current string) bool {
	return patch != "" && patch != current
}

func indexOfActivity(activities []domain.Activity, id string) int {
	for i, a := range activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// tripDay returns the numbered day or a validation error.
func tripDay(t *domain.Trip, n int) (*domain.Day, error) {
	d, ok := t.Day(n)
	if !ok {
		return nil, fmt.Errorf("%w: day %d is outside 1..%d", domain.ErrValidation, n, len(t.Days))
	}
	return d, nil
}

// getOwnedTrip loads a trip and checks it belongs to ownerID.
func getOwnedTrip(ctx context.Context, trips repo.TripRepo, ownerID string, id uuid.UUID) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.OwnerID != ownerID {
		return domain.Trip{}, fmt.Errorf("trip %s: %w", id, domain.ErrUnauthorized)
	}
	return trip, nil
}

// updateTrip runs one read-modify-write cycle against the trip document.
// apply mutates the loaded trip; on a version conflict the trip is reloaded
// and apply runs again, up to maxWriteAttempts times. apply returning
// errNoChange skips the write and returns the trip as loaded.
func updateTrip(ctx context.Context, trips repo.TripRepo, ownerID string, id uuid.UUID, apply func(*domain.Trip) error) (domain.Trip, error) {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		var trip domain.Trip
		trip, err = getOwnedTrip(ctx, trips, ownerID, id)
		if err != nil {
			return domain.Trip{}, err
		}
		if err = apply(&trip); err != nil {
			if errors.Is(err, errNoChange) {
				return trip, nil
			}
			return domain.Trip{}, err
		}
		var updated domain.Trip
		updated, err = trips.Update(ctx, trip)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return domain.Trip{}, err
		}
	}
	return domain.Trip{}, err
}
