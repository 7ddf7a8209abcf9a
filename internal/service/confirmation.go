package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

// ConfirmationService manages booking confirmations and links them to trips.
type ConfirmationService struct {
	confirmations repo.ConfirmationRepo
	trips         repo.TripRepo
	duplicates    *itinerary.DuplicateFilter
	arranger      *itinerary.Arranger
	dates         itinerary.DateParser
	cfg           ItineraryConfig
}

// NewConfirmationService constructs a ConfirmationService. dates may be nil,
// in which case only locally parseable booking dates resolve to a day.
func NewConfirmationService(confirmations repo.ConfirmationRepo, trips repo.TripRepo, duplicates *itinerary.DuplicateFilter, arranger *itinerary.Arranger, dates itinerary.DateParser, cfg ItineraryConfig) *ConfirmationService {
	return &ConfirmationService{
		confirmations: confirmations,
		trips:         trips,
		duplicates:    duplicates,
		arranger:      arranger,
		dates:         dates,
		cfg:           cfg,
	}
}

// Create saves a new, unlinked confirmation. Unless force is set, the owner's
// recent confirmations are checked for duplicates first and a match is
// reported as *domain.DuplicateError.
func (s *ConfirmationService) Create(ctx context.Context, ownerID string, c domain.ConfirmationRecord, force bool) (domain.ConfirmationRecord, error) {
	c.ID = uuid.Nil
	c.OwnerID = ownerID
	c.TripID = nil
	c.DayNumbers = nil
	c.Booking.Name = strings.TrimSpace(c.Booking.Name)
	c.Booking.Reference = strings.TrimSpace(c.Booking.Reference)
	if c.Category == "" {
		c.Category = domain.BookingOther
	}
	if err := validateConfirmation(c); err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("service.ConfirmationService.Create: %w", err)
	}

	if !force {
		recent, _, err := s.confirmations.ListByOwner(ctx, ownerID, domain.PaginationParams{Page: 1, Limit: itinerary.DefaultDuplicateSample})
		if err != nil {
			return domain.ConfirmationRecord{}, fmt.Errorf("service.ConfirmationService.Create: %w", err)
		}
		octx, cancel := s.cfg.oracleContext(ctx)
		verdict := s.duplicates.Check(octx, c, recent)
		cancel()
		if verdict.IsDuplicate {
			return domain.ConfirmationRecord{}, fmt.Errorf("service.ConfirmationService.Create: %w", &domain.DuplicateError{IDs: verdict.DuplicateIDs})
		}
	}

	created, err := s.confirmations.Create(ctx, c)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("service.ConfirmationService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns domain.ErrUnauthorized when the confirmation belongs to
// someone else.
func (s *ConfirmationService) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.ConfirmationRecord, error) {
	c, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("service.ConfirmationService.GetByID: %w", err)
	}
	return c, nil
}

// List returns one page of the owner's confirmations, newest first.
func (s *ConfirmationService) List(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error) {
	list, total, err := s.confirmations.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ConfirmationService.List: %w", err)
	}
	if list == nil {
		list = []domain.ConfirmationRecord{}
	}
	return list, total, nil
}

// Delete removes a confirmation. When it is linked to a trip, its activity
// is first taken off the trip.
func (s *ConfirmationService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	c, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("service.ConfirmationService.Delete: %w", err)
	}

	if c.TripID != nil {
		sourceID := c.ID.String()
		_, err := updateTrip(ctx, s.trips, ownerID, *c.TripID, func(t *domain.Trip) error {
			removed := false
			for i := range t.Days {
				kept := t.Days[i].Activities[:0:0]
				for _, a := range t.Days[i].Activities {
					if a.SourceType == domain.SourceConfirmation && a.SourceID == sourceID {
						removed = true
						continue
					}
					kept = append(kept, a)
				}
				t.Days[i].Activities = kept
			}
			if !removed {
				return errNoChange
			}
			return nil
		})
		// A trip deleted in the meantime has nothing left to clean up.
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("service.ConfirmationService.Delete: %w", err)
		}
	}

	if err := s.confirmations.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ConfirmationService.Delete: %w", err)
	}
	return nil
}

// LinkToTrip places each confirmation on the trip day its booking date falls
// on, as a fixed activity. Dates that cannot be resolved, or that fall after
// the trip's last day, go to day 1. Confirmations already on the trip are
// skipped. The trip is written once and the confirmations are then updated
// in one batch.
// Returns domain.ErrValidation when a confirmation is linked to another trip.
func (s *ConfirmationService) LinkToTrip(ctx context.Context, ownerID string, tripID uuid.UUID, confirmationIDs []uuid.UUID) (domain.Trip, error) {
	if len(confirmationIDs) == 0 {
		return domain.Trip{}, fmt.Errorf("service.ConfirmationService.LinkToTrip: %w: at least one confirmation id is required", domain.ErrValidation)
	}
	records := make([]domain.ConfirmationRecord, 0, len(confirmationIDs))
	for _, id := range confirmationIDs {
		c, err := s.getOwned(ctx, ownerID, id)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.ConfirmationService.LinkToTrip: %w", err)
		}
		if c.TripID != nil && *c.TripID != tripID {
			return domain.Trip{}, fmt.Errorf("service.ConfirmationService.LinkToTrip: %w: confirmation %s is linked to another trip", domain.ErrValidation, id)
		}
		records = append(records, c)
	}

	var linked []domain.ConfirmationRecord
	trip, err := updateTrip(ctx, s.trips, ownerID, tripID, func(t *domain.Trip) error {
		linked = linked[:0]
		snapped := make(map[int]bool)
		for _, c := range records {
			if n, ok := dayWithSource(t, c.ID.String()); ok {
				// Already placed; repair the record if an earlier batch write failed.
				if c.TripID == nil {
					c.TripID = &tripID
					c.DayNumbers = []int{n}
					linked = append(linked, c)
				}
				continue
			}
			days := s.resolveDays(ctx, t, c)
			d, _ := t.Day(days[0])

			act, err := itinerary.NormalizeActivity(itinerary.ActivityFromConfirmation(c), nil)
			if err != nil {
				return err
			}
			octx, cancel := s.cfg.oracleContext(ctx)
			arranged := s.arranger.Arrange(octx, tripContext(t, d), d.Activities, act, s.cfg.Policy)
			cancel()

			if !snapped[d.Number] {
				itinerary.Snapshot(d, s.cfg.now())
				snapped[d.Number] = true
			}
			d.Activities = arranged

			c.TripID = &tripID
			c.DayNumbers = days
			linked = append(linked, c)
		}
		if len(snapped) == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ConfirmationService.LinkToTrip: %w", err)
	}

	if err := s.confirmations.UpdateBatch(ctx, linked); err != nil {
		return domain.Trip{}, fmt.Errorf("service.ConfirmationService.LinkToTrip: %w", err)
	}
	return trip, nil
}

// resolveDays returns the trip days a booking covers: its start day, and for
// bookings with an end date (hotel stays) every day through the end day,
// clamped to the trip. The activity itself goes on the first day only.
func (s *ConfirmationService) resolveDays(ctx context.Context, t *domain.Trip, c domain.ConfirmationRecord) []int {
	if t.StartDate == nil {
		return []int{1}
	}
	octx, cancel := s.cfg.oracleContext(ctx)
	defer cancel()

	first, ok := itinerary.ResolveBookingDay(octx, s.dates, c.Booking.Date, *t.StartDate)
	if !ok || first > len(t.Days) {
		return []int{1}
	}
	last := first
	if c.Booking.EndDate != "" {
		if end, ok := itinerary.ResolveBookingDay(octx, s.dates, c.Booking.EndDate, *t.StartDate); ok && end > first {
			last = min(end, len(t.Days))
		}
	}
	days := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		days = append(days, n)
	}
	return days
}

func (s *ConfirmationService) getOwned(ctx context.Context, ownerID string, id uuid.UUID) (domain.ConfirmationRecord, error) {
	c, err := s.confirmations.GetByID(ctx, id)
	if err != nil {
		return domain.ConfirmationRecord{}, err
	}
	if c.OwnerID != ownerID {
		return domain.ConfirmationRecord{}, fmt.Errorf("confirmation %s: %w", id, domain.ErrUnauthorized)
	}
	return c, nil
}

func validateConfirmation(c domain.ConfirmationRecord) error {
	switch c.Category {
	case domain.BookingFlight, domain.BookingHotel, domain.BookingRestaurant,
		domain.BookingActivity, domain.BookingTransport, domain.BookingOther:
	default:
		return fmt.Errorf("%w: unknown booking category %q", domain.ErrValidation, c.Category)
	}
	if c.Booking.Name == "" && c.Booking.Reference == "" {
		return fmt.Errorf("%w: booking name or reference is required", domain.ErrValidation)
	}
	return nil
}

func dayWithSource(t *domain.Trip, sourceID string) (int, bool) {
	for _, d := range t.Days {
		if hasSource(d.Activities, sourceID) {
			return d.Number, true
		}
	}
	return 0, false
}
