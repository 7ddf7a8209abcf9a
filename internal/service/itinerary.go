package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

// ItineraryConfig tunes the engine calls made by ItineraryService and
// ConfirmationService.
type ItineraryConfig struct {
	// OracleTimeout bounds each oracle-backed engine call. Zero means no bound
	// beyond the request context.
	OracleTimeout time.Duration
	// Seed fixes the regeneration fallback shuffle. Zero derives a seed from
	// the trip, the day and the trip version.
	Seed uint64
	// Policy decides whether arrangement may move fixed activities between
	// time blocks.
	Policy itinerary.FixedPolicy
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c ItineraryConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// oracleContext applies OracleTimeout to ctx.
func (c ItineraryConfig) oracleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.OracleTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.OracleTimeout)
}

// ItineraryService places items on trip days, regenerates days and manages
// per-day history. Every write snapshots the day it changes first.
type ItineraryService struct {
	trips        repo.TripRepo
	inspirations repo.InspirationRepo
	arranger     *itinerary.Arranger
	regenerator  *itinerary.Regenerator
	cfg          ItineraryConfig
}

// NewItineraryService constructs an ItineraryService.
func NewItineraryService(trips repo.TripRepo, inspirations repo.InspirationRepo, arranger *itinerary.Arranger, regenerator *itinerary.Regenerator, cfg ItineraryConfig) *ItineraryService {
	return &ItineraryService{
		trips:        trips,
		inspirations: inspirations,
		arranger:     arranger,
		regenerator:  regenerator,
		cfg:          cfg,
	}
}

// ArrangeInspiration places a saved inspiration on a day. Placing the same
// inspiration on the same day twice is a no-op.
func (s *ItineraryService) ArrangeInspiration(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, inspirationID uuid.UUID) (domain.Day, error) {
	item, err := s.inspirations.GetByID(ctx, inspirationID)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.ArrangeInspiration: %w", err)
	}
	if item.OwnerID != ownerID {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.ArrangeInspiration: inspiration %s: %w", inspirationID, domain.ErrUnauthorized)
	}
	act, err := itinerary.NormalizeActivity(itinerary.ActivityFromInspiration(item), nil)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.ArrangeInspiration: %w", err)
	}

	day, err := s.arrangeOnDay(ctx, ownerID, tripID, dayNumber, act)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.ArrangeInspiration: %w", err)
	}
	return day, nil
}

// AddManualActivity places a user-entered activity on a day.
// Returns domain.ErrValidation when the name is blank.
func (s *ItineraryService) AddManualActivity(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, act domain.Activity) (domain.Day, error) {
	act.ID = ""
	act.SourceType = domain.SourceManual
	act.SourceID = ""
	act, err := itinerary.NormalizeActivity(act, nil)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.AddManualActivity: %w", err)
	}

	day, err := s.arrangeOnDay(ctx, ownerID, tripID, dayNumber, act)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.AddManualActivity: %w", err)
	}
	return day, nil
}

func (s *ItineraryService) arrangeOnDay(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, act domain.Activity) (domain.Day, error) {
	var day domain.Day
	_, err := updateTrip(ctx, s.trips, ownerID, tripID, func(t *domain.Trip) error {
		d, err := tripDay(t, dayNumber)
		if err != nil {
			return err
		}
		if act.SourceID != "" && hasSource(d.Activities, act.SourceID) {
			day = *d
			return errNoChange
		}

		octx, cancel := s.cfg.oracleContext(ctx)
		defer cancel()
		arranged := s.arranger.Arrange(octx, tripContext(t, d), d.Activities, act, s.cfg.Policy)

		itinerary.Snapshot(d, s.cfg.now())
		d.Activities = arranged
		day = *d
		return nil
	})
	if err != nil {
		return domain.Day{}, err
	}
	return day, nil
}

// RegenerateDay replaces the flexible activities of a day. Fixed activities
// are kept verbatim and names planned on other days are avoided.
func (s *ItineraryService) RegenerateDay(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int) (domain.Day, error) {
	var day domain.Day
	_, err := updateTrip(ctx, s.trips, ownerID, tripID, func(t *domain.Trip) error {
		d, err := tripDay(t, dayNumber)
		if err != nil {
			return err
		}
		seed := s.cfg.Seed
		if seed == 0 {
			seed = itinerary.DeriveSeed(t.ID.String(), d.Number) ^ uint64(t.Version)
		}

		octx, cancel := s.cfg.oracleContext(ctx)
		defer cancel()
		regenerated := s.regenerator.Regenerate(octx, tripContext(t, d), *d, t.Days, seed)

		itinerary.Snapshot(d, s.cfg.now())
		d.Activities = regenerated
		day = *d
		return nil
	})
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.RegenerateDay: %w", err)
	}
	return day, nil
}

// Rollback restores history entry version (1 = newest) of a day. The state
// being replaced becomes the newest history entry, so a rollback can be
// undone by rolling back to version 1.
func (s *ItineraryService) Rollback(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber, version int) (domain.Day, error) {
	var day domain.Day
	_, err := updateTrip(ctx, s.trips, ownerID, tripID, func(t *domain.Trip) error {
		d, err := tripDay(t, dayNumber)
		if err != nil {
			return err
		}
		if err := itinerary.Rollback(d, version, s.cfg.now()); err != nil {
			return err
		}
		day = *d
		return nil
	})
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.Rollback: %w", err)
	}
	return day, nil
}

// History returns the day's snapshots, newest first. Always non-nil.
func (s *ItineraryService) History(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int) ([]domain.VersionSnapshot, error) {
	trip, err := getOwnedTrip(ctx, s.trips, ownerID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.History: %w", err)
	}
	d, err := tripDay(&trip, dayNumber)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.History: %w", err)
	}
	if d.History == nil {
		return []domain.VersionSnapshot{}, nil
	}
	return d.History, nil
}

func tripContext(t *domain.Trip, d *domain.Day) itinerary.TripContext {
	tc := itinerary.TripContext{
		TripID:      t.ID.String(),
		Destination: t.Destination,
		Vibe:        t.Vibe,
		Budget:      t.Budget,
		DayNumber:   d.Number,
	}
	if d.Date != nil {
		tc.Date = d.Date.Format(time.DateOnly)
	}
	return tc
}

func hasSource(activities []domain.Activity, sourceID string) bool {
	for _, a := range activities {
		if a.SourceID == sourceID {
			return true
		}
	}
	return false
}
