package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones the test needs.
type mockTripRepo struct {
	create      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByOwner func(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error)
	update      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByOwner(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByOwner(ctx, ownerID, page)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockConfirmationRepo struct {
	create      func(ctx context.Context, c domain.ConfirmationRecord) (domain.ConfirmationRecord, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.ConfirmationRecord, error)
	listByOwner func(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error)
	listByTrip  func(ctx context.Context, tripID uuid.UUID) ([]domain.ConfirmationRecord, error)
	updateBatch func(ctx context.Context, cs []domain.ConfirmationRecord) error
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockConfirmationRepo) Create(ctx context.Context, c domain.ConfirmationRecord) (domain.ConfirmationRecord, error) {
	return m.create(ctx, c)
}
func (m *mockConfirmationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ConfirmationRecord, error) {
	return m.getByID(ctx, id)
}
func (m *mockConfirmationRepo) ListByOwner(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error) {
	return m.listByOwner(ctx, ownerID, page)
}
func (m *mockConfirmationRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ConfirmationRecord, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockConfirmationRepo) UpdateBatch(ctx context.Context, cs []domain.ConfirmationRecord) error {
	return m.updateBatch(ctx, cs)
}
func (m *mockConfirmationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ConfirmationRepo = (*mockConfirmationRepo)(nil)

// mockOracle implements all three oracle ports with function fields.
// A nil field answers with itinerary.ErrOracleUnavailable.
type mockOracle struct {
	arrange    func(ctx context.Context, tc itinerary.TripContext, existing []domain.Activity, newItem domain.Activity) ([]domain.Activity, error)
	regenerate func(ctx context.Context, tc itinerary.TripContext, keep []domain.Activity, excluded []string) ([]domain.Activity, error)
	judge      func(ctx context.Context, candidate itinerary.BookingSummary, existing []itinerary.BookingSummary) (itinerary.Judgment, error)
	parseDate  func(ctx context.Context, raw string) (string, error)
}

func (m *mockOracle) Arrange(ctx context.Context, tc itinerary.TripContext, existing []domain.Activity, newItem domain.Activity) ([]domain.Activity, error) {
	if m.arrange == nil {
		return nil, itinerary.ErrOracleUnavailable
	}
	return m.arrange(ctx, tc, existing, newItem)
}
func (m *mockOracle) Regenerate(ctx context.Context, tc itinerary.TripContext, keep []domain.Activity, excluded []string) ([]domain.Activity, error) {
	if m.regenerate == nil {
		return nil, itinerary.ErrOracleUnavailable
	}
	return m.regenerate(ctx, tc, keep, excluded)
}
func (m *mockOracle) Judge(ctx context.Context, candidate itinerary.BookingSummary, existing []itinerary.BookingSummary) (itinerary.Judgment, error) {
	if m.judge == nil {
		return itinerary.Judgment{}, itinerary.ErrOracleUnavailable
	}
	return m.judge(ctx, candidate, existing)
}
func (m *mockOracle) ParseDate(ctx context.Context, raw string) (string, error) {
	if m.parseDate == nil {
		return "", itinerary.ErrOracleUnavailable
	}
	return m.parseDate(ctx, raw)
}

var (
	_ itinerary.RecommendationOracle = (*mockOracle)(nil)
	_ itinerary.JudgmentOracle       = (*mockOracle)(nil)
	_ itinerary.DateParser           = (*mockOracle)(nil)
)

const (
	owner    = "user-1"
	intruder = "user-2"
)

var (
	tripStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
)

// seedTrip stores a dated trip of n days for owner and returns it.
func seedTrip(t *testing.T, trips repo.TripRepo, n int) domain.Trip {
	t.Helper()
	end := tripStart.AddDate(0, 0, n-1)
	start := tripStart
	days := make([]domain.Day, n)
	for i := range days {
		date := tripStart.AddDate(0, 0, i)
		days[i] = domain.Day{Number: i + 1, Date: &date, Activities: []domain.Activity{}}
	}
	trip, err := trips.Create(context.Background(), domain.Trip{
		OwnerID:     owner,
		Name:        "Siargao surf week",
		Destination: "Siargao",
		Vibe:        "relaxed",
		Status:      domain.TripStatusPlanning,
		StartDate:   &start,
		EndDate:     &end,
		Days:        days,
	})
	if err != nil {
		t.Fatalf("seedTrip: %v", err)
	}
	return trip
}
