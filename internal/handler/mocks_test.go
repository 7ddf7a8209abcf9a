package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/handler"
	"github.com/pkordes/trip-itinerary/internal/middleware"
)

const testUser = "user-1"

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create         func(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error)
	getByID        func(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	list           func(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error)
	update         func(ctx context.Context, ownerID string, patch domain.Trip) (domain.Trip, error)
	delete         func(ctx context.Context, ownerID string, id uuid.UUID) error
	updateActivity func(ctx context.Context, ownerID string, tripID uuid.UUID, day int, patch domain.Activity) (domain.Day, error)
	export         func(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockTripServicer) Create(ctx context.Context, ownerID string, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, ownerID, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, ownerID, id)
}
func (m *mockTripServicer) List(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.list(ctx, ownerID, page)
}
func (m *mockTripServicer) Update(ctx context.Context, ownerID string, patch domain.Trip) (domain.Trip, error) {
	return m.update(ctx, ownerID, patch)
}
func (m *mockTripServicer) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}
func (m *mockTripServicer) UpdateActivity(ctx context.Context, ownerID string, tripID uuid.UUID, day int, patch domain.Activity) (domain.Day, error) {
	return m.updateActivity(ctx, ownerID, tripID, day, patch)
}
func (m *mockTripServicer) Export(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, ownerID, tripID)
}

// mockItineraryServicer is a test double for handler.ItineraryServicer.
type mockItineraryServicer struct {
	arrange    func(ctx context.Context, ownerID string, tripID uuid.UUID, day int, inspirationID uuid.UUID) (domain.Day, error)
	addManual  func(ctx context.Context, ownerID string, tripID uuid.UUID, day int, act domain.Activity) (domain.Day, error)
	regenerate func(ctx context.Context, ownerID string, tripID uuid.UUID, day int) (domain.Day, error)
	rollback   func(ctx context.Context, ownerID string, tripID uuid.UUID, day, version int) (domain.Day, error)
	history    func(ctx context.Context, ownerID string, tripID uuid.UUID, day int) ([]domain.VersionSnapshot, error)
}

func (m *mockItineraryServicer) ArrangeInspiration(ctx context.Context, ownerID string, tripID uuid.UUID, day int, inspirationID uuid.UUID) (domain.Day, error) {
	return m.arrange(ctx, ownerID, tripID, day, inspirationID)
}
func (m *mockItineraryServicer) AddManualActivity(ctx context.Context, ownerID string, tripID uuid.UUID, day int, act domain.Activity) (domain.Day, error) {
	return m.addManual(ctx, ownerID, tripID, day, act)
}
func (m *mockItineraryServicer) RegenerateDay(ctx context.Context, ownerID string, tripID uuid.UUID, day int) (domain.Day, error) {
	return m.regenerate(ctx, ownerID, tripID, day)
}
func (m *mockItineraryServicer) Rollback(ctx context.Context, ownerID string, tripID uuid.UUID, day, version int) (domain.Day, error) {
	return m.rollback(ctx, ownerID, tripID, day, version)
}
func (m *mockItineraryServicer) History(ctx context.Context, ownerID string, tripID uuid.UUID, day int) ([]domain.VersionSnapshot, error) {
	return m.history(ctx, ownerID, tripID, day)
}

// mockConfirmationServicer is a test double for handler.ConfirmationServicer.
type mockConfirmationServicer struct {
	create  func(ctx context.Context, ownerID string, c domain.ConfirmationRecord, force bool) (domain.ConfirmationRecord, error)
	getByID func(ctx context.Context, ownerID string, id uuid.UUID) (domain.ConfirmationRecord, error)
	list    func(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error)
	delete  func(ctx context.Context, ownerID string, id uuid.UUID) error
	link    func(ctx context.Context, ownerID string, tripID uuid.UUID, ids []uuid.UUID) (domain.Trip, error)
}

func (m *mockConfirmationServicer) Create(ctx context.Context, ownerID string, c domain.ConfirmationRecord, force bool) (domain.ConfirmationRecord, error) {
	return m.create(ctx, ownerID, c, force)
}
func (m *mockConfirmationServicer) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.ConfirmationRecord, error) {
	return m.getByID(ctx, ownerID, id)
}
func (m *mockConfirmationServicer) List(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error) {
	return m.list(ctx, ownerID, page)
}
func (m *mockConfirmationServicer) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}
func (m *mockConfirmationServicer) LinkToTrip(ctx context.Context, ownerID string, tripID uuid.UUID, ids []uuid.UUID) (domain.Trip, error) {
	return m.link(ctx, ownerID, tripID, ids)
}

// mockInspirationServicer is a test double for handler.InspirationServicer.
type mockInspirationServicer struct {
	create      func(ctx context.Context, ownerID string, item domain.InspirationItem) (domain.InspirationItem, error)
	getByID     func(ctx context.Context, ownerID string, id uuid.UUID) (domain.InspirationItem, error)
	listGrouped func(ctx context.Context, ownerID string) ([]domain.LocationGroup, error)
}

func (m *mockInspirationServicer) Create(ctx context.Context, ownerID string, item domain.InspirationItem) (domain.InspirationItem, error) {
	return m.create(ctx, ownerID, item)
}
func (m *mockInspirationServicer) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.InspirationItem, error) {
	return m.getByID(ctx, ownerID, id)
}
func (m *mockInspirationServicer) ListGrouped(ctx context.Context, ownerID string) ([]domain.LocationGroup, error) {
	return m.listGrouped(ctx, ownerID)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TripServicer         = (*mockTripServicer)(nil)
	_ handler.ItineraryServicer    = (*mockItineraryServicer)(nil)
	_ handler.ConfirmationServicer = (*mockConfirmationServicer)(nil)
	_ handler.InspirationServicer  = (*mockInspirationServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// mocks groups the doubles behind one Server. Nil fields stay nil on the
// Server, so a test only builds the servicers its route touches.
type mocks struct {
	trips         *mockTripServicer
	itinerary     *mockItineraryServicer
	confirmations *mockConfirmationServicer
	inspirations  *mockInspirationServicer
}

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(m mocks) http.Handler {
	var (
		trips         handler.TripServicer
		itin          handler.ItineraryServicer
		confirmations handler.ConfirmationServicer
		inspirations  handler.InspirationServicer
	)
	if m.trips != nil {
		trips = m.trips
	}
	if m.itinerary != nil {
		itin = m.itinerary
	}
	if m.confirmations != nil {
		confirmations = m.confirmations
	}
	if m.inspirations != nil {
		inspirations = m.inspirations
	}
	return handler.NewServer(trips, itin, confirmations, inspirations).Routes()
}

// doRequest sends one request as testUser. A nil body sends no body; a
// string is sent verbatim; anything else is JSON-encoded.
func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(middleware.UserIDHeader, testUser)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeError reads an error response body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func tripFixture() domain.Trip {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	days := make([]domain.Day, 3)
	for i := range days {
		date := start.AddDate(0, 0, i)
		days[i] = domain.Day{Number: i + 1, Date: &date}
	}
	days[0].Activities = []domain.Activity{{
		ID: "flight", Name: "PR 2045 to Siargao", TimeBlock: domain.TimeBlockMorning,
		SpecificTime: "8:05 AM", Type: domain.ActivityTypeTransport,
		SourceType: domain.SourceConfirmation, IsFixed: true,
	}}
	return domain.Trip{
		ID:           uuid.New(),
		OwnerID:      testUser,
		Name:         "Siargao surf week",
		Destination:  "Siargao, Philippines",
		Status:       domain.TripStatusPlanning,
		StartDate:    &start,
		EndDate:      &end,
		DurationDays: 3,
		Days:         days,
		Version:      4,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}
