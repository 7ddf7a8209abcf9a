package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/handler"
)

func dayPath(tripID uuid.UUID, day int, suffix string) string {
	return fmt.Sprintf("/trips/%s/days/%d/%s", tripID, day, suffix)
}

func dayFixture() domain.Day {
	return tripFixture().Days[0]
}

func TestAddActivity_returns201WithDay(t *testing.T) {
	tripID := uuid.New()
	svc := &mockItineraryServicer{
		addManual: func(_ context.Context, ownerID string, gotTrip uuid.UUID, day int, act domain.Activity) (domain.Day, error) {
			assert.Equal(t, testUser, ownerID)
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, 1, day)
			assert.Empty(t, act.ID, "ids are assigned by the service")
			assert.Equal(t, "Cloud 9 boardwalk", act.Name)
			assert.Equal(t, "7:00 pm", act.SpecificTime)
			assert.Equal(t, domain.ActivityTypeAttraction, act.Type)
			d := dayFixture()
			d.Activities = append(d.Activities, domain.Activity{
				ID: "a1", Name: act.Name, TimeBlock: domain.TimeBlockEvening,
				Type: act.Type, SourceType: domain.SourceManual,
			})
			return d, nil
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(tripID, 1, "activities"), map[string]string{
		"name":          "Cloud 9 boardwalk",
		"specific_time": "7:00 pm",
		"type":          "attraction",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var got handler.Day
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Activities, 2)
	assert.Equal(t, domain.TimeBlockEvening, got.Activities[1].TimeBlock)
}

func TestAddActivity_badDayReturns400(t *testing.T) {
	h := newHTTPHandler(mocks{itinerary: &mockItineraryServicer{}})

	rec := doRequest(t, h, http.MethodPost, "/trips/"+uuid.NewString()+"/days/one/activities",
		map[string]string{"name": "x"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "day")
}

func TestAddActivity_dayOutOfRangeReturns422(t *testing.T) {
	svc := &mockItineraryServicer{
		addManual: func(context.Context, string, uuid.UUID, int, domain.Activity) (domain.Day, error) {
			return domain.Day{}, fmt.Errorf("service.ItineraryService.AddManualActivity: %w: day 9 is outside 1..3", domain.ErrValidation)
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 9, "activities"), map[string]string{"name": "x"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "day 9 is outside 1..3", decodeError(t, rec).Message)
}

func TestUpdateActivity_passesActivityIDFromPath(t *testing.T) {
	svc := &mockTripServicer{
		updateActivity: func(_ context.Context, _ string, _ uuid.UUID, day int, patch domain.Activity) (domain.Day, error) {
			assert.Equal(t, 1, day)
			assert.Equal(t, "flight", patch.ID)
			assert.Equal(t, "Window seat", patch.Description)
			d := dayFixture()
			d.Activities[0].Description = patch.Description
			return d, nil
		},
	}
	h := newHTTPHandler(mocks{trips: svc})

	rec := doRequest(t, h, http.MethodPut, dayPath(uuid.New(), 1, "activities/flight"),
		map[string]string{"description": "Window seat"})

	require.Equal(t, http.StatusOK, rec.Code)
	var got handler.Day
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Window seat", got.Activities[0].Description)
}

func TestUpdateActivity_missingActivityReturns404WithName(t *testing.T) {
	svc := &mockTripServicer{
		updateActivity: func(context.Context, string, uuid.UUID, int, domain.Activity) (domain.Day, error) {
			return domain.Day{}, fmt.Errorf("service.TripService.UpdateActivity: activity ghost: %w", domain.ErrNotFound)
		},
	}
	h := newHTTPHandler(mocks{trips: svc})

	rec := doRequest(t, h, http.MethodPut, dayPath(uuid.New(), 1, "activities/ghost"),
		map[string]string{"name": "Renamed"})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "activity ghost", decodeError(t, rec).Message)
}

func TestUpdateActivity_fixedActivityRenameReturns422(t *testing.T) {
	svc := &mockTripServicer{
		updateActivity: func(context.Context, string, uuid.UUID, int, domain.Activity) (domain.Day, error) {
			return domain.Day{}, fmt.Errorf("service.TripService.UpdateActivity: %w: fixed activity %q only accepts description and specific_time changes",
				domain.ErrValidation, "PR 2045 to Siargao")
		},
	}
	h := newHTTPHandler(mocks{trips: svc})

	rec := doRequest(t, h, http.MethodPut, dayPath(uuid.New(), 1, "activities/flight"),
		map[string]string{"name": "Different flight"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "fixed activity")
}

func TestArrangeInspiration_returns200(t *testing.T) {
	inspirationID := uuid.New()
	svc := &mockItineraryServicer{
		arrange: func(_ context.Context, _ string, _ uuid.UUID, day int, got uuid.UUID) (domain.Day, error) {
			assert.Equal(t, 2, day)
			assert.Equal(t, inspirationID, got)
			return domain.Day{Number: 2, Activities: []domain.Activity{{ID: "i1", Name: "Sugba lagoon"}}, History: []domain.VersionSnapshot{{}}}, nil
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 2, "inspirations"),
		map[string]string{"inspiration_id": inspirationID.String()})

	require.Equal(t, http.StatusOK, rec.Code)
	var got handler.Day
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.Number)
	assert.Equal(t, 1, got.HistoryDepth)
}

func TestArrangeInspiration_missingIDReturns422(t *testing.T) {
	h := newHTTPHandler(mocks{itinerary: &mockItineraryServicer{}})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 1, "inspirations"), map[string]string{})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "inspiration_id is required", decodeError(t, rec).Message)
}

func TestArrangeInspiration_otherOwnersInspirationReturns403(t *testing.T) {
	svc := &mockItineraryServicer{
		arrange: func(context.Context, string, uuid.UUID, int, uuid.UUID) (domain.Day, error) {
			return domain.Day{}, fmt.Errorf("service.ItineraryService.ArrangeInspiration: %w", domain.ErrUnauthorized)
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 1, "inspirations"),
		map[string]string{"inspiration_id": uuid.NewString()})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegenerateDay_returns200WithoutBody(t *testing.T) {
	svc := &mockItineraryServicer{
		regenerate: func(_ context.Context, _ string, _ uuid.UUID, day int) (domain.Day, error) {
			assert.Equal(t, 1, day)
			return dayFixture(), nil
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 1, "regenerate"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got handler.Day
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Activities[0].IsFixed)
}

func TestGetDayHistory_numbersNewestFirst(t *testing.T) {
	newer := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := &mockItineraryServicer{
		history: func(context.Context, string, uuid.UUID, int) ([]domain.VersionSnapshot, error) {
			return []domain.VersionSnapshot{
				{Activities: []domain.Activity{{ID: "a", Name: "Surf"}}, CreatedAt: newer},
				{CreatedAt: older},
			}, nil
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodGet, dayPath(uuid.New(), 1, "history"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []handler.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.True(t, newer.Equal(got[0].CreatedAt))
	assert.Equal(t, 2, got[1].Version)
	assert.NotNil(t, got[1].Activities, "an empty snapshot serialises as []")
}

func TestGetDayHistory_emptyIsArray(t *testing.T) {
	svc := &mockItineraryServicer{
		history: func(context.Context, string, uuid.UUID, int) ([]domain.VersionSnapshot, error) {
			return []domain.VersionSnapshot{}, nil
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodGet, dayPath(uuid.New(), 1, "history"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRollbackDay_passesVersion(t *testing.T) {
	svc := &mockItineraryServicer{
		rollback: func(_ context.Context, _ string, _ uuid.UUID, day, version int) (domain.Day, error) {
			assert.Equal(t, 1, day)
			assert.Equal(t, 2, version)
			return dayFixture(), nil
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 1, "rollback"), map[string]int{"version": 2})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRollbackDay_unknownVersionReturns404(t *testing.T) {
	svc := &mockItineraryServicer{
		rollback: func(context.Context, string, uuid.UUID, int, int) (domain.Day, error) {
			return domain.Day{}, fmt.Errorf("service.ItineraryService.Rollback: version 3: %w", domain.ErrNotFound)
		},
	}
	h := newHTTPHandler(mocks{itinerary: svc})

	rec := doRequest(t, h, http.MethodPost, dayPath(uuid.New(), 1, "rollback"), map[string]int{"version": 3})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "version 3", decodeError(t, rec).Message)
}
