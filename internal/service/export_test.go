package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

func TestTripService_Export(t *testing.T) {
	store := repo.NewMemoryStore()
	svc := newTripService(store.Trips())
	trip := tripWithActivities(t, store)

	rows, err := svc.Export(context.Background(), owner, trip.ID)

	require.NoError(t, err)
	require.Len(t, rows, 3, "two activities on day 1 plus an empty day 2")
	assert.Equal(t, "PR 2045 to Siargao", rows[0].ActivityName)
	assert.True(t, rows[0].IsFixed)
	assert.Equal(t, "2025-06-01", rows[0].DayDate)
	assert.Equal(t, 2, rows[2].DayNumber)
	assert.Equal(t, "2025-06-02", rows[2].DayDate)
	assert.Empty(t, rows[2].ActivityName)
}

func TestTripService_Export_OtherOwner(t *testing.T) {
	store := repo.NewMemoryStore()
	svc := newTripService(store.Trips())
	trip := seedTrip(t, store.Trips(), 1)

	_, err := svc.Export(context.Background(), intruder, trip.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Export(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
