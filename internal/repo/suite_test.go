package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

// stores groups the three repos of one backend. Every backend runs the same
// behavioural suite below.
type stores struct {
	trips         repo.TripRepo
	confirmations repo.ConfirmationRepo
	inspirations  repo.InspirationRepo
}

// newOwner returns an owner id unique to the test, so backends without
// per-test rollback do not see each other's documents.
func newOwner() string {
	return "user-" + uuid.NewString()
}

// tripFixture returns a two-day trip with one activity on day 1.
func tripFixture(owner string) domain.Trip {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	d2 := end
	return domain.Trip{
		OwnerID:     owner,
		Name:        "Siargao surf week",
		Destination: "Siargao",
		Vibe:        "relaxed",
		Status:      domain.TripStatusPlanning,
		StartDate:   &start,
		EndDate:     &end,
		Days: []domain.Day{
			{Number: 1, Date: &start, Activities: []domain.Activity{{
				ID: "act-1", Name: "Cloud 9 boardwalk", TimeBlock: domain.TimeBlockMorning,
				Type: domain.ActivityTypeAttraction, SourceType: domain.SourceManual,
			}}},
			{Number: 2, Date: &d2, Activities: []domain.Activity{}},
		},
	}
}

func confirmationFixture(owner string) domain.ConfirmationRecord {
	return domain.ConfirmationRecord{
		OwnerID:  owner,
		Category: domain.BookingHotel,
		Booking: domain.Booking{
			Reference: "HX-1234",
			Name:      "Kalinaw Resort",
			Location:  "General Luna",
			Date:      "2025-06-01",
			Details:   map[string]string{"room_type": "villa"},
		},
	}
}

func runTripRepoSuite(t *testing.T, newStores func(t *testing.T) stores) {
	t.Run("CreateAndGet", func(t *testing.T) {
		r := newStores(t).trips
		ctx := context.Background()

		input := tripFixture(newOwner())
		created, err := r.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, int64(1), created.Version)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, input.OwnerID, got.OwnerID)
		assert.Equal(t, input.Name, got.Name)
		require.Len(t, got.Days, 2)
		assert.Equal(t, input.Days[0].Activities, got.Days[0].Activities)
		require.NotNil(t, got.StartDate)
		assert.True(t, got.StartDate.Equal(*input.StartDate))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		r := newStores(t).trips
		_, err := r.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Update_IncrementsVersion", func(t *testing.T) {
		r := newStores(t).trips
		ctx := context.Background()
		created, err := r.Create(ctx, tripFixture(newOwner()))
		require.NoError(t, err)

		created.Days[1].Activities = append(created.Days[1].Activities, domain.Activity{
			ID: "act-2", Name: "Sugba lagoon", TimeBlock: domain.TimeBlockAfternoon,
			Type: domain.ActivityTypeActivity, SourceType: domain.SourceAI,
		})
		updated, err := r.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		require.Len(t, got.Days[1].Activities, 1)
		assert.Equal(t, "Sugba lagoon", got.Days[1].Activities[0].Name)
	})

	t.Run("Update_StaleVersionConflicts", func(t *testing.T) {
		r := newStores(t).trips
		ctx := context.Background()
		created, err := r.Create(ctx, tripFixture(newOwner()))
		require.NoError(t, err)

		first := created
		first.Name = "first writer"
		_, err = r.Update(ctx, first)
		require.NoError(t, err)

		second := created
		second.Name = "second writer"
		_, err = r.Update(ctx, second)
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "first writer", got.Name)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		r := newStores(t).trips
		trip := tripFixture(newOwner())
		trip.ID = uuid.New()
		trip.Version = 1
		_, err := r.Update(context.Background(), trip)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListByOwner_Paginates", func(t *testing.T) {
		r := newStores(t).trips
		ctx := context.Background()
		owner := newOwner()
		for i := 0; i < 3; i++ {
			_, err := r.Create(ctx, tripFixture(owner))
			require.NoError(t, err)
		}
		_, err := r.Create(ctx, tripFixture(newOwner()))
		require.NoError(t, err)

		page1, total, err := r.ListByOwner(ctx, owner, domain.PaginationParams{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, page1, 2)

		page2, _, err := r.ListByOwner(ctx, owner, domain.PaginationParams{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page2, 1)

		empty, _, err := r.ListByOwner(ctx, owner, domain.PaginationParams{Page: 5, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Delete", func(t *testing.T) {
		r := newStores(t).trips
		ctx := context.Background()
		created, err := r.Create(ctx, tripFixture(newOwner()))
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, created.ID))
		_, err = r.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, r.Delete(ctx, created.ID), domain.ErrNotFound)
	})
}

func runConfirmationRepoSuite(t *testing.T, newStores func(t *testing.T) stores) {
	t.Run("CreateAndGet", func(t *testing.T) {
		r := newStores(t).confirmations
		ctx := context.Background()

		input := confirmationFixture(newOwner())
		created, err := r.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, input.Booking, got.Booking)
		assert.Equal(t, domain.BookingHotel, got.Category)
		assert.Nil(t, got.TripID)
	})

	t.Run("UpdateBatch_LinksToTrip", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()
		owner := newOwner()
		trip, err := s.trips.Create(ctx, tripFixture(owner))
		require.NoError(t, err)

		a, err := s.confirmations.Create(ctx, confirmationFixture(owner))
		require.NoError(t, err)
		b, err := s.confirmations.Create(ctx, confirmationFixture(owner))
		require.NoError(t, err)

		for _, c := range []*domain.ConfirmationRecord{&a, &b} {
			c.TripID = &trip.ID
			c.DayNumbers = []int{1}
		}
		require.NoError(t, s.confirmations.UpdateBatch(ctx, []domain.ConfirmationRecord{a, b}))

		linked, err := s.confirmations.ListByTrip(ctx, trip.ID)
		require.NoError(t, err)
		require.Len(t, linked, 2)
		for _, c := range linked {
			require.NotNil(t, c.TripID)
			assert.Equal(t, trip.ID, *c.TripID)
			assert.Equal(t, []int{1}, c.DayNumbers)
		}
	})

	t.Run("UpdateBatch_AllOrNothing", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()
		owner := newOwner()

		a, err := s.confirmations.Create(ctx, confirmationFixture(owner))
		require.NoError(t, err)
		a.Booking.Name = "renamed"
		missing := confirmationFixture(owner)
		missing.ID = uuid.New()

		err = s.confirmations.UpdateBatch(ctx, []domain.ConfirmationRecord{a, missing})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

		got, err := s.confirmations.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kalinaw Resort", got.Booking.Name)
	})

	t.Run("ListByOwner_NewestFirst", func(t *testing.T) {
		r := newStores(t).confirmations
		ctx := context.Background()
		owner := newOwner()
		var ids []uuid.UUID
		for i := 0; i < 3; i++ {
			c, err := r.Create(ctx, confirmationFixture(owner))
			require.NoError(t, err)
			ids = append(ids, c.ID)
		}

		list, total, err := r.ListByOwner(ctx, owner, domain.PaginationParams{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 3)
		assert.False(t, list[0].CreatedAt.Before(list[2].CreatedAt))
	})

	t.Run("Delete", func(t *testing.T) {
		r := newStores(t).confirmations
		ctx := context.Background()
		c, err := r.Create(ctx, confirmationFixture(newOwner()))
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, c.ID))
		assert.ErrorIs(t, r.Delete(ctx, c.ID), domain.ErrNotFound)
	})
}

func runInspirationRepoSuite(t *testing.T, newStores func(t *testing.T) stores) {
	t.Run("CreateGetList", func(t *testing.T) {
		r := newStores(t).inspirations
		ctx := context.Background()
		owner := newOwner()

		created, err := r.Create(ctx, domain.InspirationItem{
			OwnerID:   owner,
			Title:     "Magpupungko rock pools",
			Location:  "Siargao Island",
			SourceRef: "https://example.com/pools",
		})
		require.NoError(t, err)

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Magpupungko rock pools", got.Title)
		assert.Equal(t, owner, got.OwnerID)

		list, err := r.ListByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)

		_, err = r.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
