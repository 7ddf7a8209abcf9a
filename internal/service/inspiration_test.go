package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/repo"
	"github.com/pkordes/trip-itinerary/internal/service"
)

const reelURL = "https://www.instagram.com/reel/Cx9Siargao"

func TestInspirationService_Create(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())

	got, err := svc.Create(context.Background(), owner, domain.InspirationItem{
		Title: " Sugba lagoon ", Location: "Siargao", SourceRef: reelURL,
	})

	require.NoError(t, err)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, "Sugba lagoon", got.Title)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestInspirationService_Create_Invalid(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, domain.InspirationItem{Location: "Siargao"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, owner, domain.InspirationItem{Title: "Sugba lagoon", Location: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInspirationService_Create_DuplicateSourceSamePlace(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())
	ctx := context.Background()

	first, err := svc.Create(ctx, owner, domain.InspirationItem{Title: "Sugba lagoon", Location: "Siargao", SourceRef: reelURL})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, domain.InspirationItem{Title: "Sugba lagoon again", Location: "Siargao Island", SourceRef: reelURL})

	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []string{first.ID.String()}, dup.IDs)
}

func TestInspirationService_Create_SameSourceOtherPlaceAllowed(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, domain.InspirationItem{Title: "Sugba lagoon", Location: "Siargao", SourceRef: reelURL})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, domain.InspirationItem{Title: "Tegallalang", Location: "Bali", SourceRef: reelURL})
	assert.NoError(t, err)

	// Another owner saving the same reel is not a duplicate either.
	_, err = svc.Create(ctx, intruder, domain.InspirationItem{Title: "Sugba lagoon", Location: "Siargao", SourceRef: reelURL})
	assert.NoError(t, err)
}

func TestInspirationService_GetByID_OtherOwner(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())
	item, err := svc.Create(context.Background(), owner, domain.InspirationItem{Title: "Sugba lagoon", Location: "Siargao"})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), intruder, item.ID)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestInspirationService_ListGrouped(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())
	ctx := context.Background()

	for _, it := range []domain.InspirationItem{
		{Title: "Sugba lagoon", Location: "Siargao"},
		{Title: "Tegallalang rice terraces", Location: "Ubud, Bali"},
		{Title: "Magpupungko", Location: "Siargao Island, Philippines"},
		{Title: "Campuhan ridge", Location: "Ubud"},
		{Title: "Intramuros", Location: "Manila"},
	} {
		_, err := svc.Create(ctx, owner, it)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, intruder, domain.InspirationItem{Title: "Not mine", Location: "Siargao"})
	require.NoError(t, err)

	groups, err := svc.ListGrouped(ctx, owner)

	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "Siargao", groups[0].Location)
	require.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Sugba lagoon", groups[0].Items[0].Title)
	assert.Equal(t, "Magpupungko", groups[0].Items[1].Title)
	assert.Equal(t, "Ubud, Bali", groups[1].Location)
	assert.Len(t, groups[1].Items, 2)
	assert.Equal(t, "Manila", groups[2].Location)
}

func TestInspirationService_ListGrouped_Empty(t *testing.T) {
	svc := service.NewInspirationService(repo.NewMemoryStore().Inspirations())

	groups, err := svc.ListGrouped(context.Background(), owner)

	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}
