package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
	"github.com/pkordes/trip-itinerary/internal/repo"
)

// InspirationService manages saved inspirations and their location buckets.
type InspirationService struct {
	inspirations repo.InspirationRepo
}

// NewInspirationService constructs an InspirationService.
func NewInspirationService(inspirations repo.InspirationRepo) *InspirationService {
	return &InspirationService{inspirations: inspirations}
}

// Create saves a new inspiration. Saving the same source reference again
// under a location that names the same place is reported as
// *domain.DuplicateError carrying the earlier item's id.
func (s *InspirationService) Create(ctx context.Context, ownerID string, item domain.InspirationItem) (domain.InspirationItem, error) {
	item.ID = uuid.Nil
	item.OwnerID = ownerID
	item.Title = strings.TrimSpace(item.Title)
	item.Location = strings.TrimSpace(item.Location)
	item.SourceRef = strings.TrimSpace(item.SourceRef)
	if item.Title == "" {
		return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.Create: %w: title is required", domain.ErrValidation)
	}
	if item.Location == "" {
		return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.Create: %w: location is required", domain.ErrValidation)
	}

	if item.SourceRef != "" {
		existing, err := s.inspirations.ListByOwner(ctx, ownerID)
		if err != nil {
			return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.Create: %w", err)
		}
		var ids []string
		for _, e := range existing {
			if e.SourceRef == item.SourceRef && itinerary.IsDuplicateLocation(e.Location, item.Location) {
				ids = append(ids, e.ID.String())
			}
		}
		if len(ids) > 0 {
			return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.Create: %w", &domain.DuplicateError{IDs: ids})
		}
	}

	created, err := s.inspirations.Create(ctx, item)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns domain.ErrUnauthorized when the item belongs to someone else.
func (s *InspirationService) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.InspirationItem, error) {
	item, err := s.inspirations.GetByID(ctx, id)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.GetByID: %w", err)
	}
	if item.OwnerID != ownerID {
		return domain.InspirationItem{}, fmt.Errorf("service.InspirationService.GetByID: inspiration %s: %w", id, domain.ErrUnauthorized)
	}
	return item, nil
}

// ListGrouped buckets the owner's inspirations by place. An item joins the
// first bucket whose location matches its own; buckets are ordered by their
// oldest item and items within a bucket oldest first.
func (s *InspirationService) ListGrouped(ctx context.Context, ownerID string) ([]domain.LocationGroup, error) {
	items, err := s.inspirations.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.InspirationService.ListGrouped: %w", err)
	}

	groups := []domain.LocationGroup{}
	// ListByOwner is newest first.
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		placed := false
		for g := range groups {
			if itinerary.IsDuplicateLocation(groups[g].Location, item.Location) {
				groups[g].Items = append(groups[g].Items, item)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, domain.LocationGroup{Location: item.Location, Items: []domain.InspirationItem{item}})
		}
	}
	return groups, nil
}
