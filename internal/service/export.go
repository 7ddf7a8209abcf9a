package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// Export returns one row per activity of the trip, days in order. Empty
// days contribute one row with blank activity fields.
func (s *TripService) Export(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.ExportRow, error) {
	trip, err := getOwnedTrip(ctx, s.trips, ownerID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, d := range trip.Days {
		base := domain.ExportRow{
			TripID:      trip.ID.String(),
			TripName:    trip.Name,
			Destination: trip.Destination,
			DayNumber:   d.Number,
		}
		if d.Date != nil {
			base.DayDate = d.Date.Format(time.DateOnly)
		}
		if len(d.Activities) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, a := range d.Activities {
			row := base
			row.ActivityName = a.Name
			row.TimeBlock = a.TimeBlock
			row.SpecificTime = a.SpecificTime
			row.Type = a.Type
			row.Location = a.Location
			row.SourceType = a.SourceType
			row.IsFixed = a.IsFixed
			rows = append(rows, row)
		}
	}
	return rows, nil
}
