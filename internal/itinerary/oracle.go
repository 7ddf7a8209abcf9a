package itinerary

import (
	"context"
	"errors"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// ErrOracleUnavailable is returned by oracle implementations that are not
// configured. The engine treats it like any other oracle failure.
var ErrOracleUnavailable = errors.New("oracle unavailable")

// TripContext is what the recommendation oracle knows about the trip.
type TripContext struct {
	TripID      string `json:"trip_id"`
	Destination string `json:"destination"`
	Vibe        string `json:"vibe,omitempty"`
	Budget      string `json:"budget,omitempty"`
	DayNumber   int    `json:"day_number"`
	Date        string `json:"date,omitempty"`
}

// RecommendationOracle produces creatively ordered day plans.
// Implementations must return an error for any response that is not a JSON
// array of activity-shaped objects. The engine imposes no timeout; callers
// bound ctx.
type RecommendationOracle interface {
	Arrange(ctx context.Context, tc TripContext, existing []domain.Activity, newItem domain.Activity) ([]domain.Activity, error)
	Regenerate(ctx context.Context, tc TripContext, keep []domain.Activity, excludedNames []string) ([]domain.Activity, error)
}

// BookingSummary is the structured view of a confirmation sent to the
// judgment oracle.
type BookingSummary struct {
	ID        string                 `json:"id"`
	Category  domain.BookingCategory `json:"category"`
	Reference string                 `json:"reference,omitempty"`
	Name      string                 `json:"name"`
	Location  string                 `json:"location,omitempty"`
	Date      string                 `json:"date,omitempty"`
	Time      string                 `json:"time,omitempty"`
	EndDate   string                 `json:"end_date,omitempty"`
}

// Judgment is the duplicate verdict returned by a JudgmentOracle.
type Judgment struct {
	IsDuplicate  bool     `json:"isDuplicate"`
	DuplicateIDs []string `json:"duplicateIds"`
}

// JudgmentOracle compares a candidate booking against existing ones.
type JudgmentOracle interface {
	Judge(ctx context.Context, candidate BookingSummary, existing []BookingSummary) (Judgment, error)
}

// DateParser normalizes an ambiguous date string to ISO-8601 (2006-01-02).
// An empty result means the string holds no recognizable date.
type DateParser interface {
	ParseDate(ctx context.Context, raw string) (string, error)
}

// Summarize builds the oracle view of a confirmation.
func Summarize(c domain.ConfirmationRecord) BookingSummary {
	return BookingSummary{
		ID:        c.ID.String(),
		Category:  c.Category,
		Reference: c.Booking.Reference,
		Name:      c.Booking.Name,
		Location:  c.Booking.Location,
		Date:      c.Booking.Date,
		Time:      c.Booking.Time,
		EndDate:   c.Booking.EndDate,
	}
}
