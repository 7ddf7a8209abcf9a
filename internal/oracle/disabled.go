package oracle

import (
	"context"

	"github.com/pkordes/trip-itinerary/internal/domain"
	"github.com/pkordes/trip-itinerary/internal/itinerary"
)

// Disabled stands in for the oracle when none is configured. Every call
// fails with itinerary.ErrOracleUnavailable, so the engine always takes its
// deterministic fallback.
type Disabled struct{}

var (
	_ itinerary.RecommendationOracle = Disabled{}
	_ itinerary.JudgmentOracle       = Disabled{}
	_ itinerary.DateParser           = Disabled{}
)

func (Disabled) Arrange(context.Context, itinerary.TripContext, []domain.Activity, domain.Activity) ([]domain.Activity, error) {
	return nil, itinerary.ErrOracleUnavailable
}

func (Disabled) Regenerate(context.Context, itinerary.TripContext, []domain.Activity, []string) ([]domain.Activity, error) {
	return nil, itinerary.ErrOracleUnavailable
}

func (Disabled) Judge(context.Context, itinerary.BookingSummary, []itinerary.BookingSummary) (itinerary.Judgment, error) {
	return itinerary.Judgment{}, itinerary.ErrOracleUnavailable
}

func (Disabled) ParseDate(context.Context, string) (string, error) {
	return "", itinerary.ErrOracleUnavailable
}
