// Package handler implements the HTTP handlers for the trip itinerary API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, day.go, etc.) but all share the same Server
// struct so they can access its dependencies. Routes wires them into chi.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching a store or the itinerary engine.
type TripServicer interface {
	Create(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, ownerID string, patch domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	UpdateActivity(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, patch domain.Activity) (domain.Day, error)
	Export(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// ItineraryServicer defines the per-day planning operations.
type ItineraryServicer interface {
	ArrangeInspiration(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, inspirationID uuid.UUID) (domain.Day, error)
	AddManualActivity(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int, act domain.Activity) (domain.Day, error)
	RegenerateDay(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int) (domain.Day, error)
	Rollback(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber, version int) (domain.Day, error)
	History(ctx context.Context, ownerID string, tripID uuid.UUID, dayNumber int) ([]domain.VersionSnapshot, error)
}

// ConfirmationServicer defines the booking confirmation operations.
type ConfirmationServicer interface {
	Create(ctx context.Context, ownerID string, c domain.ConfirmationRecord, force bool) (domain.ConfirmationRecord, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.ConfirmationRecord, error)
	List(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	LinkToTrip(ctx context.Context, ownerID string, tripID uuid.UUID, confirmationIDs []uuid.UUID) (domain.Trip, error)
}

// InspirationServicer defines the saved-inspiration operations.
type InspirationServicer interface {
	Create(ctx context.Context, ownerID string, item domain.InspirationItem) (domain.InspirationItem, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.InspirationItem, error)
	ListGrouped(ctx context.Context, ownerID string) ([]domain.LocationGroup, error)
}

// Server holds the services behind every API endpoint.
// Wire it in main.go via Server.Routes.
type Server struct {
	trips         TripServicer
	itinerary     ItineraryServicer
	confirmations ConfirmationServicer
	inspirations  InspirationServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, itinerary ItineraryServicer, confirmations ConfirmationServicer, inspirations InspirationServicer) *Server {
	return &Server{
		trips:         trips,
		itinerary:     itinerary,
		confirmations: confirmations,
		inspirations:  inspirations,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}
