package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingCategory is the kind of booking a confirmation describes.
type BookingCategory string

const (
	BookingFlight     BookingCategory = "flight"
	BookingHotel      BookingCategory = "hotel"
	BookingRestaurant BookingCategory = "restaurant"
	BookingActivity   BookingCategory = "activity"
	BookingTransport  BookingCategory = "transport"
	BookingOther      BookingCategory = "other"
)

// Booking is the structured payload extracted from an email, PDF or image.
// Date and Time are kept as extracted; Date is usually ISO-8601 but may be a
// free-form string that needs the date-normalization oracle.
// Details holds category-specific fields such as flight_number or room_type.
type Booking struct {
	Reference string            `json:"reference,omitempty"`
	Name      string            `json:"name"` // hotel name, airline + flight, restaurant name
	Location  string            `json:"location,omitempty"`
	Date      string            `json:"date,omitempty"` // check-in, departure, reservation date
	Time      string            `json:"time,omitempty"`
	EndDate   string            `json:"end_date,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// ConfirmationRecord is a booking owned by a user and optionally linked to a trip.
type ConfirmationRecord struct {
	ID         uuid.UUID       `json:"id"`
	OwnerID    string          `json:"owner_id"`
	TripID     *uuid.UUID      `json:"trip_id,omitempty"`
	DayNumbers []int           `json:"day_numbers,omitempty"`
	Category   BookingCategory `json:"category"`
	Booking    Booking         `json:"booking"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ActivityType maps the booking category onto the activity taxonomy.
func (c ConfirmationRecord) ActivityType() ActivityType {
	switch c.Category {
	case BookingFlight, BookingTransport:
		return ActivityTypeTransport
	case BookingHotel:
		return ActivityTypeAccommodation
	case BookingRestaurant:
		return ActivityTypeRestaurant
	case BookingActivity:
		return ActivityTypeActivity
	}
	return ActivityTypeOther
}

// InspirationItem is a user-saved, undated point of interest.
// It is immutable once created; the engine only reads it.
type InspirationItem struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location"`             // grouping key
	SourceRef   string    `json:"source_ref,omitempty"` // e.g. the URL it was saved from
	CreatedAt   time.Time `json:"created_at"`
}

// LocationGroup is a bucket of inspirations whose locations name the same
// place. Location is the display name of the first item saved to the bucket.
type LocationGroup struct {
	Location string            `json:"location"`
	Items    []InspirationItem `json:"items"`
}
