package itinerary

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// IDFunc mints new activity ids.
type IDFunc func() string

// NewActivityID is the production IDFunc.
func NewActivityID() string {
	return uuid.NewString()
}

// NormalizeActivity validates a bare activity record and fills in whatever it
// lacks: an id, a legal type, a source, a time block. Confirmation-sourced
// activities are always marked fixed.
// Returns domain.ErrValidation when the name is blank.
func NormalizeActivity(a domain.Activity, newID IDFunc) (domain.Activity, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return domain.Activity{}, fmt.Errorf("%w: activity name is required", domain.ErrValidation)
	}
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		if newID == nil {
			newID = NewActivityID
		}
		a.ID = newID()
	}
	if !a.Type.Valid() {
		a.Type = domain.ActivityTypeOther
	}
	if !a.SourceType.Valid() {
		a.SourceType = domain.SourceManual
	}
	if a.SourceType == domain.SourceConfirmation {
		a.IsFixed = true
	}
	if !a.TimeBlock.Valid() {
		a.TimeBlock = ResolveTimeBlock(a.SpecificTime, a.Type)
	}
	return a, nil
}

// ActivityFromInspiration builds the flexible activity placed on a day when a
// saved inspiration is arranged. The inspiration itself is not modified.
func ActivityFromInspiration(item domain.InspirationItem) domain.Activity {
	typ := inspirationType(item.Category)
	return domain.Activity{
		Name:        strings.TrimSpace(item.Title),
		Description: item.Description,
		Type:        typ,
		Location:    item.Location,
		SourceType:  domain.SourceInspiration,
		SourceID:    item.ID.String(),
		TimeBlock:   ResolveTimeBlock("", typ),
	}
}

// ActivityFromConfirmation builds the fixed activity for a booking.
func ActivityFromConfirmation(c domain.ConfirmationRecord) domain.Activity {
	name := strings.TrimSpace(c.Booking.Name)
	if name == "" {
		name = string(c.Category) + " booking"
	}
	var desc string
	if c.Booking.Reference != "" {
		desc = "Booking reference " + c.Booking.Reference
	}
	typ := c.ActivityType()
	return domain.Activity{
		Name:         name,
		SpecificTime: c.Booking.Time,
		Description:  desc,
		Type:         typ,
		Location:     c.Booking.Location,
		SourceType:   domain.SourceConfirmation,
		SourceID:     c.ID.String(),
		IsFixed:      true,
		TimeBlock:    ResolveTimeBlock(c.Booking.Time, typ),
	}
}

func inspirationType(category string) domain.ActivityType {
	c := strings.ToLower(category)
	switch {
	case containsAny(c, "food", "restaurant", "cafe", "bar", "eat", "dining"):
		return domain.ActivityTypeRestaurant
	case containsAny(c, "hotel", "stay", "resort", "accommodation", "hostel"):
		return domain.ActivityTypeAccommodation
	case containsAny(c, "tour", "activity", "adventure", "hike", "surf", "dive", "class"):
		return domain.ActivityTypeActivity
	case containsAny(c, "transport", "ferry", "transfer"):
		return domain.ActivityTypeTransport
	}
	return domain.ActivityTypeAttraction
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// cloneActivities returns a value copy of activities. A nil input yields an
// empty, non-nil slice.
func cloneActivities(activities []domain.Activity) []domain.Activity {
	out := make([]domain.Activity, len(activities))
	copy(out, activities)
	return out
}
