// Package itinerary is the arrangement and consistency engine for trip days.
//
// It decides which time block an activity belongs to, which trip day a
// booking falls on, how a new item is merged into a day without disturbing
// fixed bookings, how a day's flexible activities are regenerated, how a
// bounded history of day states is kept for rollback, and whether a newly
// extracted booking duplicates one the user already has.
//
// Creative work is delegated to oracles (see oracle.go). Every oracle call is
// paired with a deterministic fallback, so engine operations never fail
// because an oracle did. The package does no I/O of its own and holds no
// store handles; the service layer loads and persists documents.
package itinerary

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

var (
	// "9am", "9:30 pm", "12 PM"
	meridiemTime = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	// "14:30", "09:00"
	clockTime = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// ResolveTimeBlock maps an optional time string and activity type onto a time
// block. It is total: every input yields a block.
//
// Literal day-part words win ("night" counts as evening). Otherwise an
// H[:MM] am/pm time, or failing that a 24-hour HH:MM time, is bucketed by
// hour: [6,12) morning, [12,18) afternoon, anything else evening. With no
// usable time, restaurants and accommodation default to afternoon and
// everything else to morning.
func ResolveTimeBlock(timeStr string, typ domain.ActivityType) domain.TimeBlock {
	s := strings.ToLower(strings.TrimSpace(timeStr))
	if s != "" {
		switch {
		case strings.Contains(s, "morning"):
			return domain.TimeBlockMorning
		case strings.Contains(s, "afternoon"):
			return domain.TimeBlockAfternoon
		case strings.Contains(s, "evening"), strings.Contains(s, "night"):
			return domain.TimeBlockEvening
		}
		if hour, ok := parseHour(s); ok {
			return blockForHour(hour)
		}
	}
	return defaultBlock(typ)
}

// parseHour extracts a 24-hour hour value from s.
func parseHour(s string) (int, bool) {
	if m := meridiemTime.FindStringSubmatch(s); m != nil {
		h, err := strconv.Atoi(m[1])
		if err == nil && h >= 1 && h <= 12 {
			switch {
			case m[3] == "pm" && h != 12:
				h += 12
			case m[3] == "am" && h == 12:
				h = 0
			}
			return h, true
		}
	}
	if m := clockTime.FindStringSubmatch(s); m != nil {
		h, err := strconv.Atoi(m[1])
		if err == nil {
			return h, true
		}
	}
	return 0, false
}

func blockForHour(h int) domain.TimeBlock {
	switch {
	case h >= 6 && h < 12:
		return domain.TimeBlockMorning
	case h >= 12 && h < 18:
		return domain.TimeBlockAfternoon
	default:
		return domain.TimeBlockEvening
	}
}

// defaultBlock biases check-ins and meals towards the afternoon.
func defaultBlock(typ domain.ActivityType) domain.TimeBlock {
	switch typ {
	case domain.ActivityTypeRestaurant, domain.ActivityTypeAccommodation:
		return domain.TimeBlockAfternoon
	default:
		return domain.TimeBlockMorning
	}
}

// ensureTimeBlocks re-resolves the block of any activity whose block is not
// one of the three legal values.
func ensureTimeBlocks(activities []domain.Activity) {
	for i := range activities {
		if !activities[i].TimeBlock.Valid() {
			activities[i].TimeBlock = ResolveTimeBlock(activities[i].SpecificTime, activities[i].Type)
		}
	}
}
