package itinerary

import (
	"context"
	"strings"
	"time"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// MaxResolvableDay is the sanity bound applied by ResolveDay, equal to the
// longest trip allowed. It does not know the length of any particular trip:
// callers compare the resolved day against their trip's days themselves.
const MaxResolvableDay = domain.MaxTripDays

// ResolveDay returns the 1-based trip day that itemDate falls on.
// Only calendar dates are compared; times of day are ignored. ok is false when
// the result is before day 1 or after MaxResolvableDay. Callers place such
// items on day 1 rather than failing the whole operation.
func ResolveDay(itemDate, tripStart time.Time) (day int, ok bool) {
	diff := calendarDate(itemDate).Sub(calendarDate(tripStart))
	day = int(diff.Hours()/24) + 1
	if day < 1 || day > MaxResolvableDay {
		return 0, false
	}
	return day, true
}

// bookingDateLayouts are tried in order before the date oracle is consulted.
var bookingDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2006/01/02",
}

// ParseBookingDate parses raw with the common booking date layouts.
func ParseBookingDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveBookingDay parses raw locally and, if that fails, asks parser to
// normalize it, then resolves the trip day. A nil parser, a parser error or an
// unparseable answer all yield ok=false.
func ResolveBookingDay(ctx context.Context, parser DateParser, raw string, tripStart time.Time) (int, bool) {
	date, ok := ParseBookingDate(raw)
	if !ok && parser != nil && strings.TrimSpace(raw) != "" {
		iso, err := parser.ParseDate(ctx, raw)
		if err == nil && iso != "" {
			date, ok = ParseBookingDate(iso)
		}
	}
	if !ok {
		return 0, false
	}
	return ResolveDay(date, tripStart)
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
