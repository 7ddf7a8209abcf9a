package itinerary

import (
	"fmt"
	"time"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// HistoryCapacity is the number of prior activity lists kept per day.
const HistoryCapacity = 2

// Snapshot prepends a value copy of the day's current activities to its
// history and drops anything beyond HistoryCapacity.
func Snapshot(day *domain.Day, now time.Time) {
	snap := domain.VersionSnapshot{
		Activities: cloneActivities(day.Activities),
		CreatedAt:  now.UTC(),
	}
	history := make([]domain.VersionSnapshot, 0, HistoryCapacity)
	history = append(history, snap)
	for _, prior := range day.History {
		if len(history) == HistoryCapacity {
			break
		}
		history = append(history, prior)
	}
	day.History = history
}

// Rollback replaces the day's activities with history entry version
// (1 = newest). The current state is snapshotted first, so a rollback can
// itself be rolled back. Fixed activities on the current list that the
// restored version lacks (booking confirmations linked since) are carried
// over unchanged.
// Returns domain.ErrValidation for a version outside 1..HistoryCapacity and
// domain.ErrNotFound when the day has fewer than version entries.
func Rollback(day *domain.Day, version int, now time.Time) error {
	if version < 1 || version > HistoryCapacity {
		return fmt.Errorf("%w: version must be between 1 and %d", domain.ErrValidation, HistoryCapacity)
	}
	if version > len(day.History) {
		return fmt.Errorf("itinerary.Rollback: version %d: %w", version, domain.ErrNotFound)
	}
	target := cloneActivities(day.History[version-1].Activities)
	present := make(map[string]struct{}, len(target))
	for _, a := range target {
		present[a.ID] = struct{}{}
	}
	for _, a := range cloneActivities(day.Activities) {
		if _, ok := present[a.ID]; a.IsFixed && !ok {
			target = append(target, a)
		}
	}
	Snapshot(day, now)
	day.Activities = target
	return nil
}
