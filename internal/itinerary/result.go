package itinerary

import (
	"fmt"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// Result is the outcome of validating an oracle answer: either Ok with the
// repaired activity list or Invalid with a reason. Callers must branch on
// Activities and take the deterministic fallback on the invalid path.
type Result struct {
	activities []domain.Activity
	reason     string
	ok         bool
}

// Ok wraps a validated activity list.
func Ok(activities []domain.Activity) Result {
	return Result{activities: activities, ok: true}
}

// Invalid records why an oracle answer was rejected.
func Invalid(format string, args ...any) Result {
	return Result{reason: fmt.Sprintf(format, args...)}
}

// Activities returns the validated list and true, or nil and false.
func (r Result) Activities() ([]domain.Activity, bool) {
	return r.activities, r.ok
}

// Reason is empty for Ok results.
func (r Result) Reason() string {
	return r.reason
}
