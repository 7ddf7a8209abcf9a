package itinerary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// FixedPolicy controls how much an arrangement may touch fixed activities.
// Fixed activities are never dropped or renamed under either policy.
type FixedPolicy int

const (
	// FixedPinned requires fixed activities to come back unchanged apart from
	// their position in the list.
	FixedPinned FixedPolicy = iota
	// FixedReblock additionally lets the oracle move a fixed activity to a
	// different time block.
	FixedReblock
)

// Arranger merges one new item into one day's activity list.
type Arranger struct {
	oracle RecommendationOracle
	logger *slog.Logger
}

// NewArranger constructs an Arranger. A nil oracle makes every call take the
// deterministic append path; a nil logger uses slog.Default().
func NewArranger(oracle RecommendationOracle, logger *slog.Logger) *Arranger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arranger{oracle: oracle, logger: logger}
}

// Arrange returns existing merged with newItem. newItem must already be
// normalized (id and time block set; fixed when it is a confirmation).
//
// The oracle's ordering is used when it passes validation: every prior id
// present, fixed activities untouched, the new item present. Otherwise the
// new item is appended to the existing list. The returned list always
// contains every prior activity plus the new item.
func (a *Arranger) Arrange(ctx context.Context, tc TripContext, existing []domain.Activity, newItem domain.Activity, policy FixedPolicy) []domain.Activity {
	res := a.ask(ctx, tc, existing, newItem, policy)
	if out, ok := res.Activities(); ok {
		ensureTimeBlocks(out)
		return out
	}
	a.logger.WarnContext(ctx, "arrangement fell back to append",
		"trip_id", tc.TripID,
		"day", tc.DayNumber,
		"activity", newItem.Name,
		"reason", res.Reason(),
	)
	out := appendMerge(existing, newItem)
	ensureTimeBlocks(out)
	return out
}

func (a *Arranger) ask(ctx context.Context, tc TripContext, existing []domain.Activity, newItem domain.Activity, policy FixedPolicy) Result {
	if a.oracle == nil {
		return Invalid("no recommendation oracle configured")
	}
	proposed, err := a.oracle.Arrange(ctx, tc, cloneActivities(existing), newItem)
	if err != nil {
		return Invalid("oracle error: %v", err)
	}
	return ValidateArrangement(existing, newItem, proposed, policy)
}

// ValidateArrangement checks an oracle proposal against the arrangement
// invariants and repairs it into canonical activities. Existing activities
// keep their stored content; only their position and (for flexible ones, or
// fixed ones under FixedReblock) their time block come from the proposal.
// The new item is matched by id, or by name when the proposal omits the id.
func ValidateArrangement(existing []domain.Activity, newItem domain.Activity, proposed []domain.Activity, policy FixedPolicy) Result {
	if len(proposed) == 0 {
		return Invalid("empty arrangement")
	}

	byID := make(map[string]domain.Activity, len(existing))
	for _, act := range existing {
		byID[act.ID] = act
	}
	// An existing activity with the new item's id is superseded by it.
	prior, superseded := byID[newItem.ID]
	if superseded && prior.IsFixed && prior != newItem {
		return Invalid("fixed activity %q cannot be superseded", prior.Name)
	}
	newName := FoldName(newItem.Name)

	seen := make(map[string]bool, len(proposed))
	out := make([]domain.Activity, 0, len(proposed))
	newPlaced := false

	for _, p := range proposed {
		id := strings.TrimSpace(p.ID)
		isNew := id == newItem.ID || (id == "" && FoldName(p.Name) == newName)
		if isNew {
			if newPlaced {
				return Invalid("new item %q appears more than once", newItem.Name)
			}
			item := newItem
			if !item.IsFixed && p.TimeBlock.Valid() {
				item.TimeBlock = p.TimeBlock
			}
			out = append(out, item)
			seen[newItem.ID] = true
			newPlaced = true
			continue
		}

		orig, ok := byID[id]
		if !ok {
			return Invalid("unexpected activity %q", p.Name)
		}
		if seen[id] {
			return Invalid("activity %q appears more than once", orig.Name)
		}
		seen[id] = true

		item := orig
		if orig.IsFixed {
			candidate := p
			if policy == FixedReblock {
				candidate.TimeBlock = orig.TimeBlock
			}
			if candidate != orig {
				return Invalid("fixed activity %q was modified", orig.Name)
			}
			if policy == FixedReblock && p.TimeBlock.Valid() {
				item.TimeBlock = p.TimeBlock
			}
		} else if p.TimeBlock.Valid() {
			item.TimeBlock = p.TimeBlock
		}
		out = append(out, item)
	}

	for _, act := range existing {
		if superseded && act.ID == newItem.ID {
			continue
		}
		if !seen[act.ID] {
			return Invalid("activity %q was dropped", act.Name)
		}
	}
	if !newPlaced {
		return Invalid("new item %q is missing", newItem.Name)
	}
	return Ok(out)
}

// appendMerge is the deterministic fallback: the new item is appended, or
// replaces a flexible activity carrying the same id in place. A fixed
// activity with the same id is left as it is.
func appendMerge(existing []domain.Activity, newItem domain.Activity) []domain.Activity {
	out := cloneActivities(existing)
	for i := range out {
		if out[i].ID == newItem.ID {
			if !out[i].IsFixed {
				out[i] = newItem
			}
			return out
		}
	}
	return append(out, newItem)
}
