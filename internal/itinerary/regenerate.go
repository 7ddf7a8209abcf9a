package itinerary

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// Regenerator replaces the flexible activities of a day while keeping its
// fixed ones and avoiding names used on the trip's other days.
type Regenerator struct {
	oracle RecommendationOracle
	logger *slog.Logger
	newID  IDFunc
}

// NewRegenerator constructs a Regenerator. A nil oracle makes every call take
// the round-robin fallback; nil logger and newID use the defaults.
func NewRegenerator(oracle RecommendationOracle, logger *slog.Logger, newID IDFunc) *Regenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if newID == nil {
		newID = NewActivityID
	}
	return &Regenerator{oracle: oracle, logger: logger, newID: newID}
}

// Regenerate returns a new activity list for day. Fixed activities come back
// verbatim. When the oracle fails or its answer does not validate, the day's
// existing flexible activities are shuffled with seed and dealt round-robin
// across morning, afternoon and evening instead.
func (r *Regenerator) Regenerate(ctx context.Context, tc TripContext, day domain.Day, allDays []domain.Day, seed uint64) []domain.Activity {
	keep, replace := Partition(day.Activities)
	excluded := ExcludedNames(allDays, day.Number)

	res := r.ask(ctx, tc, keep, replace, excluded)
	if out, ok := res.Activities(); ok {
		ensureTimeBlocks(out)
		return out
	}
	r.logger.WarnContext(ctx, "regeneration fell back to round-robin",
		"trip_id", tc.TripID,
		"day", day.Number,
		"reason", res.Reason(),
	)
	out := RedistributeRoundRobin(keep, replace, seed)
	ensureTimeBlocks(out)
	return out
}

func (r *Regenerator) ask(ctx context.Context, tc TripContext, keep, replace []domain.Activity, excluded []string) Result {
	if r.oracle == nil {
		return Invalid("no recommendation oracle configured")
	}
	proposed, err := r.oracle.Regenerate(ctx, tc, cloneActivities(keep), excluded)
	if err != nil {
		return Invalid("oracle error: %v", err)
	}
	return ValidateRegeneration(keep, replace, excluded, proposed, r.newID)
}

// Partition splits activities into fixed (keep) and flexible (replace),
// preserving order within each.
func Partition(activities []domain.Activity) (keep, replace []domain.Activity) {
	for _, a := range activities {
		if a.IsFixed {
			keep = append(keep, a)
		} else {
			replace = append(replace, a)
		}
	}
	return keep, replace
}

// ExcludedNames returns the folded, de-duplicated, sorted names of every
// activity on days other than dayNumber.
func ExcludedNames(days []domain.Day, dayNumber int) []string {
	set := make(map[string]struct{})
	for _, d := range days {
		if d.Number == dayNumber {
			continue
		}
		for _, a := range d.Activities {
			if n := FoldName(a.Name); n != "" {
				set[n] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ValidateRegeneration turns an oracle proposal into canonical activities.
//
// Fixed activities are emitted verbatim wherever the proposal places them
// (matched by id, or by name when the id is missing) and force-appended when
// the proposal leaves them out. New flexible activities get fresh ids unless
// they share a name with an activity being replaced, in which case that
// activity's id and provenance are reused (the first one, when several
// replaced activities fold to the same name). Names in excluded, repeated names
// and blank names are dropped. A proposal that yields no flexible activities
// while the day had some is Invalid.
func ValidateRegeneration(keep, replace []domain.Activity, excluded []string, proposed []domain.Activity, newID IDFunc) Result {
	if len(proposed) == 0 {
		return Invalid("empty regeneration")
	}
	if newID == nil {
		newID = NewActivityID
	}

	keepByID := make(map[string]domain.Activity, len(keep))
	keepByName := make(map[string]domain.Activity, len(keep))
	for _, k := range keep {
		keepByID[k.ID] = k
		keepByName[FoldName(k.Name)] = k
	}
	replaceByName := make(map[string]domain.Activity, len(replace))
	for _, a := range replace {
		n := FoldName(a.Name)
		if _, ok := replaceByName[n]; !ok {
			replaceByName[n] = a
		}
	}
	excludedSet := make(map[string]bool, len(excluded))
	for _, n := range excluded {
		excludedSet[FoldName(n)] = true
	}

	seenKeep := make(map[string]bool, len(keep))
	seenNames := make(map[string]bool, len(proposed))
	out := make([]domain.Activity, 0, len(proposed)+len(keep))
	flexible := 0

	for _, p := range proposed {
		name := FoldName(p.Name)
		k, isKeep := keepByID[strings.TrimSpace(p.ID)]
		if !isKeep && name != "" {
			k, isKeep = keepByName[name]
		}
		if isKeep {
			if !seenKeep[k.ID] {
				out = append(out, k)
				seenKeep[k.ID] = true
				seenNames[FoldName(k.Name)] = true
			}
			continue
		}
		if name == "" || excludedSet[name] || seenNames[name] {
			continue
		}
		seenNames[name] = true

		var act domain.Activity
		if prev, ok := replaceByName[name]; ok {
			act = prev
			if p.TimeBlock.Valid() {
				act.TimeBlock = p.TimeBlock
			}
		} else {
			act = p
			act.ID = newID()
			act.IsFixed = false
			act.SourceID = ""
			if act.SourceType != domain.SourceInspiration && act.SourceType != domain.SourceManual {
				act.SourceType = domain.SourceAI
			}
			normalized, err := NormalizeActivity(act, newID)
			if err != nil {
				continue
			}
			act = normalized
		}
		out = append(out, act)
		flexible++
	}

	for _, k := range keep {
		if !seenKeep[k.ID] {
			out = append(out, k)
		}
	}
	if flexible == 0 && len(replace) > 0 {
		return Invalid("no replacement activities")
	}
	return Ok(out)
}

// RedistributeRoundRobin shuffles replace with seed and deals it across the
// three time blocks in order. keep is returned untouched. The result is
// ordered by time block, fixed activities first within a block.
func RedistributeRoundRobin(keep, replace []domain.Activity, seed uint64) []domain.Activity {
	shuffled := cloneActivities(replace)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for i := range shuffled {
		shuffled[i].TimeBlock = domain.TimeBlocks[i%len(domain.TimeBlocks)]
	}

	out := make([]domain.Activity, 0, len(keep)+len(shuffled))
	out = append(out, keep...)
	out = append(out, shuffled...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeBlock.Rank() < out[j].TimeBlock.Rank()
	})
	return out
}

// DeriveSeed gives each trip day a stable fallback seed.
func DeriveSeed(tripID string, dayNumber int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(tripID))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(dayNumber)))
	return h.Sum64()
}
