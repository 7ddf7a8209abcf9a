package itinerary

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// DefaultDuplicateSample is how many of the owner's most recent
// confirmations are shown to the judgment oracle.
const DefaultDuplicateSample = 50

// DuplicateVerdict reports whether a booking duplicates existing ones.
type DuplicateVerdict struct {
	IsDuplicate  bool
	DuplicateIDs []string
}

// DuplicateFilter decides whether a newly extracted booking duplicates one
// the owner already has. It fails open: any oracle error or malformed answer
// yields "not a duplicate".
type DuplicateFilter struct {
	oracle     JudgmentOracle
	logger     *slog.Logger
	sampleSize int
}

// NewDuplicateFilter constructs a DuplicateFilter. sampleSize <= 0 uses
// DefaultDuplicateSample.
func NewDuplicateFilter(oracle JudgmentOracle, logger *slog.Logger, sampleSize int) *DuplicateFilter {
	if logger == nil {
		logger = slog.Default()
	}
	if sampleSize <= 0 {
		sampleSize = DefaultDuplicateSample
	}
	return &DuplicateFilter{oracle: oracle, logger: logger, sampleSize: sampleSize}
}

// Check compares candidate with existing. The candidate itself, if present in
// existing, is ignored. Ids the oracle reports that are not in the sample are
// discarded, and a duplicate verdict left with no ids is downgraded to
// "not a duplicate".
func (f *DuplicateFilter) Check(ctx context.Context, candidate domain.ConfirmationRecord, existing []domain.ConfirmationRecord) DuplicateVerdict {
	sample := f.sample(candidate, existing)
	if len(sample) == 0 {
		return DuplicateVerdict{}
	}
	if f.oracle == nil {
		f.logger.WarnContext(ctx, "duplicate check skipped", "reason", "no judgment oracle configured")
		return DuplicateVerdict{}
	}

	summaries := make([]BookingSummary, len(sample))
	known := make(map[string]bool, len(sample))
	for i, c := range sample {
		summaries[i] = Summarize(c)
		known[summaries[i].ID] = true
	}

	judgment, err := f.oracle.Judge(ctx, Summarize(candidate), summaries)
	if err != nil {
		f.logger.WarnContext(ctx, "duplicate check failed open",
			"confirmation_id", candidate.ID.String(),
			"reason", err.Error(),
		)
		return DuplicateVerdict{}
	}
	if !judgment.IsDuplicate {
		return DuplicateVerdict{}
	}

	var ids []string
	seen := make(map[string]bool, len(judgment.DuplicateIDs))
	for _, id := range judgment.DuplicateIDs {
		if known[id] && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		f.logger.WarnContext(ctx, "duplicate verdict without known ids ignored",
			"confirmation_id", candidate.ID.String(),
		)
		return DuplicateVerdict{}
	}
	return DuplicateVerdict{IsDuplicate: true, DuplicateIDs: ids}
}

// sample returns up to sampleSize of the most recently created confirmations,
// excluding the candidate.
func (f *DuplicateFilter) sample(candidate domain.ConfirmationRecord, existing []domain.ConfirmationRecord) []domain.ConfirmationRecord {
	out := make([]domain.ConfirmationRecord, 0, len(existing))
	for _, c := range existing {
		if c.ID == candidate.ID {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > f.sampleSize {
		out = out[:f.sampleSize]
	}
	return out
}
