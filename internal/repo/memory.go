package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// MemoryStore is an in-process document arena used for local development and
// service tests. Documents are deep-copied on the way in and out, so callers
// never share slices with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	trips         map[uuid.UUID]domain.Trip
	confirmations map[uuid.UUID]domain.ConfirmationRecord
	inspirations  map[uuid.UUID]domain.InspirationItem
	last          time.Time
}

// NewMemoryStore returns an empty arena.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trips:         make(map[uuid.UUID]domain.Trip),
		confirmations: make(map[uuid.UUID]domain.ConfirmationRecord),
		inspirations:  make(map[uuid.UUID]domain.InspirationItem),
	}
}

// now returns a strictly increasing UTC timestamp so newest-first listings
// never tie. The caller must hold mu for writing.
func (s *MemoryStore) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// Trips returns the TripRepo view of the arena.
func (s *MemoryStore) Trips() TripRepo { return memTripRepo{s} }

// Confirmations returns the ConfirmationRepo view of the arena.
func (s *MemoryStore) Confirmations() ConfirmationRepo { return memConfirmationRepo{s} }

// Inspirations returns the InspirationRepo view of the arena.
func (s *MemoryStore) Inspirations() InspirationRepo { return memInspirationRepo{s} }

// clone deep-copies v through its JSON form, the same form the other
// backends persist.
func clone[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// page slices a newest-first list.
func page[T any](list []T, p domain.PaginationParams) []T {
	start := p.Offset()
	if start >= len(list) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

type memTripRepo struct{ s *MemoryStore }

func (r memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	t, err := clone(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Create: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = uuid.New()
	t.Version = 1
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	r.s.trips[t.ID] = t
	return clone(t)
}

func (r memTripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.s.mu.RLock()
	t, ok := r.s.trips[id]
	r.s.mu.RUnlock()
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(t)
}

func (r memTripRepo) ListByOwner(_ context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	r.s.mu.RLock()
	var all []domain.Trip
	for _, t := range r.s.trips {
		if t.OwnerID == ownerID {
			all = append(all, t)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	out, err := clone(page(all, p))
	if err != nil {
		return nil, 0, fmt.Errorf("repo.memTripRepo.ListByOwner: %w", err)
	}
	return out, int64(len(all)), nil
}

func (r memTripRepo) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	t, err := clone(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Update: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.trips[t.ID]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Update: %w", domain.ErrNotFound)
	}
	if stored.Version != t.Version {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Update: version %d: %w", t.Version, domain.ErrConflict)
	}
	t.OwnerID = stored.OwnerID
	t.CreatedAt = stored.CreatedAt
	t.Version = stored.Version + 1
	t.UpdatedAt = r.s.now()
	r.s.trips[t.ID] = t
	return clone(t)
}

func (r memTripRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trips[id]; !ok {
		return fmt.Errorf("repo.memTripRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.trips, id)
	return nil
}

type memConfirmationRepo struct{ s *MemoryStore }

func (r memConfirmationRepo) Create(_ context.Context, c domain.ConfirmationRecord) (domain.ConfirmationRecord, error) {
	rec, err := clone(c)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.memConfirmationRepo.Create: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec.ID = uuid.New()
	rec.CreatedAt = r.s.now()
	rec.UpdatedAt = rec.CreatedAt
	r.s.confirmations[rec.ID] = rec
	return clone(rec)
}

func (r memConfirmationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.ConfirmationRecord, error) {
	r.s.mu.RLock()
	c, ok := r.s.confirmations[id]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.memConfirmationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(c)
}

func (r memConfirmationRepo) ListByOwner(_ context.Context, ownerID string, p domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error) {
	all := r.filter(func(c domain.ConfirmationRecord) bool { return c.OwnerID == ownerID })
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	out, err := clone(page(all, p))
	if err != nil {
		return nil, 0, fmt.Errorf("repo.memConfirmationRepo.ListByOwner: %w", err)
	}
	return out, int64(len(all)), nil
}

func (r memConfirmationRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.ConfirmationRecord, error) {
	all := r.filter(func(c domain.ConfirmationRecord) bool { return c.TripID != nil && *c.TripID == tripID })
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	out, err := clone(all)
	if err != nil {
		return nil, fmt.Errorf("repo.memConfirmationRepo.ListByTrip: %w", err)
	}
	if out == nil {
		out = []domain.ConfirmationRecord{}
	}
	return out, nil
}

func (r memConfirmationRepo) UpdateBatch(_ context.Context, cs []domain.ConfirmationRecord) error {
	copies, err := clone(cs)
	if err != nil {
		return fmt.Errorf("repo.memConfirmationRepo.UpdateBatch: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range copies {
		if _, ok := r.s.confirmations[c.ID]; !ok {
			return fmt.Errorf("repo.memConfirmationRepo.UpdateBatch: confirmation %s: %w", c.ID, domain.ErrNotFound)
		}
	}
	now := r.s.now()
	for _, c := range copies {
		stored := r.s.confirmations[c.ID]
		c.OwnerID = stored.OwnerID
		c.CreatedAt = stored.CreatedAt
		c.UpdatedAt = now
		r.s.confirmations[c.ID] = c
	}
	return nil
}

func (r memConfirmationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.confirmations[id]; !ok {
		return fmt.Errorf("repo.memConfirmationRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.confirmations, id)
	return nil
}

func (r memConfirmationRepo) filter(keep func(domain.ConfirmationRecord) bool) []domain.ConfirmationRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.ConfirmationRecord
	for _, c := range r.s.confirmations {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

type memInspirationRepo struct{ s *MemoryStore }

func (r memInspirationRepo) Create(_ context.Context, item domain.InspirationItem) (domain.InspirationItem, error) {
	it, err := clone(item)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.memInspirationRepo.Create: %w", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it.ID = uuid.New()
	it.CreatedAt = r.s.now()
	r.s.inspirations[it.ID] = it
	return it, nil
}

func (r memInspirationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.InspirationItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.inspirations[id]
	if !ok {
		return domain.InspirationItem{}, fmt.Errorf("repo.memInspirationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return it, nil
}

func (r memInspirationRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.InspirationItem, error) {
	r.s.mu.RLock()
	out := []domain.InspirationItem{}
	for _, it := range r.s.inspirations {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
