package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// Firestore collection names.
const (
	TripsCollection         = "trips"
	ConfirmationsCollection = "confirmations"
	InspirationsCollection  = "inspirations"
)

const fsTxAttempts = 5

// fsRecord is the stored shape of every document. Doc holds the domain value
// in its JSON form; the top-level fields are the ones queries filter or sort on.
type fsRecord struct {
	OwnerID   string         `firestore:"owner_id"`
	TripID    string         `firestore:"trip_id"`
	Version   int64          `firestore:"version"`
	Doc       map[string]any `firestore:"doc"`
	CreatedAt time.Time      `firestore:"created_at"`
	UpdatedAt time.Time      `firestore:"updated_at"`
}

// FirestoreStore serves the three repos from one Firestore client.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreStore wraps an initialised client. The caller owns the client
// and closes it on shutdown.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: func() time.Time { return time.Now().UTC() }}
}

// Trips returns the TripRepo view of the store.
func (s *FirestoreStore) Trips() TripRepo { return fsTripRepo{collection: fsCollection{s, TripsCollection}} }

// Confirmations returns the ConfirmationRepo view of the store.
func (s *FirestoreStore) Confirmations() ConfirmationRepo {
	return fsConfirmationRepo{collection: fsCollection{s, ConfirmationsCollection}}
}

// Inspirations returns the InspirationRepo view of the store.
func (s *FirestoreStore) Inspirations() InspirationRepo {
	return fsInspirationRepo{collection: fsCollection{s, InspirationsCollection}}
}

// fsCollection wraps collection access with record encoding and error mapping.
type fsCollection struct {
	store *FirestoreStore
	name  string
}

func (c fsCollection) ref() *firestore.CollectionRef {
	return c.store.client.Collection(c.name)
}

func (c fsCollection) doc(id uuid.UUID) *firestore.DocumentRef {
	return c.ref().Doc(id.String())
}

func (c fsCollection) get(ctx context.Context, id uuid.UUID) (fsRecord, error) {
	snap, err := c.doc(id).Get(ctx)
	if err != nil {
		return fsRecord{}, mapFirestoreError(err)
	}
	return decodeRecord(snap)
}

// query runs q and returns the decoded records together with their ids.
func (c fsCollection) query(ctx context.Context, q firestore.Query) ([]fsRecord, []uuid.UUID, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var (
		records []fsRecord
		ids     []uuid.UUID
	)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, nil, mapFirestoreError(err)
		}
		rec, err := decodeRecord(snap)
		if err != nil {
			return nil, nil, err
		}
		id, err := uuid.Parse(snap.Ref.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("document id %q: %w", snap.Ref.ID, err)
		}
		records = append(records, rec)
		ids = append(ids, id)
	}
	return records, ids, nil
}

// count counts the documents matching q without transferring their fields.
func (c fsCollection) count(ctx context.Context, q firestore.Query) (int64, error) {
	iter := q.Select().Documents(ctx)
	defer iter.Stop()

	var n int64
	for {
		_, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return n, nil
		}
		if err != nil {
			return 0, mapFirestoreError(err)
		}
		n++
	}
}

func (c fsCollection) runTransaction(ctx context.Context, fn func(ctx context.Context, tx *firestore.Transaction) error) error {
	err := c.store.client.RunTransaction(ctx, fn, firestore.MaxAttempts(fsTxAttempts))
	if err != nil {
		return mapFirestoreError(err)
	}
	return nil
}

func decodeRecord(snap *firestore.DocumentSnapshot) (fsRecord, error) {
	var rec fsRecord
	if err := snap.DataTo(&rec); err != nil {
		return fsRecord{}, fmt.Errorf("decode document %s: %w", snap.Ref.ID, err)
	}
	return rec, nil
}

// toDoc converts a domain value into the map Firestore stores under "doc".
func toDoc(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return m, nil
}

func fromDoc(m map[string]any, v any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// mapFirestoreError translates gRPC status codes into domain sentinels.
// Errors that already carry a domain sentinel pass through untouched.
func mapFirestoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case codes.Aborted, codes.FailedPrecondition, codes.AlreadyExists:
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}
	return err
}

type fsTripRepo struct{ collection fsCollection }

func (r fsTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	now := r.collection.store.now()
	trip.ID = uuid.New()
	trip.Version = 1
	trip.CreatedAt = now
	trip.UpdatedAt = now

	doc, err := toDoc(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.fsTripRepo.Create: %w", err)
	}
	rec := fsRecord{OwnerID: trip.OwnerID, Version: 1, Doc: doc, CreatedAt: now, UpdatedAt: now}
	if _, err := r.collection.doc(trip.ID).Create(ctx, rec); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.fsTripRepo.Create: %w", mapFirestoreError(err))
	}
	return tripFromRecord(trip.ID, rec)
}

func (r fsTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	rec, err := r.collection.get(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.fsTripRepo.GetByID: %w", err)
	}
	t, err := tripFromRecord(id, rec)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.fsTripRepo.GetByID: %w", err)
	}
	return t, nil
}

func (r fsTripRepo) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	base := r.collection.ref().Where("owner_id", "==", ownerID)
	total, err := r.collection.count(ctx, base)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.fsTripRepo.ListByOwner: count: %w", err)
	}

	q := base.OrderBy("created_at", firestore.Desc).Offset(p.Offset()).Limit(p.Limit)
	records, ids, err := r.collection.query(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.fsTripRepo.ListByOwner: %w", err)
	}
	trips := make([]domain.Trip, 0, len(records))
	for i, rec := range records {
		t, err := tripFromRecord(ids[i], rec)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.fsTripRepo.ListByOwner: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, total, nil
}

// Update reads the stored version and writes the new document in one
// transaction, so two writers racing on the same base version cannot both win.
func (r fsTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	ref := r.collection.doc(trip.ID)
	var written fsRecord

	err := r.collection.runTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreError(err)
		}
		stored, err := decodeRecord(snap)
		if err != nil {
			return err
		}
		if stored.Version != trip.Version {
			return fmt.Errorf("version %d: %w", trip.Version, domain.ErrConflict)
		}

		next := trip
		next.OwnerID = stored.OwnerID
		next.Version = stored.Version + 1
		next.CreatedAt = stored.CreatedAt
		next.UpdatedAt = r.collection.store.now()
		doc, err := toDoc(next)
		if err != nil {
			return err
		}
		written = fsRecord{
			OwnerID:   next.OwnerID,
			Version:   next.Version,
			Doc:       doc,
			CreatedAt: next.CreatedAt,
			UpdatedAt: next.UpdatedAt,
		}
		return tx.Set(ref, written)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.fsTripRepo.Update: %w", err)
	}
	return tripFromRecord(trip.ID, written)
}

func (r fsTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Delete is a no-op on a missing document unless Exists is required.
	if _, err := r.collection.doc(id).Delete(ctx, firestore.Exists); err != nil {
		return fmt.Errorf("repo.fsTripRepo.Delete: %w", mapFirestoreError(err))
	}
	return nil
}

func tripFromRecord(id uuid.UUID, rec fsRecord) (domain.Trip, error) {
	var t domain.Trip
	if err := fromDoc(rec.Doc, &t); err != nil {
		return domain.Trip{}, err
	}
	t.ID = id
	t.OwnerID = rec.OwnerID
	t.Version = rec.Version
	t.CreatedAt = rec.CreatedAt
	t.UpdatedAt = rec.UpdatedAt
	return t, nil
}

type fsConfirmationRepo struct{ collection fsCollection }

func (r fsConfirmationRepo) Create(ctx context.Context, c domain.ConfirmationRecord) (domain.ConfirmationRecord, error) {
	now := r.collection.store.now()
	c.ID = uuid.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	rec, err := confirmationRecord(c)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.fsConfirmationRepo.Create: %w", err)
	}
	if _, err := r.collection.doc(c.ID).Create(ctx, rec); err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.fsConfirmationRepo.Create: %w", mapFirestoreError(err))
	}
	return confirmationFromRecord(c.ID, rec)
}

func (r fsConfirmationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ConfirmationRecord, error) {
	rec, err := r.collection.get(ctx, id)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.fsConfirmationRepo.GetByID: %w", err)
	}
	c, err := confirmationFromRecord(id, rec)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.fsConfirmationRepo.GetByID: %w", err)
	}
	return c, nil
}

func (r fsConfirmationRepo) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error) {
	base := r.collection.ref().Where("owner_id", "==", ownerID)
	total, err := r.collection.count(ctx, base)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.fsConfirmationRepo.ListByOwner: count: %w", err)
	}
	list, err := r.list(ctx, base.OrderBy("created_at", firestore.Desc).Offset(p.Offset()).Limit(p.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("repo.fsConfirmationRepo.ListByOwner: %w", err)
	}
	return list, total, nil
}

func (r fsConfirmationRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ConfirmationRecord, error) {
	q := r.collection.ref().Where("trip_id", "==", tripID.String()).OrderBy("created_at", firestore.Asc)
	list, err := r.list(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.fsConfirmationRepo.ListByTrip: %w", err)
	}
	return list, nil
}

// UpdateBatch checks every document exists and writes them all in one
// transaction. Firestore requires all reads to precede the writes.
func (r fsConfirmationRepo) UpdateBatch(ctx context.Context, cs []domain.ConfirmationRecord) error {
	if len(cs) == 0 {
		return nil
	}
	err := r.collection.runTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, len(cs))
		for i, c := range cs {
			refs[i] = r.collection.doc(c.ID)
		}
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return mapFirestoreError(err)
		}
		now := r.collection.store.now()
		records := make([]fsRecord, len(cs))
		for i, snap := range snaps {
			if !snap.Exists() {
				return fmt.Errorf("confirmation %s: %w", cs[i].ID, domain.ErrNotFound)
			}
			stored, err := decodeRecord(snap)
			if err != nil {
				return err
			}
			next := cs[i]
			next.OwnerID = stored.OwnerID
			next.CreatedAt = stored.CreatedAt
			next.UpdatedAt = now
			if records[i], err = confirmationRecord(next); err != nil {
				return err
			}
		}
		for i, ref := range refs {
			if err := tx.Set(ref, records[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.fsConfirmationRepo.UpdateBatch: %w", err)
	}
	return nil
}

func (r fsConfirmationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.collection.doc(id).Delete(ctx, firestore.Exists); err != nil {
		return fmt.Errorf("repo.fsConfirmationRepo.Delete: %w", mapFirestoreError(err))
	}
	return nil
}

func (r fsConfirmationRepo) list(ctx context.Context, q firestore.Query) ([]domain.ConfirmationRecord, error) {
	records, ids, err := r.collection.query(ctx, q)
	if err != nil {
		return nil, err
	}
	list := make([]domain.ConfirmationRecord, 0, len(records))
	for i, rec := range records {
		c, err := confirmationFromRecord(ids[i], rec)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, nil
}

func confirmationRecord(c domain.ConfirmationRecord) (fsRecord, error) {
	doc, err := toDoc(c)
	if err != nil {
		return fsRecord{}, err
	}
	rec := fsRecord{OwnerID: c.OwnerID, Doc: doc, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	if c.TripID != nil {
		rec.TripID = c.TripID.String()
	}
	return rec, nil
}

func confirmationFromRecord(id uuid.UUID, rec fsRecord) (domain.ConfirmationRecord, error) {
	var c domain.ConfirmationRecord
	if err := fromDoc(rec.Doc, &c); err != nil {
		return domain.ConfirmationRecord{}, err
	}
	c.ID = id
	c.OwnerID = rec.OwnerID
	c.CreatedAt = rec.CreatedAt
	c.UpdatedAt = rec.UpdatedAt
	return c, nil
}

type fsInspirationRepo struct{ collection fsCollection }

func (r fsInspirationRepo) Create(ctx context.Context, item domain.InspirationItem) (domain.InspirationItem, error) {
	item.ID = uuid.New()
	item.CreatedAt = r.collection.store.now()

	doc, err := toDoc(item)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.fsInspirationRepo.Create: %w", err)
	}
	rec := fsRecord{OwnerID: item.OwnerID, Doc: doc, CreatedAt: item.CreatedAt, UpdatedAt: item.CreatedAt}
	if _, err := r.collection.doc(item.ID).Create(ctx, rec); err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.fsInspirationRepo.Create: %w", mapFirestoreError(err))
	}
	return item, nil
}

func (r fsInspirationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.InspirationItem, error) {
	rec, err := r.collection.get(ctx, id)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.fsInspirationRepo.GetByID: %w", err)
	}
	item, err := inspirationFromRecord(id, rec)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.fsInspirationRepo.GetByID: %w", err)
	}
	return item, nil
}

func (r fsInspirationRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.InspirationItem, error) {
	q := r.collection.ref().Where("owner_id", "==", ownerID).OrderBy("created_at", firestore.Desc)
	records, ids, err := r.collection.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.fsInspirationRepo.ListByOwner: %w", err)
	}
	items := make([]domain.InspirationItem, 0, len(records))
	for i, rec := range records {
		item, err := inspirationFromRecord(ids[i], rec)
		if err != nil {
			return nil, fmt.Errorf("repo.fsInspirationRepo.ListByOwner: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func inspirationFromRecord(id uuid.UUID, rec fsRecord) (domain.InspirationItem, error) {
	var item domain.InspirationItem
	if err := fromDoc(rec.Doc, &item); err != nil {
		return domain.InspirationItem{}, err
	}
	item.ID = id
	item.OwnerID = rec.OwnerID
	item.CreatedAt = rec.CreatedAt
	return item, nil
}
