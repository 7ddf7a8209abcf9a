// Package repo contains the document store for trips, confirmations and
// inspirations. Each resource has an interface and three implementations:
// Postgres (jsonb documents), Firestore and an in-memory arena.
// No business logic lives here, only persistence and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so batch writes stay atomic either way.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripRepo defines the persistence operations for Trips.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with id,
	// version 1 and timestamps populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByOwner returns one page of the owner's trips, newest first, and the
	// owner's total trip count.
	ListByOwner(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update replaces the stored document when trip.Version matches the stored
	// version, and returns the record with the incremented version.
	// Returns domain.ErrConflict on a stale version and domain.ErrNotFound if
	// the trip does not exist.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete returns domain.ErrNotFound if the trip does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, version, doc, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	doc, err := json.Marshal(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: encode: %w", err)
	}

	const q = `
		INSERT INTO trips (owner_id, doc)
		VALUES (@owner_id, @doc)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_id": trip.OwnerID,
		"doc":      doc,
	})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips WHERE owner_id = @owner_id`,
		pgx.NamedArgs{"owner_id": ownerID}).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: count: %w", err)
	}

	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    page.Limit,
		"offset":   page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: rows: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	doc, err := json.Marshal(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: encode: %w", err)
	}

	const q = `
		UPDATE trips
		SET doc        = @doc,
		    version    = version + 1,
		    updated_at = now()
		WHERE id = @id AND version = @version
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":      trip.ID,
		"version": trip.Version,
		"doc":     doc,
	}))
	if errors.Is(err, domain.ErrNotFound) {
		// Either the row is gone or its version moved on.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`,
			pgx.NamedArgs{"id": trip.ID}).Scan(&exists); err != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
		}
		if exists {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: version %d: %w", trip.Version, domain.ErrConflict)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip decodes the jsonb document and then overwrites the fields the
// table owns, so the columns are authoritative.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		ownerID   string
		version   int64
		doc       []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := s.Scan(&id, &ownerID, &version, &doc, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	if err := json.Unmarshal(doc, &t); err != nil {
		return domain.Trip{}, fmt.Errorf("decode trip document: %w", err)
	}
	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = ownerID
	t.Version = version
	t.CreatedAt = createdAt
	t.UpdatedAt = updatedAt
	return t, nil
}
