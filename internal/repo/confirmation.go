package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// ConfirmationRepo defines the persistence operations for booking confirmations.
type ConfirmationRepo interface {
	Create(ctx context.Context, c domain.ConfirmationRecord) (domain.ConfirmationRecord, error)

	// GetByID returns domain.ErrNotFound if no confirmation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ConfirmationRecord, error)

	// ListByOwner returns one page of the owner's confirmations, newest first,
	// and the owner's total count.
	ListByOwner(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error)

	// ListByTrip returns every confirmation linked to the trip.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ConfirmationRecord, error)

	// UpdateBatch writes all records or none. Returns domain.ErrNotFound if
	// any of them does not exist.
	UpdateBatch(ctx context.Context, cs []domain.ConfirmationRecord) error

	// Delete returns domain.ErrNotFound if the confirmation does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgConfirmationRepo struct {
	db db
}

// NewConfirmationRepo constructs a ConfirmationRepo backed by the provided db connection.
func NewConfirmationRepo(db db) ConfirmationRepo {
	return &pgConfirmationRepo{db: db}
}

const confirmationColumns = `id, owner_id, trip_id, doc, created_at, updated_at`

func (r *pgConfirmationRepo) Create(ctx context.Context, c domain.ConfirmationRecord) (domain.ConfirmationRecord, error) {
	doc, err := json.Marshal(c)
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.ConfirmationRepo.Create: encode: %w", err)
	}

	const q = `
		INSERT INTO confirmations (owner_id, trip_id, doc)
		VALUES (@owner_id, @trip_id, @doc)
		RETURNING ` + confirmationColumns

	result, err := scanConfirmation(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_id": c.OwnerID,
		"trip_id":  c.TripID, // nil becomes NULL
		"doc":      doc,
	}))
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.ConfirmationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgConfirmationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ConfirmationRecord, error) {
	const q = `SELECT ` + confirmationColumns + ` FROM confirmations WHERE id = @id`

	result, err := scanConfirmation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("repo.ConfirmationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgConfirmationRepo) ListByOwner(ctx context.Context, ownerID string, page domain.PaginationParams) ([]domain.ConfirmationRecord, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM confirmations WHERE owner_id = @owner_id`,
		pgx.NamedArgs{"owner_id": ownerID}).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ConfirmationRepo.ListByOwner: count: %w", err)
	}

	const q = `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	list, err := r.query(ctx, q, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    page.Limit,
		"offset":   page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ConfirmationRepo.ListByOwner: %w", err)
	}
	return list, total, nil
}

func (r *pgConfirmationRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ConfirmationRecord, error) {
	const q = `
		SELECT ` + confirmationColumns + `
		FROM confirmations
		WHERE trip_id = @trip_id
		ORDER BY created_at, id`

	list, err := r.query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ConfirmationRepo.ListByTrip: %w", err)
	}
	return list, nil
}

func (r *pgConfirmationRepo) UpdateBatch(ctx context.Context, cs []domain.ConfirmationRecord) error {
	if len(cs) == 0 {
		return nil
	}
	const q = `
		UPDATE confirmations
		SET trip_id    = @trip_id,
		    doc        = @doc,
		    updated_at = now()
		WHERE id = @id`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, c := range cs {
			doc, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode %s: %w", c.ID, err)
			}
			tag, err := tx.Exec(ctx, q, pgx.NamedArgs{"id": c.ID, "trip_id": c.TripID, "doc": doc})
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("confirmation %s: %w", c.ID, domain.ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.ConfirmationRepo.UpdateBatch: %w", err)
	}
	return nil
}

func (r *pgConfirmationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM confirmations WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ConfirmationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ConfirmationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgConfirmationRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.ConfirmationRecord, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.ConfirmationRecord{}
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return list, nil
}

func scanConfirmation(s scanner) (domain.ConfirmationRecord, error) {
	var (
		c         domain.ConfirmationRecord
		id        pgtype.UUID
		tripID    pgtype.UUID
		ownerID   string
		doc       []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := s.Scan(&id, &ownerID, &tripID, &doc, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ConfirmationRecord{}, domain.ErrNotFound
		}
		return domain.ConfirmationRecord{}, err
	}
	if err := json.Unmarshal(doc, &c); err != nil {
		return domain.ConfirmationRecord{}, fmt.Errorf("decode confirmation document: %w", err)
	}
	c.ID = uuid.UUID(id.Bytes)
	c.OwnerID = ownerID
	c.TripID = nil
	if tripID.Valid {
		tid := uuid.UUID(tripID.Bytes)
		c.TripID = &tid
	} else {
		// ON DELETE SET NULL leaves day numbers in the document.
		c.DayNumbers = nil
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt
	return c, nil
}
