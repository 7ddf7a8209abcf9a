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

// InspirationRepo defines the persistence operations for inspiration items.
// Items are immutable once created.
type InspirationRepo interface {
	Create(ctx context.Context, item domain.InspirationItem) (domain.InspirationItem, error)

	// GetByID returns domain.ErrNotFound if no item with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.InspirationItem, error)

	// ListByOwner returns all of the owner's items, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.InspirationItem, error)
}

type pgInspirationRepo struct {
	db db
}

// NewInspirationRepo constructs an InspirationRepo backed by the provided db connection.
func NewInspirationRepo(db db) InspirationRepo {
	return &pgInspirationRepo{db: db}
}

const inspirationColumns = `id, owner_id, doc, created_at`

func (r *pgInspirationRepo) Create(ctx context.Context, item domain.InspirationItem) (domain.InspirationItem, error) {
	doc, err := json.Marshal(item)
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.InspirationRepo.Create: encode: %w", err)
	}

	const q = `
		INSERT INTO inspirations (owner_id, doc)
		VALUES (@owner_id, @doc)
		RETURNING ` + inspirationColumns

	result, err := scanInspiration(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_id": item.OwnerID,
		"doc":      doc,
	}))
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.InspirationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgInspirationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.InspirationItem, error) {
	const q = `SELECT ` + inspirationColumns + ` FROM inspirations WHERE id = @id`

	result, err := scanInspiration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.InspirationItem{}, fmt.Errorf("repo.InspirationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgInspirationRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.InspirationItem, error) {
	const q = `
		SELECT ` + inspirationColumns + `
		FROM inspirations
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.InspirationRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	items := []domain.InspirationItem{}
	for rows.Next() {
		item, err := scanInspiration(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.InspirationRepo.ListByOwner: scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.InspirationRepo.ListByOwner: rows: %w", err)
	}
	return items, nil
}

func scanInspiration(s scanner) (domain.InspirationItem, error) {
	var (
		item      domain.InspirationItem
		id        pgtype.UUID
		ownerID   string
		doc       []byte
		createdAt time.Time
	)
	if err := s.Scan(&id, &ownerID, &doc, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InspirationItem{}, domain.ErrNotFound
		}
		return domain.InspirationItem{}, err
	}
	if err := json.Unmarshal(doc, &item); err != nil {
		return domain.InspirationItem{}, fmt.Errorf("decode inspiration document: %w", err)
	}
	item.ID = uuid.UUID(id.Bytes)
	item.OwnerID = ownerID
	item.CreatedAt = createdAt
	return item, nil
}
