package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const itemSelect = `
    SELECT i.id, i.session_id, i.feed_id, i.quantity, i.created_by, i.updated_by,
           i.deleted_at, i.created_at, i.updated_at, f.name AS feed_name
    FROM feed_items i
    JOIN feed_types f ON f.id = i.feed_id
`

func (r *PGRepository) CreateItem(ctx context.Context, item *model.FeedItem) error {
	query := `
        INSERT INTO feed_items (
            id, session_id, feed_id, quantity, created_by, updated_by, created_at, updated_at
        )
        VALUES (:id, :session_id, :feed_id, :quantity, :created_by, :updated_by, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, item)
	return err
}

func (r *PGRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity float64, updatedBy string, updatedAt time.Time) error {
	query := `UPDATE feed_items SET quantity = $1, updated_by = $2, updated_at = $3 WHERE id = $4 AND deleted_at IS NULL`
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, query, quantity, updatedBy, updatedAt, itemID)
	return err
}

func (r *PGRepository) TombstoneItem(ctx context.Context, itemID string, deletedAt time.Time, deletedBy string) error {
	query := `UPDATE feed_items SET deleted_at = $1, updated_by = $2, updated_at = $1 WHERE id = $3 AND deleted_at IS NULL`
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, query, deletedAt, deletedBy, itemID)
	return err
}

func (r *PGRepository) FindItemByID(ctx context.Context, id string) (*model.FeedItem, error) {
	var item model.FeedItem
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &item, itemSelect+` WHERE i.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) ListActiveBySession(ctx context.Context, sessionID string) ([]model.FeedItem, error) {
	var items []model.FeedItem
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &items,
		itemSelect+` WHERE i.session_id = $1 AND i.deleted_at IS NULL ORDER BY i.created_at ASC`, sessionID)
	return items, err
}
