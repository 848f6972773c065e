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

const stockSelect = `
    SELECT s.id, s.feed_id, s.quantity, s.updated_by, s.created_at, s.updated_at,
           f.name AS feed_name, f.unit AS feed_unit
    FROM feed_stocks s
    JOIN feed_types f ON f.id = s.feed_id
`

func (r *PGRepository) GetByFeed(ctx context.Context, feedID string) (*model.FeedStock, error) {
	var s model.FeedStock
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &s, stockSelect+` WHERE s.feed_id = $1`, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) GetByFeedForUpdate(ctx context.Context, feedID string) (*model.FeedStock, error) {
	// FOR UPDATE OF s locks only the stock row; the joined catalog row stays
	// readable to concurrent requests. The lock is held until the ambient
	// transaction commits or rolls back.
	var s model.FeedStock
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &s, stockSelect+` WHERE s.feed_id = $1 FOR UPDATE OF s`, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Create(ctx context.Context, s *model.FeedStock) error {
	query := `
        INSERT INTO feed_stocks (id, feed_id, quantity, updated_by, created_at, updated_at)
        VALUES (:id, :feed_id, :quantity, :updated_by, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, s)
	return err
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, stockID string, quantity float64, updatedBy string, updatedAt time.Time) error {
	query := `UPDATE feed_stocks SET quantity = $1, updated_by = $2, updated_at = $3 WHERE id = $4`
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, query, quantity, updatedBy, updatedAt, stockID)
	return err
}

func (r *PGRepository) List(ctx context.Context) ([]model.FeedStock, error) {
	var stocks []model.FeedStock
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &stocks, stockSelect+` ORDER BY f.name ASC`)
	return stocks, err
}

func (r *PGRepository) AppendHistory(ctx context.Context, h *model.FeedStockHistory) error {
	query := `
        INSERT INTO feed_stock_history (
            id, stock_id, feed_id, action, quantity_before, quantity_after, actor, created_at
        )
        VALUES (:id, :stock_id, :feed_id, :action, :quantity_before, :quantity_after, :actor, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, h)
	return err
}

func (r *PGRepository) ListHistory(ctx context.Context, feedID *string) ([]model.FeedStockHistory, error) {
	var entries []model.FeedStockHistory

	query := `SELECT * FROM feed_stock_history`
	args := []interface{}{}
	if feedID != nil && *feedID != "" {
		query += ` WHERE feed_id = $1`
		args = append(args, *feedID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &entries, query, args...)
	return entries, err
}
