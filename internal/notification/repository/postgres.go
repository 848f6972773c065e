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

func (r *PGRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (id, stock_id, feed_id, type, message, is_read, created_at)
        VALUES (:id, :stock_id, :feed_id, :type, :message, :is_read, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, n)
	return err
}

func (r *PGRepository) ExistsSince(ctx context.Context, stockID string, since time.Time) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE stock_id = $1 AND type = $2 AND created_at >= $3
        )
    `
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &exists, query, stockID, model.NotificationTypeLowStock, since)
	return exists, err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &n, `SELECT * FROM notifications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *PGRepository) FindAll(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT * FROM notifications`
	if unreadOnly {
		query += ` WHERE is_read = false`
	}
	query += ` ORDER BY created_at DESC`

	var notifications []model.Notification
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &notifications, query)
	return notifications, err
}

func (r *PGRepository) MarkRead(ctx context.Context, id string) error {
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, `UPDATE notifications SET is_read = true WHERE id = $1`, id)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	return err
}
