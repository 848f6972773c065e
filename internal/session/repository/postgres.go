package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/session"
	"github.com/farmsync/feedstock-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// sessionRow carries the jsonb snapshot as raw bytes; scanning into the map
// directly is not supported by the driver.
type sessionRow struct {
	model.BaseModel
	CowID          string    `db:"cow_id"`
	SessionDate    time.Time `db:"session_date"`
	Slot           string    `db:"slot"`
	NutrientTotals []byte    `db:"nutrient_totals"`
	CreatedBy      string    `db:"created_by"`
}

func (r sessionRow) toModel() (*model.FeedSession, error) {
	s := &model.FeedSession{
		BaseModel:   r.BaseModel,
		CowID:       r.CowID,
		SessionDate: r.SessionDate,
		Slot:        r.Slot,
		CreatedBy:   r.CreatedBy,
	}
	if len(r.NutrientTotals) > 0 {
		if err := json.Unmarshal(r.NutrientTotals, &s.NutrientTotals); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *PGRepository) Create(ctx context.Context, s *model.FeedSession) error {
	totals, err := json.Marshal(s.NutrientTotals)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO feed_sessions (
            id, cow_id, session_date, slot, nutrient_totals, created_by, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err = database.Ext(ctx, r.DB).ExecContext(ctx, query,
		s.ID, s.CowID, s.SessionDate, s.Slot, totals, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, `DELETE FROM feed_sessions WHERE id = $1`, id)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.FeedSession, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &row, `SELECT * FROM feed_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel()
}

func (r *PGRepository) FindByIdentity(ctx context.Context, cowID string, date time.Time, slot string) (*model.FeedSession, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &row,
		`SELECT * FROM feed_sessions WHERE cow_id = $1 AND session_date = $2 AND slot = $3`, cowID, date, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel()
}

func (r *PGRepository) FindAll(ctx context.Context, f *session.Filters) ([]model.FeedSession, error) {
	query := `SELECT * FROM feed_sessions`
	args := []interface{}{}
	where := ""

	if f != nil && f.CowID != "" {
		args = append(args, f.CowID)
		where = ` WHERE cow_id = $1`
	}
	if f != nil && f.Date != nil {
		args = append(args, *f.Date)
		if where == "" {
			where = ` WHERE session_date = $1`
		} else {
			where += ` AND session_date = $2`
		}
	}
	query += where + ` ORDER BY session_date DESC, slot ASC`

	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &rows, query, args...); err != nil {
		return nil, err
	}

	sessions := make([]model.FeedSession, 0, len(rows))
	for _, row := range rows {
		s, err := row.toModel()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (r *PGRepository) UpdateNutrientTotals(ctx context.Context, sessionID string, totals map[string]float64, updatedAt time.Time) error {
	payload, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	query := `UPDATE feed_sessions SET nutrient_totals = $1, updated_at = $2 WHERE id = $3`
	_, err = database.Ext(ctx, r.DB).ExecContext(ctx, query, payload, updatedAt, sessionID)
	return err
}
