package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *PGRepository) Create(ctx context.Context, f *model.FeedType) error {
	query := `
        INSERT INTO feed_types (id, name, unit, min_stock, price, created_at, updated_at)
        VALUES (:id, :name, :unit, :min_stock, :price, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, f)
	return err
}

func (r *PGRepository) Update(ctx context.Context, f *model.FeedType) error {
	query := `
        UPDATE feed_types
        SET name = :name, unit = :unit, min_stock = :min_stock, price = :price, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, f)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := database.Ext(ctx, r.DB).ExecContext(ctx, `DELETE FROM feed_types WHERE id = $1`, id)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.FeedType, error) {
	var f model.FeedType
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &f, `SELECT * FROM feed_types WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*model.FeedType, error) {
	var f model.FeedType
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &f, `SELECT * FROM feed_types WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.FeedType, error) {
	if len(ids) == 0 {
		return []model.FeedType{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM feed_types WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var feeds []model.FeedType
	err = sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &feeds, query, args...)
	return feeds, err
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.FeedType, error) {
	var feeds []model.FeedType
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &feeds, `SELECT * FROM feed_types ORDER BY name ASC`)
	return feeds, err
}

func (r *PGRepository) CreateNutrient(ctx context.Context, n *model.Nutrient) error {
	query := `
        INSERT INTO nutrients (id, name, unit, created_at, updated_at)
        VALUES (:id, :name, :unit, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, n)
	return err
}

func (r *PGRepository) FindNutrientByID(ctx context.Context, id string) (*model.Nutrient, error) {
	var n model.Nutrient
	err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &n, `SELECT * FROM nutrients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *PGRepository) FindAllNutrients(ctx context.Context) ([]model.Nutrient, error) {
	var nutrients []model.Nutrient
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &nutrients, `SELECT * FROM nutrients ORDER BY name ASC`)
	return nutrients, err
}

func (r *PGRepository) ReplaceComposition(ctx context.Context, feedID string, rows []model.FeedNutrient) error {
	ext := database.Ext(ctx, r.DB)

	if _, err := ext.ExecContext(ctx, `DELETE FROM feed_nutrients WHERE feed_id = $1`, feedID); err != nil {
		return err
	}

	for i := range rows {
		query := `
            INSERT INTO feed_nutrients (feed_id, nutrient_id, amount)
            VALUES (:feed_id, :nutrient_id, :amount)
        `
		if _, err := sqlx.NamedExecContext(ctx, ext, query, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) CompositionByFeedIDs(ctx context.Context, feedIDs []string) ([]model.FeedNutrient, error) {
	if len(feedIDs) == 0 {
		return []model.FeedNutrient{}, nil
	}

	query, args, err := sqlx.In(`SELECT feed_id, nutrient_id, amount FROM feed_nutrients WHERE feed_id IN (?)`, feedIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var rows []model.FeedNutrient
	err = sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &rows, query, args...)
	return rows, err
}
