package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/feed/dto"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type feedUseCase struct {
	repo   feed.Repository
	txm    database.TxManager
	logger *zap.Logger
}

func NewFeedUseCase(repo feed.Repository, txm database.TxManager, logger *zap.Logger) feed.UseCase {
	return &feedUseCase{
		repo:   repo,
		txm:    txm,
		logger: logger,
	}
}

func (uc *feedUseCase) CreateFeed(ctx context.Context, input *dto.CreateFeedInput, actor auth.Actor) (*model.FeedType, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindPermission, "only admins may manage the feed catalog")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "feed name is required")
	}
	if input.MinStock < 0 {
		return nil, apperr.New(apperr.KindValidation, "min_stock must not be negative")
	}

	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "feed %q already exists", name)
	}

	now := time.Now()
	f := &model.FeedType{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
		Unit:      input.Unit,
		MinStock:  input.MinStock,
		Price:     input.Price,
	}

	if err := uc.repo.Create(ctx, f); err != nil {
		return nil, apperr.Internal(err)
	}
	return f, nil
}

func (uc *feedUseCase) UpdateFeed(ctx context.Context, id string, input *dto.UpdateFeedInput, actor auth.Actor) (*model.FeedType, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindPermission, "only admins may manage the feed catalog")
	}
	if input.MinStock < 0 {
		return nil, apperr.New(apperr.KindValidation, "min_stock must not be negative")
	}

	f, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if f == nil {
		return nil, apperr.New(apperr.KindNotFound, "feed %q not found", id)
	}

	name := strings.TrimSpace(input.Name)
	if name != f.Name {
		existing, err := uc.repo.FindByName(ctx, name)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if existing != nil {
			return nil, apperr.New(apperr.KindConflict, "feed %q already exists", name)
		}
	}

	f.Name = name
	f.Unit = input.Unit
	f.MinStock = input.MinStock
	f.Price = input.Price
	f.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, f); err != nil {
		return nil, apperr.Internal(err)
	}
	return f, nil
}

func (uc *feedUseCase) DeleteFeed(ctx context.Context, id string, actor auth.Actor) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindPermission, "only admins may manage the feed catalog")
	}

	f, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if f == nil {
		return apperr.New(apperr.KindNotFound, "feed %q not found", id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (uc *feedUseCase) GetFeed(ctx context.Context, id string) (*model.FeedType, error) {
	f, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if f == nil {
		return nil, apperr.New(apperr.KindNotFound, "feed %q not found", id)
	}
	return f, nil
}

func (uc *feedUseCase) ListFeeds(ctx context.Context) ([]model.FeedType, error) {
	feeds, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return feeds, nil
}

func (uc *feedUseCase) CreateNutrient(ctx context.Context, input *dto.CreateNutrientInput, actor auth.Actor) (*model.Nutrient, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindPermission, "only admins may manage the nutrient catalog")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "nutrient name is required")
	}

	now := time.Now()
	n := &model.Nutrient{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
		Unit:      input.Unit,
	}

	if err := uc.repo.CreateNutrient(ctx, n); err != nil {
		return nil, apperr.Internal(err)
	}
	return n, nil
}

func (uc *feedUseCase) ListNutrients(ctx context.Context) ([]model.Nutrient, error) {
	nutrients, err := uc.repo.FindAllNutrients(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return nutrients, nil
}

func (uc *feedUseCase) SetComposition(ctx context.Context, feedID string, input *dto.SetCompositionInput, actor auth.Actor) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindPermission, "only admins may manage feed composition")
	}

	f, err := uc.repo.FindByID(ctx, feedID)
	if err != nil {
		return apperr.Internal(err)
	}
	if f == nil {
		return apperr.New(apperr.KindNotFound, "feed %q not found", feedID)
	}

	rows := make([]model.FeedNutrient, 0, len(input.Nutrients))
	seen := map[string]bool{}
	for _, row := range input.Nutrients {
		if row.Amount < 0 {
			return apperr.New(apperr.KindValidation, "nutrient amount must not be negative")
		}
		if seen[row.NutrientID] {
			return apperr.New(apperr.KindValidation, "nutrient %q listed twice", row.NutrientID)
		}
		seen[row.NutrientID] = true

		n, err := uc.repo.FindNutrientByID(ctx, row.NutrientID)
		if err != nil {
			return apperr.Internal(err)
		}
		if n == nil {
			return apperr.New(apperr.KindNotFound, "nutrient %q not found", row.NutrientID)
		}

		rows = append(rows, model.FeedNutrient{
			FeedID:     feedID,
			NutrientID: row.NutrientID,
			Amount:     row.Amount,
		})
	}

	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		return uc.repo.ReplaceComposition(ctx, feedID, rows)
	})
	if err != nil {
		uc.logger.Error("failed to replace feed composition", zap.String("feed_id", feedID), zap.Error(err))
		return apperr.Internal(err)
	}
	return nil
}
