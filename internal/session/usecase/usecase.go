package usecase

import (
	"context"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/consumption"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/session"
	"github.com/farmsync/feedstock-service/internal/session/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionUseCase struct {
	repo          session.Repository
	consumptionUC consumption.UseCase
	logger        *zap.Logger
}

func NewSessionUseCase(repo session.Repository, consumptionUC consumption.UseCase, logger *zap.Logger) session.UseCase {
	return &sessionUseCase{
		repo:          repo,
		consumptionUC: consumptionUC,
		logger:        logger,
	}
}

func (uc *sessionUseCase) Create(ctx context.Context, input *dto.CreateSessionInput, actor auth.Actor) (*model.FeedSession, error) {
	if actor.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "actor is required")
	}
	if input.CowID == "" {
		return nil, apperr.New(apperr.KindValidation, "cow_id is required")
	}
	if !model.ValidSlot(input.Slot) {
		return nil, apperr.New(apperr.KindValidation, "slot must be one of pagi, siang, sore")
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "date must be formatted YYYY-MM-DD")
	}

	existing, err := uc.repo.FindByIdentity(ctx, input.CowID, date, input.Slot)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict,
			"feeding session for cow %q on %s (%s) already exists", input.CowID, input.Date, input.Slot)
	}

	now := time.Now()
	s := &model.FeedSession{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CowID:          input.CowID,
		SessionDate:    date,
		Slot:           input.Slot,
		NutrientTotals: map[string]float64{},
		CreatedBy:      actor.ID,
	}

	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, apperr.Internal(err)
	}
	return s, nil
}

func (uc *sessionUseCase) Get(ctx context.Context, id string) (*model.FeedSession, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s == nil {
		return nil, apperr.New(apperr.KindNotFound, "feeding session %q not found", id)
	}
	return s, nil
}

func (uc *sessionUseCase) List(ctx context.Context, f *session.Filters) ([]model.FeedSession, error) {
	sessions, err := uc.repo.FindAll(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return sessions, nil
}

func (uc *sessionUseCase) Delete(ctx context.Context, id string, actor auth.Actor) error {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if s == nil {
		return apperr.New(apperr.KindNotFound, "feeding session %q not found", id)
	}
	if !actor.IsAdmin() && s.CreatedBy != actor.ID {
		return apperr.New(apperr.KindPermission, "no authority over feeding session for cow %q", s.CowID)
	}

	// Tombstone remaining items first so their stock effect is reversed.
	if err := uc.consumptionUC.RemoveSessionItems(ctx, id, actor); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}

	uc.logger.Info("feeding session deleted", zap.String("session_id", id), zap.String("cow_id", s.CowID))
	return nil
}
