package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/stock"
	"github.com/farmsync/feedstock-service/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type stockUseCase struct {
	repo      stock.Repository
	feedRepo  feed.Repository
	txm       database.TxManager
	locker    stock.Locker
	publisher stock.Publisher
	logger    *zap.Logger
}

func NewStockUseCase(
	repo stock.Repository,
	feedRepo feed.Repository,
	txm database.TxManager,
	locker stock.Locker,
	publisher stock.Publisher,
	logger *zap.Logger,
) stock.UseCase {
	return &stockUseCase{
		repo:      repo,
		feedRepo:  feedRepo,
		txm:       txm,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
	}
}

// Adjust runs inside the caller's ambient transaction. The FOR UPDATE read
// serializes concurrent adjustments on the same feed; the row lock is held
// until the enclosing transaction ends, so interleaved decrements can never
// push quantity below zero.
func (uc *stockUseCase) Adjust(ctx context.Context, feedID string, delta float64, actor auth.Actor) (*model.FeedStock, error) {
	s, err := uc.repo.GetByFeedForUpdate(ctx, feedID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s == nil {
		f, err := uc.feedRepo.FindByID(ctx, feedID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if f == nil {
			return nil, apperr.New(apperr.KindNotFound, "feed %q not found", feedID)
		}
		return nil, apperr.New(apperr.KindNotFound, "no stock record for feed %q", f.Name)
	}

	newQuantity := s.Quantity + delta
	if newQuantity < 0 {
		return nil, apperr.New(apperr.KindInsufficientStock,
			"insufficient stock for %s: available %s, requested %s",
			s.FeedName, formatQty(s.Quantity), formatQty(-delta))
	}

	now := time.Now()
	before := s.Quantity
	s.Quantity = newQuantity
	s.UpdatedBy = actor.ID
	s.UpdatedAt = now

	if err := uc.repo.UpdateQuantity(ctx, s.ID, s.Quantity, actor.ID, now); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := uc.repo.AppendHistory(ctx, &model.FeedStockHistory{
		ID:             uuid.New().String(),
		StockID:        s.ID,
		FeedID:         s.FeedID,
		Action:         model.StockActionUpdate,
		QuantityBefore: &before,
		QuantityAfter:  s.Quantity,
		Actor:          actor.ID,
		CreatedAt:      now,
	}); err != nil {
		return nil, apperr.Internal(err)
	}

	return s, nil
}

func (uc *stockUseCase) Restock(ctx context.Context, feedID string, delta float64, actor auth.Actor) (*model.FeedStock, error) {
	if delta == 0 {
		return nil, apperr.New(apperr.KindValidation, "restock delta must not be zero")
	}

	f, err := uc.feedRepo.FindByID(ctx, feedID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if f == nil {
		return nil, apperr.New(apperr.KindNotFound, "feed %q not found", feedID)
	}

	release, err := uc.lockFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}
	defer release()

	var result *model.FeedStock
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		s, err := uc.repo.GetByFeedForUpdate(ctx, feedID)
		if err != nil {
			return apperr.Internal(err)
		}

		if s == nil {
			if delta < 0 {
				return apperr.New(apperr.KindInsufficientStock,
					"insufficient stock for %s: available 0, requested %s", f.Name, formatQty(-delta))
			}
			result, err = uc.createStock(ctx, f, delta, actor)
			return err
		}

		result, err = uc.Adjust(ctx, feedID, delta, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, result, actor)
	return result, nil
}

func (uc *stockUseCase) SetStock(ctx context.Context, feedID string, quantity float64, actor auth.Actor) (*model.FeedStock, error) {
	if quantity < 0 {
		return nil, apperr.New(apperr.KindValidation, "stock quantity must not be negative")
	}

	f, err := uc.feedRepo.FindByID(ctx, feedID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if f == nil {
		return nil, apperr.New(apperr.KindNotFound, "feed %q not found", feedID)
	}

	release, err := uc.lockFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}
	defer release()

	var result *model.FeedStock
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		s, err := uc.repo.GetByFeedForUpdate(ctx, feedID)
		if err != nil {
			return apperr.Internal(err)
		}

		if s == nil {
			result, err = uc.createStock(ctx, f, quantity, actor)
			return err
		}

		now := time.Now()
		before := s.Quantity
		s.Quantity = quantity
		s.UpdatedBy = actor.ID
		s.UpdatedAt = now

		if err := uc.repo.UpdateQuantity(ctx, s.ID, quantity, actor.ID, now); err != nil {
			return apperr.Internal(err)
		}
		if err := uc.repo.AppendHistory(ctx, &model.FeedStockHistory{
			ID:             uuid.New().String(),
			StockID:        s.ID,
			FeedID:         s.FeedID,
			Action:         model.StockActionUpdate,
			QuantityBefore: &before,
			QuantityAfter:  quantity,
			Actor:          actor.ID,
			CreatedAt:      now,
		}); err != nil {
			return apperr.Internal(err)
		}

		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, result, actor)
	return result, nil
}

func (uc *stockUseCase) GetByFeed(ctx context.Context, feedID string) (*model.FeedStock, error) {
	s, err := uc.repo.GetByFeed(ctx, feedID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s == nil {
		return nil, apperr.New(apperr.KindNotFound, "no stock record for feed %q", feedID)
	}
	return s, nil
}

func (uc *stockUseCase) List(ctx context.Context) ([]model.FeedStock, error) {
	stocks, err := uc.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stocks, nil
}

func (uc *stockUseCase) History(ctx context.Context, feedID *string) ([]model.FeedStockHistory, error) {
	if feedID != nil && *feedID != "" {
		f, err := uc.feedRepo.FindByID(ctx, *feedID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if f == nil {
			return nil, apperr.New(apperr.KindNotFound, "feed %q not found", *feedID)
		}
	}

	entries, err := uc.repo.ListHistory(ctx, feedID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

// createStock inserts the first stock record for a feed, with its CREATE
// history row. Callers hold the per-feed lock.
func (uc *stockUseCase) createStock(ctx context.Context, f *model.FeedType, quantity float64, actor auth.Actor) (*model.FeedStock, error) {
	now := time.Now()
	s := &model.FeedStock{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		FeedID:    f.ID,
		Quantity:  quantity,
		UpdatedBy: actor.ID,
		FeedName:  f.Name,
		FeedUnit:  f.Unit,
	}

	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := uc.repo.AppendHistory(ctx, &model.FeedStockHistory{
		ID:            uuid.New().String(),
		StockID:       s.ID,
		FeedID:        f.ID,
		Action:        model.StockActionCreate,
		QuantityAfter: quantity,
		Actor:         actor.ID,
		CreatedAt:     now,
	}); err != nil {
		return nil, apperr.Internal(err)
	}
	return s, nil
}

func (uc *stockUseCase) lockFeed(ctx context.Context, feedID string) (func(), error) {
	key := "lock:stock:" + feedID
	value := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire stock lock", zap.String("feed_id", feedID), zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.locker.ReleaseLock(ctx, key, value); err != nil {
					uc.logger.Error("failed to release stock lock", zap.String("feed_id", feedID), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(lockBackoff)
	}

	return nil, apperr.New(apperr.KindInternal, "stock for feed %q is busy, try again", feedID)
}

func (uc *stockUseCase) publish(ctx context.Context, s *model.FeedStock, actor auth.Actor) {
	if uc.publisher == nil || s == nil {
		return
	}
	event := stock.StockAdjustedEvent{
		EventType:     stock.EventTypeStockAdjusted,
		StockID:       s.ID,
		FeedID:        s.FeedID,
		QuantityAfter: s.Quantity,
		Actor:         actor.ID,
		Timestamp:     time.Now(),
	}
	if err := uc.publisher.PublishStockAdjusted(ctx, event); err != nil {
		uc.logger.Error("failed to publish stock event",
			zap.String("feed_id", s.FeedID),
			zap.Float64("quantity", s.Quantity),
			zap.Error(err),
		)
	}
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
