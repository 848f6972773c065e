package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type notificationUseCase struct {
	repo        notification.Repository
	feedRepo    feed.Repository
	dedupWindow time.Duration
	logger      *zap.Logger
}

func NewNotificationUseCase(
	repo notification.Repository,
	feedRepo feed.Repository,
	dedupWindow time.Duration,
	logger *zap.Logger,
) notification.UseCase {
	return &notificationUseCase{
		repo:        repo,
		feedRepo:    feedRepo,
		dedupWindow: dedupWindow,
		logger:      logger,
	}
}

func (uc *notificationUseCase) LowStockCheck(ctx context.Context, stockID, feedID string, quantity float64) error {
	f, err := uc.feedRepo.FindByID(ctx, feedID)
	if err != nil {
		return apperr.Internal(err)
	}
	if f == nil {
		// Feed was removed between mutation and check; nothing to alert on.
		return nil
	}

	if quantity > f.MinStock {
		return nil
	}

	exists, err := uc.repo.ExistsSince(ctx, stockID, time.Now().Add(-uc.dedupWindow))
	if err != nil {
		return apperr.Internal(err)
	}
	if exists {
		return nil
	}

	n := &model.Notification{
		ID:      uuid.New().String(),
		StockID: stockID,
		FeedID:  feedID,
		Type:    model.NotificationTypeLowStock,
		Message: fmt.Sprintf("Stok %s sisa %d %s, segera lakukan restock",
			f.Name, int(math.Floor(quantity)), f.Unit),
		CreatedAt: time.Now(),
	}

	if err := uc.repo.Create(ctx, n); err != nil {
		return apperr.Internal(err)
	}

	uc.logger.Info("low stock notification created",
		zap.String("feed_id", feedID),
		zap.Float64("quantity", quantity),
		zap.Float64("min_stock", f.MinStock),
	)
	return nil
}

func (uc *notificationUseCase) List(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	notifications, err := uc.repo.FindAll(ctx, unreadOnly)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return notifications, nil
}

func (uc *notificationUseCase) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	n, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if n == nil {
		return nil, apperr.New(apperr.KindNotFound, "notification %q not found", id)
	}

	if err := uc.repo.MarkRead(ctx, id); err != nil {
		return nil, apperr.Internal(err)
	}
	n.IsRead = true
	return n, nil
}

func (uc *notificationUseCase) Delete(ctx context.Context, id string) error {
	n, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if n == nil {
		return apperr.New(apperr.KindNotFound, "notification %q not found", id)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
