package stock

import (
	"context"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
)

type Repository interface {
	// GetByFeed returns nil when no stock record exists for the feed.
	GetByFeed(ctx context.Context, feedID string) (*model.FeedStock, error)

	// GetByFeedForUpdate locks the stock row for the remainder of the ambient
	// transaction. Returns nil when no row exists (a missing row cannot be
	// locked; callers needing create-or-increment serialize on the distributed
	// per-feed lock instead).
	GetByFeedForUpdate(ctx context.Context, feedID string) (*model.FeedStock, error)

	Create(ctx context.Context, s *model.FeedStock) error
	UpdateQuantity(ctx context.Context, stockID string, quantity float64, updatedBy string, updatedAt time.Time) error

	List(ctx context.Context) ([]model.FeedStock, error)

	// AppendHistory writes one audit row; it must run in the same transaction
	// as the mutation it records.
	AppendHistory(ctx context.Context, h *model.FeedStockHistory) error
	ListHistory(ctx context.Context, feedID *string) ([]model.FeedStockHistory, error)
}
