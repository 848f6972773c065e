package stock

import (
	"context"

	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/model"
)

type UseCase interface {
	// Adjust applies a signed delta to a feed's stock inside the caller's
	// ambient transaction, appending a history row. It never creates the
	// stock record and never lets quantity go below zero.
	Adjust(ctx context.Context, feedID string, delta float64, actor auth.Actor) (*model.FeedStock, error)

	// Restock creates the stock record on first use, otherwise applies the
	// delta. Runs in its own transaction under the per-feed distributed lock.
	Restock(ctx context.Context, feedID string, delta float64, actor auth.Actor) (*model.FeedStock, error)

	// SetStock overrides the quantity to an absolute non-negative value.
	SetStock(ctx context.Context, feedID string, quantity float64, actor auth.Actor) (*model.FeedStock, error)

	GetByFeed(ctx context.Context, feedID string) (*model.FeedStock, error)
	List(ctx context.Context) ([]model.FeedStock, error)
	History(ctx context.Context, feedID *string) ([]model.FeedStockHistory, error)
}
