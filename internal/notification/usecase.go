package notification

import (
	"context"

	"github.com/farmsync/feedstock-service/internal/model"
)

type UseCase interface {
	// LowStockCheck runs after a stock mutation has committed. It creates at
	// most one notification per stock record per rolling dedup window while
	// quantity sits at or below the feed's minimum. Failures must never affect
	// the mutation that triggered the check.
	LowStockCheck(ctx context.Context, stockID, feedID string, quantity float64) error

	List(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	Delete(ctx context.Context, id string) error
}
