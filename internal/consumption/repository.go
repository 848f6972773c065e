package consumption

import (
	"context"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
)

type Repository interface {
	CreateItem(ctx context.Context, item *model.FeedItem) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity float64, updatedBy string, updatedAt time.Time) error

	// TombstoneItem soft-deletes; the row stays for audit, the stock effect is
	// reversed by the caller in the same transaction.
	TombstoneItem(ctx context.Context, itemID string, deletedAt time.Time, deletedBy string) error

	// FindItemByID returns the row regardless of tombstone state, nil when absent.
	FindItemByID(ctx context.Context, id string) (*model.FeedItem, error)
	ListActiveBySession(ctx context.Context, sessionID string) ([]model.FeedItem, error)
}
