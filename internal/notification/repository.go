package notification

import (
	"context"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, n *model.Notification) error

	// ExistsSince reports whether a low-stock notification for the stock
	// record was created at or after the given instant (inclusive bound).
	ExistsSince(ctx context.Context, stockID string, since time.Time) (bool, error)

	FindByID(ctx context.Context, id string) (*model.Notification, error)
	FindAll(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
