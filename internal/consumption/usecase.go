package consumption

import (
	"context"

	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/consumption/dto"
	"github.com/farmsync/feedstock-service/internal/model"
)

type UseCase interface {
	// AddItems creates a batch of consumption records for one session inside a
	// single transaction; any failure leaves no partial stock mutation.
	AddItems(ctx context.Context, sessionID string, inputs []dto.ItemInput, actor auth.Actor) ([]model.FeedItem, error)

	UpdateItem(ctx context.Context, itemID string, quantity float64, actor auth.Actor) (*model.FeedItem, error)
	DeleteItem(ctx context.Context, itemID string, actor auth.Actor) error

	ListBySession(ctx context.Context, sessionID string) ([]model.FeedItem, error)

	// RemoveSessionItems tombstones every active item of a session, restoring
	// stock. Used by session deletion as its referential-integrity step.
	RemoveSessionItems(ctx context.Context, sessionID string, actor auth.Actor) error
}
