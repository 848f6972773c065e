package session

import (
	"context"

	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/session/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateSessionInput, actor auth.Actor) (*model.FeedSession, error)
	Get(ctx context.Context, id string) (*model.FeedSession, error)
	List(ctx context.Context, f *Filters) ([]model.FeedSession, error)

	// Delete tombstones the session's remaining active items first so their
	// stock is restored, then removes the session.
	Delete(ctx context.Context, id string, actor auth.Actor) error
}
