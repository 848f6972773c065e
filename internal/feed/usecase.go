package feed

import (
	"context"

	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/feed/dto"
	"github.com/farmsync/feedstock-service/internal/model"
)

type UseCase interface {
	CreateFeed(ctx context.Context, input *dto.CreateFeedInput, actor auth.Actor) (*model.FeedType, error)
	UpdateFeed(ctx context.Context, id string, input *dto.UpdateFeedInput, actor auth.Actor) (*model.FeedType, error)
	DeleteFeed(ctx context.Context, id string, actor auth.Actor) error
	GetFeed(ctx context.Context, id string) (*model.FeedType, error)
	ListFeeds(ctx context.Context) ([]model.FeedType, error)

	CreateNutrient(ctx context.Context, input *dto.CreateNutrientInput, actor auth.Actor) (*model.Nutrient, error)
	ListNutrients(ctx context.Context) ([]model.Nutrient, error)

	SetComposition(ctx context.Context, feedID string, input *dto.SetCompositionInput, actor auth.Actor) error
}
