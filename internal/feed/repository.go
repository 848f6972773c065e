package feed

import (
	"context"

	"github.com/farmsync/feedstock-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, f *model.FeedType) error
	Update(ctx context.Context, f *model.FeedType) error
	Delete(ctx context.Context, id string) error

	// FindByID and FindByName return nil when no row matches.
	FindByID(ctx context.Context, id string) (*model.FeedType, error)
	FindByName(ctx context.Context, name string) (*model.FeedType, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.FeedType, error)
	FindAll(ctx context.Context) ([]model.FeedType, error)

	CreateNutrient(ctx context.Context, n *model.Nutrient) error
	FindNutrientByID(ctx context.Context, id string) (*model.Nutrient, error)
	FindAllNutrients(ctx context.Context) ([]model.Nutrient, error)

	// ReplaceComposition swaps a feed's nutrient composition wholesale.
	ReplaceComposition(ctx context.Context, feedID string, rows []model.FeedNutrient) error
	CompositionByFeedIDs(ctx context.Context, feedIDs []string) ([]model.FeedNutrient, error)
}
