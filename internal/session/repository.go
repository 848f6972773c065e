package session

import (
	"context"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
)

type Filters struct {
	CowID string
	Date  *time.Time
}

type Repository interface {
	Create(ctx context.Context, s *model.FeedSession) error
	Delete(ctx context.Context, id string) error

	// FindByID returns nil when the session does not exist.
	FindByID(ctx context.Context, id string) (*model.FeedSession, error)

	// FindByIdentity resolves the (cow, date, slot) uniqueness key.
	FindByIdentity(ctx context.Context, cowID string, date time.Time, slot string) (*model.FeedSession, error)

	FindAll(ctx context.Context, f *Filters) ([]model.FeedSession, error)

	// UpdateNutrientTotals replaces the cached aggregate wholesale.
	UpdateNutrientTotals(ctx context.Context, sessionID string, totals map[string]float64, updatedAt time.Time) error
}
