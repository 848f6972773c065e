package usecase

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/consumption"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/nutrition"
	"github.com/farmsync/feedstock-service/internal/session"
	"go.uber.org/zap"
)

const snapshotTTL = time.Hour

type aggregatorUseCase struct {
	itemRepo    consumption.Repository
	feedRepo    feed.Repository
	sessionRepo session.Repository
	cache       nutrition.SnapshotCache
	logger      *zap.Logger
}

func NewAggregator(
	itemRepo consumption.Repository,
	feedRepo feed.Repository,
	sessionRepo session.Repository,
	cache nutrition.SnapshotCache,
	logger *zap.Logger,
) nutrition.Aggregator {
	return &aggregatorUseCase{
		itemRepo:    itemRepo,
		feedRepo:    feedRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Compute is a full recomputation: active items times per-unit composition,
// summed per nutrient. Feeds without composition data contribute nothing.
func (uc *aggregatorUseCase) Compute(ctx context.Context, sessionID string) (map[string]float64, error) {
	sess, err := uc.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if sess == nil {
		return nil, apperr.New(apperr.KindNotFound, "feeding session %q not found", sessionID)
	}

	items, err := uc.itemRepo.ListActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	quantities := map[string]float64{}
	feedIDs := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := quantities[item.FeedID]; !ok {
			feedIDs = append(feedIDs, item.FeedID)
		}
		quantities[item.FeedID] += item.Quantity
	}

	composition, err := uc.feedRepo.CompositionByFeedIDs(ctx, feedIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totals := map[string]float64{}
	for _, row := range composition {
		totals[row.NutrientID] += row.Amount * quantities[row.FeedID]
	}
	for id, total := range totals {
		totals[id] = math.Round(total*100) / 100
	}

	return totals, nil
}

func (uc *aggregatorUseCase) Refresh(ctx context.Context, sessionID string) (map[string]float64, error) {
	totals, err := uc.Compute(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := uc.sessionRepo.UpdateNutrientTotals(ctx, sessionID, totals, time.Now()); err != nil {
		return nil, apperr.Internal(err)
	}

	uc.writeCache(ctx, sessionID, totals)
	return totals, nil
}

func (uc *aggregatorUseCase) writeCache(ctx context.Context, sessionID string, totals map[string]float64) {
	if uc.cache == nil {
		return
	}
	payload, err := json.Marshal(totals)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, cacheKey(sessionID), string(payload), snapshotTTL); err != nil {
		uc.logger.Warn("failed to cache nutrient snapshot", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// CachedOrCompute serves reads: cache hit first, full recomputation on miss.
func (uc *aggregatorUseCase) CachedOrCompute(ctx context.Context, sessionID string) (map[string]float64, error) {
	if uc.cache != nil {
		raw, err := uc.cache.Get(ctx, cacheKey(sessionID))
		if err != nil {
			uc.logger.Warn("nutrient snapshot cache read failed", zap.String("session_id", sessionID), zap.Error(err))
		} else if raw != "" {
			var totals map[string]float64
			if err := json.Unmarshal([]byte(raw), &totals); err == nil {
				return totals, nil
			}
		}
	}
	return uc.Refresh(ctx, sessionID)
}

func cacheKey(sessionID string) string {
	return "nutrients:session:" + sessionID
}
