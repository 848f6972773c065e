package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/consumption"
	"github.com/farmsync/feedstock-service/internal/consumption/dto"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/nutrition"
	"github.com/farmsync/feedstock-service/internal/session"
	"github.com/farmsync/feedstock-service/internal/stock"
	"github.com/farmsync/feedstock-service/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type consumptionUseCase struct {
	repo        consumption.Repository
	sessionRepo session.Repository
	feedRepo    feed.Repository
	stockUC     stock.UseCase
	aggregator  nutrition.Aggregator
	txm         database.TxManager
	publisher   stock.Publisher
	logger      *zap.Logger
}

func NewConsumptionUseCase(
	repo consumption.Repository,
	sessionRepo session.Repository,
	feedRepo feed.Repository,
	stockUC stock.UseCase,
	aggregator nutrition.Aggregator,
	txm database.TxManager,
	publisher stock.Publisher,
	logger *zap.Logger,
) consumption.UseCase {
	return &consumptionUseCase{
		repo:        repo,
		sessionRepo: sessionRepo,
		feedRepo:    feedRepo,
		stockUC:     stockUC,
		aggregator:  aggregator,
		txm:         txm,
		publisher:   publisher,
		logger:      logger,
	}
}

func (uc *consumptionUseCase) AddItems(ctx context.Context, sessionID string, inputs []dto.ItemInput, actor auth.Actor) ([]model.FeedItem, error) {
	if actor.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "actor is required")
	}
	if len(inputs) == 0 {
		return nil, apperr.New(apperr.KindValidation, "at least one item is required")
	}
	for _, in := range inputs {
		if in.FeedID == "" {
			return nil, apperr.New(apperr.KindValidation, "feed_id is required")
		}
		if in.Quantity <= 0 {
			return nil, apperr.New(apperr.KindValidation, "quantity for feed %q must be greater than zero", in.FeedID)
		}
	}

	sess, err := uc.requireSession(ctx, sessionID, actor)
	if err != nil {
		return nil, err
	}

	feedsByID, err := uc.resolveFeeds(ctx, inputs)
	if err != nil {
		return nil, err
	}

	// Duplicate-feed guard runs before any stock is touched.
	if err := uc.rejectDuplicates(ctx, sessionID, inputs, feedsByID); err != nil {
		return nil, err
	}

	// Canonical lock order: sort touched feeds so two concurrent cross-feed
	// batches can never acquire row locks in opposite order.
	sorted := make([]dto.ItemInput, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FeedID < sorted[j].FeedID })

	var (
		created  []model.FeedItem
		adjusted []*model.FeedStock
	)
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		for _, in := range sorted {
			s, err := uc.stockUC.Adjust(ctx, in.FeedID, -in.Quantity, actor)
			if err != nil {
				return err
			}
			adjusted = append(adjusted, s)

			item := model.FeedItem{
				BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				SessionID: sess.ID,
				FeedID:    in.FeedID,
				Quantity:  in.Quantity,
				CreatedBy: actor.ID,
				UpdatedBy: actor.ID,
				FeedName:  feedsByID[in.FeedID].Name,
			}
			if err := uc.repo.CreateItem(ctx, &item); err != nil {
				return apperr.Internal(err)
			}
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx, sess.ID, adjusted, actor)
	return created, nil
}

func (uc *consumptionUseCase) UpdateItem(ctx context.Context, itemID string, quantity float64, actor auth.Actor) (*model.FeedItem, error) {
	if actor.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "actor is required")
	}
	if quantity <= 0 {
		return nil, apperr.New(apperr.KindValidation, "quantity must be greater than zero")
	}

	item, err := uc.requireItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.requireSession(ctx, item.SessionID, actor); err != nil {
		return nil, err
	}

	delta := quantity - item.Quantity
	if delta == 0 {
		return item, nil
	}

	var adjusted *model.FeedStock
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		s, err := uc.stockUC.Adjust(ctx, item.FeedID, -delta, actor)
		if err != nil {
			return err
		}
		adjusted = s

		if err := uc.repo.UpdateItemQuantity(ctx, item.ID, quantity, actor.ID, time.Now()); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	item.UpdatedBy = actor.ID

	uc.afterMutation(ctx, item.SessionID, []*model.FeedStock{adjusted}, actor)
	return item, nil
}

func (uc *consumptionUseCase) DeleteItem(ctx context.Context, itemID string, actor auth.Actor) error {
	if actor.ID == "" {
		return apperr.New(apperr.KindValidation, "actor is required")
	}

	item, err := uc.requireItem(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := uc.requireSession(ctx, item.SessionID, actor); err != nil {
		return err
	}

	var adjusted *model.FeedStock
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		// Restore the item's stock effect, then tombstone.
		s, err := uc.stockUC.Adjust(ctx, item.FeedID, item.Quantity, actor)
		if err != nil {
			return err
		}
		adjusted = s

		if err := uc.repo.TombstoneItem(ctx, item.ID, time.Now(), actor.ID); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.afterMutation(ctx, item.SessionID, []*model.FeedStock{adjusted}, actor)
	return nil
}

func (uc *consumptionUseCase) ListBySession(ctx context.Context, sessionID string) ([]model.FeedItem, error) {
	sess, err := uc.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if sess == nil {
		return nil, apperr.New(apperr.KindNotFound, "feeding session %q not found", sessionID)
	}

	items, err := uc.repo.ListActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (uc *consumptionUseCase) RemoveSessionItems(ctx context.Context, sessionID string, actor auth.Actor) error {
	sess, err := uc.requireSession(ctx, sessionID, actor)
	if err != nil {
		return err
	}

	items, err := uc.repo.ListActiveBySession(ctx, sessionID)
	if err != nil {
		return apperr.Internal(err)
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool { return items[i].FeedID < items[j].FeedID })

	var adjusted []*model.FeedStock
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		for _, item := range items {
			s, err := uc.stockUC.Adjust(ctx, item.FeedID, item.Quantity, actor)
			if err != nil {
				return err
			}
			adjusted = append(adjusted, s)

			if err := uc.repo.TombstoneItem(ctx, item.ID, now, actor.ID); err != nil {
				return apperr.Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.afterMutation(ctx, sess.ID, adjusted, actor)
	return nil
}

func (uc *consumptionUseCase) requireSession(ctx context.Context, sessionID string, actor auth.Actor) (*model.FeedSession, error) {
	sess, err := uc.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if sess == nil {
		return nil, apperr.New(apperr.KindNotFound, "feeding session %q not found", sessionID)
	}
	if !actor.IsAdmin() && sess.CreatedBy != actor.ID {
		return nil, apperr.New(apperr.KindPermission, "no authority over feeding session for cow %q", sess.CowID)
	}
	return sess, nil
}

func (uc *consumptionUseCase) requireItem(ctx context.Context, itemID string) (*model.FeedItem, error) {
	item, err := uc.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if item == nil || item.Deleted() {
		return nil, apperr.New(apperr.KindNotFound, "consumption record %q not found", itemID)
	}
	return item, nil
}

func (uc *consumptionUseCase) resolveFeeds(ctx context.Context, inputs []dto.ItemInput) (map[string]model.FeedType, error) {
	ids := make([]string, 0, len(inputs))
	seen := map[string]bool{}
	for _, in := range inputs {
		if !seen[in.FeedID] {
			seen[in.FeedID] = true
			ids = append(ids, in.FeedID)
		}
	}

	feeds, err := uc.feedRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	byID := make(map[string]model.FeedType, len(feeds))
	for _, f := range feeds {
		byID[f.ID] = f
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperr.New(apperr.KindNotFound, "feed %q not found", id)
		}
	}
	return byID, nil
}

// rejectDuplicates enforces the duplicate-feed guard: a feed may appear at
// most once per batch and at most once as an active item per session.
func (uc *consumptionUseCase) rejectDuplicates(ctx context.Context, sessionID string, inputs []dto.ItemInput, feedsByID map[string]model.FeedType) error {
	var offending []string

	counts := map[string]int{}
	for _, in := range inputs {
		counts[in.FeedID]++
	}
	for id, n := range counts {
		if n > 1 {
			offending = append(offending, feedsByID[id].Name)
		}
	}

	existing, err := uc.repo.ListActiveBySession(ctx, sessionID)
	if err != nil {
		return apperr.Internal(err)
	}
	active := map[string]bool{}
	for _, item := range existing {
		active[item.FeedID] = true
	}
	for id := range counts {
		if active[id] {
			offending = append(offending, feedsByID[id].Name)
		}
	}

	if len(offending) > 0 {
		sort.Strings(offending)
		return apperr.New(apperr.KindDuplicateFeed,
			"feed already referenced in this session: %s", strings.Join(offending, ", "))
	}
	return nil
}

// afterMutation runs the post-commit side effects: nutrient snapshot refresh
// and stock events for the notification pipeline. Both are best-effort.
func (uc *consumptionUseCase) afterMutation(ctx context.Context, sessionID string, adjusted []*model.FeedStock, actor auth.Actor) {
	if _, err := uc.aggregator.Refresh(ctx, sessionID); err != nil {
		uc.logger.Error("failed to refresh session nutrients", zap.String("session_id", sessionID), zap.Error(err))
	}

	if uc.publisher == nil {
		return
	}
	for _, s := range adjusted {
		event := stock.StockAdjustedEvent{
			EventType:     stock.EventTypeStockAdjusted,
			StockID:       s.ID,
			FeedID:        s.FeedID,
			QuantityAfter: s.Quantity,
			Actor:         actor.ID,
			Timestamp:     time.Now(),
		}
		if err := uc.publisher.PublishStockAdjusted(ctx, event); err != nil {
			uc.logger.Error("failed to publish stock event", zap.String("feed_id", s.FeedID), zap.Error(err))
		}
	}
}
