// Package testutil provides in-memory fakes of the repository, lock, cache
// and broker interfaces so usecase behavior can be exercised without
// Postgres, Redis or Kafka.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/session"
	"github.com/farmsync/feedstock-service/internal/stock"
)

// Snapshotter lets the fake tx manager capture state before a transaction and
// roll it back on failure.
type Snapshotter interface {
	Snapshot() (restore func())
}

// FakeTxManager serializes transactions with a single mutex, standing in for
// the per-feed row locks of the real store, and restores registered stores
// when the scoped function fails.
type FakeTxManager struct {
	mu     sync.Mutex
	Stores []Snapshotter
}

func (m *FakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), 0, len(m.Stores))
	for _, s := range m.Stores {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// FakeFeedRepo implements feed.Repository.
type FakeFeedRepo struct {
	mu          sync.Mutex
	Feeds       map[string]model.FeedType
	Nutrients   map[string]model.Nutrient
	Composition []model.FeedNutrient
}

func NewFakeFeedRepo() *FakeFeedRepo {
	return &FakeFeedRepo{
		Feeds:     map[string]model.FeedType{},
		Nutrients: map[string]model.Nutrient{},
	}
}

func (r *FakeFeedRepo) Create(_ context.Context, f *model.FeedType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Feeds[f.ID] = *f
	return nil
}

func (r *FakeFeedRepo) Update(_ context.Context, f *model.FeedType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Feeds[f.ID] = *f
	return nil
}

func (r *FakeFeedRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Feeds, id)
	return nil
}

func (r *FakeFeedRepo) FindByID(_ context.Context, id string) (*model.FeedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.Feeds[id]; ok {
		copied := f
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeFeedRepo) FindByName(_ context.Context, name string) (*model.FeedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.Feeds {
		if f.Name == name {
			copied := f
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *FakeFeedRepo) FindByIDs(_ context.Context, ids []string) ([]model.FeedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var feeds []model.FeedType
	for _, id := range ids {
		if f, ok := r.Feeds[id]; ok {
			feeds = append(feeds, f)
		}
	}
	return feeds, nil
}

func (r *FakeFeedRepo) FindAll(_ context.Context) ([]model.FeedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var feeds []model.FeedType
	for _, f := range r.Feeds {
		feeds = append(feeds, f)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Name < feeds[j].Name })
	return feeds, nil
}

func (r *FakeFeedRepo) CreateNutrient(_ context.Context, n *model.Nutrient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Nutrients[n.ID] = *n
	return nil
}

func (r *FakeFeedRepo) FindNutrientByID(_ context.Context, id string) (*model.Nutrient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.Nutrients[id]; ok {
		copied := n
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeFeedRepo) FindAllNutrients(_ context.Context) ([]model.Nutrient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var nutrients []model.Nutrient
	for _, n := range r.Nutrients {
		nutrients = append(nutrients, n)
	}
	sort.Slice(nutrients, func(i, j int) bool { return nutrients[i].Name < nutrients[j].Name })
	return nutrients, nil
}

func (r *FakeFeedRepo) ReplaceComposition(_ context.Context, feedID string, rows []model.FeedNutrient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.Composition[:0]
	for _, row := range r.Composition {
		if row.FeedID != feedID {
			kept = append(kept, row)
		}
	}
	r.Composition = append(kept, rows...)
	return nil
}

func (r *FakeFeedRepo) CompositionByFeedIDs(_ context.Context, feedIDs []string) ([]model.FeedNutrient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range feedIDs {
		wanted[id] = true
	}
	var rows []model.FeedNutrient
	for _, row := range r.Composition {
		if wanted[row.FeedID] {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// FakeStockRepo implements stock.Repository.
type FakeStockRepo struct {
	mu       sync.Mutex
	ByFeed   map[string]model.FeedStock
	History  []model.FeedStockHistory
	FeedRepo *FakeFeedRepo
}

func NewFakeStockRepo(feedRepo *FakeFeedRepo) *FakeStockRepo {
	return &FakeStockRepo{
		ByFeed:   map[string]model.FeedStock{},
		FeedRepo: feedRepo,
	}
}

func (r *FakeStockRepo) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	byFeed := make(map[string]model.FeedStock, len(r.ByFeed))
	for k, v := range r.ByFeed {
		byFeed[k] = v
	}
	history := make([]model.FeedStockHistory, len(r.History))
	copy(history, r.History)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ByFeed = byFeed
		r.History = history
	}
}

func (r *FakeStockRepo) get(feedID string) *model.FeedStock {
	if s, ok := r.ByFeed[feedID]; ok {
		if r.FeedRepo != nil {
			if f, ok := r.FeedRepo.Feeds[s.FeedID]; ok {
				s.FeedName = f.Name
				s.FeedUnit = f.Unit
			}
		}
		return &s
	}
	return nil
}

func (r *FakeStockRepo) GetByFeed(_ context.Context, feedID string) (*model.FeedStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(feedID), nil
}

func (r *FakeStockRepo) GetByFeedForUpdate(_ context.Context, feedID string) (*model.FeedStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(feedID), nil
}

func (r *FakeStockRepo) Create(_ context.Context, s *model.FeedStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ByFeed[s.FeedID] = *s
	return nil
}

func (r *FakeStockRepo) UpdateQuantity(_ context.Context, stockID string, quantity float64, updatedBy string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for feedID, s := range r.ByFeed {
		if s.ID == stockID {
			s.Quantity = quantity
			s.UpdatedBy = updatedBy
			s.UpdatedAt = updatedAt
			r.ByFeed[feedID] = s
			return nil
		}
	}
	return nil
}

func (r *FakeStockRepo) List(_ context.Context) ([]model.FeedStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stocks []model.FeedStock
	for feedID := range r.ByFeed {
		stocks = append(stocks, *r.get(feedID))
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].FeedName < stocks[j].FeedName })
	return stocks, nil
}

func (r *FakeStockRepo) AppendHistory(_ context.Context, h *model.FeedStockHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.History = append(r.History, *h)
	return nil
}

func (r *FakeStockRepo) ListHistory(_ context.Context, feedID *string) ([]model.FeedStockHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []model.FeedStockHistory
	for i := len(r.History) - 1; i >= 0; i-- {
		h := r.History[i]
		if feedID != nil && *feedID != "" && h.FeedID != *feedID {
			continue
		}
		entries = append(entries, h)
	}
	return entries, nil
}

// FakeConsumptionRepo implements consumption.Repository.
type FakeConsumptionRepo struct {
	mu    sync.Mutex
	Items map[string]model.FeedItem
}

func NewFakeConsumptionRepo() *FakeConsumptionRepo {
	return &FakeConsumptionRepo{Items: map[string]model.FeedItem{}}
}

func (r *FakeConsumptionRepo) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make(map[string]model.FeedItem, len(r.Items))
	for k, v := range r.Items {
		items[k] = v
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Items = items
	}
}

func (r *FakeConsumptionRepo) CreateItem(_ context.Context, item *model.FeedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items[item.ID] = *item
	return nil
}

func (r *FakeConsumptionRepo) UpdateItemQuantity(_ context.Context, itemID string, quantity float64, updatedBy string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.Items[itemID]; ok && item.DeletedAt == nil {
		item.Quantity = quantity
		item.UpdatedBy = updatedBy
		item.UpdatedAt = updatedAt
		r.Items[itemID] = item
	}
	return nil
}

func (r *FakeConsumptionRepo) TombstoneItem(_ context.Context, itemID string, deletedAt time.Time, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.Items[itemID]; ok && item.DeletedAt == nil {
		item.DeletedAt = &deletedAt
		item.UpdatedBy = deletedBy
		item.UpdatedAt = deletedAt
		r.Items[itemID] = item
	}
	return nil
}

func (r *FakeConsumptionRepo) FindItemByID(_ context.Context, id string) (*model.FeedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.Items[id]; ok {
		copied := item
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeConsumptionRepo) ListActiveBySession(_ context.Context, sessionID string) ([]model.FeedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []model.FeedItem
	for _, item := range r.Items {
		if item.SessionID == sessionID && item.DeletedAt == nil {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

// FakeSessionRepo implements session.Repository.
type FakeSessionRepo struct {
	mu       sync.Mutex
	Sessions map[string]model.FeedSession
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{Sessions: map[string]model.FeedSession{}}
}

func (r *FakeSessionRepo) Create(_ context.Context, s *model.FeedSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[s.ID] = *s
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Sessions, id)
	return nil
}

func (r *FakeSessionRepo) FindByID(_ context.Context, id string) (*model.FeedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.Sessions[id]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeSessionRepo) FindByIdentity(_ context.Context, cowID string, date time.Time, slot string) (*model.FeedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Sessions {
		if s.CowID == cowID && s.SessionDate.Equal(date) && s.Slot == slot {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *FakeSessionRepo) FindAll(_ context.Context, f *session.Filters) ([]model.FeedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []model.FeedSession
	for _, s := range r.Sessions {
		if f != nil && f.CowID != "" && s.CowID != f.CowID {
			continue
		}
		if f != nil && f.Date != nil && !s.SessionDate.Equal(*f.Date) {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *FakeSessionRepo) UpdateNutrientTotals(_ context.Context, sessionID string, totals map[string]float64, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.Sessions[sessionID]; ok {
		copied := make(map[string]float64, len(totals))
		for k, v := range totals {
			copied[k] = v
		}
		s.NutrientTotals = copied
		s.UpdatedAt = updatedAt
		r.Sessions[sessionID] = s
	}
	return nil
}

// FakeNotificationRepo implements notification.Repository.
type FakeNotificationRepo struct {
	mu            sync.Mutex
	Notifications map[string]model.Notification
}

func NewFakeNotificationRepo() *FakeNotificationRepo {
	return &FakeNotificationRepo{Notifications: map[string]model.Notification{}}
}

func (r *FakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications[n.ID] = *n
	return nil
}

func (r *FakeNotificationRepo) ExistsSince(_ context.Context, stockID string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.Notifications {
		if n.StockID == stockID && n.Type == model.NotificationTypeLowStock && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeNotificationRepo) FindByID(_ context.Context, id string) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.Notifications[id]; ok {
		copied := n
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeNotificationRepo) FindAll(_ context.Context, unreadOnly bool) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var notifications []model.Notification
	for _, n := range r.Notifications {
		if unreadOnly && n.IsRead {
			continue
		}
		notifications = append(notifications, n)
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].CreatedAt.After(notifications[j].CreatedAt) })
	return notifications, nil
}

func (r *FakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.Notifications[id]; ok {
		n.IsRead = true
		r.Notifications[id] = n
	}
	return nil
}

func (r *FakeNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Notifications, id)
	return nil
}

// FakeLocker implements stock.Locker; locks always succeed.
type FakeLocker struct {
	mu       sync.Mutex
	Acquired int
	Released int
}

func (l *FakeLocker) AcquireLock(_ context.Context, _, _ string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Acquired++
	return true, nil
}

func (l *FakeLocker) ReleaseLock(_ context.Context, _, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Released++
	return nil
}

// FakePublisher implements stock.Publisher, recording every event.
type FakePublisher struct {
	mu     sync.Mutex
	Events []stock.StockAdjustedEvent
}

func (p *FakePublisher) PublishStockAdjusted(_ context.Context, event stock.StockAdjustedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *FakePublisher) All() []stock.StockAdjustedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := make([]stock.StockAdjustedEvent, len(p.Events))
	copy(events, p.Events)
	return events
}

// FakeCache implements nutrition.SnapshotCache.
type FakeCache struct {
	mu     sync.Mutex
	Values map[string]string
}

func NewFakeCache() *FakeCache {
	return &FakeCache{Values: map[string]string{}}
}

func (c *FakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Values[key], nil
}

func (c *FakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Values[key] = value
	return nil
}
