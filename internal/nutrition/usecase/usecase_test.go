package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/nutrition"
	"github.com/farmsync/feedstock-service/internal/testutil"
)

type aggFixture struct {
	feedRepo *testutil.FakeFeedRepo
	itemRepo *testutil.FakeConsumptionRepo
	sessRepo *testutil.FakeSessionRepo
	cache    *testutil.FakeCache
	agg      nutrition.Aggregator
}

func newAggFixture(t *testing.T) *aggFixture {
	t.Helper()

	feedRepo := testutil.NewFakeFeedRepo()
	itemRepo := testutil.NewFakeConsumptionRepo()
	sessRepo := testutil.NewFakeSessionRepo()
	cache := testutil.NewFakeCache()
	agg := NewAggregator(itemRepo, feedRepo, sessRepo, cache, zap.NewNop())

	require.NoError(t, sessRepo.Create(context.Background(), &model.FeedSession{
		BaseModel:   model.BaseModel{ID: "sess-1"},
		CowID:       "cow-1",
		SessionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Slot:        model.SlotPagi,
	}))

	return &aggFixture{feedRepo: feedRepo, itemRepo: itemRepo, sessRepo: sessRepo, cache: cache, agg: agg}
}

func (f *aggFixture) addItem(t *testing.T, id, feedID string, quantity float64) {
	t.Helper()
	require.NoError(t, f.itemRepo.CreateItem(context.Background(), &model.FeedItem{
		BaseModel: model.BaseModel{ID: id, CreatedAt: time.Now()},
		SessionID: "sess-1",
		FeedID:    feedID,
		Quantity:  quantity,
	}))
}

func (f *aggFixture) setComposition(t *testing.T, feedID string, amounts map[string]float64) {
	t.Helper()
	rows := make([]model.FeedNutrient, 0, len(amounts))
	for nutrientID, amount := range amounts {
		rows = append(rows, model.FeedNutrient{FeedID: feedID, NutrientID: nutrientID, Amount: amount})
	}
	require.NoError(t, f.feedRepo.ReplaceComposition(context.Background(), feedID, rows))
}

func TestComputeSumsPerNutrient(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.12, "fiber": 0.3})
	f.setComposition(t, "feed-2", map[string]float64{"protein": 0.2})
	f.addItem(t, "item-1", "feed-1", 10)
	f.addItem(t, "item-2", "feed-2", 5)

	totals, err := f.agg.Compute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2.2, totals["protein"])
	assert.Equal(t, 3.0, totals["fiber"])
}

func TestComputeOrderIndependent(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.11})
	f.setComposition(t, "feed-2", map[string]float64{"protein": 0.07})
	f.setComposition(t, "feed-3", map[string]float64{"protein": 0.23})
	f.addItem(t, "item-1", "feed-3", 3.3)
	f.addItem(t, "item-2", "feed-1", 7.7)
	f.addItem(t, "item-3", "feed-2", 1.1)

	first, err := f.agg.Compute(context.Background(), "sess-1")
	require.NoError(t, err)

	// Recompute from the same data; insertion order must not matter.
	second, err := f.agg.Compute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeRoundsToTwoDecimals(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.333})
	f.addItem(t, "item-1", "feed-1", 1)

	totals, err := f.agg.Compute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0.33, totals["protein"])
}

func TestComputeSkipsFeedsWithoutComposition(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.1})
	f.addItem(t, "item-1", "feed-1", 10)
	f.addItem(t, "item-2", "feed-2", 99)

	totals, err := f.agg.Compute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, totals["protein"])
	assert.Len(t, totals, 1)
}

func TestComputeIgnoresTombstonedItems(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.1})
	f.addItem(t, "item-1", "feed-1", 10)
	f.addItem(t, "item-2", "feed-1", 20)
	require.NoError(t, f.itemRepo.TombstoneItem(context.Background(), "item-2", time.Now(), "user-1"))

	totals, err := f.agg.Compute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, totals["protein"])
}

func TestComputeUnknownSession(t *testing.T) {
	f := newAggFixture(t)

	_, err := f.agg.Compute(context.Background(), "sess-9")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRefreshPersistsAndCaches(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.5})
	f.addItem(t, "item-1", "feed-1", 4)

	totals, err := f.agg.Refresh(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, totals["protein"])

	sess, err := f.sessRepo.FindByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, sess.NutrientTotals["protein"])

	cached, err := f.cache.Get(context.Background(), "nutrients:session:sess-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"protein":2}`, cached)
}

func TestCachedOrComputePrefersCache(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.5})
	f.addItem(t, "item-1", "feed-1", 4)

	require.NoError(t, f.cache.Set(context.Background(), "nutrients:session:sess-1", `{"protein":99}`, time.Hour))

	totals, err := f.agg.CachedOrCompute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 99.0, totals["protein"])
}

func TestCachedOrComputeFallsThroughOnMiss(t *testing.T) {
	f := newAggFixture(t)
	f.setComposition(t, "feed-1", map[string]float64{"protein": 0.5})
	f.addItem(t, "item-1", "feed-1", 4)

	totals, err := f.agg.CachedOrCompute(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, totals["protein"])

	// The miss path refreshed the snapshot.
	cached, err := f.cache.Get(context.Background(), "nutrients:session:sess-1")
	require.NoError(t, err)
	assert.NotEmpty(t, cached)
}
