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
	"github.com/farmsync/feedstock-service/internal/notification"
	"github.com/farmsync/feedstock-service/internal/testutil"
)

const dedupWindow = 24 * time.Hour

func newNotificationFixture(t *testing.T) (*testutil.FakeNotificationRepo, notification.UseCase) {
	t.Helper()

	feedRepo := testutil.NewFakeFeedRepo()
	require.NoError(t, feedRepo.Create(context.Background(), &model.FeedType{
		BaseModel: model.BaseModel{ID: "feed-1"},
		Name:      "Hijauan",
		Unit:      "kg",
		MinStock:  10,
	}))

	repo := testutil.NewFakeNotificationRepo()
	return repo, NewNotificationUseCase(repo, feedRepo, dedupWindow, zap.NewNop())
}

func TestLowStockCheckCreatesNotification(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 5))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "stock-1", notifs[0].StockID)
	assert.Equal(t, model.NotificationTypeLowStock, notifs[0].Type)
	assert.False(t, notifs[0].IsRead)
	assert.Equal(t, "Stok Hijauan sisa 5 kg, segera lakukan restock", notifs[0].Message)
}

func TestLowStockCheckFlooredQuantityInMessage(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 7.8))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Stok Hijauan sisa 7 kg, segera lakukan restock", notifs[0].Message)
}

func TestLowStockCheckAboveThresholdDoesNothing(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 10.01))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestLowStockCheckAtThresholdAlerts(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 10))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestLowStockCheckDedupsWithinWindow(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 5))
	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 3))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestLowStockCheckAlertsAgainAfterWindow(t *testing.T) {
	repo, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 5))

	// Age the existing alert past the window.
	for id, n := range repo.Notifications {
		n.CreatedAt = time.Now().Add(-dedupWindow - time.Hour)
		repo.Notifications[id] = n
	}

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 4))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, notifs, 2)
}

func TestLowStockCheckDedupIsPerStock(t *testing.T) {
	repo, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 5))
	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-2", "feed-1", 5))

	assert.Len(t, repo.Notifications, 2)
}

func TestLowStockCheckUnknownFeedIsSilent(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-9", 5))

	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestListUnreadOnly(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 5))
	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)

	_, err = uc.MarkRead(context.Background(), notifs[0].ID)
	require.NoError(t, err)

	unread, err := uc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsRead)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	_, uc := newNotificationFixture(t)

	_, err := uc.MarkRead(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteNotification(t *testing.T) {
	_, uc := newNotificationFixture(t)

	require.NoError(t, uc.LowStockCheck(context.Background(), "stock-1", "feed-1", 5))
	notifs, err := uc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)

	require.NoError(t, uc.Delete(context.Background(), notifs[0].ID))

	err = uc.Delete(context.Background(), notifs[0].ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
