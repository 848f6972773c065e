package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/model"
	"github.com/farmsync/feedstock-service/internal/session"
	"github.com/farmsync/feedstock-service/internal/session/dto"
	"github.com/farmsync/feedstock-service/internal/stock"
	"github.com/farmsync/feedstock-service/internal/testutil"
	consumptionDTO "github.com/farmsync/feedstock-service/internal/consumption/dto"
	consumptionUC "github.com/farmsync/feedstock-service/internal/consumption/usecase"
	nutritionUC "github.com/farmsync/feedstock-service/internal/nutrition/usecase"
	stockUCPkg "github.com/farmsync/feedstock-service/internal/stock/usecase"
)

var (
	farmer = auth.Actor{ID: "user-1", Name: "Budi", Role: "farmer"}
	other  = auth.Actor{ID: "user-2", Name: "Siti", Role: "farmer"}
	admin  = auth.Actor{ID: "admin-1", Name: "Pak Kepala", Role: auth.RoleAdmin}
)

type sessionFixture struct {
	feedRepo *testutil.FakeFeedRepo
	sessRepo *testutil.FakeSessionRepo
	stocks   stock.UseCase
	items    func(ctx context.Context, sessionID string, inputs []consumptionDTO.ItemInput, actor auth.Actor) ([]model.FeedItem, error)
	uc       session.UseCase
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	feedRepo := testutil.NewFakeFeedRepo()
	stockRepo := testutil.NewFakeStockRepo(feedRepo)
	sessRepo := testutil.NewFakeSessionRepo()
	itemRepo := testutil.NewFakeConsumptionRepo()
	txm := &testutil.FakeTxManager{Stores: []testutil.Snapshotter{stockRepo, itemRepo}}

	stocks := stockUCPkg.NewStockUseCase(stockRepo, feedRepo, txm, &testutil.FakeLocker{}, nil, zap.NewNop())
	aggregator := nutritionUC.NewAggregator(itemRepo, feedRepo, sessRepo, testutil.NewFakeCache(), zap.NewNop())
	items := consumptionUC.NewConsumptionUseCase(itemRepo, sessRepo, feedRepo, stocks, aggregator, txm, nil, zap.NewNop())
	uc := NewSessionUseCase(sessRepo, items, zap.NewNop())

	return &sessionFixture{
		feedRepo: feedRepo,
		sessRepo: sessRepo,
		stocks:   stocks,
		items:    items.AddItems,
		uc:       uc,
	}
}

func validInput() *dto.CreateSessionInput {
	return &dto.CreateSessionInput{CowID: "cow-1", Date: "2025-06-01", Slot: model.SlotPagi}
}

func TestCreateSession(t *testing.T) {
	f := newSessionFixture(t)

	s, err := f.uc.Create(context.Background(), validInput(), farmer)
	require.NoError(t, err)
	assert.Equal(t, "cow-1", s.CowID)
	assert.Equal(t, model.SlotPagi, s.Slot)
	assert.Equal(t, farmer.ID, s.CreatedBy)
	assert.NotEmpty(t, s.ID)
}

func TestCreateSessionValidation(t *testing.T) {
	f := newSessionFixture(t)

	tests := []struct {
		name  string
		mut   func(in *dto.CreateSessionInput)
		actor auth.Actor
	}{
		{"missing actor", func(in *dto.CreateSessionInput) {}, auth.Actor{}},
		{"missing cow", func(in *dto.CreateSessionInput) { in.CowID = "" }, farmer},
		{"bad slot", func(in *dto.CreateSessionInput) { in.Slot = "malam" }, farmer},
		{"bad date", func(in *dto.CreateSessionInput) { in.Date = "01-06-2025" }, farmer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mut(in)
			_, err := f.uc.Create(context.Background(), in, tt.actor)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestCreateSessionDuplicateIdentity(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.uc.Create(context.Background(), validInput(), farmer)
	require.NoError(t, err)

	_, err = f.uc.Create(context.Background(), validInput(), farmer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "cow-1")

	// Same cow and date in another slot is a different session.
	in := validInput()
	in.Slot = model.SlotSore
	_, err = f.uc.Create(context.Background(), in, farmer)
	require.NoError(t, err)
}

func TestGetUnknownSession(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.uc.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListFiltersByCow(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.uc.Create(context.Background(), validInput(), farmer)
	require.NoError(t, err)
	in := validInput()
	in.CowID = "cow-2"
	_, err = f.uc.Create(context.Background(), in, farmer)
	require.NoError(t, err)

	sessions, err := f.uc.List(context.Background(), &session.Filters{CowID: "cow-2"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "cow-2", sessions[0].CowID)
}

func TestDeleteSessionRestoresConsumedStock(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.feedRepo.Create(context.Background(), &model.FeedType{
		BaseModel: model.BaseModel{ID: "feed-1"}, Name: "Hijauan", Unit: "kg", MinStock: 10,
	}))
	_, err := f.stocks.Restock(context.Background(), "feed-1", 100, admin)
	require.NoError(t, err)

	s, err := f.uc.Create(context.Background(), validInput(), farmer)
	require.NoError(t, err)

	_, err = f.items(context.Background(), s.ID,
		[]consumptionDTO.ItemInput{{FeedID: "feed-1", Quantity: 40}}, farmer)
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), s.ID, farmer))

	got, err := f.stocks.GetByFeed(context.Background(), "feed-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Quantity)

	_, err = f.uc.Get(context.Background(), s.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteSessionPermission(t *testing.T) {
	f := newSessionFixture(t)

	s, err := f.uc.Create(context.Background(), validInput(), farmer)
	require.NoError(t, err)

	err = f.uc.Delete(context.Background(), s.ID, other)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	require.NoError(t, f.uc.Delete(context.Background(), s.ID, admin))
}
