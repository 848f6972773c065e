package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/feed/dto"
	"github.com/farmsync/feedstock-service/internal/testutil"
)

var (
	admin  = auth.Actor{ID: "admin-1", Name: "Pak Kepala", Role: auth.RoleAdmin}
	farmer = auth.Actor{ID: "user-1", Name: "Budi", Role: "farmer"}
)

func newFeedFixture(t *testing.T) (*testutil.FakeFeedRepo, feed.UseCase) {
	t.Helper()
	repo := testutil.NewFakeFeedRepo()
	return repo, NewFeedUseCase(repo, &testutil.FakeTxManager{}, zap.NewNop())
}

func TestCreateFeed(t *testing.T) {
	_, uc := newFeedFixture(t)

	f, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{
		Name: "  Hijauan ", Unit: "kg", MinStock: 10, Price: 2500,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Hijauan", f.Name)
	assert.Equal(t, 10.0, f.MinStock)
	assert.NotEmpty(t, f.ID)
}

func TestCreateFeedRejectsNonAdmin(t *testing.T) {
	_, uc := newFeedFixture(t)

	_, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg"}, farmer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestCreateFeedValidation(t *testing.T) {
	_, uc := newFeedFixture(t)

	_, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "   ", Unit: "kg"}, admin)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg", MinStock: -1}, admin)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateFeedDuplicateName(t *testing.T) {
	_, uc := newFeedFixture(t)

	_, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg"}, admin)
	require.NoError(t, err)

	_, err = uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg"}, admin)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdateFeed(t *testing.T) {
	_, uc := newFeedFixture(t)

	f, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg", MinStock: 10}, admin)
	require.NoError(t, err)

	updated, err := uc.UpdateFeed(context.Background(), f.ID, &dto.UpdateFeedInput{
		Name: "Hijauan Segar", Unit: "kg", MinStock: 15, Price: 3000,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Hijauan Segar", updated.Name)
	assert.Equal(t, 15.0, updated.MinStock)

	// Renaming onto another feed's name is a conflict.
	g, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Konsentrat", Unit: "kg"}, admin)
	require.NoError(t, err)
	_, err = uc.UpdateFeed(context.Background(), g.ID, &dto.UpdateFeedInput{Name: "Hijauan Segar", Unit: "kg"}, admin)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDeleteFeed(t *testing.T) {
	_, uc := newFeedFixture(t)

	f, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg"}, admin)
	require.NoError(t, err)

	err = uc.DeleteFeed(context.Background(), f.ID, farmer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	require.NoError(t, uc.DeleteFeed(context.Background(), f.ID, admin))

	_, err = uc.GetFeed(context.Background(), f.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSetComposition(t *testing.T) {
	repo, uc := newFeedFixture(t)

	f, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg"}, admin)
	require.NoError(t, err)
	n, err := uc.CreateNutrient(context.Background(), &dto.CreateNutrientInput{Name: "Protein", Unit: "g"}, admin)
	require.NoError(t, err)

	err = uc.SetComposition(context.Background(), f.ID, &dto.SetCompositionInput{
		Nutrients: []dto.CompositionRow{{NutrientID: n.ID, Amount: 0.12}},
	}, admin)
	require.NoError(t, err)

	rows, err := repo.CompositionByFeedIDs(context.Background(), []string{f.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.12, rows[0].Amount)

	// Replacement is wholesale: an empty list clears the composition.
	err = uc.SetComposition(context.Background(), f.ID, &dto.SetCompositionInput{}, admin)
	require.NoError(t, err)
	rows, err = repo.CompositionByFeedIDs(context.Background(), []string{f.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetCompositionValidation(t *testing.T) {
	_, uc := newFeedFixture(t)

	f, err := uc.CreateFeed(context.Background(), &dto.CreateFeedInput{Name: "Hijauan", Unit: "kg"}, admin)
	require.NoError(t, err)
	n, err := uc.CreateNutrient(context.Background(), &dto.CreateNutrientInput{Name: "Protein", Unit: "g"}, admin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		rows  []dto.CompositionRow
		actor auth.Actor
		kind  apperr.Kind
	}{
		{"non-admin", []dto.CompositionRow{{NutrientID: n.ID, Amount: 0.1}}, farmer, apperr.KindPermission},
		{"negative amount", []dto.CompositionRow{{NutrientID: n.ID, Amount: -0.1}}, admin, apperr.KindValidation},
		{"duplicate nutrient", []dto.CompositionRow{{NutrientID: n.ID, Amount: 0.1}, {NutrientID: n.ID, Amount: 0.2}}, admin, apperr.KindValidation},
		{"unknown nutrient", []dto.CompositionRow{{NutrientID: "nope", Amount: 0.1}}, admin, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.SetComposition(context.Background(), f.ID, &dto.SetCompositionInput{Nutrients: tt.rows}, tt.actor)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}
