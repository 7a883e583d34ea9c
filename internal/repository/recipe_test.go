package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recetario/backend/internal/mocks"
	"github.com/recetario/backend/internal/model"
	"github.com/recetario/backend/internal/store"
)

func sessionFor(userID string) Session {
	return SessionFunc(func(ctx context.Context) (string, bool) {
		return userID, userID != ""
	})
}

func newTestRepo(t *testing.T, userID string) (*RecipeRepository, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	repo := NewRecipeRepository(st, sessionFor(userID), 0, nil)
	return repo, st
}

func tacos() *model.Recipe {
	return &model.Recipe{
		Name:               "Tacos",
		Description:        "Street-style tacos",
		Ingredients:        []string{"corn", "beef"},
		Instructions:       []string{"cook beef", "fill tortilla"},
		CookingTimeMinutes: 20,
		Servings:           2,
		Difficulty:         model.DifficultyEasy,
	}
}

// seed writes a recipe document directly into the store, bypassing the
// repository, so tests can control owner and timestamps.
func seed(t *testing.T, st *store.MemoryStore, id, userID string, createdAt int64, favorite bool, name string) {
	t.Helper()
	recipe := tacos()
	recipe.ID = id
	recipe.UserID = userID
	recipe.CreatedAt = createdAt
	recipe.UpdatedAt = createdAt
	recipe.IsFavorite = favorite
	if name != "" {
		recipe.Name = name
	}
	require.NoError(t, st.Set(context.Background(), "recipes", id, recipe.ToDocument()))
}

func TestSaveRecipeAssignsIDAndOwner(t *testing.T) {
	repo, _ := newTestRepo(t, "u1")

	recipe := tacos()
	recipe.UserID = "forged-owner"

	id, err := repo.SaveRecipe(context.Background(), recipe)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	saved, err := repo.GetRecipeByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, recipe.Name, saved.Name)
	assert.Equal(t, recipe.Ingredients, saved.Ingredients)
	assert.Equal(t, recipe.Instructions, saved.Instructions)
	assert.NotZero(t, saved.CreatedAt)
	assert.NotZero(t, saved.UpdatedAt)
}

func TestSaveRecipePreservesCreatedAtOnUpdate(t *testing.T) {
	repo, _ := newTestRepo(t, "u1")

	id, err := repo.SaveRecipe(context.Background(), tacos())
	require.NoError(t, err)

	first, err := repo.GetRecipeByID(context.Background(), id)
	require.NoError(t, err)

	updated := *first
	updated.Name = "Tacos al pastor"
	savedID, err := repo.SaveRecipe(context.Background(), &updated)
	require.NoError(t, err)
	assert.Equal(t, id, savedID)

	second, err := repo.GetRecipeByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Tacos al pastor", second.Name)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.GreaterOrEqual(t, second.UpdatedAt, first.UpdatedAt)
}

func TestSaveRecipeRequiresSession(t *testing.T) {
	repo, _ := newTestRepo(t, "")

	_, err := repo.SaveRecipe(context.Background(), tacos())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetRecipeByIDNotFound(t *testing.T) {
	repo, _ := newTestRepo(t, "u1")

	recipe, err := repo.GetRecipeByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, recipe)
}

func TestGetRecipeByIDHidesOtherUsersRecipes(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r2", "u2", 100, false, "")

	recipe, err := repo.GetRecipeByID(context.Background(), "r2")
	require.NoError(t, err)
	assert.Nil(t, recipe)
}

func TestGetUserRecipesOrderedNewestFirst(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "a", "u1", 100, false, "")
	seed(t, st, "b", "u1", 300, false, "")
	seed(t, st, "c", "u1", 200, false, "")
	seed(t, st, "other", "u2", 400, false, "")

	recipes, err := repo.GetUserRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, int64(300), recipes[0].CreatedAt)
	assert.Equal(t, int64(200), recipes[1].CreatedAt)
	assert.Equal(t, int64(100), recipes[2].CreatedAt)
}

func TestGetFavoriteRecipes(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "a", "u1", 100, true, "")
	seed(t, st, "b", "u1", 300, false, "")
	seed(t, st, "c", "u1", 200, true, "")

	recipes, err := repo.GetFavoriteRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "c", recipes[0].ID)
	assert.Equal(t, "a", recipes[1].ID)
}

func TestToggleFavoriteDoubleToggleRestoresState(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r1", "u1", 100, false, "")

	state, err := repo.ToggleFavorite(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, state)

	state, err = repo.ToggleFavorite(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, state)
}

func TestToggleFavoriteRefreshesUpdatedAtOnly(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r1", "u1", 100, false, "")

	_, err := repo.ToggleFavorite(context.Background(), "r1")
	require.NoError(t, err)

	recipe, err := repo.GetRecipeByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, recipe.IsFavorite)
	assert.Equal(t, int64(100), recipe.CreatedAt)
	assert.Greater(t, recipe.UpdatedAt, int64(100))
}

func TestToggleFavoriteErrors(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r2", "u2", 100, false, "")

	_, err := repo.ToggleFavorite(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.ToggleFavorite(context.Background(), "r2")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteRecipeThenGetReturnsEmpty(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r1", "u1", 100, false, "")

	require.NoError(t, repo.DeleteRecipe(context.Background(), "r1"))

	recipe, err := repo.GetRecipeByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Nil(t, recipe)
}

func TestDeleteRecipeErrors(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r2", "u2", 100, false, "")

	assert.ErrorIs(t, repo.DeleteRecipe(context.Background(), "missing"), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteRecipe(context.Background(), "r2"), ErrPermissionDenied)

	// The foreign recipe must still be there.
	doc, err := st.Get(context.Background(), "recipes", "r2")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestUpdateRecipe(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r1", "u1", 100, true, "")

	updated := tacos()
	updated.ID = "r1"
	updated.Name = "Quesadillas"
	updated.CreatedAt = 999999 // must be ignored in favor of the stored value

	require.NoError(t, repo.UpdateRecipe(context.Background(), updated))

	recipe, err := repo.GetRecipeByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Quesadillas", recipe.Name)
	assert.Equal(t, int64(100), recipe.CreatedAt)
	assert.Greater(t, recipe.UpdatedAt, int64(100))
	assert.Equal(t, "u1", recipe.UserID)
}

func TestUpdateRecipeErrors(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "r2", "u2", 100, false, "")

	missing := tacos()
	missing.ID = "missing"
	assert.ErrorIs(t, repo.UpdateRecipe(context.Background(), missing), ErrNotFound)

	foreign := tacos()
	foreign.ID = "r2"
	assert.ErrorIs(t, repo.UpdateRecipe(context.Background(), foreign), ErrPermissionDenied)

	unsaved := tacos()
	assert.ErrorIs(t, repo.UpdateRecipe(context.Background(), unsaved), ErrNotFound)
}

func TestSearchRecipes(t *testing.T) {
	repo, st := newTestRepo(t, "u1")
	seed(t, st, "a", "u1", 100, false, "Chicken Curry")
	seed(t, st, "b", "u1", 200, false, "Beef Stew")
	seed(t, st, "c", "u2", 300, false, "Chicken Soup")

	recipes, err := repo.SearchRecipes(context.Background(), "chicken")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "a", recipes[0].ID)

	// Description matches too.
	recipes, err = repo.SearchRecipes(context.Background(), "STREET-STYLE")
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	recipes, err = repo.SearchRecipes(context.Background(), "paella")
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestTestConnectionCleansUpProbe(t *testing.T) {
	repo, st := newTestRepo(t, "u1")

	require.NoError(t, repo.TestConnection(context.Background()))

	docs, err := st.Find(context.Background(), "diagnostics", store.Query{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestTestConnectionRequiresSession(t *testing.T) {
	repo, _ := newTestRepo(t, "")
	assert.ErrorIs(t, repo.TestConnection(context.Background()), ErrUnauthenticated)
}

func TestOperationsRequireSession(t *testing.T) {
	repo, _ := newTestRepo(t, "")
	ctx := context.Background()

	_, err := repo.GetRecipeByID(ctx, "r1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = repo.GetUserRecipes(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = repo.GetFavoriteRecipes(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = repo.ToggleFavorite(ctx, "r1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = repo.SearchRecipes(ctx, "tacos")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, repo.DeleteRecipe(ctx, "r1"), ErrUnauthenticated)
	assert.ErrorIs(t, repo.UpdateRecipe(ctx, tacos()), ErrUnauthenticated)
}

// slowStore blocks on Get until the operation context is cancelled.
type slowStore struct {
	store.Store
}

func (s slowStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutSurfacesAsErrTimeout(t *testing.T) {
	repo := NewRecipeRepository(slowStore{store.NewMemoryStore()}, sessionFor("u1"), 20*time.Millisecond, nil)

	_, err := repo.GetRecipeByID(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSaveRecipeClassifiesStoreFailure(t *testing.T) {
	st := new(mocks.MockStore)
	st.On("NewID").Return("r1")
	st.On("Set", mock.Anything, "recipes", "r1", mock.Anything).
		Return(errors.New("PERMISSION_DENIED: missing or insufficient permissions"))

	repo := NewRecipeRepository(st, sessionFor("u1"), 0, nil)

	_, err := repo.SaveRecipe(context.Background(), tacos())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	st.AssertExpectations(t)
}

func TestFindFailureClassifiedAsUnavailable(t *testing.T) {
	st := new(mocks.MockStore)
	st.On("Find", mock.Anything, "recipes", mock.Anything).
		Return(nil, errors.New("UNAVAILABLE: backend is shedding load"))

	repo := NewRecipeRepository(st, sessionFor("u1"), 0, nil)

	_, err := repo.GetUserRecipes(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
