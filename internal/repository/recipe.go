package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recetario/backend/internal/model"
	"github.com/recetario/backend/internal/store"
)

const (
	recipesCollection     = "recipes"
	diagnosticsCollection = "diagnostics"

	// DefaultTimeout bounds every remote store call.
	DefaultTimeout = 10 * time.Second
)

// Session resolves the identity of the current caller. The second return
// is false when there is no authenticated session.
type Session interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// SessionFunc adapts a plain function to the Session interface.
type SessionFunc func(ctx context.Context) (string, bool)

// CurrentUserID implements Session.
func (f SessionFunc) CurrentUserID(ctx context.Context) (string, bool) {
	return f(ctx)
}

// RecipeRepository owns all communication with the document store on behalf
// of the authenticated session. Every operation is bounded by a fixed
// timeout and returns a classified error rather than a raw store failure.
// The repository holds no mutable state between calls.
type RecipeRepository struct {
	store   store.Store
	session Session
	timeout time.Duration
	logger  *zap.Logger
}

// NewRecipeRepository creates a RecipeRepository. A non-positive timeout
// falls back to DefaultTimeout; a nil logger disables logging.
func NewRecipeRepository(st store.Store, session Session, timeout time.Duration, logger *zap.Logger) *RecipeRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeRepository{
		store:   st,
		session: session,
		timeout: timeout,
		logger:  logger,
	}
}

// TestConnection writes and immediately deletes a throwaway probe document.
// Diagnostics only.
func (r *RecipeRepository) TestConnection(ctx context.Context) error {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return err
	}

	id := r.store.NewID()
	probe := store.Document{
		"test":      "connection",
		"timestamp": time.Now().UnixMilli(),
		"userId":    userID,
	}

	err = r.withTimeout(ctx, func(ctx context.Context) error {
		if err := r.store.Set(ctx, diagnosticsCollection, id, probe); err != nil {
			return err
		}
		return r.store.Delete(ctx, diagnosticsCollection, id)
	})
	if err != nil {
		r.logger.Error("connection test failed", zap.Error(err))
		return classify(err)
	}
	return nil
}

// SaveRecipe persists the recipe and returns its final document id. An
// empty id creates a new document; a non-empty id overwrites the existing
// one, keeping the original createdAt. The owner is always the session
// user, regardless of what the caller set.
func (r *RecipeRepository) SaveRecipe(ctx context.Context, recipe *model.Recipe) (string, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now().UnixMilli()
	toSave := *recipe
	toSave.UserID = userID
	toSave.UpdatedAt = now
	if toSave.ID == "" {
		toSave.ID = r.store.NewID()
		toSave.CreatedAt = now
	}

	err = r.withTimeout(ctx, func(ctx context.Context) error {
		return r.store.Set(ctx, recipesCollection, toSave.ID, toSave.ToDocument())
	})
	if err != nil {
		r.logger.Error("failed to save recipe",
			zap.String("recipe_id", toSave.ID),
			zap.Error(err))
		return "", classify(err)
	}

	r.logger.Debug("recipe saved",
		zap.String("recipe_id", toSave.ID),
		zap.String("name", toSave.Name))
	return toSave.ID, nil
}

// GetRecipeByID fetches one recipe. It returns (nil, nil) when the document
// does not exist or belongs to a different user.
func (r *RecipeRepository) GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var recipe *model.Recipe
	err = r.withTimeout(ctx, func(ctx context.Context) error {
		doc, err := r.store.Get(ctx, recipesCollection, id)
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		got := model.RecipeFromDocument(doc)
		if got.UserID == userID {
			recipe = got
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to get recipe", zap.String("recipe_id", id), zap.Error(err))
		return nil, classify(err)
	}
	return recipe, nil
}

// GetUserRecipes returns all recipes owned by the session, newest first.
func (r *RecipeRepository) GetUserRecipes(ctx context.Context) ([]*model.Recipe, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return r.findOwned(ctx, userID, nil)
}

// GetFavoriteRecipes returns the session's favorites, newest first.
func (r *RecipeRepository) GetFavoriteRecipes(ctx context.Context) ([]*model.Recipe, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return r.findOwned(ctx, userID, []store.Filter{{Field: "isFavorite", Value: true}})
}

// ToggleFavorite flips the favorite flag on an owned recipe, persisting only
// the changed fields, and returns the new state.
func (r *RecipeRepository) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return false, err
	}

	var newState bool
	err = r.withTimeout(ctx, func(ctx context.Context) error {
		recipe, err := r.fetchOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		newState = !recipe.IsFavorite
		return r.store.Update(ctx, recipesCollection, id, store.Document{
			"isFavorite": newState,
			"updatedAt":  time.Now().UnixMilli(),
		})
	})
	if err != nil {
		r.logger.Error("failed to toggle favorite", zap.String("recipe_id", id), zap.Error(err))
		return false, classify(err)
	}
	return newState, nil
}

// DeleteRecipe removes an owned recipe.
func (r *RecipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return err
	}

	err = r.withTimeout(ctx, func(ctx context.Context) error {
		if _, err := r.fetchOwned(ctx, id, userID); err != nil {
			return err
		}
		return r.store.Delete(ctx, recipesCollection, id)
	})
	if err != nil {
		r.logger.Error("failed to delete recipe", zap.String("recipe_id", id), zap.Error(err))
		return classify(err)
	}
	return nil
}

// UpdateRecipe overwrites an existing owned recipe. The stored createdAt is
// kept; updatedAt is refreshed.
func (r *RecipeRepository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return err
	}
	if recipe.ID == "" {
		return ErrNotFound
	}

	err = r.withTimeout(ctx, func(ctx context.Context) error {
		existing, err := r.fetchOwned(ctx, recipe.ID, userID)
		if err != nil {
			return err
		}
		updated := *recipe
		updated.UserID = userID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UnixMilli()
		return r.store.Set(ctx, recipesCollection, updated.ID, updated.ToDocument())
	})
	if err != nil {
		r.logger.Error("failed to update recipe", zap.String("recipe_id", recipe.ID), zap.Error(err))
		return classify(err)
	}
	return nil
}

// SearchRecipes returns the session's recipes whose name or description
// contains the query, case-insensitively. Matching happens client-side; the
// store's native filters only cover equality, so the user's recipes are
// fetched and narrowed here.
func (r *RecipeRepository) SearchRecipes(ctx context.Context, query string) ([]*model.Recipe, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipes, err := r.findOwned(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := make([]*model.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if strings.Contains(strings.ToLower(recipe.Name), needle) ||
			strings.Contains(strings.ToLower(recipe.Description), needle) {
			matched = append(matched, recipe)
		}
	}
	return matched, nil
}

func (r *RecipeRepository) currentUserID(ctx context.Context) (string, error) {
	userID, ok := r.session.CurrentUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// withTimeout runs op under the repository's fixed deadline and converts an
// elapsed deadline into ErrTimeout.
func (r *RecipeRepository) withTimeout(ctx context.Context, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := op(opCtx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// fetchOwned loads a recipe and verifies it belongs to the given user.
func (r *RecipeRepository) fetchOwned(ctx context.Context, id, userID string) (*model.Recipe, error) {
	doc, err := r.store.Get(ctx, recipesCollection, id)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	recipe := model.RecipeFromDocument(doc)
	if err := assertOwned(recipe, userID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// assertOwned is the single ownership guard shared by every reading and
// mutating operation.
func assertOwned(recipe *model.Recipe, userID string) error {
	if recipe == nil {
		return ErrNotFound
	}
	if recipe.UserID != userID {
		return ErrPermissionDenied
	}
	return nil
}

func (r *RecipeRepository) findOwned(ctx context.Context, userID string, extra []store.Filter) ([]*model.Recipe, error) {
	q := store.Query{
		Filters:    append([]store.Filter{{Field: "userId", Value: userID}}, extra...),
		OrderBy:    "createdAt",
		Descending: true,
	}

	var recipes []*model.Recipe
	err := r.withTimeout(ctx, func(ctx context.Context) error {
		docs, err := r.store.Find(ctx, recipesCollection, q)
		if err != nil {
			return err
		}
		recipes = make([]*model.Recipe, 0, len(docs))
		for _, doc := range docs {
			recipes = append(recipes, model.RecipeFromDocument(doc))
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list recipes", zap.Error(err))
		return nil, classify(err)
	}
	return recipes, nil
}
