package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/repository"
	"github.com/recetario/backend/internal/store"
)

// fakeValidator accepts tokens of the form "token-<uuid>" and resolves them
// to that user id.
type fakeValidator struct{}

func (fakeValidator) ValidateToken(ctx context.Context, token string) (*middleware.TokenClaims, error) {
	raw, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, errors.New("invalid token")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{UserID: userID, TokenID: "test"}, nil
}

type testEnv struct {
	router *gin.Engine
	store  *store.MemoryStore
	repo   *repository.RecipeRepository
	userID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	repo := repository.NewRecipeRepository(st, middleware.ContextSession{}, 0, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewRecipeHandler(repo, fakeValidator{}, nil).RegisterRoutes(v1)
	NewHealthHandler(repo, fakeValidator{}).RegisterRoutes(v1)

	return &testEnv{
		router: router,
		store:  st,
		repo:   repo,
		userID: uuid.NewString(),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, asUser string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if asUser != "" {
		req.Header.Set("Authorization", "Bearer token-"+asUser)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func validRecipeBody() map[string]any {
	return map[string]any{
		"name":               "Tacos",
		"description":        "Street-style tacos",
		"ingredients":        []string{"corn", "beef"},
		"instructions":       []string{"cook beef", "fill tortilla"},
		"cookingTimeMinutes": 20,
		"servings":           2,
		"difficulty":         "EASY",
	}
}

func (e *testEnv) createRecipe(t *testing.T, asUser string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/recipes", validRecipeBody(), asUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	recipe, ok := body["recipe"].(map[string]any)
	require.True(t, ok, "expected recipe in response")
	id, _ := recipe["id"].(string)
	require.NotEmpty(t, id)
	return id
}
