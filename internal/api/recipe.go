package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/repository"
)

// RecipeHandler exposes the recipe repository over HTTP.
type RecipeHandler struct {
	repo      *repository.RecipeRepository
	validator middleware.TokenValidator
	limiter   *middleware.RateLimiter
}

// NewRecipeHandler creates a new RecipeHandler. The limiter is optional.
func NewRecipeHandler(repo *repository.RecipeRepository, validator middleware.TokenValidator, limiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		repo:      repo,
		validator: validator,
		limiter:   limiter,
	}
}

// RegisterRoutes mounts the recipe routes. All of them require a session.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(h.validator))

	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if h.limiter == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{h.limiter.RateLimitMiddleware(), handler}
	}

	recipes.GET("", h.ListRecipes)
	recipes.GET("/:id", h.GetRecipe)
	recipes.POST("", write(h.CreateRecipe)...)
	recipes.PUT("/:id", write(h.UpdateRecipe)...)
	recipes.DELETE("/:id", write(h.DeleteRecipe)...)
	recipes.POST("/:id/favorite", write(h.ToggleFavorite)...)
}

// ListRecipes returns the caller's recipes, newest first. A q parameter
// narrows by name/description substring; favorites=true narrows to
// favorites.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()

	var err error
	var recipes any
	switch {
	case c.Query("q") != "":
		recipes, err = h.repo.SearchRecipes(ctx, c.Query("q"))
	case c.Query("favorites") == "true":
		recipes, err = h.repo.GetFavoriteRecipes(ctx)
	default:
		recipes, err = h.repo.GetUserRecipes(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe returns one recipe. Recipes owned by other users look absent.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.repo.GetRecipeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe saves a new recipe owned by the caller.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.repo.SaveRecipe(c.Request.Context(), req.toModel(""))
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.repo.GetRecipeByID(c.Request.Context(), id)
	if err != nil || recipe == nil {
		c.JSON(http.StatusCreated, gin.H{"id": id})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// UpdateRecipe overwrites an existing recipe owned by the caller.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.repo.UpdateRecipe(c.Request.Context(), req.toModel(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "recipe updated successfully",
		"id":      id,
	})
}

// DeleteRecipe removes a recipe owned by the caller.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.repo.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite flips the favorite state and returns it.
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	isFavorite, err := h.repo.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite})
}
