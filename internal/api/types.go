package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recetario/backend/internal/model"
	"github.com/recetario/backend/internal/repository"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest asks for a password reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a reset token for a new password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// RecipeRequest is the payload for creating or updating a recipe. The
// validation rules here are the presentation-layer rules; ownership and
// timestamps are stamped by the repository, so they are not accepted.
type RecipeRequest struct {
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description" binding:"required"`
	Ingredients        []string `json:"ingredients" binding:"required,min=1,dive,required"`
	Instructions       []string `json:"instructions" binding:"required,min=1,dive,required"`
	CookingTimeMinutes int      `json:"cookingTimeMinutes" binding:"required,gt=0"`
	Servings           int      `json:"servings" binding:"required,gt=0"`
	Difficulty         string   `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
	ImageURL           string   `json:"imageUrl"`
	IsFavorite         bool     `json:"isFavorite"`
}

func (req *RecipeRequest) toModel(id string) *model.Recipe {
	return &model.Recipe{
		ID:                 id,
		Name:               req.Name,
		Description:        req.Description,
		Ingredients:        req.Ingredients,
		Instructions:       req.Instructions,
		CookingTimeMinutes: req.CookingTimeMinutes,
		Servings:           req.Servings,
		Difficulty:         model.ParseDifficulty(req.Difficulty),
		ImageURL:           req.ImageURL,
		IsFavorite:         req.IsFavorite,
	}
}

// respondError maps a repository failure to a user-facing status and message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
	case errors.Is(err, repository.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, repository.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out, check your connection and retry"})
	case errors.Is(err, repository.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, try again later"})
	case errors.Is(err, repository.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{"error": "network error, check your connection"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
