package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/repository"
)

// HealthHandler exposes liveness and store-connectivity diagnostics.
type HealthHandler struct {
	repo      *repository.RecipeRepository
	validator middleware.TokenValidator
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(repo *repository.RecipeRepository, validator middleware.TokenValidator) *HealthHandler {
	return &HealthHandler{repo: repo, validator: validator}
}

// RegisterRoutes mounts the health routes.
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/health/store", middleware.AuthMiddleware(h.validator), h.StoreHealth)
}

// Health reports process liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StoreHealth round-trips a probe document through the store on behalf of
// the caller. Diagnostics only.
func (h *HealthHandler) StoreHealth(c *gin.Context) {
	if err := h.repo.TestConnection(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
