package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recetario/backend/config"
	"github.com/recetario/backend/internal/api"
	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/repository"
	"github.com/recetario/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer wires the handlers into a gin engine. The rate limiter and
// image storage are optional.
func NewServer(
	cfg *config.Config,
	auth *service.AuthService,
	repo *repository.RecipeRepository,
	images service.ImageStorage,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		api.NewAuthHandler(auth).RegisterRoutes(v1)
		api.NewRecipeHandler(repo, auth, limiter).RegisterRoutes(v1)
		api.NewImageHandler(images, auth).RegisterRoutes(v1)
		api.NewHealthHandler(repo, auth).RegisterRoutes(v1)
	}

	return &Server{
		router: router,
		logger: logger,
	}
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("starting server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
