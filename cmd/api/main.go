package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recetario/backend/config"
	"github.com/recetario/backend/internal/database"
	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/repository"
	"github.com/recetario/backend/internal/server"
	"github.com/recetario/backend/internal/service"
	"github.com/recetario/backend/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	documentStore, err := store.NewGormStore(db)
	if err != nil {
		logger.Fatal("failed to initialize document store", zap.Error(err))
	}

	var denylist service.Denylist
	var limiter *middleware.RateLimiter
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		denylist = service.NewRedisDenylist(redisClient)
		limiter = middleware.NewRecipeWriteRateLimiter(redisClient)
	}

	var images service.ImageStorage
	if cfg.S3.Enabled {
		images, err = service.NewS3ImageStorage(context.Background(), cfg.S3.Bucket, cfg.S3.Region)
		if err != nil {
			logger.Fatal("failed to initialize image storage", zap.Error(err))
		}
	}

	authService := service.NewAuthService(db, cfg.Auth.JWTSecret, denylist, logger)
	repo := repository.NewRecipeRepository(documentStore, middleware.ContextSession{}, cfg.Store.Timeout, logger)

	srv := server.NewServer(cfg, authService, repo, images, limiter, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(cfg.Server.Host + ":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
