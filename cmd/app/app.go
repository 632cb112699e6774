package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	handlers "socialhub/internal/handler"
	"socialhub/internal/logging"
	"socialhub/internal/metrics"
	"socialhub/internal/middleware"
	"socialhub/internal/repository"
	"socialhub/internal/service"
	"socialhub/internal/storage"
)

// App holds the wired application and the connections it owns.
type App struct {
	DB       database.MethodsDB
	Cache    *cache.Cache
	Services *service.Service
	Handler  http.Handler

	logger *zap.Logger
}

// New connects the backing services and builds the HTTP handler.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	// connection DB
	db, err := database.ConnectDB(cfg, logging.WithComponent(logger, "database"))
	if err != nil {
		return nil, err
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to initialize MinIO: %w", err)
	}

	// optional Redis for session revocation
	redisCache, err := cache.New(ctx, cfg.Redis, logging.WithComponent(logger, "cache"))
	if err != nil {
		db.CloseDB()
		return nil, err
	}

	appMetrics := metrics.New()

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(service.Dependencies{
		Repo:     repo,
		Storage:  minioClient,
		Tokens:   redisCache,
		DB:       db,
		Cache:    redisCache,
		Observer: appMetrics,
		Logger:   logger,
	}, cfg)

	h := handlers.NewHandlers(services, cfg, logging.WithComponent(logger, "http"))

	handler := middleware.Chain(
		NewRouter(h, appMetrics, logging.WithComponent(logger, "access")),
		middleware.CORSMiddleware,
		middleware.AuthMiddleware(services.Auth, cfg, logging.WithComponent(logger, "auth")),
	)

	return &App{
		DB:       db,
		Cache:    redisCache,
		Services: services,
		Handler:  handler,
		logger:   logger,
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.logger.Warn("failed to close Redis", zap.Error(err))
	}
	if err := a.DB.CloseDB(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
}
