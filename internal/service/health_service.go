package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"socialhub/internal/cache"
	"socialhub/internal/repository"
)

const expectedTables = 6

// Checker is anything that can report its own health.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

type CacheChecker interface {
	Health(ctx context.Context) error
}

type HealthReport struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Tables   int    `json:"tables"`
	Cache    string `json:"cache"`
}

func (r HealthReport) Healthy() bool {
	return r.Status == "ok"
}

type HealthService interface {
	Check(ctx context.Context) HealthReport
}

type healthService struct {
	db         Checker
	tablesRepo repository.TablesRepository
	cache      CacheChecker
	logger     *zap.Logger
}

func NewHealthService(db Checker, tablesRepo repository.TablesRepository, cache CacheChecker, logger *zap.Logger) HealthService {
	return &healthService{db: db, tablesRepo: tablesRepo, cache: cache, logger: logger}
}

// Check reports the database connection, the schema and the optional cache.
// A disabled cache does not make the service unhealthy. Failure details are
// logged, never reported.
func (h *healthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok", Database: "ok", Cache: "ok"}

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		report.Status = "unavailable"
		report.Database = "unavailable"
	} else {
		count, err := h.tablesRepo.CountTablesDB(ctx)
		switch {
		case err != nil:
			h.logger.Error("failed to count tables", zap.Error(err))
			report.Status = "unavailable"
			report.Database = "unavailable"
		case count < expectedTables:
			report.Status = "degraded"
			report.Database = "schema incomplete"
		}
		report.Tables = count
	}

	if err := h.cache.Health(ctx); err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			report.Cache = "disabled"
		} else {
			h.logger.Warn("cache health check failed", zap.Error(err))
			report.Cache = "unavailable"
			if report.Status == "ok" {
				report.Status = "degraded"
			}
		}
	}

	return report
}
