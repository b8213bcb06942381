package commands

import (
	"context"
	"fmt"

	"github.com/wonny/salesdesk/backend/internal/reporting"
	"github.com/wonny/salesdesk/backend/internal/scheduler"
	"github.com/wonny/salesdesk/backend/internal/scheduler/jobs"
	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/config"
	"github.com/wonny/salesdesk/backend/pkg/database"
	"github.com/wonny/salesdesk/backend/pkg/logger"
	"github.com/wonny/salesdesk/backend/pkg/redis"
)

// openStore creates the configured dataset store. The returned close
// function releases its resources.
// ⭐ SSOT: 저장소 백엔드 선택은 여기서만
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return store.NewMemoryStore(), func() {}, nil

	case config.StoragePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		ps := store.NewPostgresStore(db.Pool)
		if err := ps.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return ps, db.Close, nil

	default:
		ds, err := store.NewDiskStore(cfg.Storage.ExportsDir)
		if err != nil {
			return nil, nil, err
		}
		return ds, func() {}, nil
	}
}

// newReports creates the report service backed by the redis cache
func newReports(cfg *config.Config, s store.Store, log *logger.Logger) (*reporting.Service, *redis.Client, error) {
	client, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	if client.Enabled() {
		log.Info("Report cache enabled")
	}

	cache := redis.NewCache(client, "salesdesk")
	return reporting.NewService(s, cache, cfg.Redis.CacheTTL, log), client, nil
}

// newScheduler registers every job
func newScheduler(cfg *config.Config, reports *reporting.Service, log *logger.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log)

	jobList := []scheduler.Job{
		jobs.NewSummaryRefreshJob(reports, cfg.Scheduler.SummaryRefresh, log),
		jobs.NewExportsCleanupJob(cfg.Storage.ExportsDir, jobs.DefaultTempMaxAge, log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
