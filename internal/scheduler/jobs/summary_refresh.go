package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// Warmer precomputes reports for a dataset version ("" is latest)
type Warmer interface {
	Warm(ctx context.Context, version string) (string, error)
}

// SummaryRefreshJob keeps the report cache warm for the latest upload
// ⭐ SSOT: 리포트 캐시 갱신 스케줄은 이 Job에서만
type SummaryRefreshJob struct {
	reports  Warmer
	schedule string
	logger   *logger.Logger

	lastVersion string
}

// NewSummaryRefreshJob creates a new summary refresh job
func NewSummaryRefreshJob(reports Warmer, schedule string, log *logger.Logger) *SummaryRefreshJob {
	return &SummaryRefreshJob{
		reports:  reports,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *SummaryRefreshJob) Name() string {
	return "summary_refresh"
}

// Schedule returns the configured cron schedule
func (j *SummaryRefreshJob) Schedule() string {
	return j.schedule
}

// Run warms every report for the latest version.
// An empty store is not a failure.
func (j *SummaryRefreshJob) Run(ctx context.Context) error {
	version, err := j.reports.Warm(ctx, "")
	if errors.Is(err, store.ErrNoData) {
		j.logger.Debug("No dataset uploaded yet, skipping summary refresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh summary: %w", err)
	}

	if version != j.lastVersion {
		j.logger.WithField("version", version).Info("Summary refreshed for new version")
		j.lastVersion = version
	}

	return nil
}
