package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// DefaultTempMaxAge is how old an orphaned temp file must be before removal
const DefaultTempMaxAge = time.Hour

// ExportsCleanupJob removes temp files left behind by interrupted writes
// in the exports directory
type ExportsCleanupJob struct {
	dir    string
	maxAge time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewExportsCleanupJob creates a new exports cleanup job
func NewExportsCleanupJob(dir string, maxAge time.Duration, log *logger.Logger) *ExportsCleanupJob {
	if maxAge <= 0 {
		maxAge = DefaultTempMaxAge
	}
	return &ExportsCleanupJob{
		dir:    dir,
		maxAge: maxAge,
		logger: log,
		now:    time.Now,
	}
}

// Name returns the job name
func (j *ExportsCleanupJob) Name() string {
	return "exports_cleanup"
}

// Schedule returns the cron schedule (every hour)
func (j *ExportsCleanupJob) Schedule() string {
	return "0 0 * * * *" // Every hour (with seconds)
}

// Run deletes stale *.tmp files. Files still being written are younger
// than maxAge and are left alone.
func (j *ExportsCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled exports cleanup")

	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}

		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			j.logger.WithError(err).WithField("file", e.Name()).Warn("Failed to remove temp file")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Exports cleanup completed")
	}

	return nil
}
