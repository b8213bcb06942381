package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/config"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error"})
}

type stubWarmer struct {
	version string
	err     error
	calls   int
}

func (w *stubWarmer) Warm(ctx context.Context, version string) (string, error) {
	w.calls++
	return w.version, w.err
}

func TestSummaryRefreshJob(t *testing.T) {
	w := &stubWarmer{version: store.NewVersionID()}
	job := NewSummaryRefreshJob(w, "0 */10 * * * *", testLogger())

	assert.Equal(t, "summary_refresh", job.Name())
	assert.Equal(t, "0 */10 * * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, w.version, job.lastVersion)
}

func TestSummaryRefreshJob_NoData(t *testing.T) {
	w := &stubWarmer{err: store.ErrNoData}
	job := NewSummaryRefreshJob(w, "@hourly", testLogger())

	assert.NoError(t, job.Run(context.Background()))
}

func TestSummaryRefreshJob_Error(t *testing.T) {
	w := &stubWarmer{err: errors.New("store down")}
	job := NewSummaryRefreshJob(w, "@hourly", testLogger())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestExportsCleanupJob(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	write := func(name string, mtime time.Time) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}

	version := store.NewVersionID()
	stale := write(version+".parquet.tmp", old)
	fresh := write("LATEST.tmp", time.Now())
	data := write(version+".parquet", old)

	job := NewExportsCleanupJob(dir, time.Hour, testLogger())
	assert.Equal(t, "exports_cleanup", job.Name())
	require.NoError(t, job.Run(context.Background()))

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, data)
}

func TestExportsCleanupJob_MissingDir(t *testing.T) {
	job := NewExportsCleanupJob(filepath.Join(t.TempDir(), "nope"), 0, testLogger())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, DefaultTempMaxAge, job.maxAge)
}
