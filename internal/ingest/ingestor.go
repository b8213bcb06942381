package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/salesdesk/backend/internal/analytics"
	"github.com/wonny/salesdesk/backend/internal/contracts"
	"github.com/wonny/salesdesk/backend/internal/ingest/reader"
	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// Result describes one completed ingestion
type Result struct {
	Version    string                 `json:"version"`
	Rows       int                    `json:"rows_processed"`
	Warnings   []string               `json:"warnings"`
	Summary    contracts.SalesSummary `json:"summary"`
	CostMethod analytics.CostMethod   `json:"cost_method"`
}

// Ingestor turns uploaded files into stored dataset versions.
// Every accepted upload gets a fresh version; the raw file is kept as
// <exports>/<version><suffix> next to the report_<version>.json snapshot.
type Ingestor struct {
	store      store.Store
	exportsDir string
	logger     *logger.Logger
	now        func() time.Time
}

// NewIngestor creates an ingestor writing into exportsDir
func NewIngestor(s store.Store, exportsDir string, log *logger.Logger) *Ingestor {
	return &Ingestor{
		store:      s,
		exportsDir: exportsDir,
		logger:     log,
		now:        time.Now,
	}
}

// IngestFile ingests a file from the local filesystem
func (i *Ingestor) IngestFile(ctx context.Context, path string) (*Result, error) {
	if !reader.Supported(filepath.Ext(path)) {
		return nil, fmt.Errorf("%w: %q", reader.ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return i.Ingest(ctx, filepath.Base(path), f)
}

// Ingest stores the raw upload, runs the cleaning pipeline and persists the
// result. *SchemaError and *DataIntegrityError are returned unwrapped; in
// that case nothing but the raw file is written.
func (i *Ingestor) Ingest(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	suffix := strings.ToLower(filepath.Ext(filename))
	if !reader.Supported(suffix) {
		return nil, fmt.Errorf("%w: %q", reader.ErrUnsupportedFormat, suffix)
	}

	version := store.NewVersionID()
	log := i.logger.WithFields(map[string]interface{}{
		"version": version,
		"source":  filename,
	})

	rawPath, err := i.saveRaw(version, suffix, r)
	if err != nil {
		return nil, err
	}
	log.WithField("path", rawPath).Info("Upload saved")

	raw, err := reader.ReadFile(rawPath)
	if err != nil {
		return nil, err
	}

	ds, warnings, err := ValidateAndNormalize(raw)
	if err != nil {
		log.WithError(err).Error("Validation failed")
		return nil, err
	}
	if len(warnings) > 0 {
		log.WithField("warnings", warnings).Warn("Validation warnings")
	}

	meta := contracts.DatasetVersion{
		ID:        version,
		CreatedAt: i.now(),
		Source:    filename,
		Rows:      ds.Len(),
		Warnings:  warnings,
	}
	// 스냅샷이 먼저 성공해야 버전을 공개
	summary := analytics.SalesSummary(ds)
	summary.Version = version
	if err := store.WriteSnapshot(i.exportsDir, summary); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	if err := i.store.Put(ctx, meta, ds); err != nil {
		os.Remove(store.SnapshotPath(i.exportsDir, version))
		return nil, fmt.Errorf("store version %s: %w", version, err)
	}

	_, method := analytics.EstimateCost(ds)
	log.WithFields(map[string]interface{}{
		"rows":        ds.Len(),
		"cost_method": method,
	}).Info("Dataset stored")

	return &Result{
		Version:    version,
		Rows:       ds.Len(),
		Warnings:   warnings,
		Summary:    summary,
		CostMethod: method,
	}, nil
}

func (i *Ingestor) saveRaw(version, suffix string, r io.Reader) (string, error) {
	if err := os.MkdirAll(i.exportsDir, 0o755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	dest := filepath.Join(i.exportsDir, version+suffix)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return dest, nil
}
