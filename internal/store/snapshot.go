package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// SnapshotPath returns report_<version>.json under dir
func SnapshotPath(dir, version string) string {
	return filepath.Join(dir, "report_"+version+".json")
}

// WriteSnapshot saves the point-in-time sales summary of a version.
// Snapshots are never rewritten by later reports.
func WriteSnapshot(dir string, summary contracts.SalesSummary) error {
	if !ValidVersionID(summary.Version) {
		return fmt.Errorf("invalid version id %q", summary.Version)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create exports dir: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := SnapshotPath(dir, summary.Version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads the summary written at ingestion time
func ReadSnapshot(dir, version string) (*contracts.SalesSummary, error) {
	if !ValidVersionID(version) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(SnapshotPath(dir, version))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var summary contracts.SalesSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &summary, nil
}
