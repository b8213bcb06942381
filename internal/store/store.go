package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

var (
	// ErrNotFound is returned when a requested version does not exist
	ErrNotFound = errors.New("version not found")

	// ErrNoData is returned when no version has been stored yet
	ErrNoData = errors.New("no data available")
)

// Store persists cleaned datasets by version.
// Stored datasets are immutable; the latest version is whichever Put
// completed most recently. Implementations serialize updates of the
// latest pointer themselves.
// ⭐ SSOT: 데이터셋 버전 저장소 인터페이스
type Store interface {
	Put(ctx context.Context, meta contracts.DatasetVersion, ds *contracts.Dataset) error
	Get(ctx context.Context, version string) (*contracts.Dataset, error)
	LatestVersion(ctx context.Context) (string, error)
}

// Latest loads the most recently stored dataset
func Latest(ctx context.Context, s Store) (string, *contracts.Dataset, error) {
	version, err := s.LatestVersion(ctx)
	if err != nil {
		return "", nil, err
	}

	ds, err := s.Get(ctx, version)
	if err != nil {
		return "", nil, fmt.Errorf("load latest version %s: %w", version, err)
	}

	return version, ds, nil
}

// Resolve loads the requested version, or the latest when version is empty
func Resolve(ctx context.Context, s Store, version string) (string, *contracts.Dataset, error) {
	if version == "" {
		return Latest(ctx, s)
	}

	ds, err := s.Get(ctx, version)
	if err != nil {
		return "", nil, err
	}
	return version, ds, nil
}

// NewVersionID returns an opaque version token (32 hex chars)
func NewVersionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidVersionID reports whether s looks like a token from NewVersionID.
// Disk paths are derived from version ids, so anything else is rejected.
func ValidVersionID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
