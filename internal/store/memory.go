package store

import (
	"context"
	"sync"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// MemoryStore keeps datasets in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*contracts.Dataset
	latest   string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*contracts.Dataset),
	}
}

// Put stores a dataset and makes it the latest version
func (s *MemoryStore) Put(ctx context.Context, meta contracts.DatasetVersion, ds *contracts.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets[meta.ID] = ds
	s.latest = meta.ID
	return nil
}

// Get returns the dataset for a version
func (s *MemoryStore) Get(ctx context.Context, version string) (*contracts.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[version]
	if !ok {
		return nil, ErrNotFound
	}
	return ds, nil
}

// LatestVersion returns the id of the last stored version
func (s *MemoryStore) LatestVersion(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == "" {
		return "", ErrNoData
	}
	return s.latest, nil
}
