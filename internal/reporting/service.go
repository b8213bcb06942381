package reporting

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/wonny/salesdesk/backend/internal/analytics"
	"github.com/wonny/salesdesk/backend/internal/contracts"
	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/logger"
	"github.com/wonny/salesdesk/backend/pkg/redis"
)

// Report names, as used in URLs and cache keys
const (
	ReportSalesSummary        = "sales-summary"
	ReportRegionalPerformance = "regional-performance"
	ReportProductAnalysis     = "product-analysis"
	ReportCustomerProfile     = "customer-profile"
	ReportFinancialMetrics    = "financial-metrics"
)

// Names lists every report in display order
var Names = []string{
	ReportSalesSummary,
	ReportRegionalPerformance,
	ReportProductAnalysis,
	ReportCustomerProfile,
	ReportFinancialMetrics,
}

// Params are the optional report arguments; only product analysis uses them
type Params struct {
	TopN   int
	SortBy string
}

// Service builds reports for stored dataset versions.
// Versions are immutable, so results are cached per (version, report,
// params) with no invalidation. The "latest" alias is resolved on every
// call and never cached.
// ⭐ SSOT: 리포트 조회는 여기서만
type Service struct {
	store  store.Store
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger

	mu        sync.Mutex
	lastID    string
	lastDS    *contracts.Dataset
	loadCount int
}

// NewService creates a report service. cache may wrap a disabled client.
func NewService(s store.Store, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &Service{
		store:  s,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// ResolveVersion maps "" to the latest stored version
func (s *Service) ResolveVersion(ctx context.Context, version string) (string, error) {
	if version != "" {
		return version, nil
	}
	return s.store.LatestVersion(ctx)
}

// Build returns the named report as a JSON-ready value.
// Unknown names return ErrUnknownReport.
func (s *Service) Build(ctx context.Context, name, version string, p Params) (interface{}, error) {
	switch name {
	case ReportSalesSummary:
		return s.SalesSummary(ctx, version)
	case ReportRegionalPerformance:
		return s.RegionalPerformance(ctx, version)
	case ReportProductAnalysis:
		return s.ProductAnalysis(ctx, version, p.TopN, p.SortBy)
	case ReportCustomerProfile:
		return s.CustomerProfile(ctx, version)
	case ReportFinancialMetrics:
		return s.FinancialMetrics(ctx, version)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
}

// SalesSummary returns the headline report, tagged with its version
func (s *Service) SalesSummary(ctx context.Context, version string) (*contracts.SalesSummary, error) {
	return cached(ctx, s, ReportSalesSummary, version, nil, func(ds *contracts.Dataset, v string) contracts.SalesSummary {
		summary := analytics.SalesSummary(ds)
		summary.Version = v
		return summary
	})
}

// RegionalPerformance returns sales grouped by region
func (s *Service) RegionalPerformance(ctx context.Context, version string) (*contracts.RegionalPerformance, error) {
	return cached(ctx, s, ReportRegionalPerformance, version, nil, func(ds *contracts.Dataset, _ string) contracts.RegionalPerformance {
		return analytics.RegionalPerformance(ds)
	})
}

// ProductAnalysis returns the top products. topN <= 0 means the default
// and unknown sort keys fall back to amount collected; both are normalized
// before the cache key is built.
func (s *Service) ProductAnalysis(ctx context.Context, version string, topN int, sortBy string) (*contracts.ProductAnalysis, error) {
	if topN <= 0 {
		topN = analytics.DefaultTopN
	}
	sortBy = analytics.NormalizeSortKey(sortBy)

	params := []string{strconv.Itoa(topN), sortBy}
	return cached(ctx, s, ReportProductAnalysis, version, params, func(ds *contracts.Dataset, _ string) contracts.ProductAnalysis {
		return analytics.ProductAnalysis(ds, topN, sortBy)
	})
}

// CustomerProfile returns age stats, gender mix and top customers
func (s *Service) CustomerProfile(ctx context.Context, version string) (*contracts.CustomerProfile, error) {
	return cached(ctx, s, ReportCustomerProfile, version, nil, func(ds *contracts.Dataset, _ string) contracts.CustomerProfile {
		return analytics.CustomerProfile(ds)
	})
}

// FinancialMetrics returns the revenue / cost / profit figures
func (s *Service) FinancialMetrics(ctx context.Context, version string) (*contracts.FinancialMetrics, error) {
	return cached(ctx, s, ReportFinancialMetrics, version, nil, func(ds *contracts.Dataset, _ string) contracts.FinancialMetrics {
		return analytics.FinancialMetrics(ds)
	})
}

// Warm computes every report with default params for a version ("" is
// latest) so the first reader hits the cache
func (s *Service) Warm(ctx context.Context, version string) (string, error) {
	resolved, err := s.ResolveVersion(ctx, version)
	if err != nil {
		return "", err
	}

	for _, name := range Names {
		if _, err := s.Build(ctx, name, resolved, Params{}); err != nil {
			return resolved, fmt.Errorf("warm %s: %w", name, err)
		}
	}

	s.logger.WithField("version", resolved).Debug("Report cache warmed")
	return resolved, nil
}

// cached resolves the version, then serves the report from cache or builds
// it from the stored dataset
func cached[T any](ctx context.Context, s *Service, report, version string, params []string, build func(*contracts.Dataset, string) T) (*T, error) {
	resolved, err := s.ResolveVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	var out T
	key := redis.ReportKey(report, resolved, params...)
	_, err = s.cache.GetOrSet(ctx, key, &out, s.ttl, func() (interface{}, error) {
		ds, err := s.dataset(ctx, resolved)
		if err != nil {
			return nil, err
		}
		return build(ds, resolved), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// dataset loads a version, reusing the last one loaded
func (s *Service) dataset(ctx context.Context, version string) (*contracts.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastDS != nil && s.lastID == version {
		return s.lastDS, nil
	}

	ds, err := s.store.Get(ctx, version)
	if err != nil {
		return nil, err
	}

	s.lastID, s.lastDS = version, ds
	s.loadCount++
	return ds, nil
}
