package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salesdesk/backend/internal/contracts"
	"github.com/wonny/salesdesk/backend/internal/store"
	"github.com/wonny/salesdesk/backend/pkg/config"
	"github.com/wonny/salesdesk/backend/pkg/logger"
	"github.com/wonny/salesdesk/backend/pkg/redis"
)

func newService(t *testing.T, s store.Store) *Service {
	t.Helper()

	cfg := &config.Config{Env: "test", LogLevel: "error"}
	client, err := redis.New(cfg)
	require.NoError(t, err)

	return NewService(s, redis.NewCache(client, "test"), time.Minute, logger.New(cfg))
}

func put(t *testing.T, s store.Store, records ...contracts.Record) string {
	t.Helper()

	version := store.NewVersionID()
	meta := contracts.DatasetVersion{ID: version, CreatedAt: time.Now(), Rows: len(records)}
	require.NoError(t, s.Put(context.Background(), meta, contracts.NewDataset(records)))
	return version
}

func sale(id, product string, value, qty float64) contracts.Record {
	return contracts.Record{
		TransactionID: id,
		FinalValue:    contracts.Num(value),
		Quantity:      contracts.Num(qty),
		UnitPrice:     contracts.Num(value / qty),
		ProfitMargin:  contracts.Num(0.5),
		CustomerID:    "C-" + id,
		CustomerAge:   contracts.Num(30),
		Gender:        "F",
		ProductID:     product,
		ProductName:   "produto " + product,
		Region:        "Sul",
	}
}

func TestService_DefaultsToLatestVersion(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newService(t, s)
	ctx := context.Background()

	first := put(t, s, sale("T1", "P1", 100, 1))
	second := put(t, s, sale("T1", "P1", 10, 1), sale("T2", "P2", 20, 2))

	summary, err := svc.SalesSummary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, second, summary.Version)
	assert.Equal(t, 30.0, summary.Revenue)
	assert.Equal(t, int64(3), summary.TotalItems)

	older, err := svc.SalesSummary(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, older.Version)
	assert.Equal(t, 100.0, older.Revenue)
}

func TestService_Errors(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newService(t, s)
	ctx := context.Background()

	_, err := svc.FinancialMetrics(ctx, "")
	assert.ErrorIs(t, err, store.ErrNoData)

	put(t, s, sale("T1", "P1", 100, 1))

	_, err = svc.RegionalPerformance(ctx, store.NewVersionID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Build(ctx, "weekly-forecast", "", Params{})
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestService_ProductAnalysisParams(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newService(t, s)
	ctx := context.Background()

	version := put(t, s,
		sale("T1", "P1", 100, 1),
		sale("T2", "P2", 50, 5),
		sale("T3", "P3", 75, 2),
	)

	byUnits, err := svc.ProductAnalysis(ctx, version, 2, contracts.SortByUnitsSold)
	require.NoError(t, err)
	require.Len(t, byUnits.Products, 2)
	assert.Equal(t, "P2", byUnits.Products[0].ProductID)
	assert.Equal(t, "P3", byUnits.Products[1].ProductID)

	fallback, err := svc.ProductAnalysis(ctx, version, 0, "bogus")
	require.NoError(t, err)
	require.Len(t, fallback.Products, 3)
	assert.Equal(t, "P1", fallback.Products[0].ProductID)
}

func TestService_BuildEveryReport(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newService(t, s)
	ctx := context.Background()

	version := put(t, s, sale("T1", "P1", 100, 1), sale("T2", "P2", 50, 5))

	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			report, err := svc.Build(ctx, name, version, Params{})
			require.NoError(t, err)
			assert.NotNil(t, report)
		})
	}

	profile, err := svc.CustomerProfile(ctx, version)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Gender["F"])
	require.NotNil(t, profile.AgeStats)
	assert.Equal(t, 2, profile.AgeStats.Count)
}

func TestService_WarmLoadsDatasetOnce(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newService(t, s)
	ctx := context.Background()

	version := put(t, s, sale("T1", "P1", 100, 1))

	warmed, err := svc.Warm(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, version, warmed)
	assert.Equal(t, 1, svc.loadCount)

	_, err = svc.SalesSummary(ctx, version)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.loadCount)
}

func TestService_WarmWithoutData(t *testing.T) {
	svc := newService(t, store.NewMemoryStore())

	_, err := svc.Warm(context.Background(), "")
	assert.ErrorIs(t, err, store.ErrNoData)
}
