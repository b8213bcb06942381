package redis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wonny/salesdesk/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

// liveClient connects to TEST_REDIS_ADDR (host:port), skipping when unset
func liveClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping integration test")
	}
	host, port, _ := strings.Cut(addr, ":")

	client, err := New(&config.Config{Redis: config.RedisConfig{
		Enabled: true,
		Host:    host,
		Port:    port,
		DB:      15,
	}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() on disabled client = %v", err)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	limit := UploadRateLimit("10.0.0.7", 30)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), limit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != limit.Limit {
		t.Errorf("Expected remaining = %d, got %d", limit.Limit, remaining)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
}

func TestCache_GetOrSetComputesOnMiss(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	type summary struct {
		Revenue float64 `json:"revenue"`
	}

	calls := 0
	var got summary
	hit, err := cache.GetOrSet(context.Background(), "k", &got, TTLMedium, func() (interface{}, error) {
		calls++
		return summary{Revenue: 150}, nil
	})
	if err != nil {
		t.Fatalf("GetOrSet() error = %v", err)
	}
	if hit {
		t.Error("Expected a miss")
	}
	if calls != 1 || got.Revenue != 150 {
		t.Errorf("Expected computed value, got %+v after %d calls", got, calls)
	}

	wantErr := errors.New("boom")
	_, err = cache.GetOrSet(context.Background(), "k", &got, TTLMedium, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected fn error, got %v", err)
	}
}

func TestReportKey(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "no params",
			got:      ReportKey("sales-summary", "abc"),
			expected: "report:abc:sales-summary",
		},
		{
			name:     "with params",
			got:      ReportKey("product-analysis", "abc", "10", "units_sold"),
			expected: "report:abc:product-analysis:10:units_sold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestCache_Live(t *testing.T) {
	client := liveClient(t)
	cache := NewCache(client, "salesdesk-test")
	ctx := context.Background()

	key := ReportKey("sales-summary", time.Now().Format("150405.000"))
	defer cache.Delete(ctx, key)

	var got map[string]float64
	hit, err := cache.GetOrSet(ctx, key, &got, TTLShort, func() (interface{}, error) {
		return map[string]float64{"revenue": 150}, nil
	})
	if err != nil || hit {
		t.Fatalf("first GetOrSet() hit=%v err=%v", hit, err)
	}

	hit, err = cache.GetOrSet(ctx, key, &got, TTLShort, func() (interface{}, error) {
		t.Error("fn must not run on a hit")
		return nil, nil
	})
	if err != nil || !hit {
		t.Fatalf("second GetOrSet() hit=%v err=%v", hit, err)
	}
	if got["revenue"] != 150 {
		t.Errorf("Expected revenue 150, got %v", got["revenue"])
	}
}

func TestRateLimiter_Live(t *testing.T) {
	client := liveClient(t)
	limiter := NewRateLimiter(client, "salesdesk-test")
	ctx := context.Background()

	limit := UploadRateLimit("live-"+time.Now().Format("150405.000"), 2)

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, limit)
		if err != nil || !allowed {
			t.Fatalf("request %d: allowed=%v err=%v", i, allowed, err)
		}
	}

	allowed, remaining, err := limiter.Allow(ctx, limit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed || remaining != 0 {
		t.Errorf("Expected third request to be rejected, allowed=%v remaining=%d", allowed, remaining)
	}
}
