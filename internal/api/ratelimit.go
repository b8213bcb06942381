package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/salesdesk/backend/pkg/logger"
	"github.com/wonny/salesdesk/backend/pkg/redis"
)

// UploadLimiter throttles uploads per client address.
// With redis enabled the budget is shared across instances via a sliding
// window; otherwise each process keeps token buckets in memory.
type UploadLimiter struct {
	perMinute int
	shared    *redis.RateLimiter
	logger    *logger.Logger

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewUploadLimiter creates a limiter; perMinute <= 0 disables throttling
func NewUploadLimiter(perMinute int, client *redis.Client, log *logger.Logger) *UploadLimiter {
	l := &UploadLimiter{
		perMinute: perMinute,
		logger:    log,
		buckets:   make(map[string]*rate.Limiter),
	}
	if client != nil && client.Enabled() {
		l.shared = redis.NewRateLimiter(client, "salesdesk")
	}
	return l
}

// Allow reports whether another upload from client fits the budget
func (l *UploadLimiter) Allow(r *http.Request, client string) bool {
	if l.perMinute <= 0 {
		return true
	}

	if l.shared != nil {
		allowed, _, err := l.shared.Allow(r.Context(), redis.UploadRateLimit(client, l.perMinute))
		if err == nil {
			return allowed
		}
		// redis 장애 시 로컬 버킷으로 대체
		l.logger.WithError(err).Warn("Shared rate limit unavailable, using local limiter")
	}

	return l.bucket(client).Allow()
}

func (l *UploadLimiter) bucket(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[client]
	if !ok {
		b = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.buckets[client] = b
	}
	return b
}

// Middleware rejects over-budget requests with 429
func (l *UploadLimiter) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddr(r)
			if !l.Allow(r, client) {
				l.logger.WithField("client", client).Warn("Upload rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(60))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "Too many uploads, try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr returns the remote host without port
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
