package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, RateLimitInfo, error)
}

// RateLimitInfo describes the caller's current budget.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// KeyFunc extracts the rate limit key; defaults to owner, then client IP.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
}

func defaultKeyFunc(r *http.Request) string {
	if owner := ContextGetOwner(r.Context()); owner != "" && owner != AnonymousOwner {
		return "owner:" + owner
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis fixed window
// ─────────────────────────────────────────────────────────────────────────────

// RedisWindowLimiter counts requests per key in fixed windows shared by all
// API server replicas.
type RedisWindowLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisWindowLimiter allows limit requests per window for each key.
func NewRedisWindowLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisWindowLimiter {
	return &RedisWindowLimiter{rdb: rdb, limit: limit, window: window, prefix: "labelscan:ratelimit:", now: time.Now}
}

// Allow implements RateLimiter.
func (l *RedisWindowLimiter) Allow(ctx context.Context, key string) (bool, RateLimitInfo, error) {
	k := l.prefix + key
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return true, RateLimitInfo{Limit: l.limit, Remaining: l.limit}, err
	}
	ttl, err := l.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return true, RateLimitInfo{Limit: l.limit, Remaining: l.limit}, err
	}
	// A key without expiry is a fresh window or one whose PEXPIRE was lost.
	if ttl < 0 {
		if err := l.rdb.PExpire(ctx, k, l.window).Err(); err != nil {
			return true, RateLimitInfo{Limit: l.limit, Remaining: l.limit}, err
		}
		ttl = l.window
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	info := RateLimitInfo{Limit: l.limit, Remaining: remaining, ResetAt: l.now().Add(ttl)}
	return int(count) <= l.limit, info, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory token bucket
// ─────────────────────────────────────────────────────────────────────────────

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter is a per-process limiter used when Redis is not
// configured.
type TokenBucketLimiter struct {
	rate    float64
	burst   int
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	now     func() time.Time
}

// NewTokenBucketLimiter refills rate tokens per second up to burst.
func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{rate: rate, burst: burst, buckets: make(map[string]*tokenBucket), now: time.Now}
}

// Allow implements RateLimiter.
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, RateLimitInfo, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
		l.buckets[key] = b
	}
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastRefill = now

	info := RateLimitInfo{Limit: l.burst, ResetAt: now.Add(time.Duration(float64(time.Second) / l.rate))}
	if b.tokens >= 1 {
		b.tokens--
		info.Remaining = int(b.tokens)
		return true, info, nil
	}
	return false, info, nil
}

// Prune drops buckets idle for longer than idle.
func (l *TokenBucketLimiter) Prune(idle time.Duration) int {
	threshold := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, b := range l.buckets {
		if b.lastRefill.Before(threshold) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// RateLimit returns middleware that enforces limiter.  Limiter failures let
// the request through.
func RateLimit(limiter RateLimiter, config RateLimitConfig, logger logging.Logger) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info, err := limiter.Allow(r.Context(), keyFunc(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", logging.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(info.ResetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"COMMON_007","message":"rate limit exceeded"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
