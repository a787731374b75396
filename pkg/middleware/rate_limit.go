package middleware

import (
	"context"
	"net/http"
	apperrors "padelhub/pkg/errors"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyExtractor returns the identity a request is limited by. An empty key
// is not limited.
type KeyExtractor func(r *http.Request) string

func UserIDExtractor(r *http.Request) string {
	return r.Header.Get(httputil.HeaderUserID)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
	Stop()
}

// NewRateLimiter uses a Redis fixed window shared by all replicas when rdb
// is set, and a per-process sliding window otherwise.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, log *logger.Logger) RateLimiter {
	if rdb == nil {
		return NewSlidingWindowLimiter(limit, window)
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, log: log}
}

type SlidingWindowLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	stopCh   chan struct{}
	once     sync.Once
}

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	limiter := &SlidingWindowLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *SlidingWindowLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *SlidingWindowLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *SlidingWindowLimiter) Allow(_ context.Context, key string) bool {
	if key == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	log    *logger.Logger
}

// Allow counts requests per key in fixed windows. Redis errors fail open.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}

	bucket := time.Now().UnixNano() / int64(rl.window)
	redisKey := "padelhub:ratelimit:" + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		rl.log.Warn("Rate limiter unavailable, allowing request", "error", err)
		return true
	}
	return incr.Val() <= int64(rl.limit)
}

func (rl *RedisRateLimiter) Stop() {}

func RateLimit(limiter RateLimiter, extract KeyExtractor, log *logger.Logger) func(http.Handler) http.Handler {
	if extract == nil {
		extract = UserIDExtractor
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extract(r)
			if key == "" || limiter.Allow(r.Context(), key) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("Rate limit exceeded",
				"request_id", requestIDFrom(r),
				"key", key,
				"path", r.URL.Path,
			)
			appErr := apperrors.New("RATE_LIMITED", "Rate limit exceeded", http.StatusTooManyRequests)
			if err := httputil.WriteError(w, appErr); err != nil {
				log.Error("failed to write error response", "middleware", "RateLimit", "error", err)
			}
		})
	}
}
