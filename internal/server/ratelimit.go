package server

import (
	"fmt"
	"sync"
	"time"

	"AIFitnessCoach/internal/config"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client IP. The least recently seen
// clients are evicted once MaxClients is reached.
type rateLimiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	every   rate.Limit
	burst   int
}

// newRateLimiter returns nil when cfg.PerMinute is 0.
func newRateLimiter(cfg config.RateLimitConfig) (*rateLimiter, error) {
	if cfg.PerMinute <= 0 {
		return nil, nil
	}

	size := cfg.MaxClients
	if size <= 0 {
		size = 10000
	}
	buckets, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter cache: %w", err)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &rateLimiter{
		buckets: buckets,
		every:   rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:   burst,
	}, nil
}

// Allow consumes one token for key. A nil limiter allows everything.
func (l *rateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = rate.NewLimiter(l.every, l.burst)
		l.buckets.Add(key, bucket)
	}
	l.mu.Unlock()

	return bucket.Allow()
}
