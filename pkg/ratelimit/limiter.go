package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore holds one shared rate limiter per external source id. Every
// collector for a source coordinates against the same limiter, so a
// heavily-quota-limited source throttles only its own collectors.
type LimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	fallback rate.Limit
	burst    int
}

func NewLimiterStore(fallbackPerMinute int) *LimiterStore {
	return &LimiterStore{
		limiters: make(map[string]*rate.Limiter),
		fallback: perMinute(fallbackPerMinute),
		burst:    1,
	}
}

// Register installs a limiter for the given source with its own budget.
func (s *LimiterStore) Register(key string, requestsPerMinute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[key] = rate.NewLimiter(perMinute(requestsPerMinute), s.burst)
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists := s.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(s.fallback, s.burst)
	s.limiters[key] = limiter
	return limiter
}

func perMinute(requests int) rate.Limit {
	if requests <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(requests))
}
