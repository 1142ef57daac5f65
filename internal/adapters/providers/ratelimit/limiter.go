package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"sibyl/pkg/errors"
)

// Limiter throttles request rate against one external data provider
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a new rate limiter
// requestsPerMinute: maximum number of requests allowed per minute
func NewLimiter(name string, requestsPerMinute int) *Limiter {
	// Convert to requests per second
	rps := float64(requestsPerMinute) / 60.0

	// Allow burst of 10% of per-minute limit
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows the request
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "rate limiter %s", l.name)
	}
	return nil
}

// Allow checks if a request is allowed without blocking
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// MultiLimiter holds one limiter per provider
type MultiLimiter struct {
	limiters map[string]*Limiter
	mu       sync.RWMutex
}

// NewMultiLimiter creates an empty multi-limiter
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*Limiter),
	}
}

// Add registers a rate limiter for a provider
func (m *MultiLimiter) Add(provider string, limiter *Limiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[provider] = limiter
}

// Wait blocks on the provider's limiter. Unknown providers pass through
// unthrottled.
func (m *MultiLimiter) Wait(ctx context.Context, provider string) error {
	m.mu.RLock()
	limiter, ok := m.limiters[provider]
	m.mu.RUnlock()

	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
