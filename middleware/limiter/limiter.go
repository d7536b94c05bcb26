package limiter

import (
	"errors"
	"sync"
	"time"

	"github.com/sweetpotato0/ai-claims/middleware"
)

var (
	// ErrRateLimitExceeded indicates rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimiter admits at most maxRequests runs per fixed window.
type RateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	windowStart time.Time
	counter     int
	now         func() time.Time
}

// NewRateLimiter creates a rate limiting middleware. A non-positive window
// never resets.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{maxRequests: maxRequests, window: window, now: time.Now}
}

// Name returns the middleware name
func (m *RateLimiter) Name() string {
	return "RateLimiter"
}

// Execute checks rate limit
func (m *RateLimiter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if !m.allow() {
		return ErrRateLimitExceeded
	}
	return next(ctx)
}

func (m *RateLimiter) allow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.window > 0 && now.Sub(m.windowStart) >= m.window {
		m.windowStart = now
		m.counter = 0
	}
	if m.counter >= m.maxRequests {
		return false
	}
	m.counter++
	return true
}

// Reset resets the rate limiter counter
func (m *RateLimiter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter = 0
	m.windowStart = m.now()
}

// Counter returns the number of runs admitted in the current window.
func (m *RateLimiter) Counter() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter
}
