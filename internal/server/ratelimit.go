package server

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter applies a token bucket per tool
type RateLimiter struct {
	limiters map[string]*toolLimiter
	perSec   float64
	burst    int
	mu       sync.RWMutex
}

type toolLimiter struct {
	limiter  *rate.Limiter
	allowed  int64
	rejected int64
	mu       sync.Mutex
}

// RateLimitStatus holds the state of one tool's bucket
type RateLimitStatus struct {
	Tool      string  `json:"tool"`
	Unlimited bool    `json:"unlimited,omitempty"`
	Limit     float64 `json:"limit"` // Calls per second
	Burst     int     `json:"burst"`
	Tokens    float64 `json:"tokens"`
	Allowed   int64   `json:"allowed"`
	Rejected  int64   `json:"rejected"`
}

// NewRateLimiter creates a limiter granting perSecond calls per tool with the
// given burst. A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*toolLimiter),
		perSec:   perSecond,
		burst:    max(1, burst),
	}
}

// Register creates the bucket for tool
func (r *RateLimiter) Register(tool string) {
	if r.perSec <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.limiters[tool] = &toolLimiter{
		limiter: rate.NewLimiter(rate.Limit(r.perSec), r.burst),
	}
}

// Allow reports whether a call to tool may proceed now
func (r *RateLimiter) Allow(tool string) bool {
	limiter := r.getLimiter(tool)
	if limiter == nil {
		return true // No limit configured
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	if limiter.limiter.Allow() {
		limiter.allowed++
		return true
	}
	limiter.rejected++
	return false
}

// Wait blocks until a call to tool is allowed
func (r *RateLimiter) Wait(ctx context.Context, tool string) error {
	limiter := r.getLimiter(tool)
	if limiter == nil {
		return nil
	}

	if err := limiter.limiter.Wait(ctx); err != nil {
		return err
	}
	limiter.mu.Lock()
	limiter.allowed++
	limiter.mu.Unlock()
	return nil
}

// Status returns the bucket state for tool
func (r *RateLimiter) Status(tool string) *RateLimitStatus {
	limiter := r.getLimiter(tool)
	if limiter == nil {
		return &RateLimitStatus{Tool: tool, Unlimited: true}
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return &RateLimitStatus{
		Tool:     tool,
		Limit:    float64(limiter.limiter.Limit()),
		Burst:    limiter.limiter.Burst(),
		Tokens:   limiter.limiter.Tokens(),
		Allowed:  limiter.allowed,
		Rejected: limiter.rejected,
	}
}

func (r *RateLimiter) getLimiter(tool string) *toolLimiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiters[tool]
}
