package fetcher

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limit is a token bucket setting for one upstream host.
type Limit struct {
	PerSecond float64
	Burst     int
}

// AdaptiveLimiter wraps a token bucket that backs off on 429 responses.
// A 429 halves the rate (down to a quarter of the initial rate); each
// success raises it by 10% up to the initial rate. Upstream limits are hard
// caps, so the limiter never runs above the configured rate.
type AdaptiveLimiter struct {
	host string

	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates a limiter for host.
func NewAdaptiveLimiter(host string, l Limit) *AdaptiveLimiter {
	if l.PerSecond <= 0 {
		l.PerSecond = 1
	}
	if l.Burst <= 0 {
		l.Burst = 1
	}
	r := rate.Limit(l.PerSecond)
	return &AdaptiveLimiter{
		host:        host,
		limiter:     rate.NewLimiter(r, l.Burst),
		initialRate: r,
		minRate:     r / 4,
		currentRate: r,
	}
}

// Wait blocks until a permit is available or ctx is done. A permit that
// would only arrive after the ctx deadline fails immediately with an error
// wrapping context.DeadlineExceeded.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	err := a.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return eris.Wrapf(context.DeadlineExceeded, "%s: %v", a.host, err)
	}
	return err
}

// OnSuccess nudges the rate back toward the configured rate.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentRate >= a.initialRate {
		return
	}
	next := a.currentRate * 1.1
	if next > a.initialRate {
		next = a.initialRate
	}
	a.currentRate = next
	a.limiter.SetLimit(next)
}

// OnRateLimit halves the rate after a 429.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.currentRate * 0.5
	if next < a.minRate {
		next = a.minRate
	}
	a.currentRate = next
	a.limiter.SetLimit(next)
	zap.L().Warn("upstream rate limited, reducing request rate",
		zap.String("host", a.host),
		zap.Float64("new_rate", float64(next)),
	)
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}
