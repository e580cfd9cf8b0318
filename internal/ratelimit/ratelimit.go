// Package ratelimit throttles outgoing requests to external services.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Service identifies an external service for rate limiting purposes.
type Service string

const (
	// ServiceWebSearch is the web search API.
	ServiceWebSearch Service = "websearch"
	// ServiceDownload is PDF downloads from label sites.
	ServiceDownload Service = "download"
	// ServiceLandingPage is HTML landing page fetches.
	ServiceLandingPage Service = "landing_page"
)

// defaultBackoff applies when a 429 carries no Retry-After.
const defaultBackoff = 30 * time.Second

// Config holds rate limiting configuration for a service.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultLimits provides conservative defaults for each service.
// Label archives are small sites and are throttled hardest.
var DefaultLimits = map[Service]Config{
	ServiceWebSearch:   {RequestsPerSecond: 10.0, BurstSize: 10},
	ServiceDownload:    {RequestsPerSecond: 2.0, BurstSize: 3},
	ServiceLandingPage: {RequestsPerSecond: 2.0, BurstSize: 3},
}

// Limiter is a token bucket with an extra backoff window set by 429
// responses.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service Service
}

// New creates a limiter for the service using DefaultLimits.
func New(service Service) *Limiter {
	cfg, ok := DefaultLimits[service]
	if !ok {
		cfg = Config{RequestsPerSecond: 5.0, BurstSize: 5}
	}
	l := NewWithConfig(cfg)
	l.service = service
	return l
}

// NewWithConfig creates a limiter with custom configuration. A
// non-positive rate disables throttling.
func NewWithConfig(cfg Config) *Limiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Service returns the service the limiter was created for.
func (l *Limiter) Service() Service {
	return l.service
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimited.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimited sets a backoff window after a 429 response.
func (l *Limiter) RecordRateLimited(retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	l.retryAt = time.Now().Add(retryAfter)
}

// Allow reports whether a request can be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}
