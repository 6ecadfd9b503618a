package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/jobpress/internal/model"
)

// HostRateLimiter enforces a minimum delay between requests to the same host.
type HostRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: lower-cased host
	minDelay time.Duration
}

// NewHostRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same host.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to host.
// The slot is reserved before sleeping, so concurrent callers for one host
// queue up minDelay apart.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	now := time.Now()
	next := now
	if last, ok := r.lastCall[host]; ok {
		if earliest := last.Add(r.minDelay); earliest.After(now) {
			next = earliest
		}
	}
	r.lastCall[host] = next
	r.mu.Unlock()

	remaining := next.Sub(now)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-timer.C:
	}
	return nil
}

// RateLimitedFetcher is a decorator that waits on a shared per-host limiter
// before delegating to the wrapped SourceFetcher.
type RateLimitedFetcher struct {
	inner   model.SourceFetcher
	limiter *HostRateLimiter
}

// NewRateLimitedFetcher wraps a SourceFetcher with per-host rate limiting.
func NewRateLimitedFetcher(inner model.SourceFetcher, limiter *HostRateLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{inner: inner, limiter: limiter}
}

// Fetch waits for the rate limiter to allow a request to the URL's host,
// then delegates to the wrapped fetcher.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	if err := f.limiter.Wait(ctx, hostOf(rawURL)); err != nil {
		return model.Page{}, err
	}
	return f.inner.Fetch(ctx, rawURL)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
