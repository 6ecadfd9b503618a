// Package retry re-attempts source fetches that failed for transient reasons.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobpress/internal/model"
)

// MaxDelay caps any single wait, including one requested by Retry-After.
const MaxDelay = 30 * time.Second

// RetryFetcher is a decorator that retries transient source fetch failures
// with exponential backoff and jitter.
type RetryFetcher struct {
	inner      model.SourceFetcher
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryFetcher wraps a SourceFetcher with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryFetcher(inner model.SourceFetcher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Fetch retrieves url. Permanent failures and the last transient failure are
// returned unchanged so callers can still classify them.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (model.Page, error) {
	for attempt := 0; ; attempt++ {
		page, err := f.inner.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if attempt == f.maxRetries || !isRetryable(err) {
			return model.Page{}, err
		}

		delay := f.backoffDelay(attempt+1, err)
		f.logger.Warn("source fetch failed, retrying",
			"url", url,
			"attempt", attempt+1,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", err,
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return model.Page{}, fmt.Errorf("retry %s: %w", url, ctx.Err())
		case <-t.C:
		}
	}
}

// backoffDelay is baseDelay doubled per attempt with ±30% jitter. A
// Retry-After from the server replaces the computed delay. Both are capped
// at MaxDelay.
func (f *RetryFetcher) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, MaxDelay)
	}

	delay := f.baseDelay << (attempt - 1)
	jitter := (rand.Float64()*0.6 - 0.3) * float64(delay)
	return min(delay+time.Duration(jitter), MaxDelay)
}

func isRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, model.ErrUnsupportedContent):
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	// Network and DNS errors.
	return true
}
