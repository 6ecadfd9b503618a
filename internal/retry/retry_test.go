package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobpress/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher calls a function on each invocation, tracking call count.
type mockFetcher struct {
	calls int
	fn    func(attempt int) (model.Page, error)
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (model.Page, error) {
	m.calls++
	return m.fn(m.calls)
}

const testURL = "https://example.gov.in/notice"

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) (model.Page, error) {
		return model.Page{URL: testURL, Body: "ok"}, nil
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rf.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Body != "ok" {
		t.Fatalf("unexpected page: %+v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) (model.Page, error) {
		if attempt == 1 {
			return model.Page{}, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return model.Page{Body: "ok"}, nil
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rf.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Body != "ok" {
		t.Fatalf("unexpected page: %+v", got)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) (model.Page, error) {
		return model.Page{}, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rf.Fetch(context.Background(), testURL)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryUnsupportedContent(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) (model.Page, error) {
		return model.Page{}, fmt.Errorf("fetch %s: %w: application/pdf", testURL, model.ErrUnsupportedContent)
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rf.Fetch(context.Background(), testURL); !errors.Is(err, model.ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) (model.Page, error) {
		return model.Page{}, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rf.Fetch(context.Background(), testURL); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) (model.Page, error) {
		return model.Page{}, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rf := NewRetryFetcher(mock, 2, time.Second, discardLogger())
	_, err := rf.Fetch(ctx, testURL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestBackoffDelay_PrefersRetryAfter(t *testing.T) {
	rf := NewRetryFetcher(nil, 2, time.Second, discardLogger())
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 3 * time.Second}
	if got := rf.backoffDelay(1, err); got != 3*time.Second {
		t.Errorf("delay = %v, want 3s", got)
	}

	// attempt 2 doubles the base delay, then ±30% jitter.
	got := rf.backoffDelay(2, errors.New("dial tcp: connection refused"))
	if got < 1400*time.Millisecond || got > 2600*time.Millisecond {
		t.Errorf("delay = %v, want 2s ±30%%", got)
	}
}

func TestBackoffDelay_Capped(t *testing.T) {
	rf := NewRetryFetcher(nil, 5, 20*time.Second, discardLogger())
	if got := rf.backoffDelay(1, &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour}); got != MaxDelay {
		t.Errorf("Retry-After delay = %v, want %v", got, MaxDelay)
	}
	if got := rf.backoffDelay(4, errors.New("connection reset")); got != MaxDelay {
		t.Errorf("backoff delay = %v, want %v", got, MaxDelay)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429", &model.HTTPError{StatusCode: 429}, true},
		{"503", &model.HTTPError{StatusCode: 503}, true},
		{"404", &model.HTTPError{StatusCode: 404}, false},
		{"wrapped 502", fmt.Errorf("fetch: %w", &model.HTTPError{StatusCode: 502}), true},
		{"pdf", fmt.Errorf("fetch: %w", model.ErrUnsupportedContent), false},
		{"deadline", context.DeadlineExceeded, false},
		{"network", errors.New("dial tcp: no such host"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
