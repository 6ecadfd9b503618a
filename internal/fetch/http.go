// Package fetch retrieves source pages over HTTP and decodes them to UTF-8.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/amishk599/jobpress/internal/model"
)

const (
	DefaultMaxBytes  = 5 << 20
	defaultUserAgent = "jobpress/1.0 (+https://github.com/amishk599/jobpress)"
)

var textTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/plain":            true,
	"text/markdown":         true,
	"text/x-markdown":       true,
}

// HTTPFetcher fetches a single URL with the given client. Timeouts come from
// the caller's context and the client.
type HTTPFetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewHTTPFetcher creates a fetcher. maxBytes <= 0 uses DefaultMaxBytes and an
// empty userAgent uses the built-in one.
func NewHTTPFetcher(client *http.Client, maxBytes int64, userAgent string) *HTTPFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{client: client, maxBytes: maxBytes, userAgent: userAgent}
}

// Fetch retrieves url. Non-2xx responses come back as *model.HTTPError so
// the retry decorator can classify them; non-text bodies as
// model.ErrUnsupportedContent.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Page{}, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := "text/html"
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return model.Page{}, fmt.Errorf("fetch %s: %w: %q", url, model.ErrUnsupportedContent, contentType)
		}
		mediaType = mt
	}
	if !textTypes[mediaType] {
		return model.Page{}, fmt.Errorf("fetch %s: %w: %s", url, model.ErrUnsupportedContent, mediaType)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), contentType)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: decode: %w", url, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: read body: %w", url, err)
	}

	return model.Page{URL: url, ContentType: mediaType, Body: string(data)}, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// NewClient returns an HTTP client with the given overall timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
