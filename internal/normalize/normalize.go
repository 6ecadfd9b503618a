// Package normalize turns pasted text and fetched pages into the plain text
// the extractor works on.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobpress/internal/model"
)

const (
	DefaultMaxChars = 15000
	DefaultTimeout  = 20 * time.Second

	maxParallelFetches = 4
)

// Options configures a Normalizer. Zero values select the defaults.
type Options struct {
	MaxChars    int           // runes kept after cleanup
	Timeout     time.Duration // per source URL
	Boilerplate []string      // class/id keywords; nil means DefaultBoilerplate
}

// Normalized is the cleaned text of all usable sources.
type Normalized struct {
	Text      string
	Failures  []*model.FetchError
	Truncated bool
}

// Normalizer implements the content normalization stage.
type Normalizer struct {
	fetcher  model.SourceFetcher
	maxChars int
	timeout  time.Duration
	filter   *BoilerplateFilter
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer. fetcher may be nil when only pasted
// text will be normalized; URLs then fail individually.
func NewNormalizer(fetcher model.SourceFetcher, opts Options, logger *slog.Logger) *Normalizer {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Boilerplate == nil {
		opts.Boilerplate = DefaultBoilerplate
	}
	return &Normalizer{
		fetcher:  fetcher,
		maxChars: opts.MaxChars,
		timeout:  opts.Timeout,
		filter:   NewBoilerplateFilter(opts.Boilerplate),
		logger:   logger,
	}
}

// Normalize cleans the pasted text and every source URL of job, in input
// order. Failed URLs are reported in Failures; only when no source yields
// text does it return model.ErrNoContent.
func (n *Normalizer) Normalize(ctx context.Context, job model.JobDescriptor) (*Normalized, error) {
	var parts []string
	if strings.TrimSpace(job.Text) != "" {
		text, err := n.fromPasted(job.Text)
		if err != nil {
			n.logger.Warn("pasted text could not be parsed as HTML, using it verbatim", "error", err)
			text = cleanText(job.Text)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	urls := job.SourceURLs()
	texts := make([]string, len(urls))
	failures := make([]*model.FetchError, len(urls))

	// Sibling fetches never cancel each other, so the group has no context.
	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, u := range urls {
		g.Go(func() error {
			texts[i], failures[i] = n.fromURL(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Normalized{}
	for i := range urls {
		if failures[i] != nil {
			n.logger.Warn("source skipped", "url", urls[i], "reason", failures[i].Reason)
			out.Failures = append(out.Failures, failures[i])
			continue
		}
		parts = append(parts, texts[i])
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %d of %d sources failed", model.ErrNoContent, len(out.Failures), len(urls))
	}

	out.Text, out.Truncated = truncate(strings.Join(parts, "\n\n"), n.maxChars)
	if out.Truncated {
		n.logger.Warn("normalized text truncated", "max_chars", n.maxChars)
	}
	n.logger.Debug("normalized sources",
		"sources", len(parts),
		"failed", len(out.Failures),
		"chars", len([]rune(out.Text)),
	)
	return out, nil
}

func (n *Normalizer) fromPasted(text string) (string, error) {
	if !looksLikeHTML(text) {
		return cleanText(text), nil
	}
	return htmlToText(text, n.filter)
}

func (n *Normalizer) fromURL(ctx context.Context, url string) (string, *model.FetchError) {
	if n.fetcher == nil {
		return "", &model.FetchError{URL: url, Reason: "fetching disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	page, err := n.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", &model.FetchError{URL: url, Reason: failureReason(err), Err: err}
	}

	var text string
	if page.IsHTML() {
		text, err = htmlToText(page.Body, n.filter)
		if err != nil {
			return "", &model.FetchError{URL: url, Reason: "unparseable html", Err: err}
		}
	} else {
		text = cleanText(page.Body)
	}
	if text == "" {
		return "", &model.FetchError{URL: url, Reason: "no readable text"}
	}
	return text, nil
}

func failureReason(err error) string {
	var httpErr *model.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("http status %d", httpErr.StatusCode)
	case errors.Is(err, model.ErrUnsupportedContent):
		return "unsupported content type"
	default:
		return "network error"
	}
}
