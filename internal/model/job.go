package model

import (
	"context"
	"strings"
	"time"
)

// JobDescriptor is the input for one article generation. It is consumed once
// by the pipeline and never persisted.
type JobDescriptor struct {
	Topic  string   // free-text title of the posting, required
	Text   string   // pasted source text
	URLs   []string // source pages to fetch
	Layout string   // layout name; empty means the configured default
}

// Validate checks the descriptor has a topic and at least one source.
func (j JobDescriptor) Validate() error {
	if strings.TrimSpace(j.Topic) == "" {
		return &InvalidJobError{Reason: "topic is required"}
	}
	if strings.TrimSpace(j.Text) == "" && len(j.nonEmptyURLs()) == 0 {
		return &InvalidJobError{Reason: "pasted text or at least one source URL is required"}
	}
	return nil
}

// SourceURLs returns the trimmed, non-empty URLs in input order.
func (j JobDescriptor) SourceURLs() []string {
	return j.nonEmptyURLs()
}

func (j JobDescriptor) nonEmptyURLs() []string {
	var urls []string
	for _, u := range j.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Page is the raw body of one fetched source.
type Page struct {
	URL         string
	ContentType string
	Body        string // decoded to UTF-8
}

// IsHTML reports whether the page should be parsed as markup.
func (p Page) IsHTML() bool {
	return p.ContentType == "" || strings.Contains(p.ContentType, "html")
}

// SourceFetcher retrieves a single source URL.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Rephraser rewrites verified free text for tone. Implementations must not be
// trusted with numbers; callers verify the output.
type Rephraser interface {
	Rephrase(ctx context.Context, field, text string) (string, error)
}

// Document is the rendered article plus a transparency report.
type Document struct {
	RunID     string
	Topic     string
	Layout    string
	Markdown  string
	Missing   []string      // referenced fields rendered as the placeholder
	Failures  []*FetchError // sources that could not be fetched
	Truncated bool          // normalized input was cut at the character limit
	Fields    []FieldRecord // extraction report in schema order
}

// Publisher delivers a rendered document somewhere (log, file, webhook).
type Publisher interface {
	Publish(ctx context.Context, doc *Document) error
}

// Article is an archived document.
type Article struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Layout    string    `json:"layout"`
	Markdown  string    `json:"markdown"`
	Missing   []string  `json:"missing"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleStore archives generated documents keyed by run ID.
type ArticleStore interface {
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Article, error)
	List(ctx context.Context, limit int) ([]*Article, error)
}
