package publish

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobpress/internal/model"
)

// Ensure LogPublisher implements model.Publisher.
var _ model.Publisher = (*LogPublisher)(nil)

// LogPublisher writes a one-line summary of each article to the given logger.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher that logs each document via slog.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs topic, layout, run ID and the missing-field report.
// Returns nil (logging does not fail).
func (p *LogPublisher) Publish(_ context.Context, doc *model.Document) error {
	args := []any{
		"run_id", doc.RunID,
		"topic", doc.Topic,
		"layout", doc.Layout,
		"chars", utf8.RuneCountInString(doc.Markdown),
		"missing", len(doc.Missing),
	}
	if len(doc.Missing) > 0 {
		args = append(args, "missing_fields", strings.Join(doc.Missing, ","))
	}
	if len(doc.Failures) > 0 {
		args = append(args, "failed_sources", len(doc.Failures))
	}
	p.logger.Info("article published", args...)
	return nil
}
