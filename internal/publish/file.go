package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/amishk599/jobpress/internal/model"
)

var _ model.Publisher = (*FilePublisher)(nil)

// FilePublisher writes each article to <dir>/<slug>.md, replacing any earlier
// article with the same topic.
type FilePublisher struct {
	dir    string
	logger *slog.Logger
}

// NewFilePublisher returns a publisher that writes Markdown files into dir.
// The directory is created on first use.
func NewFilePublisher(dir string, logger *slog.Logger) *FilePublisher {
	return &FilePublisher{dir: dir, logger: logger}
}

// Publish writes doc atomically through a temp file in the target directory.
func (p *FilePublisher) Publish(_ context.Context, doc *model.Document) error {
	path := p.Path(doc)
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(p.dir, ".jobpress-*.md")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.WriteString(doc.Markdown); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	p.logger.Info("article written", "path", path, "run_id", doc.RunID)
	return nil
}

// Path returns where doc will be written: <topic-slug>-<layout>.md in the
// publisher's directory.
func (p *FilePublisher) Path(doc *model.Document) string {
	name := Slug(doc.Topic)
	if name == "" {
		name = doc.RunID
	}
	if layout := Slug(doc.Layout); layout != "" {
		name += "-" + layout
	}
	return filepath.Join(p.dir, name+".md")
}

// Slug lowercases topic and joins its letter and digit runs with hyphens.
// Non-Latin letters are kept.
func Slug(topic string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
