// Package publish delivers generated articles to a log, a directory or Slack.
package publish

import (
	"context"
	"errors"

	"github.com/amishk599/jobpress/internal/model"
)

// SendTestMessage publishes a small sample document to verify the integration works.
func SendTestMessage(ctx context.Context, p model.Publisher) error {
	doc := &model.Document{
		RunID:    "test-001",
		Topic:    "jobpress test article",
		Layout:   "plain",
		Markdown: "# jobpress test article\n\n**Total Posts:** Update Soon\n",
		Missing:  []string{"totalVacancy"},
	}
	return p.Publish(ctx, doc)
}

// Multi publishes to every publisher in order. All publishers are tried;
// their errors are joined.
type Multi []model.Publisher

func (m Multi) Publish(ctx context.Context, doc *model.Document) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
