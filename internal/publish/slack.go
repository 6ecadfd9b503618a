package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobpress/internal/model"
)

// Ensure SlackPublisher implements model.Publisher.
var _ model.Publisher = (*SlackPublisher)(nil)

// excerptRunes keeps the section block under Slack's 3000 character limit.
const excerptRunes = 2800

// SlackPublisher announces generated articles in a Slack channel via
// Incoming Webhooks.
type SlackPublisher struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackPublisher returns a publisher that posts each document to Slack.
func NewSlackPublisher(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackPublisher {
	return &SlackPublisher{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Publish sends one Block Kit message for doc. A 429 is retried once after
// the advertised Retry-After delay.
func (s *SlackPublisher) Publish(ctx context.Context, doc *model.Document) error {
	body, err := json.Marshal(buildPayload(doc))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "topic", doc.Topic, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "topic", doc.Topic)
	return nil
}

func (s *SlackPublisher) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildPayload(doc *model.Document) slackPayload {
	missing := "None"
	if len(doc.Missing) > 0 {
		missing = strings.Join(doc.Missing, ", ")
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "📰 " + doc.Topic},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Layout:*\n" + doc.Layout},
				{Type: "mrkdwn", Text: "*Run:*\n" + doc.RunID},
			},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Missing fields:* " + missing},
		},
	}

	if len(doc.Failures) > 0 {
		var urls []string
		for _, f := range doc.Failures {
			urls = append(urls, "• "+f.URL+" ("+f.Reason+")")
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Failed sources:*\n" + strings.Join(urls, "\n")},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "```" + excerpt(doc.Markdown, excerptRunes) + "```"},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}

func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
