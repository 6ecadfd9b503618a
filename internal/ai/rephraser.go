package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
)

// LLMRephraser implements model.Rephraser using an LLM. It only rewords;
// the extractor verifies that the numbers survived.
type LLMRephraser struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMRephraser creates a rephraser backed by provider.
func NewLLMRephraser(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMRephraser {
	return &LLMRephraser{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Rephrase rewrites text for tone. Provider failures are returned as is so
// the caller can fail the request.
func (r *LLMRephraser) Rephrase(ctx context.Context, field, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	var promptBuf bytes.Buffer
	if err := r.tmpl.Execute(&promptBuf, struct{ Field, Text string }{
		Field: field,
		Text:  text,
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	raw, err := r.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	out := cleanReply(raw)
	r.logger.Debug("rephrased", "field", field, "in_chars", len(text), "out_chars", len(out))
	return out, nil
}

// cleanReply flattens the reply to one line and drops wrapping quotes or
// code fences some models add.
func cleanReply(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Join(strings.Fields(s), " ")
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"') {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
