package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockProvider struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (m *mockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.reply, m.err
}

func TestRephrase_PromptCarriesFieldAndText(t *testing.T) {
	p := &mockProvider{reply: "10वीं पास उम्मीदवार आवेदन कर सकते हैं"}
	r := NewLLMRephraser(p, RephraseTemplate, discardLogger())

	got, err := r.Rephrase(context.Background(), "eligibility", "Candidates must have passed 10th.")
	if err != nil {
		t.Fatalf("Rephrase: %v", err)
	}
	if got != "10वीं पास उम्मीदवार आवेदन कर सकते हैं" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(p.prompt, "Section: eligibility") {
		t.Error("prompt lacks the field name")
	}
	if !strings.Contains(p.prompt, "Candidates must have passed 10th.") {
		t.Error("prompt lacks the source text")
	}
}

func TestRephrase_BlankTextSkipsProvider(t *testing.T) {
	p := &mockProvider{reply: "should not be used"}
	r := NewLLMRephraser(p, RephraseTemplate, discardLogger())

	got, err := r.Rephrase(context.Background(), "eligibility", "   ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "   " || p.calls != 0 {
		t.Errorf("got %q after %d calls", got, p.calls)
	}
}

func TestRephrase_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewLLMRephraser(&mockProvider{err: boom}, RephraseTemplate, discardLogger())

	_, err := r.Rephrase(context.Background(), "eligibility", "10th pass")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestCleanReply(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"  padded\n", "padded"},
		{"\"quoted reply\"", "quoted reply"},
		{"```\nfenced\nreply\n```", "fenced reply"},
		{"line one\n\nline two", "line one line two"},
		{"\"", "\""},
	}
	for _, tt := range tests {
		if got := cleanReply(tt.in); got != tt.want {
			t.Errorf("cleanReply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNopRephraser_ReturnsInput(t *testing.T) {
	got, err := NewNopRephraser().Rephrase(context.Background(), "eligibility", "10th pass")
	if err != nil || got != "10th pass" {
		t.Errorf("got %q, %v", got, err)
	}
}

type fakeModel struct {
	opts   llms.CallOptions
	prompt string
	reply  string
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, o := range options {
		o(&f.opts)
	}
	if len(msgs) > 0 && len(msgs[0].Parts) > 0 {
		if tc, ok := msgs[0].Parts[0].(llms.TextContent); ok {
			f.prompt = tc.Text
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGoogleAIProvider_Complete(t *testing.T) {
	m := &fakeModel{reply: "ok"}
	p := &GoogleAIProvider{client: m, temperature: 0.3}

	got, err := p.Complete(context.Background(), "rephrase this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "ok" || m.prompt != "rephrase this" {
		t.Errorf("got %q for prompt %q", got, m.prompt)
	}
	if m.opts.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", m.opts.Temperature)
	}
}
