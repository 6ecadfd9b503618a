package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobpress/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDoc() *model.Document {
	return &model.Document{
		RunID:    "run-123",
		Topic:    "RRB Group D Recruitment 2026",
		Layout:   "sarkari",
		Markdown: "# RRB Group D Recruitment 2026\n\n**Total Posts:** 500\n",
		Missing:  []string{"minimumAge", "maximumAge"},
	}
}

func TestLogPublisher_ReturnsNil(t *testing.T) {
	p := NewLogPublisher(discardLogger())
	if err := p.Publish(context.Background(), sampleDoc()); err != nil {
		t.Errorf("Publish = %v, want nil", err)
	}
	doc := sampleDoc()
	doc.Missing = nil
	doc.Failures = []*model.FetchError{{URL: "https://gone.example/", Reason: "http status 404"}}
	if err := p.Publish(context.Background(), doc); err != nil {
		t.Errorf("Publish = %v, want nil", err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"RRB Group D Recruitment 2026":      "rrb-group-d-recruitment-2026",
		"  SSC CGL -- 2026 (Tier I)  ":      "ssc-cgl-2026-tier-i",
		"UP Police भर्ती 2026":              "up-police-भर्ती-2026",
		"!!!":                               "",
		"Bihar/Jharkhand: 10th & 12th Pass": "bihar-jharkhand-10th-12th-pass",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilePublisher_WritesSluggedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "articles")
	p := NewFilePublisher(dir, discardLogger())
	doc := sampleDoc()

	if err := p.Publish(context.Background(), doc); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	want := filepath.Join(dir, "rrb-group-d-recruitment-2026-sarkari.md")
	if p.Path(doc) != want {
		t.Errorf("Path = %q, want %q", p.Path(doc), want)
	}
	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != doc.Markdown {
		t.Errorf("file content = %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the article in %s, found %d entries", dir, len(entries))
	}
}

func TestFilePublisher_LayoutsDoNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePublisher(dir, discardLogger())

	sarkari := sampleDoc()
	plain := sampleDoc()
	plain.Layout = "plain"
	plain.Markdown = "# plain\n"
	for _, doc := range []*model.Document{sarkari, plain} {
		if err := p.Publish(context.Background(), doc); err != nil {
			t.Fatalf("Publish %s: %v", doc.Layout, err)
		}
	}

	if p.Path(sarkari) == p.Path(plain) {
		t.Fatalf("both layouts map to %s", p.Path(plain))
	}
	for _, doc := range []*model.Document{sarkari, plain} {
		got, err := os.ReadFile(p.Path(doc))
		if err != nil {
			t.Fatalf("read %s: %v", doc.Layout, err)
		}
		if string(got) != doc.Markdown {
			t.Errorf("%s article = %q, want %q", doc.Layout, got, doc.Markdown)
		}
	}
}

func TestFilePublisher_FallsBackToRunID(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePublisher(dir, discardLogger())
	doc := &model.Document{RunID: "run-9", Topic: "???", Markdown: "x\n"}
	if err := p.Publish(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "run-9.md")); err != nil {
		t.Errorf("expected run-9.md: %v", err)
	}
}

func TestSlackPublisher_Payload(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewSlackPublisher(srv.URL, srv.Client(), discardLogger())
	if err := p.Publish(context.Background(), sampleDoc()); err != nil {
		t.Fatalf("Publish() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" || payload.Blocks[0].Text.Text != "📰 RRB Group D Recruitment 2026" {
		t.Errorf("header = %+v", payload.Blocks[0].Text)
	}
	if payload.Blocks[1].Fields[0].Text != "*Layout:*\nsarkari" {
		t.Errorf("layout field = %q", payload.Blocks[1].Fields[0].Text)
	}
	if payload.Blocks[2].Text.Text != "*Missing fields:* minimumAge, maximumAge" {
		t.Errorf("missing report = %q", payload.Blocks[2].Text.Text)
	}
	if !strings.Contains(payload.Blocks[3].Text.Text, "**Total Posts:** 500") {
		t.Errorf("excerpt = %q", payload.Blocks[3].Text.Text)
	}
	if payload.Blocks[4].Type != "divider" {
		t.Errorf("block[4] type = %q, want divider", payload.Blocks[4].Type)
	}
}

func TestSlackPublisher_ReportsFailedSources(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	doc := sampleDoc()
	doc.Failures = []*model.FetchError{{URL: "https://gone.example/", Reason: "http status 404"}}
	if err := NewSlackPublisher(srv.URL, srv.Client(), discardLogger()).Publish(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Blocks) != 6 || !strings.Contains(payload.Blocks[3].Text.Text, "https://gone.example/ (http status 404)") {
		t.Errorf("failed sources block missing: %+v", payload.Blocks)
	}
}

func TestSlackPublisher_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewSlackPublisher(srv.URL, srv.Client(), discardLogger())
	if err := p.Publish(context.Background(), sampleDoc()); err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackPublisher_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	p := NewSlackPublisher(srv.URL, srv.Client(), discardLogger())
	if err := p.Publish(context.Background(), sampleDoc()); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackPublisher_RateLimitWaitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewSlackPublisher(srv.URL, srv.Client(), discardLogger()).Publish(ctx, sampleDoc())
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("publisher ignored cancellation while waiting for Retry-After")
	}
}

func TestSendTestMessage(t *testing.T) {
	dir := t.TempDir()
	if err := SendTestMessage(context.Background(), NewFilePublisher(dir, discardLogger())); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "jobpress-test-article-plain.md")); err != nil {
		t.Errorf("test article not written: %v", err)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("भर्ती", 10); got != "भर्ती" {
		t.Errorf("short excerpt = %q", got)
	}
	if got := excerpt("abcdef", 3); got != "abc…" {
		t.Errorf("long excerpt = %q", got)
	}
}

type countingPublisher struct {
	calls int
	err   error
}

func (c *countingPublisher) Publish(context.Context, *model.Document) error {
	c.calls++
	return c.err
}

func TestMulti_TriesEveryPublisher(t *testing.T) {
	boom := errors.New("webhook down")
	first := &countingPublisher{err: boom}
	second := &countingPublisher{}

	err := Multi{first, second}.Publish(context.Background(), sampleDoc())
	if !errors.Is(err, boom) {
		t.Errorf("Publish = %v, want %v", err, boom)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d, %d, want 1, 1", first.calls, second.calls)
	}
	if err := (Multi{second}).Publish(context.Background(), sampleDoc()); err != nil {
		t.Errorf("Publish = %v, want nil", err)
	}
}
