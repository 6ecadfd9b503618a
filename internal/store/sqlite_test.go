package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/amishk599/jobpress/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock makes created_at predictable.
func fixedClock(s *SQLiteStore, start time.Time) func(time.Duration) {
	now := start
	s.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestSaveThenGet(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	fixedClock(s, start)

	doc := &model.Document{
		RunID:    "run-1",
		Topic:    "RRB Group D Recruitment 2026",
		Layout:   "sarkari",
		Markdown: "# RRB Group D\n",
		Missing:  []string{"minimumAge", "maximumAge"},
	}
	if err := s.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := &model.Article{
		ID:        "run-1",
		Topic:     doc.Topic,
		Layout:    "sarkari",
		Markdown:  doc.Markdown,
		Missing:   []string{"minimumAge", "maximumAge"},
		CreatedAt: start,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("article (-want +got):\n%s", diff)
	}
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "does-not-exist"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRequiresRunID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(context.Background(), &model.Document{Topic: "x"}); err == nil {
		t.Fatal("expected error for document without run id")
	}
}

func TestSaveSameRunReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doc := &model.Document{RunID: "run-1", Topic: "x", Layout: "plain", Markdown: "v1"}
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.Markdown = "v2"
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Markdown != "v2" || got.Missing != nil {
		t.Errorf("got %+v", got)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	advance := fixedClock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, &model.Document{RunID: id, Topic: id, Layout: "plain"}); err != nil {
			t.Fatal(err)
		}
		advance(time.Minute)
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, a := range all {
		ids = append(ids, a.ID)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}

	two, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 || two[0].ID != "c" {
		t.Errorf("limited list = %+v", two)
	}
}

func TestCleanupRemovesOldKeepsFresh(t *testing.T) {
	s := newTestStore(t)
	advance := fixedClock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := s.Save(ctx, &model.Document{RunID: "old", Topic: "x", Layout: "plain"}); err != nil {
		t.Fatal(err)
	}
	advance(48 * time.Hour)
	if err := s.Save(ctx, &model.Document{RunID: "fresh", Topic: "x", Layout: "plain"}); err != nil {
		t.Fatal(err)
	}

	n, err := s.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d rows, want 1", n)
	}
	if _, err := s.Get(ctx, "old"); !errors.Is(err, model.ErrNotFound) {
		t.Error("expected old article to be cleaned up")
	}
	if _, err := s.Get(ctx, "fresh"); err != nil {
		t.Errorf("expected fresh article to survive cleanup: %v", err)
	}
}

func TestNopStore(t *testing.T) {
	var s model.ArticleStore = NewNopStore()
	ctx := context.Background()
	if err := s.Save(ctx, &model.Document{RunID: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "x"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	if list, err := s.List(ctx, 10); err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v", list, err)
	}
}
