package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobpress/internal/model"
)

// SQLiteStore archives generated articles in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// articles table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS articles (
		id         TEXT PRIMARY KEY,
		topic      TEXT NOT NULL,
		layout     TEXT NOT NULL,
		markdown   TEXT NOT NULL,
		missing    TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating articles table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Save records doc under its run ID. Saving the same run twice replaces the
// earlier row.
func (s *SQLiteStore) Save(ctx context.Context, doc *model.Document) error {
	if doc.RunID == "" {
		return fmt.Errorf("saving article %q: empty run id", doc.Topic)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO articles (id, topic, layout, markdown, missing, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.RunID, doc.Topic, doc.Layout, doc.Markdown,
		strings.Join(doc.Missing, ","), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving article %s: %w", doc.RunID, err)
	}
	return nil
}

// Get returns the article with the given ID or model.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Article, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, topic, layout, markdown, missing, created_at FROM articles WHERE id = ?", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading article %s: %w", id, err)
	}
	return a, nil
}

// List returns up to limit articles, newest first. A limit of zero or less
// returns all of them.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*model.Article, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, topic, layout, markdown, missing, created_at FROM articles ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var out []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("listing articles: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Cleanup deletes articles older than the given duration and reports how many
// were removed.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UnixMilli()
	res, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up articles older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(sc scanner) (*model.Article, error) {
	var (
		a       model.Article
		missing string
		created int64
	)
	if err := sc.Scan(&a.ID, &a.Topic, &a.Layout, &a.Markdown, &missing, &created); err != nil {
		return nil, err
	}
	if missing != "" {
		a.Missing = strings.Split(missing, ",")
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	return &a, nil
}
