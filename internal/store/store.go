// Package store provides SQLite-based persistence for generated articles.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trendwise/trendbot/internal/images"
	_ "modernc.org/sqlite"
)

// ErrSlugTaken is returned by SaveArticle when the slug unique index fires.
// Callers resolve it by retrying with a numeric suffix.
var ErrSlugTaken = errors.New("slug already exists")

// TrendSource records where an article's trend came from.
type TrendSource struct {
	SourceName  string    `json:"source_name"`
	SourceURL   string    `json:"source_url"`
	PublishedAt time.Time `json:"published_at"`
	CrawledAt   time.Time `json:"crawled_at"`
}

// Article is a persisted generated article.
type Article struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Excerpt     string            `json:"excerpt"`
	Content     string            `json:"content"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Thumbnail   images.Descriptor `json:"thumbnail"`
	Author      string            `json:"author"`
	ReadMinutes int               `json:"read_minutes"`
	Views       int               `json:"views"`
	Likes       int               `json:"likes"`
	Saves       int               `json:"saves"`
	Featured    bool              `json:"featured"`
	Status      string            `json:"status"`
	Source      TrendSource       `json:"trend_source"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Schema is the SQLite schema for TrendBot.
const Schema = `
CREATE TABLE IF NOT EXISTS articles (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    slug         TEXT NOT NULL UNIQUE,
    excerpt      TEXT,
    content      TEXT,
    category     TEXT,
    tags         TEXT,
    thumbnail    TEXT,
    author       TEXT,
    read_minutes INTEGER DEFAULT 1,
    views        INTEGER DEFAULT 0,
    likes        INTEGER DEFAULT 0,
    saves        INTEGER DEFAULT 0,
    featured     INTEGER DEFAULT 0,
    status       TEXT DEFAULT 'published',
    source_name  TEXT,
    source_url   TEXT,
    published_at TIMESTAMP,
    crawled_at   TIMESTAMP,
    created_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_title ON articles(title);
CREATE INDEX IF NOT EXISTS idx_articles_source_url ON articles(source_url);
CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at DESC);
`

// Store provides article persistence.
type Store struct {
	db *sql.DB
}

// New creates a Store and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveArticle inserts an article. A slug collision surfaces as ErrSlugTaken.
func (s *Store) SaveArticle(ctx context.Context, a *Article) error {
	tags, _ := json.Marshal(a.Tags)
	thumb, _ := json.Marshal(a.Thumbnail)

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = "published"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (
			id, title, slug, excerpt, content, category, tags, thumbnail,
			author, read_minutes, views, likes, saves, featured, status,
			source_name, source_url, published_at, crawled_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.Title, a.Slug, a.Excerpt, a.Content, a.Category, string(tags), string(thumb),
		a.Author, a.ReadMinutes, a.Views, a.Likes, a.Saves, boolToInt(a.Featured), a.Status,
		a.Source.SourceName, a.Source.SourceURL, a.Source.PublishedAt, a.Source.CrawledAt, a.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrSlugTaken, a.Slug)
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// ArticleExists reports whether an article with the given title or source
// URL already exists. This is the dedup gate's pre-check; it is a plain
// query, not a transaction, so the slug unique index remains the final
// arbiter under concurrent writers.
func (s *Store) ArticleExists(ctx context.Context, title, sourceURL string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM articles WHERE title = ? OR (source_url != '' AND source_url = ?)
	`, title, sourceURL).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return n > 0, nil
}

// SlugExists reports whether slug is already taken.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE slug = ?", slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return n > 0, nil
}

const articleColumns = `id, title, slug, excerpt, content, category, tags, thumbnail,
	author, read_minutes, views, likes, saves, featured, status,
	source_name, source_url, published_at, crawled_at, created_at`

// GetBySlug retrieves one article, or nil when absent.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE slug = ?", slug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// List returns articles sorted by recency.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Article, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+articleColumns+" FROM articles ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// IncrementCounter bumps one of the interaction counters (views, likes,
// saves) for an article. Unknown counters are rejected.
func (s *Store) IncrementCounter(ctx context.Context, slug, counter string) error {
	switch counter {
	case "views", "likes", "saves":
	default:
		return fmt.Errorf("unknown counter: %s", counter)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE articles SET "+counter+" = "+counter+" + 1 WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var tagsJSON, thumbJSON string
	var featured int
	var publishedAt, crawledAt, createdAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Content, &a.Category, &tagsJSON, &thumbJSON,
		&a.Author, &a.ReadMinutes, &a.Views, &a.Likes, &a.Saves, &featured, &a.Status,
		&a.Source.SourceName, &a.Source.SourceURL, &publishedAt, &crawledAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Featured = featured != 0
	json.Unmarshal([]byte(tagsJSON), &a.Tags)
	json.Unmarshal([]byte(thumbJSON), &a.Thumbnail)
	if publishedAt.Valid {
		a.Source.PublishedAt = publishedAt.Time
	}
	if crawledAt.Valid {
		a.Source.CrawledAt = crawledAt.Time
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
