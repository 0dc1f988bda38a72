package articlerepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id             UUID PRIMARY KEY,
	url            TEXT NOT NULL,
	title          TEXT NOT NULL,
	summary        TEXT NOT NULL,
	tags           TEXT[] NOT NULL DEFAULT '{}',
	source_kind    TEXT NOT NULL,
	content_length INTEGER NOT NULL,
	snapshot_key   TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS articles_created_at_idx ON articles (created_at DESC);
`

// PostgresRepository archives digests in the articles table.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the articles table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure articles schema: %w", err)
	}
	return nil
}

// Save inserts one archived digest.
func (r *PostgresRepository) Save(ctx context.Context, article digest.Article) error {
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO articles (id, url, title, summary, tags, source_kind, content_length, snapshot_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`, article.ID, article.URL, article.Title, article.Summary, tags,
		article.SourceKind, article.ContentLength, article.SnapshotKey, article.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// ListRecent returns the newest digests first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]digest.Article, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, url, title, summary, tags, source_kind, content_length, COALESCE(snapshot_key, ''), created_at
		FROM articles
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]digest.Article, 0, limit)
	for rows.Next() {
		var a digest.Article
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Summary, &a.Tags, &a.SourceKind, &a.ContentLength, &a.SnapshotKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

var _ digest.Archive = (*PostgresRepository)(nil)
