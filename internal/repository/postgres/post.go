package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"tickerpulse/internal/domain/post"
	"tickerpulse/pkg/errors"
)

// Compile-time check
var _ post.Repository = (*PostRepository)(nil)

// PostRepository implements post.Repository using sqlx
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Insert stores a post unless its (source, source_id) already exists.
// The unique index, not a prior existence check, is the dedupe guarantee,
// so the operation stays correct under concurrent writers.
func (r *PostRepository) Insert(ctx context.Context, p *post.Post) (bool, error) {
	query := `
		INSERT INTO posts (
			id, source, source_id, url, author, created_at,
			title, text, text_clean, symbols, sentiment, ingested_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (source, source_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Source, p.SourceID, p.URL, p.Author, p.CreatedAt,
		p.Title, p.Text, p.TextClean, p.Symbols, p.Sentiment, p.IngestedAt,
	)
	if err != nil {
		return false, errors.Wrap(err, "insert post")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected > 0, nil
}

// ListWindow returns scored posts with created_at in [from, to)
func (r *PostRepository) ListWindow(ctx context.Context, from, to time.Time) ([]post.Post, error) {
	var posts []post.Post

	query := `
		SELECT * FROM posts
		WHERE created_at >= $1 AND created_at < $2 AND sentiment IS NOT NULL
		ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &posts, query, from, to); err != nil {
		return nil, errors.Wrap(err, "list posts in window")
	}
	return posts, nil
}

// ListRecent returns the newest posts, optionally filtered by symbol
// membership in the delimited symbols column.
func (r *PostRepository) ListRecent(ctx context.Context, limit int, symbol string) ([]post.Post, error) {
	var posts []post.Post

	if symbol != "" {
		query := `
			SELECT * FROM posts
			WHERE ',' || symbols || ',' LIKE '%,' || $1 || ',%'
			ORDER BY created_at DESC
			LIMIT $2`
		if err := r.db.SelectContext(ctx, &posts, query, symbol, limit); err != nil {
			return nil, errors.Wrap(err, "list recent posts by symbol")
		}
		return posts, nil
	}

	query := `
		SELECT * FROM posts
		ORDER BY created_at DESC
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, errors.Wrap(err, "list recent posts")
	}
	return posts, nil
}

// Count returns the number of posts matching the optional filters
func (r *PostRepository) Count(ctx context.Context, symbol string, since *time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM posts WHERE 1=1`
	args := make([]interface{}, 0, 2)

	if symbol != "" {
		args = append(args, symbol)
		query += ` AND ',' || symbols || ',' LIKE '%,' || $1 || ',%'`
	}
	if since != nil {
		args = append(args, *since)
		if symbol != "" {
			query += ` AND created_at >= $2`
		} else {
			query += ` AND created_at >= $1`
		}
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "count posts")
	}
	return count, nil
}

// DeleteOlderThan removes posts created before cutoff (retention cleanup)
func (r *PostRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "delete old posts")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return affected, nil
}
