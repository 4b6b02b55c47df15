package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tickerpulse/pkg/errors"
)

// schema holds the DDL applied at startup. Statements are idempotent so a
// restart against an initialized database is a no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id          UUID PRIMARY KEY,
		source      TEXT NOT NULL,
		source_id   TEXT NOT NULL,
		url         TEXT NOT NULL DEFAULT '',
		author      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		text        TEXT NOT NULL,
		text_clean  TEXT NOT NULL DEFAULT '',
		symbols     TEXT NOT NULL DEFAULT '',
		sentiment   DOUBLE PRECISION,
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_posts_source_source_id
		ON posts (source, source_id)`,
	`CREATE INDEX IF NOT EXISTS ix_posts_created_at ON posts (created_at)`,

	`CREATE TABLE IF NOT EXISTS sentiment_buckets (
		id            UUID PRIMARY KEY,
		symbol        TEXT NOT NULL,
		bucket        TEXT NOT NULL,
		bucket_start  TIMESTAMPTZ NOT NULL,
		post_count    INTEGER NOT NULL DEFAULT 0,
		avg_sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_buckets_symbol_bucket_start
		ON sentiment_buckets (symbol, bucket, bucket_start)`,
	`CREATE INDEX IF NOT EXISTS ix_buckets_bucket_start ON sentiment_buckets (bucket_start)`,
}

// EnsureSchema creates the posts and sentiment_buckets tables if they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema statement")
		}
	}
	return nil
}
