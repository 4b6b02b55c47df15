package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"tickerpulse/internal/domain/bucket"
	"tickerpulse/pkg/errors"
)

// Compile-time check
var _ bucket.Repository = (*BucketRepository)(nil)

// BucketRepository implements bucket.Repository using sqlx
type BucketRepository struct {
	db *sqlx.DB
}

// NewBucketRepository creates a new sentiment bucket repository
func NewBucketRepository(db *sqlx.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

// Upsert writes the bucket row, replacing count and average wholesale when
// the (symbol, bucket, bucket_start) row already exists.
func (r *BucketRepository) Upsert(ctx context.Context, b *bucket.Bucket) error {
	query := `
		INSERT INTO sentiment_buckets (
			id, symbol, bucket, bucket_start, post_count, avg_sentiment, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (symbol, bucket, bucket_start) DO UPDATE SET
			post_count    = EXCLUDED.post_count,
			avg_sentiment = EXCLUDED.avg_sentiment,
			updated_at    = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Symbol, b.Granularity, b.BucketStart,
		b.PostCount, b.AvgSentiment, b.UpdatedAt,
	)
	return errors.Wrap(err, "upsert sentiment bucket")
}

// Get returns one bucket row, or ErrNotFound when absent
func (r *BucketRepository) Get(ctx context.Context, symbol, granularity string, start time.Time) (*bucket.Bucket, error) {
	var b bucket.Bucket

	query := `
		SELECT * FROM sentiment_buckets
		WHERE symbol = $1 AND bucket = $2 AND bucket_start = $3`

	err := r.db.GetContext(ctx, &b, query, symbol, granularity, start)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get sentiment bucket")
	}
	return &b, nil
}

// List returns buckets of a granularity with bucket_start in [from, to)
func (r *BucketRepository) List(ctx context.Context, granularity string, from, to time.Time, symbol string) ([]bucket.Bucket, error) {
	var buckets []bucket.Bucket

	if symbol != "" {
		query := `
			SELECT * FROM sentiment_buckets
			WHERE bucket = $1 AND bucket_start >= $2 AND bucket_start < $3 AND symbol = $4
			ORDER BY bucket_start`
		if err := r.db.SelectContext(ctx, &buckets, query, granularity, from, to, symbol); err != nil {
			return nil, errors.Wrap(err, "list sentiment buckets by symbol")
		}
		return buckets, nil
	}

	query := `
		SELECT * FROM sentiment_buckets
		WHERE bucket = $1 AND bucket_start >= $2 AND bucket_start < $3
		ORDER BY bucket_start, symbol`
	if err := r.db.SelectContext(ctx, &buckets, query, granularity, from, to); err != nil {
		return nil, errors.Wrap(err, "list sentiment buckets")
	}
	return buckets, nil
}
