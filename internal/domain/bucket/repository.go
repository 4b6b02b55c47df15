package bucket

import (
	"context"
	"time"
)

// Repository defines the interface for sentiment bucket persistence
type Repository interface {
	// Upsert inserts the bucket row or replaces count and average on the
	// existing (symbol, bucket, bucket_start) row.
	Upsert(ctx context.Context, b *Bucket) error

	// Get returns the bucket for a (symbol, granularity, start) key, or
	// ErrNotFound when absent. Absence means no data, not zero sentiment.
	Get(ctx context.Context, symbol, granularity string, start time.Time) (*Bucket, error)

	// List returns buckets of a granularity with bucket_start in [from, to),
	// optionally filtered by symbol, ordered by bucket_start ascending.
	List(ctx context.Context, granularity string, from, to time.Time, symbol string) ([]Bucket, error)
}
