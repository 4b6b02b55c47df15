package post

import (
	"context"
	"time"
)

// Repository defines the interface for post persistence.
// Deduplication relies on the store's (source, source_id) uniqueness
// constraint, which stays correct under concurrent writers.
type Repository interface {
	// Insert stores a post if no row with its (source, source_id) exists.
	// It returns false without error when the row already existed.
	Insert(ctx context.Context, p *Post) (bool, error)

	// ListWindow returns posts with created_at in [from, to) and a
	// non-null sentiment, for aggregation.
	ListWindow(ctx context.Context, from, to time.Time) ([]Post, error)

	// ListRecent returns up to limit posts ordered by created_at descending,
	// optionally filtered by symbol membership.
	ListRecent(ctx context.Context, limit int, symbol string) ([]Post, error)

	// Count returns the number of posts, optionally filtered by symbol
	// and/or a created_at lower bound.
	Count(ctx context.Context, symbol string, since *time.Time) (int64, error)

	// DeleteOlderThan removes posts created before cutoff and returns how
	// many rows were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
