package workers

import (
	"context"
	"time"

	"tickerpulse/internal/domain/post"
	"tickerpulse/pkg/errors"
)

// RetentionWorker deletes posts older than the configured retention window.
// Deletion by age is the only mutation posts ever see after insert.
type RetentionWorker struct {
	*BaseWorker
	posts         post.Repository
	retentionDays int
}

// NewRetentionWorker creates the retention worker
func NewRetentionWorker(posts post.Repository, retentionDays int, interval time.Duration, enabled bool) *RetentionWorker {
	return &RetentionWorker{
		BaseWorker:    NewBaseWorker("retention", interval, enabled),
		posts:         posts,
		retentionDays: retentionDays,
	}
}

// Run deletes posts past the retention cutoff
func (w *RetentionWorker) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -w.retentionDays)

	deleted, err := w.posts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "retention cleanup")
	}

	if deleted > 0 {
		w.Log().Infow("old posts deleted", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
