package bucket

import (
	"time"

	"github.com/google/uuid"
)

// GranularityHour labels the hourly bucket granularity
const GranularityHour = "hour"

// Bucket is a materialized per-symbol sentiment aggregate for one time
// window. It is fully recomputable from the post store: every aggregation
// run replaces count and average wholesale, never merges deltas.
type Bucket struct {
	ID           uuid.UUID `db:"id"`
	Symbol       string    `db:"symbol"`
	Granularity  string    `db:"bucket"`
	BucketStart  time.Time `db:"bucket_start"`
	PostCount    int       `db:"post_count"`
	AvgSentiment float64   `db:"avg_sentiment"`
	UpdatedAt    time.Time `db:"updated_at"`
}
