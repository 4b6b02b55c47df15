package aggregation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tickerpulse/internal/domain/bucket"
	"tickerpulse/internal/domain/post"
	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

// AlignToHour truncates a timestamp to the start of its hour in UTC.
// Idempotent and monotonic within an hour.
func AlignToHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// Engine recomputes per-symbol sentiment buckets for hourly windows.
// Each run is a full replace over the window, never a delta merge: running it
// twice against an unchanged post store produces identical rows.
type Engine struct {
	posts   post.Repository
	buckets bucket.Repository
	log     *logger.Logger
}

// NewEngine creates an aggregation engine over the two stores
func NewEngine(posts post.Repository, buckets bucket.Repository) *Engine {
	return &Engine{
		posts:   posts,
		buckets: buckets,
		log:     logger.Get().With("component", "aggregation"),
	}
}

// AggregateHour recomputes every symbol's bucket for the hour containing t.
// Posts contribute once per detected symbol. Symbols without posts in the
// window are left untouched; a missing bucket row means no data, not zero.
func (e *Engine) AggregateHour(ctx context.Context, t time.Time) error {
	hourStart := AlignToHour(t)
	hourEnd := hourStart.Add(time.Hour)

	posts, err := e.posts.ListWindow(ctx, hourStart, hourEnd)
	if err != nil {
		return errors.Wrap(err, "load posts for window")
	}

	groups := make(map[string][]float64)
	for i := range posts {
		p := &posts[i]
		if p.Sentiment == nil {
			continue
		}
		for _, sym := range p.SymbolList() {
			groups[sym] = append(groups[sym], *p.Sentiment)
		}
	}

	symbols := make([]string, 0, len(groups))
	for sym := range groups {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	now := time.Now().UTC()
	for _, sym := range symbols {
		vals := groups[sym]
		sum := 0.0
		for _, v := range vals {
			sum += v
		}

		b := &bucket.Bucket{
			ID:           uuid.New(),
			Symbol:       sym,
			Granularity:  bucket.GranularityHour,
			BucketStart:  hourStart,
			PostCount:    len(vals),
			AvgSentiment: sum / float64(len(vals)),
			UpdatedAt:    now,
		}
		if err := e.buckets.Upsert(ctx, b); err != nil {
			return errors.Wrapf(err, "upsert bucket %s@%s", sym, hourStart.Format(time.RFC3339))
		}
	}

	e.log.Infow("hour aggregated",
		"hour_start", hourStart,
		"posts", len(posts),
		"symbols", len(symbols),
	)
	return nil
}
