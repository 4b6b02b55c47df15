package pipeline

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"tickerpulse/internal/aggregation"
	"tickerpulse/internal/ingest"
	"tickerpulse/internal/metrics"
	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

// DefaultBreakerThreshold is the per-source error budget per cycle
const DefaultBreakerThreshold = 10

// SourceResult summarizes one adapter's contribution to a cycle
type SourceResult struct {
	Seen       int
	Inserted   int
	Skipped    int
	Duplicates int
	Errors     int
	FetchError string
	Tripped    bool
}

// CycleResult is the structured summary of one ingestion cycle. Partial
// success is the normal terminal state: per-source failures are recorded
// here instead of raised, and the caller decides what to do with them.
type CycleResult struct {
	StartedAt  time.Time
	Elapsed    time.Duration
	Sources    map[string]*SourceResult
	Seen       int
	Inserted   int
	Skipped    int
	Duplicates int
	Errors     int
}

// Cycle drains a set of source adapters through the pipeline, then
// recomputes the current hour's sentiment buckets. It holds no lock against
// overlapping runs; the driving worker guarantees non-overlapping invocation.
type Cycle struct {
	adapters         []ingest.Adapter
	pipeline         *Pipeline
	engine           *aggregation.Engine
	breakerThreshold int
	log              *logger.Logger
}

// NewCycle creates a cycle runner.
// A breakerThreshold <= 0 falls back to DefaultBreakerThreshold.
func NewCycle(adapters []ingest.Adapter, p *Pipeline, engine *aggregation.Engine, breakerThreshold int) *Cycle {
	if breakerThreshold <= 0 {
		breakerThreshold = DefaultBreakerThreshold
	}
	return &Cycle{
		adapters:         adapters,
		pipeline:         p,
		engine:           engine,
		breakerThreshold: breakerThreshold,
		log:              logger.Get().With("component", "cycle"),
	}
}

// Run executes one full ingestion cycle. Adapters are drained sequentially,
// one fully exhausted before the next begins; a failing source never blocks
// the others. A source whose per-item error count exceeds the breaker
// threshold is abandoned for the remainder of the cycle.
func (c *Cycle) Run(ctx context.Context) *CycleResult {
	res := &CycleResult{
		StartedAt: time.Now().UTC(),
		Sources:   make(map[string]*SourceResult, len(c.adapters)),
	}

	for _, adapter := range c.adapters {
		name := adapter.Name()
		sr := &SourceResult{}
		res.Sources[name] = sr

		items, err := adapter.Fetch(ctx)
		if err != nil {
			sr.FetchError = err.Error()
			metrics.AdapterFetchErrors.WithLabelValues(name).Inc()
			c.log.Errorw("adapter fetch failed", "source", name, "error", err)
			continue
		}

		for _, item := range items {
			sr.Seen++
			outcome, err := c.pipeline.Process(ctx, item)
			if err != nil {
				sr.Errors++
				c.log.Debugw("item failed", "source", name, "source_id", item.SourceID, "error", err)
				if sr.Errors > c.breakerThreshold {
					sr.Tripped = true
					c.log.Errorw("circuit breaker tripped, abandoning source for this cycle",
						"source", name, "errors", sr.Errors,
						"error", errors.ErrCircuitBreakerTripped)
					break
				}
				continue
			}
			switch outcome {
			case OutcomeInserted:
				sr.Inserted++
			case OutcomeSkipped:
				sr.Skipped++
			case OutcomeDuplicate:
				sr.Duplicates++
			}
		}

		c.log.Infow("source drained",
			"source", name,
			"seen", sr.Seen,
			"inserted", sr.Inserted,
			"duplicates", sr.Duplicates,
			"skipped", sr.Skipped,
			"errors", sr.Errors,
		)
	}

	for _, sr := range res.Sources {
		res.Seen += sr.Seen
		res.Inserted += sr.Inserted
		res.Skipped += sr.Skipped
		res.Duplicates += sr.Duplicates
		res.Errors += sr.Errors
	}

	// Aggregation failures do not roll back inserted posts; the next run
	// retries the same idempotent computation.
	if err := c.engine.AggregateHour(ctx, time.Now()); err != nil {
		metrics.AggregationRuns.WithLabelValues("error").Inc()
		c.log.Errorw("hourly aggregation failed", "error", err)
	} else {
		metrics.AggregationRuns.WithLabelValues("success").Inc()
	}

	res.Elapsed = time.Since(res.StartedAt)
	c.log.Infow("ingest cycle complete",
		"seen", humanize.Comma(int64(res.Seen)),
		"inserted", humanize.Comma(int64(res.Inserted)),
		"duplicates", res.Duplicates,
		"skipped", res.Skipped,
		"errors", res.Errors,
		"elapsed", res.Elapsed.Round(time.Millisecond).String(),
	)
	return res
}
