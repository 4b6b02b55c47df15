package workers

import (
	"context"
	"sync/atomic"
	"time"

	"tickerpulse/internal/pipeline"
)

// IngestWorker drives the ingestion cycle on a fixed interval.
// The pipeline core holds no lock against overlapping cycles, so this worker
// enforces skip-if-running semantics: a tick that arrives while the previous
// cycle is still draining is dropped, not queued.
type IngestWorker struct {
	*BaseWorker
	cycle      *pipeline.Cycle
	running    atomic.Bool
	lastResult atomic.Pointer[pipeline.CycleResult]
}

// NewIngestWorker creates the ingestion worker
func NewIngestWorker(cycle *pipeline.Cycle, interval time.Duration, enabled bool) *IngestWorker {
	return &IngestWorker{
		BaseWorker: NewBaseWorker("ingest", interval, enabled),
		cycle:      cycle,
	}
}

// Run executes one ingestion cycle unless one is already in flight
func (w *IngestWorker) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		w.Log().Warn("previous ingest cycle still running, skipping this tick")
		return nil
	}
	defer w.running.Store(false)

	res := w.cycle.Run(ctx)
	w.lastResult.Store(res)
	return nil
}

// LastResult returns the most recent cycle summary, or nil before the first run
func (w *IngestWorker) LastResult() *pipeline.CycleResult {
	return w.lastResult.Load()
}
