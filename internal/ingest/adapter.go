package ingest

import (
	"context"
	"time"
)

// RawItem is the canonical item produced by any adapter, prior to NLP
// processing. (Source, SourceID) is the natural key the adapter assigns;
// two fetches of the same underlying post must produce the same pair, since
// it is the pipeline's sole deduplication key.
type RawItem struct {
	Source    string
	SourceID  string
	CreatedAt time.Time
	Author    string
	URL       string
	Title     string
	Text      string
}

// Adapter produces a finite batch of normalized items per invocation.
// Each implementation owns its own pagination, authentication and rate-limit
// backoff. Fetch is restartable: consecutive calls may re-traverse the
// source's "most recent" window, and the pipeline's idempotent insert, not
// the adapter, prevents double-processing. A returned error means the whole
// adapter failed for this cycle; partial per-sub-source failures are handled
// and logged inside Fetch.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]RawItem, error)
}
