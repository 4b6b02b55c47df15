package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tickerpulse/internal/domain/post"
	"tickerpulse/internal/ingest"
	"tickerpulse/internal/metrics"
	"tickerpulse/internal/nlp"
	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

// Outcome classifies the result of processing one raw item
type Outcome int

const (
	// OutcomeInserted means a new post row was written
	OutcomeInserted Outcome = iota
	// OutcomeSkipped means the item mentioned no tracked symbol and was discarded
	OutcomeSkipped
	// OutcomeDuplicate means a post with the same (source, source_id) already exists
	OutcomeDuplicate
)

// String returns the outcome label
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Pipeline runs one raw item through normalize -> detect -> score -> persist.
// Items mentioning no tracked symbol are dropped before sentiment scoring;
// scoring is the expensive step and irrelevant content should never pay for it.
type Pipeline struct {
	detector *nlp.Detector
	scorer   *nlp.Scorer
	posts    post.Repository
	log      *logger.Logger
}

// New creates a pipeline over the given detector, scorer and post store
func New(detector *nlp.Detector, scorer *nlp.Scorer, posts post.Repository) *Pipeline {
	return &Pipeline{
		detector: detector,
		scorer:   scorer,
		posts:    posts,
		log:      logger.Get().With("component", "pipeline"),
	}
}

// Process handles a single item.
// The insert is idempotent on (source, source_id): an existing row is left
// untouched and reported as OutcomeDuplicate. First write wins; sentiment is
// never recomputed for an existing post, even after scoring changes.
// A returned error is a genuine persistence fault, never a duplicate.
func (p *Pipeline) Process(ctx context.Context, item ingest.RawItem) (Outcome, error) {
	if item.Source == "" || item.SourceID == "" {
		return 0, errors.NewValidationError("source_id", "missing source identity", item.SourceID)
	}

	textClean := nlp.Normalize(item.Text)

	syms := p.detector.Detect(textClean)
	if len(syms) == 0 {
		metrics.PipelineOutcomes.WithLabelValues(item.Source, OutcomeSkipped.String()).Inc()
		return OutcomeSkipped, nil
	}

	score := p.scorer.Score(textClean)

	rec := &post.Post{
		ID:         uuid.New(),
		Source:     item.Source,
		SourceID:   item.SourceID,
		URL:        item.URL,
		Author:     item.Author,
		CreatedAt:  item.CreatedAt.UTC(),
		Title:      item.Title,
		Text:       item.Text,
		TextClean:  textClean,
		Symbols:    post.JoinSymbols(syms),
		Sentiment:  &score,
		IngestedAt: time.Now().UTC(),
	}

	inserted, err := p.posts.Insert(ctx, rec)
	if err != nil {
		metrics.PipelineOutcomes.WithLabelValues(item.Source, "error").Inc()
		return 0, errors.Wrapf(err, "insert post %s:%s", item.Source, item.SourceID)
	}
	if !inserted {
		metrics.PipelineOutcomes.WithLabelValues(item.Source, OutcomeDuplicate.String()).Inc()
		return OutcomeDuplicate, nil
	}

	p.log.Debugw("post ingested",
		"source", item.Source,
		"source_id", item.SourceID,
		"symbols", rec.Symbols,
		"sentiment", score,
	)
	metrics.PipelineOutcomes.WithLabelValues(item.Source, OutcomeInserted.String()).Inc()
	return OutcomeInserted, nil
}

// BatchResult summarizes one ProcessBatch call
type BatchResult struct {
	Total      int
	Inserted   int
	Skipped    int
	Duplicates int
	Failed     int
}

// ProcessBatch runs every item through Process. Individual failures are
// logged and counted but never abort the rest of the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, items []ingest.RawItem) BatchResult {
	var res BatchResult
	for _, item := range items {
		res.Total++
		outcome, err := p.Process(ctx, item)
		if err != nil {
			res.Failed++
			p.log.Warnw("item processing failed",
				"source", item.Source, "source_id", item.SourceID, "error", err)
			continue
		}
		switch outcome {
		case OutcomeInserted:
			res.Inserted++
		case OutcomeSkipped:
			res.Skipped++
		case OutcomeDuplicate:
			res.Duplicates++
		}
	}
	return res
}
