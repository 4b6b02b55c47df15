package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerpulse/internal/aggregation"
	"tickerpulse/internal/domain/bucket"
	"tickerpulse/internal/domain/post"
	"tickerpulse/internal/ingest"
	"tickerpulse/internal/nlp"
	"tickerpulse/internal/pipeline"
	"tickerpulse/internal/symbols"
)

type stubPostRepo struct{}

func (stubPostRepo) Insert(ctx context.Context, p *post.Post) (bool, error) { return true, nil }
func (stubPostRepo) ListWindow(ctx context.Context, from, to time.Time) ([]post.Post, error) {
	return nil, nil
}
func (stubPostRepo) ListRecent(ctx context.Context, limit int, symbol string) ([]post.Post, error) {
	return nil, nil
}
func (stubPostRepo) Count(ctx context.Context, symbol string, since *time.Time) (int64, error) {
	return 0, nil
}
func (stubPostRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubBucketRepo struct{}

func (stubBucketRepo) Upsert(ctx context.Context, b *bucket.Bucket) error { return nil }
func (stubBucketRepo) Get(ctx context.Context, symbol, granularity string, start time.Time) (*bucket.Bucket, error) {
	return nil, nil
}
func (stubBucketRepo) List(ctx context.Context, granularity string, from, to time.Time, symbol string) ([]bucket.Bucket, error) {
	return nil, nil
}

// blockingAdapter parks Fetch until released
type blockingAdapter struct {
	release chan struct{}
}

func (a *blockingAdapter) Name() string { return "blocking" }

func (a *blockingAdapter) Fetch(ctx context.Context) ([]ingest.RawItem, error) {
	<-a.release
	return nil, nil
}

func testCycle(t *testing.T, adapters []ingest.Adapter) *pipeline.Cycle {
	t.Helper()
	registry := symbols.New(map[string]symbols.Instrument{
		"TSLA": {Name: "Tesla", Aliases: []string{"TSLA"}},
	})
	scorer, err := nlp.NewScorer(8)
	require.NoError(t, err)
	p := pipeline.New(nlp.NewDetector(registry), scorer, stubPostRepo{})
	engine := aggregation.NewEngine(stubPostRepo{}, stubBucketRepo{})
	return pipeline.NewCycle(adapters, p, engine, 0)
}

func TestIngestWorker_Run(t *testing.T) {
	w := NewIngestWorker(testCycle(t, nil), time.Minute, true)

	assert.Nil(t, w.LastResult())
	require.NoError(t, w.Run(context.Background()))

	res := w.LastResult()
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Seen)
	assert.Equal(t, "ingest", w.Name())
	assert.Equal(t, time.Minute, w.Interval())
	assert.True(t, w.Enabled())
}

func TestIngestWorker_SkipsOverlappingRun(t *testing.T) {
	adapter := &blockingAdapter{release: make(chan struct{})}
	w := NewIngestWorker(testCycle(t, []ingest.Adapter{adapter}), time.Minute, true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run(context.Background())
	}()

	// wait until the first run is parked inside the adapter
	assert.Eventually(t, func() bool {
		return w.running.Load()
	}, time.Second, time.Millisecond)

	// a second tick while the first is in flight is a no-op
	require.NoError(t, w.Run(context.Background()))
	assert.Nil(t, w.LastResult())

	close(adapter.release)
	wg.Wait()
	assert.NotNil(t, w.LastResult())
}

func TestRetentionWorker_Run(t *testing.T) {
	w := NewRetentionWorker(stubPostRepo{}, 90, time.Hour, true)
	assert.Equal(t, "retention", w.Name())
	require.NoError(t, w.Run(context.Background()))
}
