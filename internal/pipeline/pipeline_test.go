package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerpulse/internal/domain/post"
	"tickerpulse/internal/ingest"
	"tickerpulse/internal/nlp"
	"tickerpulse/internal/symbols"
	"tickerpulse/pkg/errors"
)

// fakePostRepo is an in-memory post.Repository keyed on (source, source_id)
type fakePostRepo struct {
	rows      map[string]*post.Post
	insertErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{rows: make(map[string]*post.Post)}
}

func (f *fakePostRepo) key(source, sourceID string) string {
	return source + "|" + sourceID
}

func (f *fakePostRepo) Insert(ctx context.Context, p *post.Post) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	k := f.key(p.Source, p.SourceID)
	if _, exists := f.rows[k]; exists {
		return false, nil
	}
	cp := *p
	f.rows[k] = &cp
	return true, nil
}

func (f *fakePostRepo) ListWindow(ctx context.Context, from, to time.Time) ([]post.Post, error) {
	var out []post.Post
	for _, p := range f.rows {
		if p.Sentiment == nil {
			continue
		}
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListRecent(ctx context.Context, limit int, symbol string) ([]post.Post, error) {
	var out []post.Post
	for _, p := range f.rows {
		if symbol != "" && !p.Mentions(symbol) {
			continue
		}
		out = append(out, *p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakePostRepo) Count(ctx context.Context, symbol string, since *time.Time) (int64, error) {
	var n int64
	for _, p := range f.rows {
		if symbol != "" && !p.Mentions(symbol) {
			continue
		}
		if since != nil && p.CreatedAt.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakePostRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for k, p := range f.rows {
		if p.CreatedAt.Before(cutoff) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakePostRepo) get(source, sourceID string) *post.Post {
	return f.rows[f.key(source, sourceID)]
}

var _ post.Repository = (*fakePostRepo)(nil)

func testPipeline(t *testing.T, repo post.Repository) *Pipeline {
	t.Helper()
	registry := symbols.New(map[string]symbols.Instrument{
		"TSLA": {Name: "Tesla", Aliases: []string{"TSLA", "TESLA", "ELON"}},
		"AMD":  {Name: "AMD", Aliases: []string{"AMD", "RYZEN"}},
	})
	scorer, err := nlp.NewScorer(64)
	require.NoError(t, err)
	return New(nlp.NewDetector(registry), scorer, repo)
}

func rawItem(sourceID, text string) ingest.RawItem {
	return ingest.RawItem{
		Source:    "reddit",
		SourceID:  sourceID,
		CreatedAt: time.Date(2026, 3, 14, 15, 20, 0, 0, time.UTC),
		Author:    "tester",
		URL:       "https://www.reddit.com/r/stocks/abc",
		Title:     "a title",
		Text:      text,
	}
}

func TestPipeline_Process_Inserted(t *testing.T) {
	repo := newFakePostRepo()
	p := testPipeline(t, repo)

	outcome, err := p.Process(context.Background(), rawItem("abc", "TSLA to the moon!!! http://example.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)

	stored := repo.get("reddit", "abc")
	require.NotNil(t, stored)
	assert.Equal(t, "TSLA to the moon!!!", stored.TextClean)
	assert.Equal(t, "TSLA to the moon!!! http://example.com", stored.Text)
	assert.Equal(t, "TSLA", stored.Symbols)
	require.NotNil(t, stored.Sentiment)
	assert.Positive(t, *stored.Sentiment)
	assert.False(t, stored.IngestedAt.IsZero())
}

func TestPipeline_Process_MultiSymbolSorted(t *testing.T) {
	repo := newFakePostRepo()
	p := testPipeline(t, repo)

	outcome, err := p.Process(context.Background(), rawItem("xyz", "tesla vs amd, who wins?"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
	assert.Equal(t, "AMD,TSLA", repo.get("reddit", "xyz").Symbols)
}

func TestPipeline_Process_SkippedNotPersisted(t *testing.T) {
	repo := newFakePostRepo()
	p := testPipeline(t, repo)

	outcome, err := p.Process(context.Background(), rawItem("abc", "nothing relevant here"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, repo.get("reddit", "abc"))
}

func TestPipeline_Process_Duplicate(t *testing.T) {
	repo := newFakePostRepo()
	p := testPipeline(t, repo)
	ctx := context.Background()

	first, err := p.Process(ctx, rawItem("abc", "TSLA is great"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, first)

	// same identity, different text: the stored row must win
	second, err := p.Process(ctx, rawItem("abc", "TSLA is terrible"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)

	stored := repo.get("reddit", "abc")
	assert.Equal(t, "TSLA is great", stored.Text)
	assert.Positive(t, *stored.Sentiment)
}

func TestPipeline_Process_MissingIdentity(t *testing.T) {
	p := testPipeline(t, newFakePostRepo())

	item := rawItem("", "TSLA rocks")
	_, err := p.Process(context.Background(), item)
	require.Error(t, err)

	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPipeline_Process_InsertError(t *testing.T) {
	repo := newFakePostRepo()
	repo.insertErr = errors.ErrUnavailable
	p := testPipeline(t, repo)

	_, err := p.Process(context.Background(), rawItem("abc", "TSLA rocks"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestPipeline_ProcessBatch_PartialFailure(t *testing.T) {
	repo := newFakePostRepo()
	p := testPipeline(t, repo)
	ctx := context.Background()

	// pre-seed one row so the batch sees a duplicate
	_, err := p.Process(ctx, rawItem("dup", "TSLA again"))
	require.NoError(t, err)

	items := []ingest.RawItem{
		rawItem("one", "TSLA up"),
		rawItem("dup", "TSLA again"),
		rawItem("two", "no symbols in this one"),
		{Source: "reddit", Text: "broken item without id"},
		rawItem("three", "ryzen benchmarks look good"),
	}

	res := p.ProcessBatch(ctx, items)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed)
}
