package nlp

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonreiter/govader"

	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

// DefaultScoreCacheSize bounds the memoization cache when no explicit
// capacity is configured.
const DefaultScoreCacheSize = 10000

// Scorer maps text to a compound sentiment score in [-1, 1] using the VADER
// lexicon analyzer. Identical text recurs constantly (crossposts, retweets)
// and scoring dominates per-item cost, so results are memoized in a bounded
// LRU keyed by the exact text value. The cache never approximates: a cached
// score is byte-identical to an uncached one.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
	cache    *lru.Cache[string, float64]
	log      *logger.Logger
}

// NewScorer creates a scorer with an LRU cache of the given capacity
func NewScorer(cacheSize int) (*Scorer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultScoreCacheSize
	}
	cache, err := lru.New[string, float64](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create score cache")
	}
	return &Scorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		cache:    cache,
		log:      logger.Get().With("component", "scorer"),
	}, nil
}

// Score returns the compound sentiment for text.
// It never fails: analyzer panics or non-finite output degrade to neutral
// 0.0 so one bad post cannot abort a fetch cycle.
func (s *Scorer) Score(text string) float64 {
	if v, ok := s.cache.Get(text); ok {
		return v
	}
	v := s.scoreUncached(text)
	s.cache.Add(text, v)
	return v
}

// CacheLen returns the number of memoized scores
func (s *Scorer) CacheLen() int {
	return s.cache.Len()
}

func (s *Scorer) scoreUncached(text string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warnw("sentiment analyzer panicked, scoring neutral", "panic", r)
			score = 0.0
		}
	}()

	result := s.analyzer.PolarityScores(text)
	score = result.Compound
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0.0
	}
	if score > 1.0 {
		score = 1.0
	} else if score < -1.0 {
		score = -1.0
	}
	return score
}
