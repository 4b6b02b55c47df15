package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tickerpulse/internal/aggregation"
	"tickerpulse/internal/domain/bucket"
	"tickerpulse/internal/domain/post"
	"tickerpulse/internal/symbols"
	"tickerpulse/pkg/logger"
)

const (
	defaultPostLimit   = 100
	maxPostLimit       = 500
	defaultBucketHours = 24
	maxBucketHours     = 24 * 30
	defaultStatsDays   = 7
)

// Handler serves the read-only query surface over the post and bucket stores.
// The ingest core guarantees these tables are eventually consistent with
// ingested data; a post landing mid-hour shows up in its bucket after the
// next aggregation run.
type Handler struct {
	posts    post.Repository
	buckets  bucket.Repository
	registry *symbols.Registry
	log      *logger.Logger
}

// NewHandler creates the query API handler
func NewHandler(posts post.Repository, buckets bucket.Repository, registry *symbols.Registry) *Handler {
	return &Handler{
		posts:    posts,
		buckets:  buckets,
		registry: registry,
		log:      logger.Get().With("component", "api"),
	}
}

// PostResponse is the JSON shape for one post
type PostResponse struct {
	Source    string   `json:"source"`
	SourceID  string   `json:"source_id"`
	Author    string   `json:"author,omitempty"`
	URL       string   `json:"url,omitempty"`
	CreatedAt string   `json:"created_at"`
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text"`
	Symbols   []string `json:"symbols"`
	Sentiment *float64 `json:"sentiment"`
}

// BucketResponse is the JSON shape for one sentiment bucket
type BucketResponse struct {
	Symbol       string  `json:"symbol"`
	Bucket       string  `json:"bucket"`
	BucketStart  string  `json:"bucket_start"`
	PostCount    int     `json:"post_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// HandlePosts serves GET /api/posts?limit=&symbol=
func (h *Handler) HandlePosts(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", defaultPostLimit)
	if limit <= 0 || limit > maxPostLimit {
		limit = defaultPostLimit
	}
	symbol := r.URL.Query().Get("symbol")

	posts, err := h.posts.ListRecent(r.Context(), limit, symbol)
	if err != nil {
		h.log.Errorw("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}

	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		out = append(out, PostResponse{
			Source:    p.Source,
			SourceID:  p.SourceID,
			Author:    p.Author,
			URL:       p.URL,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
			Title:     p.Title,
			Text:      p.Text,
			Symbols:   p.SymbolList(),
			Sentiment: p.Sentiment,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": out, "count": len(out)})
}

// HandleSentiment serves GET /api/sentiment?symbol=&hours=
func (h *Handler) HandleSentiment(w http.ResponseWriter, r *http.Request) {
	hours := intQuery(r, "hours", defaultBucketHours)
	if hours <= 0 || hours > maxBucketHours {
		hours = defaultBucketHours
	}
	symbol := r.URL.Query().Get("symbol")

	to := aggregation.AlignToHour(time.Now()).Add(time.Hour)
	from := to.Add(-time.Duration(hours) * time.Hour)

	buckets, err := h.buckets.List(r.Context(), bucket.GranularityHour, from, to, symbol)
	if err != nil {
		h.log.Errorw("list buckets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load sentiment buckets")
		return
	}

	out := make([]BucketResponse, 0, len(buckets))
	for i := range buckets {
		b := &buckets[i]
		out = append(out, BucketResponse{
			Symbol:       b.Symbol,
			Bucket:       b.Granularity,
			BucketStart:  b.BucketStart.UTC().Format(time.RFC3339),
			PostCount:    b.PostCount,
			AvgSentiment: b.AvgSentiment,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buckets": out, "count": len(out)})
}

// HandleStats serves GET /api/stats?symbol=&days=
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", defaultStatsDays)
	if days <= 0 {
		days = defaultStatsDays
	}
	symbol := r.URL.Query().Get("symbol")

	since := time.Now().UTC().AddDate(0, 0, -days)
	count, err := h.posts.Count(r.Context(), symbol, &since)
	if err != nil {
		h.log.Errorw("count posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts":  count,
		"days":   days,
		"symbol": symbol,
	})
}

// HandleSymbols serves GET /api/symbols
func (h *Handler) HandleSymbols(w http.ResponseWriter, r *http.Request) {
	type symbolResponse struct {
		Symbol  string   `json:"symbol"`
		Name    string   `json:"name"`
		Aliases []string `json:"aliases"`
	}

	codes := h.registry.Symbols()
	out := make([]symbolResponse, 0, len(codes))
	for _, code := range codes {
		inst, _ := h.registry.Get(code)
		out = append(out, symbolResponse{Symbol: code, Name: inst.Name, Aliases: inst.Aliases})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"symbols": out})
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
