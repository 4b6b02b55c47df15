package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tickerpulse/internal/adapters/config"
	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

const (
	threadsAPIURL         = "https://graph.threads.net/v1.0"
	threadsRequestTimeout = 20 * time.Second
)

// ThreadsAdapter fetches a user's posts from the Meta Threads Graph API.
// Threads is an optional source: without credentials the adapter constructs
// fine and Fetch yields nothing, so the rest of the cycle is unaffected.
type ThreadsAdapter struct {
	httpClient *http.Client
	log        *logger.Logger

	accessToken string
	userID      string
	fetchLimit  int

	apiURL string // overridable in tests
}

// NewThreadsAdapter creates the adapter; missing credentials are not an error
func NewThreadsAdapter(cfg config.ThreadsConfig) *ThreadsAdapter {
	a := &ThreadsAdapter{
		httpClient:  &http.Client{Timeout: threadsRequestTimeout},
		log:         logger.Get().With("adapter", "threads"),
		accessToken: cfg.AccessToken,
		userID:      cfg.UserID,
		fetchLimit:  cfg.FetchLimit,
		apiURL:      threadsAPIURL,
	}
	if !cfg.Configured() {
		a.log.Warn("threads credentials not configured, source disabled")
	}
	return a
}

// Name returns the source identifier
func (a *ThreadsAdapter) Name() string {
	return "threads"
}

type threadsListingResponse struct {
	Data []threadsPost `json:"data"`
}

type threadsPost struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
	PermalinkURL string `json:"permalink_url"`
	Username     string `json:"username"`
}

// Fetch pulls the user's recent threads; no-op when unconfigured.
// Entries with unusable timestamps or no text are skipped.
func (a *ThreadsAdapter) Fetch(ctx context.Context) ([]RawItem, error) {
	if a.accessToken == "" || a.userID == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s/threads?%s", a.apiURL, a.userID, url.Values{
		"fields":       {"id,text,timestamp,permalink_url,username"},
		"limit":        {fmt.Sprintf("%d", a.fetchLimit)},
		"access_token": {a.accessToken},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create threads request")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Wrap(errors.ErrRateLimitExceeded, "threads API")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(errors.ErrSourceUnavailable,
			"threads API returned %d: %s", resp.StatusCode, string(body))
	}

	var listing threadsListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, errors.Wrap(err, "decode threads response")
	}

	items := make([]RawItem, 0, len(listing.Data))
	for _, p := range listing.Data {
		if p.ID == "" || p.Text == "" {
			continue
		}
		created, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			a.log.Debugw("skipping thread with unparseable timestamp",
				"id", p.ID, "timestamp", p.Timestamp)
			continue
		}
		items = append(items, RawItem{
			Source:    "threads",
			SourceID:  p.ID,
			CreatedAt: created.UTC(),
			Author:    p.Username,
			URL:       p.PermalinkURL,
			Text:      p.Text,
		})
	}

	a.log.Infow("threads fetched", "items", len(items))
	return items, nil
}
