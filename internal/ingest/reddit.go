package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"tickerpulse/internal/adapters/config"
	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

const (
	redditAuthURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL  = "https://oauth.reddit.com"

	redditMaxRetries      = 3
	redditInitialBackoff  = 2 * time.Second
	redditBackoffCeiling  = 60 * time.Second
	redditRequestTimeout  = 30 * time.Second
	redditTokenGraceSlack = time.Minute
)

// RedditAdapter fetches new submissions from a configured set of subreddits.
// Reddit is a mandatory source: construction fails loudly when credentials
// are absent so a misconfigured deployment is visible immediately.
type RedditAdapter struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger

	clientID     string
	clientSecret string
	userAgent    string
	subreddits   []string
	fetchLimit   int

	accessToken string
	tokenExpiry time.Time

	// overridable in tests
	authURL string
	apiURL  string
}

// NewRedditAdapter creates the adapter or fails if credentials are missing
func NewRedditAdapter(cfg config.RedditConfig) (*RedditAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.Wrap(errors.ErrMissingCredentials,
			"reddit requires REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &RedditAdapter{
		httpClient:   &http.Client{Timeout: redditRequestTimeout},
		limiter:      rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		log:          logger.Get().With("adapter", "reddit"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		subreddits:   cfg.Subreddits,
		fetchLimit:   cfg.FetchLimit,
		authURL:      redditAuthURL,
		apiURL:       redditAPIURL,
	}, nil
}

// Name returns the source identifier
func (a *RedditAdapter) Name() string {
	return "reddit"
}

// Fetch pulls recent submissions from every configured subreddit.
// Rate-limited requests retry with capped exponential backoff; other
// per-subreddit failures are logged and that subreddit is abandoned for the
// cycle so one broken sub cannot block the rest. Only a failed token refresh
// (auth is a prerequisite for every request) fails the whole adapter.
func (a *RedditAdapter) Fetch(ctx context.Context) ([]RawItem, error) {
	if time.Now().After(a.tokenExpiry.Add(-redditTokenGraceSlack)) {
		if err := a.refreshAccessToken(ctx); err != nil {
			return nil, errors.Wrap(err, "refresh reddit access token")
		}
	}

	var items []RawItem
	for _, sub := range a.subreddits {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		subItems, err := a.fetchSubredditWithRetry(ctx, sub)
		if err != nil {
			a.log.Errorw("subreddit fetch failed, skipping for this cycle",
				"subreddit", sub, "error", err)
			continue
		}
		a.log.Infow("subreddit fetched", "subreddit", sub, "items", len(subItems))
		items = append(items, subItems...)
	}
	return items, nil
}

// fetchSubredditWithRetry retries rate-limited requests with exponential
// backoff, bounded by redditMaxRetries attempts and redditBackoffCeiling.
func (a *RedditAdapter) fetchSubredditWithRetry(ctx context.Context, sub string) ([]RawItem, error) {
	ebo := backoff.NewExponentialBackOff()
	ebo.InitialInterval = redditInitialBackoff
	ebo.MaxInterval = redditBackoffCeiling

	var items []RawItem
	operation := func() error {
		var err error
		items, err = a.fetchSubreddit(ctx, sub)
		if err == nil {
			return nil
		}
		if errors.Is(err, errors.ErrRateLimitExceeded) {
			a.log.Warnw("rate limited, backing off", "subreddit", sub)
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(ebo, redditMaxRetries), ctx))
	return items, err
}

// Reddit API listing response
type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

func (a *RedditAdapter) fetchSubreddit(ctx context.Context, sub string) ([]RawItem, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", a.apiURL, sub, a.fetchLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create listing request")
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "r/%s", sub)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(errors.ErrSourceUnavailable,
			"r/%s returned %d: %s", sub, resp.StatusCode, string(body))
	}

	var listing redditListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, errors.Wrap(err, "decode listing response")
	}

	items := make([]RawItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		title := strings.TrimSpace(p.Title)
		body := strings.TrimSpace(p.Selftext)
		if title == "" && body == "" {
			continue
		}

		author := p.Author
		if author == "" {
			author = "unknown"
		}

		items = append(items, RawItem{
			Source:    "reddit",
			SourceID:  p.ID,
			CreatedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Author:    author,
			URL:       "https://www.reddit.com" + p.Permalink,
			Title:     title,
			Text:      strings.TrimSpace(title + "\n\n" + body),
		})
	}
	return items, nil
}

type redditOAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// refreshAccessToken obtains a client-credentials OAuth token
func (a *RedditAdapter) refreshAccessToken(ctx context.Context) error {
	a.log.Debug("refreshing reddit OAuth token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return errors.Wrap(err, "create OAuth request")
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrMissingCredentials,
			"reddit OAuth returned %d", resp.StatusCode)
	}

	var token redditOAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return errors.Wrap(err, "decode OAuth response")
	}
	if token.AccessToken == "" {
		return errors.Wrap(errors.ErrMissingCredentials, "empty access token")
	}

	a.accessToken = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return nil
}
