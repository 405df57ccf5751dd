package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"streamhub/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// ErrNotConfigured is returned when no TMDB API key is set.
var ErrNotConfigured = errors.New("tmdb api key not configured")

// ExternalIDs are the cross references TMDB knows for a title.
type ExternalIDs struct {
	IMDBID string
	TVDBID int
}

type tmdbExternalIDsResponse struct {
	ID     int    `json:"id"`
	IMDBID string `json:"imdb_id"`
	TVDBID *int   `json:"tvdb_id"`
}

type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

// TMDBClient talks to the TMDB v3 API.
type TMDBClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
	timeout  time.Duration

	attempts uint
	delay    time.Duration

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// TMDBOption customizes a TMDBClient.
type TMDBOption func(*TMDBClient)

// WithBaseURL points the client at a different API root (tests use httptest servers).
func WithBaseURL(base string) TMDBOption {
	return func(c *TMDBClient) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithRetry sets the attempt count and initial backoff for 429/5xx responses.
func WithRetry(attempts uint, delay time.Duration) TMDBOption {
	return func(c *TMDBClient) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewTMDBClient creates a client. timeout bounds each HTTP call.
func NewTMDBClient(apiKey, language string, timeout time.Duration, httpc *http.Client, opts ...TMDBOption) *TMDBClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &TMDBClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		baseURL:     tmdbBaseURL,
		httpc:       httpc,
		timeout:     timeout,
		attempts:    3,
		delay:       300 * time.Millisecond,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TMDBClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// ExternalIDs fetches /{movie|tv}/{id}/external_ids.
func (c *TMDBClient) ExternalIDs(ctx context.Context, kind models.ContentKind, tmdbID int) (ExternalIDs, error) {
	if !c.isConfigured() {
		return ExternalIDs{}, ErrNotConfigured
	}

	apiMediaType := "movie"
	if kind.IsEpisodic() {
		apiMediaType = "tv"
	}

	endpoint, err := url.JoinPath(c.baseURL, apiMediaType, strconv.Itoa(tmdbID), "external_ids")
	if err != nil {
		return ExternalIDs{}, err
	}
	endpoint = endpoint + "?api_key=" + url.QueryEscape(c.apiKey)

	payload, err := retry.DoWithData(
		func() (tmdbExternalIDsResponse, error) {
			return c.getExternalIDs(ctx, endpoint)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[tmdb] external_ids %s/%d retry (attempt %d/%d): %v", apiMediaType, tmdbID, n+1, c.attempts, err)
		}),
	)
	if err != nil {
		return ExternalIDs{}, err
	}

	ids := ExternalIDs{IMDBID: strings.TrimSpace(payload.IMDBID)}
	if payload.TVDBID != nil {
		ids.TVDBID = *payload.TVDBID
	}
	return ids, nil
}

func (c *TMDBClient) getExternalIDs(ctx context.Context, endpoint string) (tmdbExternalIDsResponse, error) {
	var payload tmdbExternalIDsResponse

	if err := c.throttle(ctx); err != nil {
		return payload, retry.Unrecoverable(err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return payload, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		q := req.URL.Query()
		q.Set("language", c.language)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return payload, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return payload, &statusError{
			status: resp.StatusCode,
			msg:    fmt.Sprintf("tmdb external_ids failed: %s: %s", resp.Status, strings.TrimSpace(string(preview))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, retry.Unrecoverable(fmt.Errorf("decode tmdb external_ids: %w", err))
	}
	return payload, nil
}

// isRetryable retries transport errors, 429 and 5xx. Other statuses are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	return true
}

// throttle spaces requests by minInterval. It gives up when ctx ends.
func (c *TMDBClient) throttle(ctx context.Context) error {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}
