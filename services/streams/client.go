package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"streamhub/models"
)

const maxStreamsBodyBytes = 8 << 20

// StreamClient queries one addon's stream endpoint for one candidate.
type StreamClient interface {
	FetchStreams(ctx context.Context, addon models.Addon, stremioType string, candidate models.Candidate) ([]models.RawStream, error)
}

// HTTPStreamClient implements StreamClient over the addon HTTP protocol.
type HTTPStreamClient struct {
	httpc     *http.Client
	userAgent string
}

// NewHTTPStreamClient creates a client. Per-attempt timeouts come from the
// request context, so httpc should not set a shorter Timeout.
func NewHTTPStreamClient(httpc *http.Client, userAgent string) *HTTPStreamClient {
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &HTTPStreamClient{httpc: httpc, userAgent: strings.TrimSpace(userAgent)}
}

var _ StreamClient = (*HTTPStreamClient)(nil)

// StreamURL builds {base}/stream/{type}/{candidate}.json.
func StreamURL(baseURL, stremioType string, candidate models.Candidate) string {
	return fmt.Sprintf("%s/stream/%s/%s.json", strings.TrimRight(baseURL, "/"), stremioType, url.PathEscape(string(candidate)))
}

func (c *HTTPStreamClient) FetchStreams(ctx context.Context, addon models.Addon, stremioType string, candidate models.Candidate) ([]models.RawStream, error) {
	if candidate == "" {
		return nil, fmt.Errorf("empty candidate")
	}
	endpoint := StreamURL(addon.BaseURL, stremioType, candidate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned %d: %s", candidate, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload models.RawStreamsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStreamsBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode streams response: %w", err)
	}
	return payload.Streams, nil
}
