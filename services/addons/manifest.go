package addons

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

const maxManifestBytes = 2 << 20

// NormalizeURL turns user input into an addon base URL: stremio:// becomes
// https://, and the manifest.json suffix, query and trailing slash are dropped.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidURL
	}
	if rest, ok := strings.CutPrefix(trimmed, "stremio://"); ok {
		trimmed = "https://" + rest
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Path = strings.TrimSuffix(u.Path, "/manifest.json")
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

// fetchManifest downloads and decodes {base}/manifest.json.
func (s *Service) fetchManifest(ctx context.Context, baseURL string) (models.Manifest, error) {
	var manifest models.Manifest

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/manifest.json", nil)
	if err != nil {
		return manifest, err
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return manifest, fmt.Errorf("%w: %v", ErrManifestUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return manifest, fmt.Errorf("%w: manifest request failed: %s: %s", ErrManifestUnreachable, resp.Status, strings.TrimSpace(string(preview)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes)).Decode(&manifest); err != nil {
		return manifest, fmt.Errorf("%w: decode manifest: %v", ErrInvalidManifest, err)
	}
	if strings.TrimSpace(manifest.ID) == "" {
		return manifest, fmt.Errorf("%w: manifest id missing", ErrInvalidManifest)
	}
	if !manifest.ServesStreams() {
		return manifest, fmt.Errorf("%w: addon %q does not provide streams", ErrInvalidManifest, manifest.ID)
	}
	return manifest, nil
}
