// Package classify turns untrusted addon stream descriptors into normalized
// streams. Detection helpers are pure functions over strings.
package classify

import (
	"strings"

	"github.com/MunifTanjim/go-ptt"
	"github.com/samber/lo"

	"streamhub/models"
)

// Config controls URL rewriting through the video relay.
type Config struct {
	// RelayURL is the relay endpoint. Empty disables rewriting.
	RelayURL string
	// RelayHosts are direct-link hosts that browsers cannot play from.
	RelayHosts []string
	// RelayPathMarkers are URL path fragments that require the relay.
	RelayPathMarkers []string
	// ParseRelease enables supplementary release info parsing.
	ParseRelease bool
}

// Classifier classifies raw streams.
type Classifier struct {
	relayBase        string
	relayHosts       []string
	relayPathMarkers []string
	parseRelease     bool
}

// New creates a Classifier from cfg.
func New(cfg Config) *Classifier {
	hosts := lo.FilterMap(cfg.RelayHosts, func(h string, _ int) (string, bool) {
		h = strings.ToLower(strings.TrimSpace(h))
		return h, h != ""
	})
	markers := lo.Filter(cfg.RelayPathMarkers, func(m string, _ int) bool {
		return strings.TrimSpace(m) != ""
	})
	return &Classifier{
		relayBase:        strings.TrimSpace(cfg.RelayURL),
		relayHosts:       hosts,
		relayPathMarkers: markers,
		parseRelease:     cfg.ParseRelease,
	}
}

// Classify normalizes raw. It returns false when the descriptor is unusable.
// Detection runs on the addon URL; the relay rewrite is applied last.
func (c *Classifier) Classify(raw models.RawStream, addonName string) (*models.NormalizedStream, bool) {
	if !Usable(raw) {
		return nil, false
	}

	sourceURL := strings.TrimSpace(raw.URL)
	text := raw.Text()

	stream := &models.NormalizedStream{
		URL:        sourceURL,
		Transport:  DetectTransport(sourceURL),
		Resolution: DetectResolution(text + " " + sourceURL),
		Codec:      DetectCodec(text),
		HDR:        DetectHDR(text),
		Host:       HostLabel(sourceURL),
		Addon:      addonName,
		Captions:   captionTracks(raw.Subtitles),
		InfoHash:   strings.ToLower(raw.InfoHash),
		FileIdx:    raw.FileIdx,
	}
	stream.Label = DisplayLabel(stream, raw)

	if c.parseRelease {
		stream.Release = releaseInfo(raw)
	}

	if c.relayBase != "" && c.needsRelay(sourceURL) {
		stream.OriginalURL = sourceURL
		stream.URL = c.relayURL(sourceURL)
	}
	return stream, true
}

// DisplayLabel composes "1080p H265 HDR10 (Host)". When no quality attribute
// was detected the raw title or name is used instead.
func DisplayLabel(s *models.NormalizedStream, raw models.RawStream) string {
	var parts []string
	if s.Resolution != models.ResolutionUndefined {
		parts = append(parts, s.Resolution.String())
	}
	if s.Codec != models.CodecUndefined {
		parts = append(parts, strings.ToUpper(string(s.Codec)))
	}
	if tag := s.HDR.Tag(); tag != "" {
		parts = append(parts, tag)
	}
	if len(parts) == 0 {
		if fallback := rawLabel(raw); fallback != "" {
			return fallback
		}
	}
	if s.Host != "" {
		parts = append(parts, "("+s.Host+")")
	}
	return strings.Join(parts, " ")
}

func rawLabel(raw models.RawStream) string {
	for _, candidate := range []string{raw.Title, raw.Name, raw.Description} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if idx := strings.IndexByte(candidate, '\n'); idx >= 0 {
			candidate = strings.TrimSpace(candidate[:idx])
		}
		return candidate
	}
	return ""
}

func releaseInfo(raw models.RawStream) *models.ReleaseInfo {
	name := strings.TrimSpace(raw.BehaviorHints.Filename)
	if name == "" {
		name = rawLabel(raw)
	}
	if name == "" {
		return nil
	}

	info := ptt.Parse(name)
	release := &models.ReleaseInfo{
		Quality:   info.Quality,
		Audio:     info.Audio,
		Group:     info.Group,
		Container: info.Container,
		Languages: info.Languages,
		SizeBytes: raw.BehaviorHints.VideoSize,
	}
	if release.Quality == "" && release.Group == "" && release.Container == "" &&
		len(release.Audio) == 0 && len(release.Languages) == 0 && release.SizeBytes == 0 {
		return nil
	}
	return release
}
