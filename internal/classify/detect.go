package classify

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"streamhub/models"
)

var (
	dashTokenPattern = regexp.MustCompile(`(?i)(^|[/._=-])dash([/._?=-]|$)`)
	codecPattern     = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(hevc|h[.\s_-]?265|x265|avc|h[.\s_-]?264|x264|vp9|av1)(?:[^a-z0-9]|$)`)
)

// resolutionMarkers are checked in priority order; the first marker found wins.
var resolutionMarkers = []struct {
	tokens []string
	tier   models.Resolution
}{
	{[]string{"2160", "4k"}, models.Resolution2160},
	{[]string{"1440"}, models.Resolution1440},
	{[]string{"1080"}, models.Resolution1080},
	{[]string{"720"}, models.Resolution720},
	{[]string{"480"}, models.Resolution480},
	{[]string{"360"}, models.Resolution360},
}

// Usable reports whether a raw descriptor can be classified: it must not be
// flagged as an error and must carry an absolute http(s) URL.
func Usable(raw models.RawStream) bool {
	if strings.EqualFold(strings.TrimSpace(raw.Type), "error") || hasErrorValue(raw.Error) {
		return false
	}
	return isHTTPURL(raw.URL)
}

func hasErrorValue(v []byte) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", `""`:
		return false
	}
	return true
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DetectTransport infers the delivery format from URL markers.
func DetectTransport(rawURL string) models.Transport {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "m3u8") || strings.Contains(lower, "/hls/"):
		return models.TransportHLS
	case strings.Contains(lower, ".mpd") || dashTokenPattern.MatchString(lower):
		return models.TransportDASH
	case strings.Contains(lower, ".mp4") || strings.Contains(lower, ".mkv"):
		return models.TransportMP4
	default:
		return models.TransportUnknown
	}
}

// DetectResolution returns the first resolution marker present in text.
func DetectResolution(text string) models.Resolution {
	lower := strings.ToLower(text)
	for _, m := range resolutionMarkers {
		for _, tok := range m.tokens {
			if strings.Contains(lower, tok) {
				return m.tier
			}
		}
	}
	return models.ResolutionUndefined
}

// DetectCodec normalizes the first codec mention in text.
func DetectCodec(text string) models.Codec {
	match := codecPattern.FindStringSubmatch(text)
	if match == nil {
		return models.CodecUndefined
	}
	token := strings.ToLower(match[1])
	token = strings.NewReplacer(".", "", " ", "", "_", "", "-", "").Replace(token)
	switch token {
	case "hevc", "h265", "x265":
		return models.CodecH265
	case "avc", "h264", "x264":
		return models.CodecH264
	case "vp9":
		return models.CodecVP9
	case "av1":
		return models.CodecAV1
	}
	return models.CodecUndefined
}

// DetectHDR returns the dynamic range tier mentioned in text.
func DetectHDR(text string) models.HDR {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "dolby") && strings.Contains(lower, "vision"):
		return models.HDRDolbyVision
	case strings.Contains(lower, "hdr"):
		return models.HDR10
	default:
		return models.HDRNone
	}
}
