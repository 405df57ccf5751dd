package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Transport is the delivery format of a playable stream.
type Transport string

const (
	TransportHLS     Transport = "hls"
	TransportDASH    Transport = "dash"
	TransportMP4     Transport = "mp4"
	TransportUnknown Transport = "unknown"
)

// IsAdaptive reports whether the transport is adaptive bitrate (hls or dash).
func (t Transport) IsAdaptive() bool {
	return t == TransportHLS || t == TransportDASH
}

// Resolution is the vertical resolution tier. Zero means undefined.
type Resolution int

const (
	ResolutionUndefined Resolution = 0
	Resolution360       Resolution = 360
	Resolution480       Resolution = 480
	Resolution720       Resolution = 720
	Resolution1080      Resolution = 1080
	Resolution1440      Resolution = 1440
	Resolution2160      Resolution = 2160
)

func (r Resolution) String() string {
	if r == ResolutionUndefined {
		return ""
	}
	return strconv.Itoa(int(r)) + "p"
}

// Codec is the normalized video codec. Empty means undefined.
type Codec string

const (
	CodecUndefined Codec = ""
	CodecH265      Codec = "h265"
	CodecH264      Codec = "h264"
	CodecVP9       Codec = "vp9"
	CodecAV1       Codec = "av1"
)

// HDR is the dynamic range tier.
type HDR string

const (
	HDRDolbyVision HDR = "dolby_vision"
	HDR10          HDR = "hdr10"
	HDRNone        HDR = "none"
)

// Tag is the short label used in display strings ("DV", "HDR10" or empty).
func (h HDR) Tag() string {
	switch h {
	case HDRDolbyVision:
		return "DV"
	case HDR10:
		return "HDR10"
	default:
		return ""
	}
}

// RawSubtitle is a subtitle entry as sent by an addon.
type RawSubtitle struct {
	ID   string `json:"id,omitempty"`
	URL  string `json:"url"`
	Lang string `json:"lang,omitempty"`
}

// RawStream is an untrusted stream descriptor returned by an addon.
type RawStream struct {
	Name          string          `json:"name,omitempty"`
	Title         string          `json:"title,omitempty"`
	Description   string          `json:"description,omitempty"`
	URL           string          `json:"url,omitempty"`
	InfoHash      string          `json:"infoHash,omitempty"`
	FileIdx       *int            `json:"fileIdx,omitempty"`
	Type          string          `json:"type,omitempty"`
	Error         json.RawMessage `json:"error,omitempty"`
	Subtitles     []RawSubtitle   `json:"subtitles,omitempty"`
	BehaviorHints struct {
		Filename  string `json:"filename,omitempty"`
		VideoSize int64  `json:"videoSize,omitempty"`
	} `json:"behaviorHints,omitempty"`
}

// Text returns the descriptive text of the stream (title lines, description, filename).
func (r RawStream) Text() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.Name, r.Title, r.Description, r.BehaviorHints.Filename} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// RawStreamsResponse is the body of an addon stream endpoint.
type RawStreamsResponse struct {
	Streams []RawStream `json:"streams"`
}

// CaptionTrack is an external subtitle attached to a stream.
type CaptionTrack struct {
	Lang string `json:"lang"`
	URL  string `json:"url"`
	MIME string `json:"mime,omitempty"`
}

// ReleaseInfo carries secondary attributes parsed from the release name.
// It is informational only and does not take part in ranking.
type ReleaseInfo struct {
	Quality   string   `json:"quality,omitempty"`
	Audio     []string `json:"audio,omitempty"`
	Group     string   `json:"group,omitempty"`
	Container string   `json:"container,omitempty"`
	Languages []string `json:"languages,omitempty"`
	SizeBytes int64    `json:"sizeBytes,omitempty"`
}

// NormalizedStream is a classified stream. It is built once by the classifier
// and never modified afterwards; callers share it by pointer.
type NormalizedStream struct {
	URL         string         `json:"url"`
	OriginalURL string         `json:"originalUrl,omitempty"`
	Transport   Transport      `json:"transport"`
	Resolution  Resolution     `json:"resolution,omitempty"`
	Codec       Codec          `json:"codec,omitempty"`
	HDR         HDR            `json:"hdr"`
	Host        string         `json:"host"`
	Label       string         `json:"label"`
	Addon       string         `json:"addon"`
	Captions    []CaptionTrack `json:"captions"`
	InfoHash    string         `json:"infoHash,omitempty"`
	FileIdx     *int           `json:"fileIdx,omitempty"`
	Release     *ReleaseInfo   `json:"release,omitempty"`
}

// SourceURL is the addon-provided URL before any relay rewrite.
func (s *NormalizedStream) SourceURL() string {
	if s.OriginalURL != "" {
		return s.OriginalURL
	}
	return s.URL
}

// StreamsReason identifies why a response has no items.
type StreamsReason string

const (
	ReasonNoAddons    StreamsReason = "no_addons"
	ReasonUnresolved  StreamsReason = "unresolved"
	ReasonNoMatches   StreamsReason = "no_matches"
	ReasonAddonErrors StreamsReason = "addon_errors"
)

// Messages for the empty states. Clients branch on these, keep them stable.
const (
	MessageNoAddons    = "No enabled add-ons"
	MessageUnresolved  = "Could not resolve identifiers for this title"
	MessageNoMatches   = "No streams found from your add-ons"
	MessageAddonErrors = "Add-ons could not be reached, try again later"
)

// StreamsResponse is the result of a stream lookup.
// Best, when set, points at one of Items.
type StreamsResponse struct {
	Items   []*NormalizedStream `json:"items"`
	Best    *NormalizedStream   `json:"best"`
	Message string              `json:"message,omitempty"`
	Reason  StreamsReason       `json:"reason,omitempty"`
}

// EmptyStreamsResponse builds the response for an empty state.
func EmptyStreamsResponse(reason StreamsReason) *StreamsResponse {
	resp := &StreamsResponse{Items: []*NormalizedStream{}, Reason: reason}
	switch reason {
	case ReasonNoAddons:
		resp.Message = MessageNoAddons
	case ReasonUnresolved:
		resp.Message = MessageUnresolved
	case ReasonAddonErrors:
		resp.Message = MessageAddonErrors
	default:
		resp.Message = MessageNoMatches
	}
	return resp
}
