package classify

import (
	"encoding/json"
	"net/url"
	"testing"

	"streamhub/models"
)

func TestClassifyFixture(t *testing.T) {
	c := New(Config{})
	raw := models.RawStream{
		Name:  "Example",
		Title: "Movie.2024.1080p.HEVC.HDR10-GROUP",
		URL:   "https://cdn.example.com/v/abc/index.m3u8",
	}

	got, ok := c.Classify(raw, "Example Addon")
	if !ok {
		t.Fatal("expected stream to be usable")
	}
	if got.Resolution != models.Resolution1080 {
		t.Errorf("resolution = %v, want 1080", got.Resolution)
	}
	if got.Codec != models.CodecH265 {
		t.Errorf("codec = %q, want h265", got.Codec)
	}
	if got.HDR != models.HDR10 {
		t.Errorf("hdr = %q, want hdr10", got.HDR)
	}
	if got.Transport != models.TransportHLS {
		t.Errorf("transport = %q, want hls", got.Transport)
	}
	if got.Label != "1080p H265 HDR10 (cdn.example.com)" {
		t.Errorf("label = %q", got.Label)
	}
	if got.Addon != "Example Addon" {
		t.Errorf("addon = %q", got.Addon)
	}
	if got.URL != raw.URL || got.OriginalURL != "" {
		t.Errorf("url should not be rewritten without relay, got %q / %q", got.URL, got.OriginalURL)
	}
}

func TestClassifyUnderscoreSeparatedTitle(t *testing.T) {
	c := New(Config{})
	raw := models.RawStream{
		Title: "Movie_2024_1080p_HEVC_HDR10-GRP",
		URL:   "https://cdn.example.com/v/abc/index.m3u8",
	}

	got, ok := c.Classify(raw, "a")
	if !ok {
		t.Fatal("expected stream to be usable")
	}
	if got.Codec != models.CodecH265 {
		t.Errorf("codec = %q, want h265", got.Codec)
	}
	if got.Label != "1080p H265 HDR10 (cdn.example.com)" {
		t.Errorf("label = %q", got.Label)
	}
}

func TestDiscardMalformedDescriptors(t *testing.T) {
	c := New(Config{})
	raws := []models.RawStream{
		{Title: "no url"},
		{Title: "error", Type: "error", URL: "https://example.com/a.mp4"},
		{Title: "error field", Error: json.RawMessage(`"quota exceeded"`), URL: "https://example.com/b.mp4"},
		{Title: "magnet only", URL: "magnet:?xt=urn:btih:abc"},
		{Title: "relative", URL: "/stream/c.mp4"},
		{Title: "720p ok", URL: "https://example.com/c.mp4", Error: json.RawMessage(`null`)},
	}

	var kept []*models.NormalizedStream
	for _, raw := range raws {
		if s, ok := c.Classify(raw, "a"); ok {
			kept = append(kept, s)
		}
	}
	if len(kept) != 1 {
		t.Fatalf("expected exactly one stream, got %d", len(kept))
	}
	if kept[0].URL != "https://example.com/c.mp4" {
		t.Fatalf("unexpected survivor %q", kept[0].URL)
	}
}

func TestDetectTransport(t *testing.T) {
	tests := []struct {
		url  string
		want models.Transport
	}{
		{"https://x.test/master.m3u8?token=1", models.TransportHLS},
		{"https://x.test/hls/abc", models.TransportHLS},
		{"https://x.test/manifest.mpd", models.TransportDASH},
		{"https://x.test/dash/abc", models.TransportDASH},
		{"https://x.test/movie.mp4", models.TransportMP4},
		{"https://x.test/Movie.MKV", models.TransportMP4},
		{"https://x.test/dashboard/movie", models.TransportUnknown},
		{"https://x.test/resolve/abc", models.TransportUnknown},
	}
	for _, tt := range tests {
		if got := DetectTransport(tt.url); got != tt.want {
			t.Errorf("DetectTransport(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDetectResolution(t *testing.T) {
	tests := []struct {
		text string
		want models.Resolution
	}{
		{"Movie 4K REMUX", models.Resolution2160},
		{"Movie.2160p.1080p", models.Resolution2160},
		{"Show 1440p", models.Resolution1440},
		{"Movie 1080P WEB", models.Resolution1080},
		{"720p", models.Resolution720},
		{"DVDRip 480p", models.Resolution480},
		{"mobile 360p", models.Resolution360},
		{"Movie WEB-DL", models.ResolutionUndefined},
	}
	for _, tt := range tests {
		if got := DetectResolution(tt.text); got != tt.want {
			t.Errorf("DetectResolution(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDetectCodec(t *testing.T) {
	tests := []struct {
		text string
		want models.Codec
	}{
		{"Movie.1080p.HEVC", models.CodecH265},
		{"Movie 1080p H.265", models.CodecH265},
		{"Movie x265-GRP", models.CodecH265},
		{"Movie h_264", models.CodecH264},
		{"Movie AVC", models.CodecH264},
		{"Movie.VP9.webm", models.CodecVP9},
		{"Movie AV1 Opus", models.CodecAV1},
		{"Movie_2024_1080p_HEVC_HDR10-GRP", models.CodecH265},
		{"Show_S01E01_720p_x264-GRP", models.CodecH264},
		{"Show_S01E01_H_265_AAC", models.CodecH265},
		{"Movie havcx", models.CodecUndefined},
		{"Movie", models.CodecUndefined},
	}
	for _, tt := range tests {
		if got := DetectCodec(tt.text); got != tt.want {
			t.Errorf("DetectCodec(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetectHDR(t *testing.T) {
	tests := []struct {
		text string
		want models.HDR
	}{
		{"Movie Dolby Vision HDR10", models.HDRDolbyVision},
		{"Movie DOLBY.VISION", models.HDRDolbyVision},
		{"Movie HDR10+", models.HDR10},
		{"Movie HDR", models.HDR10},
		{"Movie Dolby Atmos", models.HDRNone},
	}
	for _, tt := range tests {
		if got := DetectHDR(tt.text); got != tt.want {
			t.Errorf("DetectHDR(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestHostLabel(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.example.org/a.mp4", "example.org"},
		{"https://abc.download.real-debrid.com/d/x.mkv", "Real-Debrid"},
		{"https://cdn.alldebrid.fr/x", "AllDebrid"},
		{"https://xyz.premiumize.me/file", "Premiumize"},
		{"https://store.torbox.app/x", "TorBox"},
		{"https://members.easynews.com/x", "Easynews"},
		{"::not a url", "Unknown"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := HostLabel(tt.url); got != tt.want {
			t.Errorf("HostLabel(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDisplayLabelFallsBackToRawTitle(t *testing.T) {
	c := New(Config{})
	raw := models.RawStream{
		Name:  "Addon",
		Title: "Some Release\n💾 1.2 GB",
		URL:   "https://example.com/stream",
	}
	got, ok := c.Classify(raw, "a")
	if !ok {
		t.Fatal("expected usable stream")
	}
	if got.Label != "Some Release" {
		t.Fatalf("label = %q, want raw title", got.Label)
	}
}

func TestRelayRewriteAfterDetection(t *testing.T) {
	c := New(Config{
		RelayURL:         "https://relay.local/proxy",
		RelayHosts:       []string{"download.real-debrid.com"},
		RelayPathMarkers: []string{"/playback/"},
	})

	tests := []struct {
		name    string
		url     string
		rewrite bool
	}{
		{"mkv container", "https://cdn.example.com/Movie.2160p.mkv", true},
		{"debrid host", "https://abc.download.real-debrid.com/d/ID/movie.mp4", true},
		{"playback marker", "https://media.example.com/playback/123/master.m3u8", true},
		{"plain hls", "https://cdn.example.com/master.m3u8", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(models.RawStream{Title: "x", URL: tt.url}, "a")
			if !ok {
				t.Fatal("expected usable stream")
			}
			if !tt.rewrite {
				if got.URL != tt.url || got.OriginalURL != "" {
					t.Fatalf("unexpected rewrite to %q", got.URL)
				}
				return
			}
			want := "https://relay.local/proxy?url=" + url.QueryEscape(tt.url)
			if got.URL != want {
				t.Fatalf("url = %q, want %q", got.URL, want)
			}
			if got.OriginalURL != tt.url {
				t.Fatalf("originalUrl = %q", got.OriginalURL)
			}
			if got.Transport != DetectTransport(tt.url) {
				t.Fatalf("transport detected from rewritten url: %q", got.Transport)
			}
		})
	}
}

func TestRelayDisabledWithoutURL(t *testing.T) {
	c := New(Config{RelayHosts: []string{"example.com"}})
	got, _ := c.Classify(models.RawStream{Title: "x", URL: "https://example.com/a.mkv"}, "a")
	if got.URL != "https://example.com/a.mkv" {
		t.Fatalf("expected no rewrite, got %q", got.URL)
	}
}

func TestCaptionTracks(t *testing.T) {
	c := New(Config{})
	raw := models.RawStream{
		URL: "https://example.com/a.mp4",
		Subtitles: []models.RawSubtitle{
			{ID: "1", URL: "https://subs.example.com/en.vtt", Lang: "eng"},
			{ID: "2", URL: "https://subs.example.com/pt.srt?dl=1", Lang: "pt-BR"},
			{ID: "3", URL: "", Lang: "fr"},
			{ID: "4", URL: "https://subs.example.com/x.sub"},
		},
	}
	got, ok := c.Classify(raw, "a")
	if !ok {
		t.Fatal("expected usable stream")
	}
	if len(got.Captions) != 3 {
		t.Fatalf("expected 3 captions, got %d", len(got.Captions))
	}
	want := []models.CaptionTrack{
		{Lang: "en", URL: "https://subs.example.com/en.vtt", MIME: "text/vtt"},
		{Lang: "pt", URL: "https://subs.example.com/pt.srt?dl=1", MIME: "application/x-subrip"},
		{Lang: "und", URL: "https://subs.example.com/x.sub"},
	}
	for i := range want {
		if got.Captions[i] != want[i] {
			t.Errorf("caption %d = %+v, want %+v", i, got.Captions[i], want[i])
		}
	}
}

func TestReleaseInfoIsSupplementary(t *testing.T) {
	c := New(Config{ParseRelease: true})
	raw := models.RawStream{
		Title: "Movie 720p",
		URL:   "https://example.com/a.mp4",
	}
	raw.BehaviorHints.Filename = "Movie.2024.2160p.WEB-DL.DDP5.1.x265-GRP.mkv"
	raw.BehaviorHints.VideoSize = 1024

	got, ok := c.Classify(raw, "a")
	if !ok {
		t.Fatal("expected usable stream")
	}
	if got.Release == nil {
		t.Fatal("expected release info")
	}
	if got.Release.SizeBytes != 1024 {
		t.Errorf("size = %d", got.Release.SizeBytes)
	}
	// Tiers come from the descriptor text in priority order, not from the parser.
	if got.Resolution != models.Resolution2160 {
		t.Errorf("resolution = %v", got.Resolution)
	}
}
