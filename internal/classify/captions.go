package classify

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/language"

	"streamhub/models"
)

var captionMIMETypes = map[string]string{
	".vtt": "text/vtt",
	".srt": "application/x-subrip",
	".ass": "text/x-ssa",
	".ssa": "text/x-ssa",
}

func captionTracks(subs []models.RawSubtitle) []models.CaptionTrack {
	tracks := make([]models.CaptionTrack, 0, len(subs))
	for _, s := range subs {
		if !isHTTPURL(s.URL) {
			continue
		}
		tracks = append(tracks, models.CaptionTrack{
			Lang: normalizeLang(s.Lang),
			URL:  s.URL,
			MIME: captionMIME(s.URL),
		})
	}
	return tracks
}

// normalizeLang reduces a language hint ("eng", "pt-BR") to its base subtag.
func normalizeLang(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "und"
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	base, _ := tag.Base()
	return base.String()
}

func captionMIME(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return captionMIMETypes[strings.ToLower(path.Ext(u.Path))]
}
