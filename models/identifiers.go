package models

import (
	"fmt"
	"strings"
)

// ContentKind is the catalog kind a stream request is made for.
type ContentKind string

const (
	ContentKindMovie  ContentKind = "movie"
	ContentKindSeries ContentKind = "series"
	ContentKindAnime  ContentKind = "anime"
)

// ParseContentKind normalizes user input ("tv" and "show" are accepted as series).
func ParseContentKind(raw string) (ContentKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "movie", "movies":
		return ContentKindMovie, nil
	case "series", "tv", "show":
		return ContentKindSeries, nil
	case "anime":
		return ContentKindAnime, nil
	default:
		return "", fmt.Errorf("unsupported content kind %q", raw)
	}
}

// IsEpisodic reports whether streams for this kind are addressed per episode.
func (k ContentKind) IsEpisodic() bool {
	return k == ContentKindSeries || k == ContentKindAnime
}

// StremioType is the type segment used in addon stream URLs.
// Addons serve anime episodes under the series type.
func (k ContentKind) StremioType() string {
	if k == ContentKindMovie {
		return "movie"
	}
	return "series"
}

// IdentifierBundle holds every external id known for one content item.
type IdentifierBundle struct {
	IMDBID      string `json:"imdbId,omitempty"`
	TMDBMovieID int    `json:"tmdbMovieId,omitempty"`
	TMDBTVID    int    `json:"tmdbTvId,omitempty"`
	TVDBID      int    `json:"tvdbId,omitempty"`
	AniListID   int    `json:"anilistId,omitempty"`
}

// IsEmpty reports whether no identifier field is populated.
func (b IdentifierBundle) IsEmpty() bool {
	return b.IMDBID == "" && b.TMDBMovieID == 0 && b.TMDBTVID == 0 && b.TVDBID == 0 && b.AniListID == 0
}

// TMDBID returns the TMDB id matching the content kind.
func (b IdentifierBundle) TMDBID(kind ContentKind) int {
	if kind == ContentKindMovie {
		return b.TMDBMovieID
	}
	return b.TMDBTVID
}

// Candidate is a provider-addressable stream id such as "tt0903747:1:2" or "tmdb:1396:1:2".
type Candidate string

// Identifier scheme tags. These are the values stored as an addon's declared prefixes.
const (
	SchemeIMDB    = "imdb"
	SchemeTMDB    = "tmdb"
	SchemeTVDB    = "tvdb"
	SchemeAniList = "anilist"
	SchemeKitsu   = "kitsu"
)
