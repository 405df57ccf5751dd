// Package candidates builds the ordered list of stream ids tried against an addon.
package candidates

import (
	"fmt"
	"strconv"

	"streamhub/internal/capability"
	"streamhub/models"
)

var (
	movieOrder   = []string{models.SchemeIMDB, models.SchemeTMDB, models.SchemeTVDB}
	episodeOrder = []string{models.SchemeIMDB, models.SchemeTMDB, models.SchemeTVDB, models.SchemeAniList}
)

// Build returns the candidates for bundle in trial order, restricted to the
// allowed scheme tags. Episodic kinds require both season and episode; when
// either is missing no candidate is built.
func Build(bundle models.IdentifierBundle, kind models.ContentKind, season, episode *int, allowed []string) []models.Candidate {
	if kind.IsEpisodic() {
		if season == nil || episode == nil {
			return nil
		}
		return build(bundle, kind, episodeOrder, allowed, fmt.Sprintf(":%d:%d", *season, *episode))
	}
	return build(bundle, kind, movieOrder, allowed, "")
}

func build(bundle models.IdentifierBundle, kind models.ContentKind, order, allowed []string, suffix string) []models.Candidate {
	var out []models.Candidate
	for _, scheme := range order {
		if !capability.Allows(allowed, scheme) {
			continue
		}
		base := baseID(bundle, kind, scheme)
		if base == "" {
			continue
		}
		out = append(out, models.Candidate(base+suffix))
	}
	return out
}

func baseID(bundle models.IdentifierBundle, kind models.ContentKind, scheme string) string {
	switch scheme {
	case models.SchemeIMDB:
		return bundle.IMDBID
	case models.SchemeTMDB:
		return prefixed(models.SchemeTMDB, bundle.TMDBID(kind))
	case models.SchemeTVDB:
		return prefixed(models.SchemeTVDB, bundle.TVDBID)
	case models.SchemeAniList:
		return prefixed(models.SchemeAniList, bundle.AniListID)
	}
	return ""
}

func prefixed(scheme string, id int) string {
	if id <= 0 {
		return ""
	}
	return scheme + ":" + strconv.Itoa(id)
}
