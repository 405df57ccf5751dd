// Package capability infers which identifier schemes an addon accepts from its manifest.
package capability

import (
	"strings"

	"github.com/samber/lo"

	"streamhub/models"
)

// DefaultPrefixes is used when a manifest gives no usable hint.
var DefaultPrefixes = []string{models.SchemeIMDB, models.SchemeTMDB, models.SchemeTVDB}

// markers are checked in this order; the first substring that matches a
// marker group tags the scheme.
var markers = []struct {
	scheme string
	tokens []string
}{
	{models.SchemeIMDB, []string{"imdb", "tt"}},
	{models.SchemeTMDB, []string{"tmdb"}},
	{models.SchemeTVDB, []string{"tvdb"}},
	{models.SchemeAniList, []string{"anilist"}},
	{models.SchemeKitsu, []string{"kitsu"}},
}

// DetectPrefixes returns the scheme tags an addon is assumed to support.
// Rules are tried in order and the first one producing a result wins:
// explicit idPrefixes, catalog ids, the manifest id, then DefaultPrefixes.
func DetectPrefixes(m models.Manifest) []string {
	if explicit := explicitPrefixes(m); len(explicit) > 0 {
		return explicit
	}

	var fromCatalogs []string
	for _, c := range m.Catalogs {
		fromCatalogs = append(fromCatalogs, scan(c.ID)...)
	}
	if fromCatalogs = lo.Uniq(fromCatalogs); len(fromCatalogs) > 0 {
		return fromCatalogs
	}

	if fromID := scan(m.ID); len(fromID) > 0 {
		return fromID
	}

	return append([]string(nil), DefaultPrefixes...)
}

// Allows reports whether scheme is among prefixes.
func Allows(prefixes []string, scheme string) bool {
	return lo.Contains(prefixes, scheme)
}

func explicitPrefixes(m models.Manifest) []string {
	raw := m.IDPrefixes
	if len(raw) == 0 {
		if r, ok := m.Resource("stream"); ok {
			raw = r.IDPrefixes
		}
	}
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if tag := NormalizePrefix(p); tag != "" {
			out = append(out, tag)
		}
	}
	return lo.Uniq(out)
}

// NormalizePrefix turns a manifest id prefix ("tt", "tmdb:", "kitsu:") into a scheme tag.
func NormalizePrefix(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.TrimSuffix(p, ":")
	if p == "tt" {
		return models.SchemeIMDB
	}
	return p
}

func scan(id string) []string {
	id = strings.ToLower(id)
	if id == "" {
		return nil
	}
	var found []string
	for _, m := range markers {
		for _, tok := range m.tokens {
			if strings.Contains(id, tok) {
				found = append(found, m.scheme)
				break
			}
		}
	}
	return found
}
