package capability

import (
	"encoding/json"
	"reflect"
	"testing"

	"streamhub/models"
)

func decodeManifest(t *testing.T, raw string) models.Manifest {
	t.Helper()
	var m models.Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return m
}

func TestDetectPrefixesExplicitTopLevel(t *testing.T) {
	m := decodeManifest(t, `{
		"id": "org.example.kitsu",
		"resources": ["stream"],
		"idPrefixes": ["tt", "tmdb:"],
		"catalogs": [{"type": "anime", "id": "kitsu-trending"}]
	}`)

	got := DetectPrefixes(m)
	want := []string{"imdb", "tmdb"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDetectPrefixesExplicitOnStreamResource(t *testing.T) {
	m := decodeManifest(t, `{
		"id": "org.example.streams",
		"resources": [
			"catalog",
			{"name": "stream", "types": ["movie", "series"], "idPrefixes": ["kitsu:"]}
		]
	}`)

	got := DetectPrefixes(m)
	want := []string{"kitsu"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDetectPrefixesFromCatalogs(t *testing.T) {
	m := models.Manifest{
		ID: "com.example.tmdbaddon",
		Catalogs: []models.ManifestCatalog{
			{Type: "movie", ID: "tvdb-popular"},
			{Type: "anime", ID: "anilist-seasonal"},
			{Type: "movie", ID: "tvdb-new"},
		},
	}

	got := DetectPrefixes(m)
	want := []string{"tvdb", "anilist"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected catalogs to win over manifest id, got %v", got)
	}
}

func TestDetectPrefixesFromManifestID(t *testing.T) {
	m := models.Manifest{ID: "community.kitsu-streams", Catalogs: []models.ManifestCatalog{{ID: "top"}}}

	got := DetectPrefixes(m)
	want := []string{"kitsu"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDetectPrefixesFallback(t *testing.T) {
	m := models.Manifest{ID: "org.example.plain", Catalogs: []models.ManifestCatalog{{ID: "popular"}}}

	got := DetectPrefixes(m)
	if !reflect.DeepEqual(got, DefaultPrefixes) {
		t.Fatalf("expected default prefixes, got %v", got)
	}

	got[0] = "mutated"
	if DefaultPrefixes[0] != models.SchemeIMDB {
		t.Fatal("fallback result must not alias DefaultPrefixes")
	}
}

func TestAllows(t *testing.T) {
	if !Allows([]string{"imdb", "tmdb"}, "tmdb") {
		t.Fatal("expected tmdb to be allowed")
	}
	if Allows([]string{"imdb"}, "anilist") {
		t.Fatal("expected anilist to be rejected")
	}
}
