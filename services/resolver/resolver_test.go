package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamhub/models"
	"streamhub/services/metadata"
)

type fakeLookup struct {
	mu    sync.Mutex
	calls int
	ids   metadata.ExternalIDs
	err   error
}

func (f *fakeLookup) ExternalIDs(_ context.Context, _ models.ContentKind, _ int) (metadata.ExternalIDs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ids, f.err
}

type fakeObserver struct{ hits, misses int }

func (o *fakeObserver) ObserveResolverCache(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func newResolver(t *testing.T, lookup ExternalIDLookup, clock *manualClock) (*Resolver, *fakeObserver) {
	t.Helper()
	cache, err := NewCache(16, time.Hour, clock.Now)
	require.NoError(t, err)
	obs := &fakeObserver{}
	return New(lookup, cache, obs), obs
}

func TestResolveIMDBShortCircuits(t *testing.T) {
	lookup := &fakeLookup{}
	r, _ := newResolver(t, lookup, &manualClock{now: time.Unix(0, 0)})

	bundle, err := r.Resolve(context.Background(), "tt0133093", models.ContentKindMovie)
	require.NoError(t, err)
	assert.Equal(t, models.IdentifierBundle{IMDBID: "tt0133093"}, bundle)
	assert.Zero(t, lookup.calls)
}

func TestResolveAniListShortCircuits(t *testing.T) {
	lookup := &fakeLookup{}
	r, _ := newResolver(t, lookup, &manualClock{now: time.Unix(0, 0)})

	bundle, err := r.Resolve(context.Background(), "anilist:21", models.ContentKindAnime)
	require.NoError(t, err)
	assert.Equal(t, models.IdentifierBundle{AniListID: 21}, bundle)
	assert.Zero(t, lookup.calls)
}

func TestResolveTMDBMergesExternalIDs(t *testing.T) {
	lookup := &fakeLookup{ids: metadata.ExternalIDs{IMDBID: "tt0903747", TVDBID: 81189}}
	r, _ := newResolver(t, lookup, &manualClock{now: time.Unix(0, 0)})

	bundle, err := r.Resolve(context.Background(), "tmdb:1396", models.ContentKindSeries)
	require.NoError(t, err)
	assert.Equal(t, models.IdentifierBundle{IMDBID: "tt0903747", TMDBTVID: 1396, TVDBID: 81189}, bundle)

	movie, err := r.Resolve(context.Background(), "603", models.ContentKindMovie)
	require.NoError(t, err)
	assert.Equal(t, 603, movie.TMDBMovieID)
	assert.Zero(t, movie.TMDBTVID)
}

func TestResolveLookupFailureIsNonFatal(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("tmdb down")}
	r, _ := newResolver(t, lookup, &manualClock{now: time.Unix(0, 0)})

	bundle, err := r.Resolve(context.Background(), "tmdb:603", models.ContentKindMovie)
	require.NoError(t, err)
	assert.Equal(t, models.IdentifierBundle{TMDBMovieID: 603}, bundle)

	// Failures are not cached.
	_, err = r.Resolve(context.Background(), "tmdb:603", models.ContentKindMovie)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.calls)
}

func TestResolveUnrecognizedInput(t *testing.T) {
	r, _ := newResolver(t, &fakeLookup{}, &manualClock{now: time.Unix(0, 0)})

	for _, id := range []string{"", "kitsu:1", "tmdb:abc", "tmdb:0", "ttabc"} {
		_, err := r.Resolve(context.Background(), id, models.ContentKindMovie)
		assert.ErrorIs(t, err, ErrUnresolvable, "input %q", id)
	}
}

func TestResolveCachesUntilTTL(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	lookup := &fakeLookup{ids: metadata.ExternalIDs{IMDBID: "tt0133093"}}
	r, obs := newResolver(t, lookup, clock)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "tmdb:603", models.ContentKindMovie)
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "tmdb:603", models.ContentKindMovie)
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.calls)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)

	// Same id as a series is a different key.
	_, err = r.Resolve(ctx, "tmdb:603", models.ContentKindSeries)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.calls)

	clock.now = clock.now.Add(61 * time.Minute)
	lookup.ids = metadata.ExternalIDs{IMDBID: "tt9999999"}
	bundle, err := r.Resolve(ctx, "tmdb:603", models.ContentKindMovie)
	require.NoError(t, err)
	assert.Equal(t, "tt9999999", bundle.IMDBID, "expired entries must be replaced")
	assert.Equal(t, 3, lookup.calls)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Reference
	}{
		{"tt0133093", Reference{Scheme: models.SchemeIMDB, IMDBID: "tt0133093"}},
		{" TT0133093 ", Reference{Scheme: models.SchemeIMDB, IMDBID: "tt0133093"}},
		{"tmdb:603", Reference{Scheme: models.SchemeTMDB, Numeric: 603}},
		{"603", Reference{Scheme: models.SchemeTMDB, Numeric: 603}},
		{"anilist:21", Reference{Scheme: models.SchemeAniList, Numeric: 21}},
		{"kitsu:12", Reference{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.in), "Parse(%q)", tt.in)
	}
}

type ctxAwareLookup struct {
	ids metadata.ExternalIDs
}

func (l ctxAwareLookup) ExternalIDs(ctx context.Context, _ models.ContentKind, _ int) (metadata.ExternalIDs, error) {
	if err := ctx.Err(); err != nil {
		return metadata.ExternalIDs{}, err
	}
	return l.ids, nil
}

func TestResolveSharedLookupIgnoresCallerCancellation(t *testing.T) {
	lookup := ctxAwareLookup{ids: metadata.ExternalIDs{IMDBID: "tt0903747", TVDBID: 81189}}
	r, _ := newResolver(t, lookup, &manualClock{now: time.Unix(0, 0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bundle, err := r.Resolve(ctx, "tmdb:1396", models.ContentKindSeries)
	require.NoError(t, err)
	assert.Equal(t, models.IdentifierBundle{IMDBID: "tt0903747", TMDBTVID: 1396, TVDBID: 81189}, bundle)
}
