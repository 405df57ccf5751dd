// Package resolver maps a catalog item's native id to every external id known for it.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"streamhub/internal/ttlcache"
	"streamhub/models"
	"streamhub/services/metadata"
)

// ErrUnresolvable means the input produced no usable identifier.
var ErrUnresolvable = errors.New("identifier could not be resolved")

// ExternalIDLookup fetches cross references from TMDB.
type ExternalIDLookup interface {
	ExternalIDs(ctx context.Context, kind models.ContentKind, tmdbID int) (metadata.ExternalIDs, error)
}

// CacheObserver is notified of cache hits and misses.
type CacheObserver interface {
	ObserveResolverCache(hit bool)
}

// CacheKey is the resolution input.
type CacheKey struct {
	ID   string
	Kind models.ContentKind
}

// Cache holds successful resolutions.
type Cache = ttlcache.Cache[CacheKey, models.IdentifierBundle]

// NewCache builds a resolver cache. clock may be nil.
func NewCache(size int, ttl time.Duration, clock ttlcache.Clock) (*Cache, error) {
	return ttlcache.New[CacheKey, models.IdentifierBundle](size, ttl, clock)
}

// Resolver resolves native ids into identifier bundles.
type Resolver struct {
	lookup   ExternalIDLookup
	cache    *Cache
	group    singleflight.Group
	observer CacheObserver
}

// New creates a resolver. A nil cache disables caching.
func New(lookup ExternalIDLookup, cache *Cache, observer CacheObserver) *Resolver {
	return &Resolver{lookup: lookup, cache: cache, observer: observer}
}

// Resolve returns the identifier bundle for nativeID. Lookup failures are
// logged and the known fields are returned; only an empty bundle is an error.
func (r *Resolver) Resolve(ctx context.Context, nativeID string, kind models.ContentKind) (models.IdentifierBundle, error) {
	nativeID = strings.TrimSpace(nativeID)
	ref := Parse(nativeID)

	switch ref.Scheme {
	case models.SchemeIMDB:
		return models.IdentifierBundle{IMDBID: ref.IMDBID}, nil
	case models.SchemeAniList:
		return models.IdentifierBundle{AniListID: ref.Numeric}, nil
	case models.SchemeTMDB:
		return r.resolveTMDB(ctx, nativeID, kind, ref.Numeric)
	default:
		return models.IdentifierBundle{}, fmt.Errorf("%w: %q", ErrUnresolvable, nativeID)
	}
}

func (r *Resolver) resolveTMDB(ctx context.Context, nativeID string, kind models.ContentKind, tmdbID int) (models.IdentifierBundle, error) {
	key := CacheKey{ID: nativeID, Kind: kind}
	if r.cache != nil {
		if cached, ok := r.cache.Get(key).Get(); ok {
			r.observe(true)
			return cached, nil
		}
		r.observe(false)
	}

	base := models.IdentifierBundle{}
	if kind == models.ContentKindMovie {
		base.TMDBMovieID = tmdbID
	} else {
		base.TMDBTVID = tmdbID
	}
	if r.lookup == nil {
		return base, nil
	}

	// The shared lookup outlives any single caller; the TMDB client's
	// per-call timeout still bounds it.
	lookupCtx := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do(string(kind)+"|"+nativeID, func() (any, error) {
		ids, err := r.lookup.ExternalIDs(lookupCtx, kind, tmdbID)
		if err != nil {
			log.Printf("[resolver] tmdb external ids for %s %d failed: %v", kind, tmdbID, err)
			return base, err
		}
		bundle := base
		bundle.IMDBID = ids.IMDBID
		bundle.TVDBID = ids.TVDBID
		if r.cache != nil {
			r.cache.Set(key, bundle)
		}
		return bundle, nil
	})
	return v.(models.IdentifierBundle), nil
}

func (r *Resolver) observe(hit bool) {
	if r.observer != nil {
		r.observer.ObserveResolverCache(hit)
	}
}

// Reference is a parsed native id.
type Reference struct {
	Scheme  string
	IMDBID  string
	Numeric int
}

// Parse classifies a native id: "tt…" is imdb, "tmdb:N" or a bare number is
// tmdb, "anilist:N" is anilist. Anything else has an empty Scheme.
func Parse(nativeID string) Reference {
	id := strings.TrimSpace(nativeID)
	lower := strings.ToLower(id)

	if strings.HasPrefix(lower, "tt") && len(id) > 2 && isDigits(id[2:]) {
		return Reference{Scheme: models.SchemeIMDB, IMDBID: lower}
	}
	if rest, ok := strings.CutPrefix(lower, "tmdb:"); ok {
		return numericRef(models.SchemeTMDB, rest)
	}
	if rest, ok := strings.CutPrefix(lower, "anilist:"); ok {
		return numericRef(models.SchemeAniList, rest)
	}
	if isDigits(id) {
		return numericRef(models.SchemeTMDB, id)
	}
	return Reference{}
}

func numericRef(scheme, raw string) Reference {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return Reference{}
	}
	return Reference{Scheme: scheme, Numeric: n}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
