package mediaresolve

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"streamhub/models"
)

// DefaultPreferredPathMarkers mark URLs served from a cached playback path.
var DefaultPreferredPathMarkers = []string{"/playback/"}

// SelectionHints configures which streams count as direct/cached.
type SelectionHints struct {
	PreferredHosts       []string
	PreferredPathMarkers []string
}

// Selector ranks normalized streams and picks the one to play by default.
type Selector struct {
	hosts   []string
	markers []string
}

// NewSelector builds a selector. Hosts are matched exactly, as a parent
// domain, or by registrable domain.
func NewSelector(hints SelectionHints) *Selector {
	s := &Selector{}
	for _, h := range hints.PreferredHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.hosts = append(s.hosts, h)
		}
	}
	markers := hints.PreferredPathMarkers
	if markers == nil {
		markers = DefaultPreferredPathMarkers
	}
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			s.markers = append(s.markers, m)
		}
	}
	return s
}

// SelectBest returns the top-ranked stream, or nil for an empty list. The
// result is always one of the pointers in items.
func (s *Selector) SelectBest(items []*models.NormalizedStream) *models.NormalizedStream {
	if len(items) == 0 {
		return nil
	}

	pool := make([]*models.NormalizedStream, 0, len(items))
	for _, item := range items {
		if item != nil && s.Preferred(item) {
			pool = append(pool, item)
		}
	}
	if len(pool) == 0 {
		for _, item := range items {
			if item != nil {
				pool = append(pool, item)
			}
		}
	}
	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return Better(pool[i], pool[j])
	})
	return pool[0]
}

// Preferred reports whether a stream is playable directly from a known
// cached source.
func (s *Selector) Preferred(item *models.NormalizedStream) bool {
	switch item.Transport {
	case models.TransportHLS, models.TransportDASH, models.TransportMP4:
	default:
		return false
	}

	u, err := url.Parse(item.SourceURL())
	if err != nil {
		return false
	}
	for _, marker := range s.markers {
		if strings.Contains(u.Path, marker) {
			return true
		}
	}
	return s.matchesHost(strings.ToLower(u.Hostname()))
}

func (s *Selector) matchesHost(host string) bool {
	if host == "" || len(s.hosts) == 0 {
		return false
	}
	registrable, _ := publicsuffix.EffectiveTLDPlusOne(host)
	for _, h := range s.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
		if registrable != "" && registrable == h {
			return true
		}
	}
	return false
}

// Better reports whether a ranks strictly ahead of b: higher resolution,
// then adaptive over progressive, then hls over dash.
func Better(a, b *models.NormalizedStream) bool {
	if a.Resolution != b.Resolution {
		return a.Resolution > b.Resolution
	}
	if a.Transport.IsAdaptive() != b.Transport.IsAdaptive() {
		return a.Transport.IsAdaptive()
	}
	if a.Transport.IsAdaptive() && a.Transport != b.Transport {
		return a.Transport == models.TransportHLS
	}
	return false
}
