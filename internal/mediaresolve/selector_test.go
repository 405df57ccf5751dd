package mediaresolve

import (
	"testing"

	"streamhub/models"
)

func stream(url string, transport models.Transport, res models.Resolution) *models.NormalizedStream {
	return &models.NormalizedStream{URL: url, Transport: transport, Resolution: res}
}

func TestSelectBestEmpty(t *testing.T) {
	s := NewSelector(SelectionHints{})
	if got := s.SelectBest(nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestSelectBestReturnsElementOfItems(t *testing.T) {
	s := NewSelector(SelectionHints{})
	items := []*models.NormalizedStream{
		stream("https://a.test/1.mp4", models.TransportMP4, models.Resolution720),
		stream("https://a.test/2.m3u8", models.TransportHLS, models.Resolution1080),
		stream("https://a.test/3.mpd", models.TransportDASH, models.Resolution480),
	}

	best := s.SelectBest(items)
	found := false
	for _, item := range items {
		if item == best {
			found = true
		}
	}
	if !found {
		t.Fatal("best must be pointer-identical to an element of items")
	}
	if best != items[1] {
		t.Fatalf("expected 1080p hls, got %s", best.URL)
	}
	if items[0].URL != "https://a.test/1.mp4" {
		t.Fatal("input order must not be modified")
	}
}

func TestSelectBestDeterministic(t *testing.T) {
	s := NewSelector(SelectionHints{})
	items := []*models.NormalizedStream{
		stream("https://a.test/1.m3u8", models.TransportHLS, models.Resolution1080),
		stream("https://a.test/2.m3u8", models.TransportHLS, models.Resolution1080),
		stream("https://a.test/3.m3u8", models.TransportHLS, models.Resolution1080),
	}

	first := s.SelectBest(items)
	for i := 0; i < 50; i++ {
		if got := s.SelectBest(items); got != first {
			t.Fatalf("selection changed on iteration %d", i)
		}
	}
	if first != items[0] {
		t.Fatal("ties must resolve to input order")
	}
}

func TestSelectBestResolutionMonotonic(t *testing.T) {
	s := NewSelector(SelectionHints{})
	tiers := []models.Resolution{
		models.ResolutionUndefined, models.Resolution360, models.Resolution480,
		models.Resolution720, models.Resolution1080, models.Resolution1440, models.Resolution2160,
	}
	for i := 0; i < len(tiers)-1; i++ {
		low := stream("https://a.test/low.mp4", models.TransportMP4, tiers[i])
		high := stream("https://a.test/high.mp4", models.TransportMP4, tiers[i+1])

		if got := s.SelectBest([]*models.NormalizedStream{low, high}); got != high {
			t.Fatalf("picked %v over %v", tiers[i], tiers[i+1])
		}
		if got := s.SelectBest([]*models.NormalizedStream{high, low}); got != high {
			t.Fatalf("picked %v over %v", tiers[i], tiers[i+1])
		}
	}
}

func TestSelectBestAdaptivePreference(t *testing.T) {
	s := NewSelector(SelectionHints{})

	mp4 := stream("https://a.test/a.mp4", models.TransportMP4, models.Resolution1080)
	hls := stream("https://a.test/a.m3u8", models.TransportHLS, models.Resolution1080)
	if got := s.SelectBest([]*models.NormalizedStream{mp4, hls}); got != hls {
		t.Fatal("expected hls over mp4")
	}

	dash := stream("https://a.test/a.mpd", models.TransportDASH, models.Resolution1080)
	if got := s.SelectBest([]*models.NormalizedStream{dash, hls}); got != hls {
		t.Fatal("expected hls over dash")
	}
	if got := s.SelectBest([]*models.NormalizedStream{mp4, dash}); got != dash {
		t.Fatal("expected dash over mp4")
	}
}

func TestSelectBestPreferredSubset(t *testing.T) {
	s := NewSelector(SelectionHints{PreferredHosts: []string{"cached.example.com", "fastcdn.net"}})

	generic := stream("https://random.test/2160.m3u8", models.TransportHLS, models.Resolution2160)
	preferredHost := stream("https://edge1.cached.example.com/a.mp4", models.TransportMP4, models.Resolution720)
	if got := s.SelectBest([]*models.NormalizedStream{generic, preferredHost}); got != preferredHost {
		t.Fatal("expected preferred host to be ranked ahead of higher quality generic stream")
	}

	registrable := stream("https://video.fastcdn.net/a.m3u8", models.TransportHLS, models.Resolution480)
	if got := s.SelectBest([]*models.NormalizedStream{generic, registrable}); got != registrable {
		t.Fatal("expected registrable domain match")
	}

	playback := &models.NormalizedStream{
		URL:         "https://relay.local/proxy?url=x",
		OriginalURL: "https://media.example.org/playback/1/master.m3u8",
		Transport:   models.TransportHLS,
		Resolution:  models.Resolution720,
	}
	if got := s.SelectBest([]*models.NormalizedStream{generic, playback}); got != playback {
		t.Fatal("expected playback marker on original url to mark stream preferred")
	}
}

func TestSelectBestPreferredRequiresKnownTransport(t *testing.T) {
	s := NewSelector(SelectionHints{PreferredHosts: []string{"cached.example.com"}})

	unknown := stream("https://cached.example.com/resolve/abc", models.TransportUnknown, models.Resolution2160)
	generic := stream("https://other.test/a.mp4", models.TransportMP4, models.Resolution720)

	if got := s.SelectBest([]*models.NormalizedStream{unknown, generic}); got != unknown {
		t.Fatal("without a preferred subset, ranking should cover every item")
	}
}

func TestBetterUndefinedResolutionIsLowest(t *testing.T) {
	undefined := stream("a", models.TransportHLS, models.ResolutionUndefined)
	low := stream("b", models.TransportMP4, models.Resolution360)
	if !Better(low, undefined) {
		t.Fatal("360p should rank ahead of undefined resolution")
	}
}
