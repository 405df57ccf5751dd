// Package streams aggregates playable streams for a title across the enabled addons.
package streams

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"streamhub/internal/classify"
	"streamhub/internal/mediaresolve"
	"streamhub/models"
	"streamhub/services/resolver"
)

// StreamRequest identifies the title (and episode) to find streams for.
type StreamRequest struct {
	Kind    models.ContentKind
	ID      string
	Season  *int
	Episode *int
}

// AddonSource lists the enabled addons in priority order.
type AddonSource interface {
	Enabled(ctx context.Context) ([]models.Addon, error)
}

// IdentifierResolver maps native ids to identifier bundles.
type IdentifierResolver interface {
	Resolve(ctx context.Context, nativeID string, kind models.ContentKind) (models.IdentifierBundle, error)
}

// RequestObserver records the outcome of each lookup.
type RequestObserver interface {
	ObserveStreamRequest(reason string)
}

// Service answers stream lookups.
type Service struct {
	addons     AddonSource
	resolver   IdentifierResolver
	fetcher    *Fetcher
	classifier *classify.Classifier
	selector   *mediaresolve.Selector
	deadline   time.Duration
	observer   RequestObserver
}

// Options wires the collaborators of a Service.
type Options struct {
	Addons     AddonSource
	Resolver   IdentifierResolver
	Fetcher    *Fetcher
	Classifier *classify.Classifier
	Selector   *mediaresolve.Selector
	// Deadline bounds a whole lookup. Zero disables it.
	Deadline time.Duration
	Observer RequestObserver
}

// NewService creates the aggregation service.
func NewService(opts Options) *Service {
	if opts.Classifier == nil {
		opts.Classifier = classify.New(classify.Config{})
	}
	if opts.Selector == nil {
		opts.Selector = mediaresolve.NewSelector(mediaresolve.SelectionHints{})
	}
	return &Service{
		addons:     opts.Addons,
		resolver:   opts.Resolver,
		fetcher:    opts.Fetcher,
		classifier: opts.Classifier,
		selector:   opts.Selector,
		deadline:   opts.Deadline,
		observer:   opts.Observer,
	}
}

// GetStreams runs one lookup. Empty results are reported through the
// response reason and message; an error means an internal fault.
func (s *Service) GetStreams(ctx context.Context, req StreamRequest) (*models.StreamsResponse, error) {
	resp, err := s.getStreams(ctx, req)
	if err != nil {
		s.observe("internal_error")
		return nil, err
	}
	s.observe(string(resp.Reason))
	return resp, nil
}

func (s *Service) getStreams(ctx context.Context, req StreamRequest) (*models.StreamsResponse, error) {
	addons, err := s.addons.Enabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load addons: %v", ErrInternal, err)
	}
	if len(addons) == 0 {
		return models.EmptyStreamsResponse(models.ReasonNoAddons), nil
	}

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	bundle, err := s.resolver.Resolve(ctx, req.ID, req.Kind)
	if err != nil || bundle.IsEmpty() {
		if err != nil && !errors.Is(err, resolver.ErrUnresolvable) {
			log.Printf("[streams] resolve %s %q: %v", req.Kind, req.ID, err)
		}
		return models.EmptyStreamsResponse(models.ReasonUnresolved), nil
	}

	log.Printf("[streams] lookup %s %q %s bundle=%+v addons=%d", req.Kind, req.ID, episodeLabel(req), bundle, len(addons))

	fetched, err := s.fetcher.FetchAll(ctx, addons, req.Kind, bundle, req.Season, req.Episode)
	if err != nil {
		return nil, err
	}

	items := s.normalize(fetched)
	if len(items) == 0 {
		attempted, failed, _ := fetched.Stats()
		if attempted > 0 && failed == attempted {
			return models.EmptyStreamsResponse(models.ReasonAddonErrors), nil
		}
		return models.EmptyStreamsResponse(models.ReasonNoMatches), nil
	}

	return &models.StreamsResponse{
		Items: items,
		Best:  s.selector.SelectBest(items),
	}, nil
}

// normalize classifies every raw stream in addon order, dropping duplicates
// within one addon's list.
func (s *Service) normalize(fetched FetchResult) []*models.NormalizedStream {
	items := []*models.NormalizedStream{}
	for _, r := range fetched.Results {
		seen := make(map[string]struct{}, len(r.Streams))
		for _, raw := range r.Streams {
			stream, ok := s.classifier.Classify(raw, r.Addon.DisplayName())
			if !ok {
				continue
			}
			keys := dedupKeys(stream)
			if containsAny(seen, keys) {
				continue
			}
			for _, k := range keys {
				seen[k] = struct{}{}
			}
			items = append(items, stream)
		}
	}
	return items
}

func dedupKeys(s *models.NormalizedStream) []string {
	keys := []string{"url:" + s.URL}
	if s.InfoHash != "" {
		idx := -1
		if s.FileIdx != nil {
			idx = *s.FileIdx
		}
		keys = append(keys, "hash:"+s.InfoHash+":"+strconv.Itoa(idx))
	}
	return keys
}

func containsAny(seen map[string]struct{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return true
		}
	}
	return false
}

func episodeLabel(req StreamRequest) string {
	if req.Season == nil || req.Episode == nil {
		return ""
	}
	return fmt.Sprintf("S%02dE%02d", *req.Season, *req.Episode)
}

func (s *Service) observe(reason string) {
	if s.observer != nil {
		s.observer.ObserveStreamRequest(reason)
	}
}
