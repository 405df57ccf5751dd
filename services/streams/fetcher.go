package streams

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"

	"streamhub/internal/candidates"
	"streamhub/internal/capability"
	"streamhub/internal/classify"
	"streamhub/internal/metrics"
	"streamhub/models"
)

//go:generate mockgen -destination=mock_deps_test.go -package=streams . StreamClient,AddonSource

const defaultAttemptTimeout = 6 * time.Second

// ErrInternal marks faults that are not addon failures.
var ErrInternal = errors.New("internal error")

var errClientPanic = errors.New("addon client panicked")

// AttemptObserver records the outcome of each candidate request.
type AttemptObserver interface {
	ObserveAddonAttempt(outcome string)
}

// AddonResult is what one addon contributed to a lookup.
type AddonResult struct {
	Addon     models.Addon
	Candidate models.Candidate // the candidate that produced Streams
	Streams   []models.RawStream
	Attempted int
	Failed    int
	Err       error
}

// Matched reports whether the addon returned usable streams.
func (r AddonResult) Matched() bool {
	return len(r.Streams) > 0
}

// AllFailed reports whether every attempt against the addon errored.
func (r AddonResult) AllFailed() bool {
	return r.Attempted > 0 && r.Failed == r.Attempted
}

// FetchResult holds one AddonResult per addon, in addon order.
type FetchResult struct {
	Results []AddonResult
}

// Stats counts addons that were queried, that failed on every attempt, and that matched.
func (f FetchResult) Stats() (attempted, failed, matched int) {
	for _, r := range f.Results {
		if r.Attempted > 0 {
			attempted++
		}
		if r.AllFailed() {
			failed++
		}
		if r.Matched() {
			matched++
		}
	}
	return attempted, failed, matched
}

// Fetcher queries addons concurrently and each addon's candidates in order.
type Fetcher struct {
	client         StreamClient
	attemptTimeout time.Duration
	observer       AttemptObserver
}

// NewFetcher creates a fetcher. attemptTimeout bounds each candidate request.
func NewFetcher(client StreamClient, attemptTimeout time.Duration, observer AttemptObserver) *Fetcher {
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	return &Fetcher{client: client, attemptTimeout: attemptTimeout, observer: observer}
}

// FetchAll queries every addon. Addon failures, including a panicking client,
// are recorded in that addon's result; the returned error is only set when
// the fetch machinery itself panicked.
func (f *Fetcher) FetchAll(ctx context.Context, addons []models.Addon, kind models.ContentKind, bundle models.IdentifierBundle, season, episode *int) (FetchResult, error) {
	result := FetchResult{Results: make([]AddonResult, len(addons))}
	if len(addons) == 0 {
		return result, nil
	}

	var wg conc.WaitGroup
	for i, addon := range addons {
		wg.Go(func() {
			result.Results[i] = f.fetchAddon(ctx, addon, kind, bundle, season, episode)
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		log.Printf("[streams] addon fetch panicked: %v\n%s", recovered.Value, recovered.Stack)
		return FetchResult{}, fmt.Errorf("%w: addon fetch panicked: %v", ErrInternal, recovered.Value)
	}
	return result, nil
}

func (f *Fetcher) fetchAddon(ctx context.Context, addon models.Addon, kind models.ContentKind, bundle models.IdentifierBundle, season, episode *int) AddonResult {
	res := AddonResult{Addon: addon}

	allowed := addon.IDPrefixes
	if len(allowed) == 0 {
		allowed = capability.DefaultPrefixes
	}
	cands := candidates.Build(bundle, kind, season, episode, allowed)
	if len(cands) == 0 {
		log.Printf("[streams] addon %q: no candidate for prefixes %v", addon.DisplayName(), allowed)
		return res
	}

	var errs []error
	for _, candidate := range cands {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res.Attempted++
		streams, err := f.attempt(ctx, addon, kind, candidate)
		if err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", candidate, err))
			f.observe(metrics.OutcomeError)
			continue
		}

		usable := lo.Filter(streams, func(s models.RawStream, _ int) bool { return classify.Usable(s) })
		if len(usable) == 0 {
			f.observe(metrics.OutcomeEmpty)
			continue
		}

		f.observe(metrics.OutcomeOK)
		res.Candidate = candidate
		res.Streams = usable
		break
	}

	res.Err = errors.Join(errs...)
	if res.Err != nil {
		log.Printf("[streams] addon %q failures: %v", addon.DisplayName(), res.Err)
	}
	if res.Matched() {
		log.Printf("[streams] addon %q returned %d streams for %s", addon.DisplayName(), len(res.Streams), res.Candidate)
	}
	return res
}

func (f *Fetcher) attempt(ctx context.Context, addon models.Addon, kind models.ContentKind, candidate models.Candidate) (streams []models.RawStream, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[streams] addon %q client panicked on %s: %v\n%s", addon.DisplayName(), candidate, r, debug.Stack())
			streams, err = nil, fmt.Errorf("%w: %v", errClientPanic, r)
		}
	}()

	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()
	return f.client.FetchStreams(attemptCtx, addon, kind.StremioType(), candidate)
}

func (f *Fetcher) observe(outcome string) {
	if f.observer != nil {
		f.observer.ObserveAddonAttempt(outcome)
	}
}
