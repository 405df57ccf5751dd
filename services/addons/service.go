// Package addons manages the registry of user-configured stream addons.
package addons

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"streamhub/internal/capability"
	"streamhub/models"
)

var (
	ErrAddonNotFound       = errors.New("addon not found")
	ErrAddonExists         = errors.New("addon already registered")
	ErrInvalidManifest     = errors.New("invalid addon manifest")
	ErrInvalidURL          = errors.New("invalid addon url")
	ErrManifestUnreachable = errors.New("addon manifest unreachable")
	ErrInvalidOrder        = errors.New("order must list every addon exactly once")
)

// Service registers addons and serves the enabled list to stream lookups.
type Service struct {
	store     *Store
	httpc     *http.Client
	userAgent string
	now       func() time.Time
}

// NewService creates an addon registry on top of store.
func NewService(store *Store, httpc *http.Client, userAgent string) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{
		store:     store,
		httpc:     httpc,
		userAgent: strings.TrimSpace(userAgent),
		now:       time.Now,
	}
}

// Register validates the addon at rawURL and stores it after the existing ones.
func (s *Service) Register(ctx context.Context, rawURL string) (models.Addon, error) {
	baseURL, err := NormalizeURL(rawURL)
	if err != nil {
		return models.Addon{}, err
	}

	if _, err := s.store.FindByBaseURL(ctx, baseURL); err == nil {
		return models.Addon{}, ErrAddonExists
	} else if !errors.Is(err, ErrAddonNotFound) {
		return models.Addon{}, err
	}

	manifest, err := s.fetchManifest(ctx, baseURL)
	if err != nil {
		return models.Addon{}, err
	}

	position, err := s.store.NextPosition(ctx)
	if err != nil {
		return models.Addon{}, fmt.Errorf("next addon position: %w", err)
	}

	now := s.now().UTC()
	addon := models.Addon{
		ID:        uuid.NewString(),
		BaseURL:   baseURL,
		Enabled:   true,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyManifest(&addon, manifest)

	if err := s.store.Insert(ctx, addon); err != nil {
		return models.Addon{}, err
	}
	log.Printf("[addons] registered %q (%s) prefixes=%v", addon.Name, addon.BaseURL, addon.IDPrefixes)
	return addon, nil
}

// applyManifest copies manifest metadata and the detected id prefixes onto addon.
func applyManifest(addon *models.Addon, manifest models.Manifest) {
	addon.ManifestID = manifest.ID
	addon.Name = strings.TrimSpace(manifest.Name)
	if addon.Name == "" {
		addon.Name = manifest.ID
	}
	addon.Version = manifest.Version
	addon.Types = lo.Uniq(manifest.Types)
	addon.IDPrefixes = capability.DetectPrefixes(manifest)
}

// List returns every addon in priority order.
func (s *Service) List(ctx context.Context) ([]models.Addon, error) {
	return s.store.List(ctx)
}

// Get returns one addon.
func (s *Service) Get(ctx context.Context, id string) (models.Addon, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

// Enabled returns the enabled addons in priority order.
func (s *Service) Enabled(ctx context.Context) ([]models.Addon, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(a models.Addon, _ int) bool { return a.Enabled }), nil
}

// SetEnabled toggles an addon.
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) (models.Addon, error) {
	addon, err := s.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Addon{}, err
	}
	addon.Enabled = enabled
	addon.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, addon); err != nil {
		return models.Addon{}, err
	}
	return addon, nil
}

// Remove deletes an addon.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	log.Printf("[addons] removed %s", id)
	return nil
}

// Reorder sets the priority order. ids must contain every addon exactly once.
func (s *Service) Reorder(ctx context.Context, ids []string) ([]models.Addon, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	ids = lo.Map(ids, func(id string, _ int) string { return strings.TrimSpace(id) })
	if len(ids) != len(existing) || len(lo.Uniq(ids)) != len(ids) {
		return nil, ErrInvalidOrder
	}
	known := lo.SliceToMap(existing, func(a models.Addon) (string, struct{}) { return a.ID, struct{}{} })
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrAddonNotFound, id)
		}
	}

	if err := s.store.SetPositions(ctx, ids, s.now()); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// Refresh re-fetches the manifest and re-derives the addon's id prefixes.
func (s *Service) Refresh(ctx context.Context, id string) (models.Addon, error) {
	addon, err := s.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Addon{}, err
	}

	manifest, err := s.fetchManifest(ctx, addon.BaseURL)
	if err != nil {
		return models.Addon{}, err
	}

	applyManifest(&addon, manifest)
	addon.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, addon); err != nil {
		return models.Addon{}, err
	}
	log.Printf("[addons] refreshed %q prefixes=%v", addon.Name, addon.IDPrefixes)
	return addon, nil
}
