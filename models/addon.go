package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Addon is a registered stream provider.
type Addon struct {
	ID         string    `json:"id"`
	BaseURL    string    `json:"baseUrl"`
	ManifestID string    `json:"manifestId"`
	Name       string    `json:"name"`
	Version    string    `json:"version,omitempty"`
	Types      []string  `json:"types"`
	IDPrefixes []string  `json:"idPrefixes"`
	Enabled    bool      `json:"enabled"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DisplayName returns the addon name, falling back to its manifest id.
func (a Addon) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	if a.ManifestID != "" {
		return a.ManifestID
	}
	return a.BaseURL
}

// ManifestCatalog is a catalog entry declared in a manifest.
type ManifestCatalog struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ManifestResource is one entry of a manifest's resources list. Manifests
// may list a resource as a bare string or as an object with its own types and
// idPrefixes.
type ManifestResource struct {
	Name       string   `json:"name"`
	Types      []string `json:"types,omitempty"`
	IDPrefixes []string `json:"idPrefixes,omitempty"`
}

// UnmarshalJSON accepts both the string and object forms.
func (r *ManifestResource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = ManifestResource{Name: name}
		return nil
	}
	type plain ManifestResource
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = ManifestResource(obj)
	return nil
}

// Manifest describes an addon's capabilities.
type Manifest struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Version     string             `json:"version"`
	Description string             `json:"description,omitempty"`
	Resources   []ManifestResource `json:"resources"`
	Types       []string           `json:"types"`
	Catalogs    []ManifestCatalog  `json:"catalogs,omitempty"`
	IDPrefixes  []string           `json:"idPrefixes,omitempty"`
}

// Resource returns the named resource entry, if declared.
func (m Manifest) Resource(name string) (ManifestResource, bool) {
	for _, r := range m.Resources {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return ManifestResource{}, false
}

// ServesStreams reports whether the manifest declares the stream resource.
func (m Manifest) ServesStreams() bool {
	_, ok := m.Resource("stream")
	return ok
}
