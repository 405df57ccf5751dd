package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server    ServerSettings    `json:"server"`
	Metadata  MetadataSettings  `json:"metadata"`
	Cache     CacheSettings     `json:"cache"`
	Addons    AddonSettings     `json:"addons"`
	Selection SelectionSettings `json:"selection"`
	Relay     RelaySettings     `json:"relay"`
	Database  DatabaseSettings  `json:"database"`
	Log       LogConfig         `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type MetadataSettings struct {
	TMDBAPIKey           string `json:"tmdbApiKey"`
	Language             string `json:"language"`
	LookupTimeoutSeconds int    `json:"lookupTimeoutSeconds"`
}

// CacheSettings controls the identifier resolver cache.
type CacheSettings struct {
	ResolverTTLMinutes int `json:"resolverTtlMinutes"`
	ResolverMaxEntries int `json:"resolverMaxEntries"`
}

// AddonSettings bounds outbound addon requests.
type AddonSettings struct {
	RequestTimeoutSeconds  int    `json:"requestTimeoutSeconds"`  // per candidate attempt
	RequestDeadlineSeconds int    `json:"requestDeadlineSeconds"` // whole lookup, 0 disables
	UserAgent              string `json:"userAgent"`
	ParseReleaseInfo       bool   `json:"parseReleaseInfo"`
}

// SelectionSettings lists the hosts and path markers of direct/cached sources.
type SelectionSettings struct {
	PreferredHosts       []string `json:"preferredHosts"`
	PreferredPathMarkers []string `json:"preferredPathMarkers"`
}

// RelaySettings configures the video relay that wraps browser-hostile URLs.
type RelaySettings struct {
	URL         string   `json:"url"`
	Hosts       []string `json:"hosts"`
	PathMarkers []string `json:"pathMarkers"`
}

// DatabaseSettings defines where the addon registry is stored.
type DatabaseSettings struct {
	Path string `json:"path"`
}

type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

const (
	defaultPort                   = 7777
	defaultLanguage               = "en-US"
	defaultLookupTimeoutSeconds   = 10
	defaultResolverTTLMinutes     = 60
	defaultResolverMaxEntries     = 2048
	defaultRequestTimeoutSeconds  = 6
	defaultRequestDeadlineSeconds = 30
	defaultUserAgent              = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultDatabasePath           = "cache/streamhub.db"
)

func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: defaultPort},
		Metadata: MetadataSettings{TMDBAPIKey: "", Language: defaultLanguage, LookupTimeoutSeconds: defaultLookupTimeoutSeconds},
		Cache:    CacheSettings{ResolverTTLMinutes: defaultResolverTTLMinutes, ResolverMaxEntries: defaultResolverMaxEntries},
		Addons: AddonSettings{
			RequestTimeoutSeconds:  defaultRequestTimeoutSeconds,
			RequestDeadlineSeconds: defaultRequestDeadlineSeconds,
			UserAgent:              defaultUserAgent,
			ParseReleaseInfo:       true,
		},
		Selection: SelectionSettings{
			PreferredHosts:       []string{},
			PreferredPathMarkers: []string{"/playback/"},
		},
		Relay: RelaySettings{
			URL:         "",
			Hosts:       []string{"download.real-debrid.com", "alldebrid.com", "premiumize.me", "torbox.app"},
			PathMarkers: []string{"/playback/"},
		},
		Database: DatabaseSettings{Path: defaultDatabasePath},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,   // MB per file
			MaxBackups: 3,    // old files kept
			MaxAge:     7,    // days
			Compress:   true, // gzip rotated files
		},
	}
}

// RequestTimeout is the per-attempt addon timeout.
func (a AddonSettings) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestDeadline is the overall lookup deadline. Zero means none.
func (a AddonSettings) RequestDeadline() time.Duration {
	return time.Duration(a.RequestDeadlineSeconds) * time.Second
}

// ResolverTTL is how long resolved identifier bundles stay cached.
func (c CacheSettings) ResolverTTL() time.Duration {
	return time.Duration(c.ResolverTTLMinutes) * time.Minute
}

// LookupTimeout bounds a single metadata provider call.
func (m MetadataSettings) LookupTimeout() time.Duration {
	return time.Duration(m.LookupTimeoutSeconds) * time.Second
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
	fs   afero.Fs
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(configPath, afero.NewOsFs())
}

// NewManagerWithFs is NewManager on an explicit filesystem (tests use afero.NewMemMapFs).
func NewManagerWithFs(configPath string, fsys afero.Fs) *Manager {
	return &Manager{path: configPath, fs: fsys}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
// Environment overrides are applied on top and never written back.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := m.fs.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return ApplyEnv(defaults), nil
	}

	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}

	backfill(&s)
	return ApplyEnv(s), nil
}

// backfill fills settings introduced after the file was written.
func backfill(s *Settings) {
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = "0.0.0.0"
	}
	if s.Server.Port == 0 {
		s.Server.Port = defaultPort
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = defaultLanguage
	}
	if s.Metadata.LookupTimeoutSeconds <= 0 {
		s.Metadata.LookupTimeoutSeconds = defaultLookupTimeoutSeconds
	}
	if s.Cache.ResolverTTLMinutes <= 0 {
		s.Cache.ResolverTTLMinutes = defaultResolverTTLMinutes
	}
	if s.Cache.ResolverMaxEntries <= 0 {
		s.Cache.ResolverMaxEntries = defaultResolverMaxEntries
	}
	if s.Addons.RequestTimeoutSeconds <= 0 {
		s.Addons.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if s.Addons.RequestDeadlineSeconds < 0 {
		s.Addons.RequestDeadlineSeconds = 0
	}
	if strings.TrimSpace(s.Addons.UserAgent) == "" {
		s.Addons.UserAgent = defaultUserAgent
	}
	// nil means the key was absent; an explicit empty list disables markers.
	if s.Selection.PreferredPathMarkers == nil {
		s.Selection.PreferredPathMarkers = []string{"/playback/"}
	}
	if s.Selection.PreferredHosts == nil {
		s.Selection.PreferredHosts = []string{}
	}
	if s.Relay.Hosts == nil {
		s.Relay.Hosts = DefaultSettings().Relay.Hosts
	}
	if s.Relay.PathMarkers == nil {
		s.Relay.PathMarkers = []string{"/playback/"}
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		s.Database.Path = defaultDatabasePath
	}
	if strings.TrimSpace(s.Log.Level) == "" {
		s.Log.Level = "info"
	}
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}
