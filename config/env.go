package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read at startup.
const (
	EnvConfigPath = "STREAMHUB_CONFIG"
	EnvTMDBAPIKey = "TMDB_API_KEY"
	EnvPort       = "STREAMHUB_PORT"
	EnvLogLevel   = "STREAMHUB_LOG_LEVEL"
)

// LoadDotEnv reads the given .env files (".env" when none are passed) into
// the process environment. Variables that are already set win. A missing
// file is not an error callers need to act on.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of key, or fallback if unset or empty.
func GetEnv(key, fallback string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback if unset or invalid.
func GetEnvInt(key string, fallback int) int {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// ApplyEnv returns s with environment overrides applied.
func ApplyEnv(s Settings) Settings {
	s.Metadata.TMDBAPIKey = GetEnv(EnvTMDBAPIKey, s.Metadata.TMDBAPIKey)
	if port := GetEnvInt(EnvPort, 0); port > 0 {
		s.Server.Port = port
	}
	s.Log.Level = GetEnv(EnvLogLevel, s.Log.Level)
	return s
}
