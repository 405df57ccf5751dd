package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"streamhub/api"
	"streamhub/config"
	"streamhub/handlers"
	"streamhub/internal/classify"
	"streamhub/internal/logging"
	"streamhub/internal/mediaresolve"
	"streamhub/internal/metrics"
	"streamhub/services/addons"
	"streamhub/services/metadata"
	"streamhub/services/resolver"
	"streamhub/services/streams"
)

const shutdownTimeout = 30 * time.Second

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 streamhub backend starting...")

	if err := config.LoadDotEnv(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	configPath := config.GetEnv(config.EnvConfigPath, filepath.Join("cache", "settings.json"))

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	if settings.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(settings.Log.File), 0o755); err != nil {
			log.Printf("warning: could not create log directory: %v", err)
			settings.Log.File = ""
		}
	}
	logger, logCloser := logging.Setup(logging.FileOptions{
		Path:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSize,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAge,
		Compress:   settings.Log.Compress,
	}, settings.Log.Level)
	defer logCloser.Close()
	if settings.Log.File != "" {
		log.Printf("Logging to file: %s", settings.Log.File)
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	store, err := addons.OpenStore(context.Background(), settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open addon store: %v", err)
	}
	defer store.Close()

	met := metrics.New()

	addonService := addons.NewService(store, nil, settings.Addons.UserAgent)

	tmdb := metadata.NewTMDBClient(settings.Metadata.TMDBAPIKey, settings.Metadata.Language, settings.Metadata.LookupTimeout(), nil)
	if settings.Metadata.TMDBAPIKey == "" {
		log.Printf("warning: no TMDB API key configured; TMDB ids resolve without cross references")
	}
	resolverCache, err := resolver.NewCache(settings.Cache.ResolverMaxEntries, settings.Cache.ResolverTTL(), nil)
	if err != nil {
		log.Fatalf("failed to create resolver cache: %v", err)
	}
	idResolver := resolver.New(tmdb, resolverCache, met)

	fetcher := streams.NewFetcher(
		streams.NewHTTPStreamClient(&http.Client{}, settings.Addons.UserAgent),
		settings.Addons.RequestTimeout(),
		met,
	)
	streamService := streams.NewService(streams.Options{
		Addons:   addonService,
		Resolver: idResolver,
		Fetcher:  fetcher,
		Classifier: classify.New(classify.Config{
			RelayURL:         settings.Relay.URL,
			RelayHosts:       settings.Relay.Hosts,
			RelayPathMarkers: settings.Relay.PathMarkers,
			ParseRelease:     settings.Addons.ParseReleaseInfo,
		}),
		Selector: mediaresolve.NewSelector(mediaresolve.SelectionHints{
			PreferredHosts:       settings.Selection.PreferredHosts,
			PreferredPathMarkers: settings.Selection.PreferredPathMarkers,
		}),
		Deadline: settings.Addons.RequestDeadline(),
		Observer: met,
	})

	updateGauges := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if enabled, err := addonService.Enabled(ctx); err == nil {
			met.SetEnabledAddons(len(enabled))
		}
	}

	r := api.NewRouter(logger, met)
	api.Register(r,
		handlers.NewStreamsHandler(streamService),
		handlers.NewAddonsHandler(addonService),
		met,
		updateGauges,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: settings.Addons.RequestDeadline() + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
