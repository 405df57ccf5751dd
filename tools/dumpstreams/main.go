// Command dumpstreams runs one stream lookup against the configured addons and
// prints the response as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"streamhub/config"
	"streamhub/internal/classify"
	"streamhub/internal/mediaresolve"
	"streamhub/models"
	"streamhub/services/addons"
	"streamhub/services/metadata"
	"streamhub/services/resolver"
	"streamhub/services/streams"
)

type addonList []models.Addon

func (l addonList) Enabled(context.Context) ([]models.Addon, error) { return l, nil }

type urlFlags []string

func (u *urlFlags) String() string     { return strings.Join(*u, ",") }
func (u *urlFlags) Set(v string) error { *u = append(*u, v); return nil }

func main() {
	var (
		configPath = flag.String("config", config.GetEnv(config.EnvConfigPath, "cache/settings.json"), "Path to backend settings.json")
		kindFlag   = flag.String("type", "movie", "movie, series or anime")
		id         = flag.String("id", "", "native id (tt..., tmdb:N, anilist:N)")
		season     = flag.Int("season", -1, "season number for series")
		episode    = flag.Int("episode", -1, "episode number for series")
		raw        = flag.Bool("raw", false, "skip classification and print raw addon streams")
		addonURLs  urlFlags
	)
	flag.Var(&addonURLs, "addon", "addon base URL to query instead of the registry (repeatable)")
	flag.Parse()

	_ = config.LoadDotEnv()

	kind, err := models.ParseContentKind(*kindFlag)
	if err != nil {
		log.Fatal(err)
	}
	if strings.TrimSpace(*id) == "" {
		log.Fatal("-id is required")
	}

	mgr := config.NewManager(*configPath)
	settings, err := mgr.Load()
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	ctx := context.Background()
	source, cleanup := addonSource(ctx, settings, addonURLs)
	defer cleanup()

	tmdb := metadata.NewTMDBClient(settings.Metadata.TMDBAPIKey, settings.Metadata.Language, settings.Metadata.LookupTimeout(), nil)
	idResolver := resolver.New(tmdb, nil, nil)
	fetcher := streams.NewFetcher(streams.NewHTTPStreamClient(&http.Client{}, settings.Addons.UserAgent), settings.Addons.RequestTimeout(), nil)

	req := streams.StreamRequest{Kind: kind, ID: strings.TrimSpace(*id)}
	if *season >= 0 {
		req.Season = season
	}
	if *episode >= 0 {
		req.Episode = episode
	}

	start := time.Now()
	var out any
	if *raw {
		list, err := source.Enabled(ctx)
		if err != nil {
			log.Fatalf("load addons: %v", err)
		}
		bundle, err := idResolver.Resolve(ctx, req.ID, req.Kind)
		if err != nil {
			log.Fatalf("resolve: %v", err)
		}
		res, err := fetcher.FetchAll(ctx, list, req.Kind, bundle, req.Season, req.Episode)
		if err != nil {
			log.Fatalf("fetch: %v", err)
		}
		out = rawDump(res)
	} else {
		svc := streams.NewService(streams.Options{
			Addons:   source,
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
		})
		resp, err := svc.GetStreams(ctx, req)
		if err != nil {
			log.Fatalf("get streams: %v", err)
		}
		out = resp
	}
	log.Printf("lookup finished in %s", time.Since(start).Round(time.Millisecond))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

func addonSource(ctx context.Context, settings config.Settings, urls []string) (streams.AddonSource, func()) {
	if len(urls) > 0 {
		var list addonList
		for _, u := range urls {
			base, err := addons.NormalizeURL(u)
			if err != nil {
				log.Fatalf("addon %q: %v", u, err)
			}
			list = append(list, models.Addon{ID: base, BaseURL: base, Name: base, Enabled: true})
		}
		return list, func() {}
	}

	store, err := addons.OpenStore(ctx, settings.Database.Path)
	if err != nil {
		log.Fatalf("open addon store: %v", err)
	}
	return addons.NewService(store, nil, settings.Addons.UserAgent), func() { store.Close() }
}

type rawAddonDump struct {
	Addon     string             `json:"addon"`
	Candidate models.Candidate   `json:"candidate,omitempty"`
	Attempted int                `json:"attempted"`
	Failed    int                `json:"failed"`
	Error     string             `json:"error,omitempty"`
	Streams   []models.RawStream `json:"streams"`
}

func rawDump(res streams.FetchResult) []rawAddonDump {
	out := make([]rawAddonDump, 0, len(res.Results))
	for _, r := range res.Results {
		d := rawAddonDump{
			Addon:     r.Addon.DisplayName(),
			Candidate: r.Candidate,
			Attempted: r.Attempted,
			Failed:    r.Failed,
			Streams:   r.Streams,
		}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		out = append(out, d)
	}
	return out
}
