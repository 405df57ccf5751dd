package api

import (
	"log/slog"
	"net/http"

	"streamhub/handlers"
	"streamhub/internal/logging"
	"streamhub/internal/metrics"

	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// NewRouter builds the root router with request logging and metrics on every route.
func NewRouter(logger *slog.Logger, met *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(logging.RequestLogger(logger))
	r.Use(metrics.RequestMiddleware(met))
	return r
}

// Register mounts the API endpoints onto the provided router. updateGauges
// runs before each metrics scrape.
func Register(
	r *mux.Router,
	streamsHandler *handlers.StreamsHandler,
	addonsHandler *handlers.AddonsHandler,
	met *metrics.Metrics,
	updateGauges func(),
) {
	r.HandleFunc("/health", health).Methods(http.MethodGet)
	r.Handle("/metrics", met.Handler(updateGauges)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Add CORS middleware to API subrouter
	api.Use(corsMiddleware)

	api.HandleFunc("/streams/{type}/{id}", streamsHandler.GetStreams).Methods(http.MethodGet)
	api.HandleFunc("/streams/{type}/{id}", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/addons", addonsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/addons", addonsHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/addons", handleOptions).Methods(http.MethodOptions)
	// Registered before /addons/{id} so "order" is not taken as an id.
	api.HandleFunc("/addons/order", addonsHandler.Reorder).Methods(http.MethodPut)
	api.HandleFunc("/addons/order", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/addons/{id}", addonsHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/addons/{id}", addonsHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/addons/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/addons/{id}/refresh", addonsHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/addons/{id}/refresh", handleOptions).Methods(http.MethodOptions)
}
