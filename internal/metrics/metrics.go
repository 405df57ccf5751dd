package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Addon attempt outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds the Prometheus collectors for the stream aggregation service.
type Metrics struct {
	registry       *prometheus.Registry
	requestsTotal  prometheus.Counter
	errorsTotal    prometheus.Counter
	streamRequests *prometheus.CounterVec
	addonAttempts  *prometheus.CounterVec
	resolverCache  *prometheus.CounterVec
	enabledAddons  prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamhub_http_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamhub_http_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	streamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamhub_stream_requests_total",
		Help: "Stream lookups by result reason (ok when streams were found)",
	}, []string{"reason"})
	addonAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamhub_addon_attempts_total",
		Help: "Per-candidate addon requests by outcome",
	}, []string{"outcome"})
	resolverCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamhub_resolver_cache_total",
		Help: "Identifier resolver cache lookups by result",
	}, []string{"result"})
	enabledAddons := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "streamhub_enabled_addons",
		Help: "Number of enabled addons",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		streamRequests,
		addonAttempts,
		resolverCache,
		enabledAddons,
	)

	return &Metrics{
		registry:       registry,
		requestsTotal:  requestsTotal,
		errorsTotal:    errorsTotal,
		streamRequests: streamRequests,
		addonAttempts:  addonAttempts,
		resolverCache:  resolverCache,
		enabledAddons:  enabledAddons,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveStreamRequest counts a finished stream lookup. An empty reason means streams were found.
func (m *Metrics) ObserveStreamRequest(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "ok"
	}
	m.streamRequests.WithLabelValues(reason).Inc()
}

// ObserveAddonAttempt counts one candidate request against an addon.
func (m *Metrics) ObserveAddonAttempt(outcome string) {
	if m == nil {
		return
	}
	m.addonAttempts.WithLabelValues(outcome).Inc()
}

// ObserveResolverCache records a resolver cache hit or miss.
func (m *Metrics) ObserveResolverCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.resolverCache.WithLabelValues(result).Inc()
}

// SetEnabledAddons sets the enabled addons gauge.
func (m *Metrics) SetEnabledAddons(n int) {
	m.enabledAddons.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
