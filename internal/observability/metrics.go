package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate by route template and status class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency. Watch for: p95 dominated by upstream latency.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap call rate by outcome.
	WeatherAPICallsTotal *prometheus.CounterVec

	// OpenWeatherMap latency. Watch for: p99 near the configured client timeout.
	WeatherAPIDuration *prometheus.HistogramVec

	// Weather lookups served.
	WeatherQueriesTotal prometheus.Counter

	// Per-zip lookup count (allow-list; others go to "other").
	WeatherQueriesByZipTotal *prometheus.CounterVec

	// History store operations by operation and outcome (success, not_found, error).
	HistoryStoreOperationsTotal *prometheus.CounterVec

	// History store latency per operation.
	HistoryStoreDuration *prometheus.HistogramVec

	// Persistence failures absorbed on best-effort steps. Watch for: non-zero means history is silently degrading.
	BestEffortFailuresTotal *prometheus.CounterVec

	trackedZipCodesMu sync.RWMutex
	trackedZipCodes   map[string]struct{}
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Total number of weather lookups",
		},
	)
	WeatherQueriesByZipTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherQueriesByZipTotal",
			Help: "Weather queries by zip code (allow-list; others use zip=other)",
		},
		[]string{"zip"},
	)
	HistoryStoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historyStoreOperationsTotal",
			Help: "Total number of history store operations",
		},
		[]string{"operation", "status"},
	)
	HistoryStoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "historyStoreDurationSeconds",
			Help:    "History store operation latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)
	BestEffortFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestEffortFailuresTotal",
			Help: "Persistence failures logged and absorbed without failing the request",
		},
		[]string{"step"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		WeatherQueriesTotal, WeatherQueriesByZipTotal,
		HistoryStoreOperationsTotal, HistoryStoreDuration,
		BestEffortFailuresTotal,
	)
}

// SetTrackedZipCodes sets the allow-list for per-zip metrics. Untracked zips increment "other".
func SetTrackedZipCodes(zips []string) {
	trackedZipCodesMu.Lock()
	defer trackedZipCodesMu.Unlock()
	trackedZipCodes = make(map[string]struct{}, len(zips))
	for _, z := range zips {
		trackedZipCodes[strings.TrimSpace(z)] = struct{}{}
	}
}

// RecordWeatherQuery records a weather lookup for the given zip code.
func RecordWeatherQuery(zip string) {
	WeatherQueriesTotal.Inc()
	WeatherQueriesByZipTotal.WithLabelValues(MetricZipLabel(zip)).Inc()
}

// MetricZipLabel returns zip when it is on the allow-list, otherwise "other".
func MetricZipLabel(zip string) string {
	zip = strings.TrimSpace(zip)
	trackedZipCodesMu.RLock()
	_, ok := trackedZipCodes[zip] // nil map read is safe
	trackedZipCodesMu.RUnlock()
	if ok {
		return zip
	}
	return "other"
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
