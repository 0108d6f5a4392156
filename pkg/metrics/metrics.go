// Package metrics provides Prometheus metrics for the unit price service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ObservationsPushedTotal is a counter of observations pushed into window stores.
	ObservationsPushedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "observations_pushed_total",
			Help: "Total number of spot observations pushed into sliding windows",
		},
		[]string{"instrument"},
	)

	// WindowSize is a gauge of the number of retained observations per instrument.
	WindowSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "window_size",
			Help: "Number of observations currently retained in the sliding window",
		},
		[]string{"instrument"},
	)

	// FeedFetchesTotal is a counter of outbound feed fetches by outcome.
	FeedFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of outbound feed fetches",
		},
		[]string{"feed", "outcome"},
	)

	// FeedFallbacksTotal is a counter of fallback substitutions per instrument.
	FeedFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fallbacks_total",
			Help: "Total number of fallback values substituted for unavailable feeds",
		},
		[]string{"instrument"},
	)

	// ComputeCyclesTotal is a counter of unit price compute cycles by status.
	ComputeCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compute_cycles_total",
			Help: "Total number of unit price compute cycles",
		},
		[]string{"status"},
	)

	// ComputeDuration is a histogram of compute cycle durations.
	ComputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compute_duration_seconds",
			Help:    "Duration of unit price compute cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)

	// WebSocketClients is a gauge of connected WebSocket clients.
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	// CandlesTotal is a gauge of stored candles per timeframe.
	CandlesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "candles_total",
			Help: "Number of candles currently stored per timeframe",
		},
		[]string{"timeframe"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	prometheus.MustRegister(
		ObservationsPushedTotal,
		WindowSize,
		FeedFetchesTotal,
		FeedFallbacksTotal,
		ComputeCyclesTotal,
		ComputeDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WebSocketClients,
		CandlesTotal,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordObservation records a pushed observation and the resulting window size.
func RecordObservation(instrument string, retained int) {
	ObservationsPushedTotal.WithLabelValues(instrument).Inc()
	WindowSize.WithLabelValues(instrument).Set(float64(retained))
}

// RecordFeedFetch records an outbound feed fetch outcome.
func RecordFeedFetch(feed, outcome string) {
	FeedFetchesTotal.WithLabelValues(feed, outcome).Inc()
}

// RecordFeedFallback records a fallback substitution for an instrument.
func RecordFeedFallback(instrument string) {
	FeedFallbacksTotal.WithLabelValues(instrument).Inc()
}

// RecordComputeCycle records a compute cycle outcome and duration.
func RecordComputeCycle(status string, duration time.Duration) {
	ComputeCyclesTotal.WithLabelValues(status).Inc()
	ComputeDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCandleCount records the current candle count for a timeframe.
func RecordCandleCount(timeframe string, count int) {
	CandlesTotal.WithLabelValues(timeframe).Set(float64(count))
}
