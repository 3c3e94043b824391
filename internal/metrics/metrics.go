// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package metrics provides Prometheus instrumentation for:
//   - External gateway calls (TMDB, Letterboxd) by endpoint and outcome
//   - Memoization cache efficiency
//   - Recommendation build latency and candidate counts
//   - HTTP API latency
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayRequests counts external API/scrape calls.
	// gateway: "tmdb" or "letterboxd"; endpoint: "search", "recommendations",
	// "popular", "watchlist", "films"; outcome: "ok", "empty", "error".
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscout_gateway_requests_total",
			Help: "Total number of external gateway calls",
		},
		[]string{"gateway", "endpoint", "outcome"},
	)

	// GatewayRequestDuration observes external call latency.
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelscout_gateway_request_duration_seconds",
			Help:    "Duration of external gateway calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway", "endpoint"},
	)

	// CacheHits counts memoization cache hits per call kind.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscout_cache_hits_total",
			Help: "Total number of memoization cache hits",
		},
		[]string{"kind"},
	)

	// CacheMisses counts memoization cache misses per call kind.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscout_cache_misses_total",
			Help: "Total number of memoization cache misses",
		},
		[]string{"kind"},
	)

	// RecommendationBuildDuration observes full aggregate+score+rank runs.
	RecommendationBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelscout_recommendation_build_duration_seconds",
			Help:    "Duration of a full recommendation build in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// RecommendationCandidates observes candidate set size per run.
	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelscout_recommendation_candidates",
			Help:    "Number of candidates produced per recommendation run",
			Buckets: []float64{0, 5, 10, 20, 50, 100, 200, 500},
		},
	)

	// ProfileFetchErrors counts per-user catalog fetch failures.
	ProfileFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelscout_profile_fetch_errors_total",
			Help: "Total number of per-user Letterboxd fetch failures",
		},
	)

	// HTTPRequestDuration observes API endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelscout_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// CircuitBreakerState tracks breaker state per gateway (0 closed, 1 half-open, 2 open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelscout_circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed, 1=half-open, 2=open",
		},
		[]string{"gateway"},
	)
)

// ObserveGatewayCall records a completed gateway call with its outcome and duration.
func ObserveGatewayCall(gateway, endpoint, outcome string, start time.Time) {
	GatewayRequests.WithLabelValues(gateway, endpoint, outcome).Inc()
	GatewayRequestDuration.WithLabelValues(gateway, endpoint).Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, path string, status int, start time.Time) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
