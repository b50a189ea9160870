package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscope_api_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"api", "endpoint", "status"}, // gamma/data/lb/profile, /holders, success/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderscope_api_request_duration_seconds",
			Help:    "Duration of upstream API requests",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"api", "endpoint"},
	)

	RateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderscope_ratelimit_wait_seconds",
			Help:    "Time spent waiting on per-source rate limiters",
			Buckets: []float64{.001, .01, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"source"},
	)

	// Enrichment metrics
	HoldersEnriched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscope_holders_enriched_total",
			Help: "Total number of holder stubs processed by the enrichment pipeline",
		},
		[]string{"side", "status"}, // YES/NO, enriched/skipped_no_wallet
	)

	EnrichmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holderscope_enrichment_duration_seconds",
			Help:    "Duration of one enrichment pass over a holder list",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"side"},
	)

	PnLResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscope_pnl_resolutions_total",
			Help: "All-time P&L resolutions by the strategy that produced the value",
		},
		[]string{"strategy"}, // profit_api, leaderboard, profile_page, derived_positions, unknown
	)

	// Caller-side event cache
	EventCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscope_event_cache_total",
			Help: "Event cache lookups",
		},
		[]string{"result"}, // hit/miss
	)

	// Publishing
	Published = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscope_publish_total",
			Help: "Report summaries published",
		},
		[]string{"sender", "status"},
	)

	// System health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holderscope_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"}, // healthy/unhealthy
	)
)

// RecordAPIRequest records upstream request metrics
func RecordAPIRequest(api, endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	APIRequests.WithLabelValues(api, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(api, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitWait records time spent blocked on a source limiter
func RecordRateLimitWait(source string, d time.Duration) {
	if source == "" {
		return
	}
	RateLimitWait.WithLabelValues(source).Observe(d.Seconds())
}

// RecordHolder records the outcome of processing one holder stub
func RecordHolder(side, status string) {
	HoldersEnriched.WithLabelValues(side, status).Inc()
}

// RecordEnrichment records the duration of one enrichment pass
func RecordEnrichment(side string, d time.Duration) {
	EnrichmentDuration.WithLabelValues(side).Observe(d.Seconds())
}

// RecordPnLResolution records which strategy resolved an all-time P&L
func RecordPnLResolution(strategy string) {
	PnLResolutions.WithLabelValues(strategy).Inc()
}

// RecordCacheLookup records an event cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EventCache.WithLabelValues(result).Inc()
}

// RecordPublish records a publish attempt
func RecordPublish(sender string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Published.WithLabelValues(sender, status).Inc()
}

// RecordHealthCheck records health check status
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}
