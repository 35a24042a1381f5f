package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_http_requests_total",
			Help: "HTTP requests served.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CardsBuiltTotal counts permission cards built, by whether anything rendered.
	CardsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_permission_cards_built_total",
			Help: "Permission cards built.",
		},
		[]string{"outcome"},
	)

	// CardCacheTotal counts card cache lookups by result.
	CardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_permission_card_cache_total",
			Help: "Permission card cache lookups.",
		},
		[]string{"result"},
	)
)

// RecordCardBuilt records one built card.
func RecordCardBuilt(rendered bool) {
	outcome := "empty"
	if rendered {
		outcome = "rendered"
	}
	CardsBuiltTotal.WithLabelValues(outcome).Inc()
}

// RecordCardCache records a cache lookup: "hit", "miss" or "error".
func RecordCardCache(result string) {
	CardCacheTotal.WithLabelValues(result).Inc()
}
