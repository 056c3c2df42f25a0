package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourinfo_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourinfo_delivery_attempts_total",
			Help: "Mail delivery attempts by provider, message kind and outcome",
		},
		[]string{"provider", "kind", "outcome"},
	)

	DeliveryFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourinfo_delivery_fallbacks_total",
			Help: "Times the secondary mail channel was attempted",
		},
	)

	StatsTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourinfo_stats_timeouts_total",
			Help: "Aggregations that hit the global deadline",
		},
	)

	FeedEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tourinfo_feed_entries",
			Help: "Entries currently held by the emergency feed",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourinfo_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
