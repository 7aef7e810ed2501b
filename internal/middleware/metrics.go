package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name. The cache
// package increments it from a client hook.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis command errors.",
	},
	[]string{"command"},
)

// PageCacheHits counts home-feed page cache hits and misses.
var PageCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quill_page_cache_requests_total",
		Help: "Rendered-page cache lookups by outcome.",
	},
	[]string{"outcome"},
)
