package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quill_redis_errors_total",
	Help: "Number of Redis command errors",
}, []string{"command"})

// PageCacheHits counts index page cache hits.
var PageCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "quill_page_cache_hits_total",
	Help: "Number of index page cache hits",
})

// PageCacheMisses counts index page cache misses.
var PageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "quill_page_cache_misses_total",
	Help: "Number of index page cache misses",
})
