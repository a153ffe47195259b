package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vibecheck"

var (
	// SearchTierOutcomes counts each search tier attempt by result (ok, error, fallback)
	SearchTierOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_tier_outcomes_total",
		Help:      "Search tier attempts by tier and outcome.",
	}, []string{"tier", "outcome"})

	// SearchCacheHits counts searches served from the cache
	SearchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_cache_hits_total",
		Help:      "Searches answered from the result cache.",
	})

	// ResolverOutcomes counts metadata finalization by path (ai, fallback) and reason
	ResolverOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolver_outcomes_total",
		Help:      "Song metadata finalization by path and reason.",
	}, []string{"path", "reason"})

	// TokenExchanges counts bearer token exchanges by result
	TokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "Bearer token exchanges by source and result.",
	}, []string{"source", "result"})

	// EntriesSubmitted counts persisted room entries
	EntriesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_submitted_total",
		Help:      "Song entries appended to rooms.",
	})

	// APIRequestDuration tracks request latency by route
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency using the matched gin route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		APIRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
