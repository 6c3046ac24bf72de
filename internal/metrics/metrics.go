package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "upstream_calls_total",
			Help:      "Calls made to the content API.",
		},
		[]string{"op", "outcome"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "upstream_duration_seconds",
			Help:      "Latency of content API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"op"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result.",
		},
		[]string{"result"},
	)

	unresolvedRefs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "viewmodel",
			Name:      "unresolved_refs_total",
			Help:      "Ordering references that matched no entry.",
		},
		[]string{"ordering"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		upstreamCalls,
		upstreamDuration,
		cacheLookups,
		unresolvedRefs,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpstream records one content API call.
func ObserveUpstream(op string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamCalls.WithLabelValues(op, outcome).Inc()
	upstreamDuration.WithLabelValues(op).Observe(d.Seconds())
}

// CacheHit and CacheMiss count result cache lookups.
func CacheHit()  { cacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }

// CacheError counts lookups that failed and fell through to the upstream.
func CacheError() { cacheLookups.WithLabelValues("error").Inc() }

// UnresolvedRefs counts ordering references that resolved to nothing.
func UnresolvedRefs(ordering string, n int) {
	if n > 0 {
		unresolvedRefs.WithLabelValues(ordering).Add(float64(n))
	}
}
