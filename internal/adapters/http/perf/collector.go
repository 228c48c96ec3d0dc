// Package perf records request, query, cache and identity timings as
// Prometheus metrics.
package perf

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "primefit"

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing observation.
type Entry struct {
	Kind       EntryKind
	Path       string // route pattern or "ExecContext" style op name
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Cache lookup outcomes.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared"
)

// Collector owns a private registry so tests and multiple servers do not
// collide on the default one. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry
	requests *prometheus.HistogramVec
	queries  *prometheus.HistogramVec
	cache    *prometheus.CounterVec
	views    *prometheus.CounterVec
	sessions *prometheus.CounterVec
	count    int64
}

// NewCollector creates a collector with its own registry.
// PRE: none
// POST: Returns a collector whose metrics are served by Handler
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		queries: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of database calls in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by outcome",
		}, []string{"result"}),
		views: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_views_total",
			Help:      "Views chosen by the identity resolver",
		}, []string{"view"}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_session_reads_total",
			Help:      "Member session reads by state",
		}, []string{"state"}),
	}
}

// Record observes a request or query timing.
// PRE: e is a valid Entry
// POST: histogram updated, TotalRecorded incremented
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	seconds := e.DurationMs / 1000.0
	switch e.Kind {
	case KindRequest:
		c.requests.WithLabelValues(e.Path, strconv.Itoa(e.StatusCode)).Observe(seconds)
	case KindQuery:
		c.queries.WithLabelValues(e.Path).Observe(seconds)
	}
	atomic.AddInt64(&c.count, 1)
}

// CacheLookup counts one query cache lookup.
func (c *Collector) CacheLookup(result string) {
	if c == nil {
		return
	}
	c.cache.WithLabelValues(result).Inc()
}

// IdentityView counts one resolver decision.
func (c *Collector) IdentityView(view string) {
	if c == nil {
		return
	}
	c.views.WithLabelValues(view).Inc()
}

// SessionRead counts one member session read.
func (c *Collector) SessionRead(state string) {
	if c == nil {
		return
	}
	c.sessions.WithLabelValues(state).Inc()
}

// TotalRecorded returns the number of timings ever recorded.
// PRE: none
// POST: returns count >= 0
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return atomic.LoadInt64(&c.count)
}

// Handler serves the registry in the Prometheus text format. A nil
// collector serves 404.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
