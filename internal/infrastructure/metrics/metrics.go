// Package metrics exposes Prometheus collectors for rate refreshes and HTTP traffic.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a per-source rate fetch
const (
	OutcomeLive   = "live"
	OutcomeCache  = "cache"
	OutcomeFailed = "failed"
)

// Collector owns a private registry so tests can build as many as they like
type Collector struct {
	registry        *prometheus.Registry
	rateFetches     *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates a collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rateFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxw_rate_fetch_total",
				Help: "Rate fetches per source by outcome (live, cache, failed)",
			},
			[]string{"source", "outcome"},
		),
		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxw_rate_refresh_duration_seconds",
				Help:    "Duration of a full rate refresh",
				Buckets: prometheus.DefBuckets,
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxw_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxw_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	c.registry.MustRegister(c.rateFetches, c.refreshDuration, c.httpRequests, c.httpDuration)
	return c
}

// ObserveRateFetch counts one fetch of source ("fiat" or "crypto")
func (c *Collector) ObserveRateFetch(source, outcome string) {
	if c == nil {
		return
	}
	c.rateFetches.WithLabelValues(source, outcome).Inc()
}

// ObserveRefresh records how long a refresh took
func (c *Collector) ObserveRefresh(d time.Duration) {
	if c == nil {
		return
	}
	c.refreshDuration.Observe(d.Seconds())
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(route, method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RateFetches exposes the fetch counter for assertions
func (c *Collector) RateFetches() *prometheus.CounterVec {
	return c.rateFetches
}

// HTTPRequests exposes the request counter for assertions
func (c *Collector) HTTPRequests() *prometheus.CounterVec {
	return c.httpRequests
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
