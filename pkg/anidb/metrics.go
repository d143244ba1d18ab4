package anidb

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// clientMetrics holds the counters a Client maintains about its own
// traffic and cache behavior.
type clientMetrics struct {
	set *metrics.Set

	requestsTotal     *metrics.Counter
	cacheHitsTotal    *metrics.Counter
	cacheMissesTotal  *metrics.Counter
	rateLimitWaitsSec *metrics.Histogram
	authsTotal        *metrics.Counter
	errorsTotal       *metrics.Counter
}

func newClientMetrics() *clientMetrics {
	set := metrics.NewSet()
	return &clientMetrics{
		set:               set,
		requestsTotal:     set.NewCounter(`anidb_requests_total`),
		cacheHitsTotal:    set.NewCounter(`anidb_cache_hits_total`),
		cacheMissesTotal:  set.NewCounter(`anidb_cache_misses_total`),
		rateLimitWaitsSec: set.NewHistogram(`anidb_ratelimit_wait_seconds`),
		authsTotal:        set.NewCounter(`anidb_auths_total`),
		errorsTotal:       set.NewCounter(`anidb_errors_total`),
	}
}

// WritePrometheus writes the client's metrics to w in Prometheus text
// exposition format.
func (c *Client) WritePrometheus(w io.Writer) {
	c.metrics.set.WritePrometheus(w)
}
