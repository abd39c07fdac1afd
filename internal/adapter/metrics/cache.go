package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the reviews cache.
type CacheMetrics struct {
	Hits           *prometheus.CounterVec
	Misses         *prometheus.CounterVec
	UpstreamErrors prometheus.Counter
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reviews_cache",
			Name:      "hits_total",
			Help:      "Total number of reviews cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reviews_cache",
			Name:      "misses_total",
			Help:      "Total number of reviews cache misses, by layer.",
		}, []string{"layer"}),
		UpstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reviews_cache",
			Name:      "upstream_errors_total",
			Help:      "Total number of failed upstream review fetches.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.UpstreamErrors)
	return m
}
