package metrics

import "github.com/prometheus/client_golang/prometheus"

// StatusMetrics holds Prometheus metrics for the shop status update pipeline.
type StatusMetrics struct {
	UpdatesApplied  *prometheus.CounterVec
	UpdatesRejected *prometheus.CounterVec
	ApplyDuration   prometheus.Histogram
}

// NewStatusMetrics creates and registers status pipeline metrics on the given registry.
func NewStatusMetrics(reg prometheus.Registerer) *StatusMetrics {
	m := &StatusMetrics{
		UpdatesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "updates_applied_total",
			Help:      "Total number of status updates applied, by source.",
		}, []string{"source"}),
		UpdatesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "updates_rejected_total",
			Help:      "Total number of status updates dropped, by reason.",
		}, []string{"reason"}),
		ApplyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "apply_duration_seconds",
			Help:      "Time to apply an update and fan it out, in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}

	reg.MustRegister(m.UpdatesApplied, m.UpdatesRejected, m.ApplyDuration)
	return m
}
