// Package metrics provides a per-operation latency recorder for the query
// facade: one histogram, labeled by operation name, observed around every
// facade call.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency wraps a single HistogramVec labeled by operation name.
type Latency struct {
	histogram *prometheus.HistogramVec
}

// NewLatency registers a histogram vector under reg, or the default
// registerer if reg is nil. Construction panics on duplicate registration;
// catch that at startup, not mid-request.
func NewLatency(reg prometheus.Registerer) *Latency {
	factory := promauto.With(reg)
	return &Latency{
		histogram: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "query",
			Name:      "operation_latency_seconds",
			Help:      "Latency of query facade operations, by operation name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Observe times fn and records its duration under the given operation name.
func (l *Latency) Observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	l.histogram.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}
