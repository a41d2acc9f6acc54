// Package metrics instruments apply runs with Prometheus collectors.
// Collectors register on the default registry; Handler exposes them when
// apply is started with a metrics port.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	applyOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weft_apply_operations_total",
			Help: "Apply operations by resource kind and outcome.",
		},
		[]string{"kind", "result"},
	)

	applyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weft_apply_duration_seconds",
			Help:    "Wall-clock duration of apply runs.",
			Buckets: prometheus.DefBuckets,
		},
	)

	planOperations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weft_plan_operations",
			Help: "Operation count of the most recently emitted plan.",
		},
	)
)

// RecordOperation counts one finished operation.
func RecordOperation(kind, result string) {
	applyOperations.WithLabelValues(kind, result).Inc()
}

// ObserveApplyDuration records the duration of a whole apply run.
func ObserveApplyDuration(d time.Duration) {
	applyDuration.Observe(d.Seconds())
}

// SetPlanOperations publishes the size of the current plan.
func SetPlanOperations(n int) {
	planOperations.Set(float64(n))
}

// Handler serves the default registry, promhttp's content negotiation
// included.
func Handler() http.Handler {
	return promhttp.Handler()
}
