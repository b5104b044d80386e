package chart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the builder's collectors. Every collector is labelled by operation:
// "density", "combined_density" or "tier_series".
type Metrics struct {
	buildDuration *prometheus.HistogramVec
	points        *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewMetrics registers the builder's collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		buildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chart_build_duration_seconds",
			Help:    "Time spent building one chart.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
		points: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_points_total",
			Help: "Number of chart points produced.",
		}, []string{"operation"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_build_failures_total",
			Help: "Number of chart builds that returned an error.",
		}, []string{"operation"}),
	}
}
