package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRatingMetrics() {
	r.RatingsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridrate_line_ratings_total",
			Help: "Total number of per-line thermal ratings computed",
		},
		[]string{"status"},
	)

	r.RatingBatchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridrate_rating_batch_duration_seconds",
			Help:    "Duration of a full rate-all-lines pass in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)
}
