// Package metrics exposes Prometheus instrumentation for the rating and
// contingency engines.
package metrics

import (
	"time"
)

// RecordRating records one per-line rating by outcome
func (r *Registry) RecordRating(status string) {
	r.RatingsTotal.WithLabelValues(status).Inc()
}

// ObserveRatingDuration records the duration of a full rating pass
func (r *Registry) ObserveRatingDuration(duration time.Duration) {
	r.RatingBatchDuration.Observe(duration.Seconds())
}

// RecordSolve records a power flow solve with its mode and duration
func (r *Registry) RecordSolve(mode, status string, duration time.Duration) {
	r.SolvesTotal.WithLabelValues(mode, status).Inc()
	r.SolveDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordContingency records an outage scenario by outcome
func (r *Registry) RecordContingency(status string) {
	r.ContingenciesTotal.WithLabelValues(status).Inc()
}

// SetIslandedBuses updates the islanded-bus gauge for the latest scenario
func (r *Registry) SetIslandedBuses(n int) {
	r.IslandedBuses.Set(float64(n))
}

// RecordLoadScaleHour records one hourly load-scaled solve by outcome
func (r *Registry) RecordLoadScaleHour(status string) {
	r.LoadScaleHoursTotal.WithLabelValues(status).Inc()
}
