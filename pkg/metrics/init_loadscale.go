package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLoadScaleMetrics() {
	r.LoadScaleHoursTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridrate_loadscale_hours_total",
			Help: "Total number of load-scaled hourly solves",
		},
		[]string{"status"},
	)
}
