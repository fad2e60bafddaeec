package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initContingencyMetrics() {
	r.ContingenciesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridrate_contingencies_total",
			Help: "Total number of outage scenarios simulated",
		},
		[]string{"status"},
	)

	r.IslandedBuses = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridrate_islanded_buses",
			Help: "Number of islanded buses in the most recent scenario",
		},
	)
}
