package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Rating Metrics
	RatingsTotal        *prometheus.CounterVec
	RatingBatchDuration prometheus.Histogram

	// Solver Metrics
	SolvesTotal   *prometheus.CounterVec
	SolveDuration *prometheus.HistogramVec

	// Contingency Metrics
	ContingenciesTotal *prometheus.CounterVec
	IslandedBuses      prometheus.Gauge

	// Load Scaling Metrics
	LoadScaleHoursTotal *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initRatingMetrics()
	r.initSolverMetrics()
	r.initContingencyMetrics()
	r.initLoadScaleMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
