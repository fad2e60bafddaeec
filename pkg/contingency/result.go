package contingency

import (
	"fmt"
	"strings"

	"github.com/wattline/gridrate/pkg/grid"
	"github.com/wattline/gridrate/pkg/rating"
)

// LineLoading is the before/after state of one line in an outage scenario.
type LineLoading struct {
	LineID  string  `json:"line_id"`
	Bus0    string  `json:"bus0"`
	Bus1    string  `json:"bus1"`
	SNomMVA float64 `json:"s_nom_mva"`

	FlowMW  float64 `json:"flow_mw"`
	FlowMVA float64 `json:"flow_mva"`

	LoadingPct         grid.OptFloat `json:"loading_pct"`
	BaselineLoadingPct grid.OptFloat `json:"baseline_loading_pct"`
	LoadingChangePct   grid.OptFloat `json:"loading_change_pct"`

	Active  bool          `json:"active"`
	Outaged bool          `json:"outaged"`
	Stress  rating.Stress `json:"stress"`
}

// IslandedBus reports a bus left with no path to any generation source.
type IslandedBus struct {
	BusID     string  `json:"bus_id"`
	Name      string  `json:"name"`
	VoltageKV float64 `json:"voltage_kv"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// SolveInfo carries the solver convergence metadata for the scenario.
type SolveInfo struct {
	Converged bool    `json:"converged"`
	Linear    bool    `json:"linear"`
	MaxError  float64 `json:"max_error"`
}

// Metrics aggregates a scenario. Loading statistics cover active,
// non-outaged lines only.
type Metrics struct {
	TotalLines       int `json:"total_lines"`
	OutagedCount     int `json:"outaged_count"`
	ActiveCount      int `json:"active_count"`
	OverloadedCount  int `json:"overloaded_count"`
	HighStressCount  int `json:"high_stress_count"`
	AffectedCount    int `json:"affected_count"`
	IslandedBusCount int `json:"islanded_bus_count"`

	MaxLoadingPct         grid.OptFloat `json:"max_loading_pct"`
	AvgLoadingPct         grid.OptFloat `json:"avg_loading_pct"`
	MaxLoadingIncreasePct grid.OptFloat `json:"max_loading_increase_pct"`
	BaselineMaxLoadingPct grid.OptFloat `json:"baseline_max_loading_pct"`
	BaselineAvgLoadingPct grid.OptFloat `json:"baseline_avg_loading_pct"`
}

// Result is one outage simulation's complete outcome. Immutable once
// returned.
type Result struct {
	ScenarioID   string   `json:"scenario_id"`
	OutagedLines []string `json:"outaged_lines"`

	// LineLoadings covers every line in the topology, active or not.
	LineLoadings []LineLoading `json:"line_loadings"`

	// Overloaded and HighStress are sorted by loading descending; Affected
	// by |loading change| descending.
	Overloaded []LineLoading `json:"overloaded"`
	HighStress []LineLoading `json:"high_stress"`
	Affected   []LineLoading `json:"affected"`

	IslandedBuses []IslandedBus `json:"islanded_buses"`

	Metrics Metrics   `json:"metrics"`
	Solve   SolveInfo `json:"solve"`
}

// ScenarioResult tags a Result for batch N-k runs.
type ScenarioResult struct {
	Scenario int      `json:"scenario"`
	Label    string   `json:"label"` // "N-1", "N-2", ...
	Result   *Result  `json:"result,omitempty"`
	Err      error    `json:"-"`
}

// UnknownLinesError rejects an outage request naming lines absent from the
// topology. It carries the full valid-name set for the caller.
type UnknownLinesError struct {
	Unknown []string
	Valid   []string
}

func (e *UnknownLinesError) Error() string {
	return fmt.Sprintf("unknown line names: %s (valid: %s)",
		strings.Join(e.Unknown, ", "), strings.Join(e.Valid, ", "))
}
