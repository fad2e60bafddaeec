package contingency

import (
	"errors"
	"math"
	"testing"

	"github.com/wattline/gridrate/pkg/flow"
	"github.com/wattline/gridrate/pkg/grid"
	"github.com/wattline/gridrate/pkg/logging"
	"github.com/wattline/gridrate/pkg/rating"
)

// triangleArena is a three-bus loop: gen at b0, loads at b1 and b2, a line
// between every bus pair.
func triangleArena(t *testing.T) *grid.Arena {
	t.Helper()
	a, err := grid.NewArena(nil,
		[]grid.Bus{
			{ID: "b0", Name: "Gen", VNomKV: 230, X: 0, Y: 0},
			{ID: "b1", Name: "City", VNomKV: 230, X: 1, Y: 0},
			{ID: "b2", Name: "Mill", VNomKV: 230, X: 0, Y: 1},
		},
		[]grid.LineSpec{
			{ID: "line_01", Bus0: "b0", Bus1: "b1", R: 0.01, X: 0.1, SNomMVA: 120},
			{ID: "line_02", Bus0: "b0", Bus1: "b2", R: 0.01, X: 0.1, SNomMVA: 120},
			{ID: "line_12", Bus0: "b1", Bus1: "b2", R: 0.01, X: 0.1, SNomMVA: 60},
		},
		[]grid.Generator{{ID: "g0", Bus: "b0", PSetMW: 150}},
		[]grid.Load{
			{ID: "d1", Bus: "b1", PSetMW: 80},
			{ID: "d2", Bus: "b2", PSetMW: 70},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("NewArena failed: %v", err)
	}
	return a
}

func newTestEngine(t *testing.T, a *grid.Arena, solver flow.Solver) *Engine {
	t.Helper()
	return New(a, solver, Config{}).WithLogger(logging.NewNopLogger())
}

func TestSimulateOutage_UnknownLines(t *testing.T) {
	a := triangleArena(t)
	eng := newTestEngine(t, a, flow.NewDCSolver())

	_, err := eng.SimulateOutage([]string{"line_01", "ghost_1", "ghost_2"}, true)
	if err == nil {
		t.Fatal("Expected error for unknown line names")
	}

	var unknown *UnknownLinesError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected *UnknownLinesError, got %T: %v", err, err)
	}
	if len(unknown.Unknown) != 2 || unknown.Unknown[0] != "ghost_1" {
		t.Errorf("Unknown = %v, want [ghost_1 ghost_2]", unknown.Unknown)
	}
	if len(unknown.Valid) != 3 {
		t.Errorf("Valid = %v, want all 3 line names", unknown.Valid)
	}
}

func TestSimulateOutage_EmptyOutageMatchesBaseline(t *testing.T) {
	a := triangleArena(t)
	eng := newTestEngine(t, a, flow.NewDCSolver())

	res, err := eng.SimulateOutage(nil, true)
	if err != nil {
		t.Fatalf("SimulateOutage failed: %v", err)
	}

	// With nothing outaged the scenario is the baseline: every line's change
	// is zero and its stress matches its baseline classification.
	for _, ll := range res.LineLoadings {
		if !ll.Active || ll.Outaged {
			t.Errorf("%s should be active and not outaged", ll.LineID)
		}
		if !ll.LoadingChangePct.Valid || math.Abs(ll.LoadingChangePct.Value) > 1e-9 {
			t.Errorf("%s loading change = %+v, want 0", ll.LineID, ll.LoadingChangePct)
		}
		if ll.Stress != rating.Classify(ll.BaselineLoadingPct) {
			t.Errorf("%s stress %v differs from baseline classification", ll.LineID, ll.Stress)
		}
	}
	if len(res.IslandedBuses) != 0 {
		t.Errorf("Baseline islanded buses = %v, want none", res.IslandedBuses)
	}
	if res.ScenarioID == "" {
		t.Error("ScenarioID should be assigned")
	}
}

func TestSimulateOutage_Redistribution(t *testing.T) {
	a := triangleArena(t)
	eng := newTestEngine(t, a, flow.NewDCSolver())

	res, err := eng.SimulateOutage([]string{"line_01"}, true)
	if err != nil {
		t.Fatalf("SimulateOutage failed: %v", err)
	}

	byID := make(map[string]LineLoading)
	for _, ll := range res.LineLoadings {
		byID[ll.LineID] = ll
	}

	out := byID["line_01"]
	if out.Active || !out.Outaged {
		t.Errorf("line_01 = %+v, want inactive outaged", out)
	}
	if out.Stress != rating.StressOutaged {
		t.Errorf("line_01 stress = %v, want outaged", out.Stress)
	}
	if out.FlowMW != 0 {
		t.Errorf("line_01 flow = %v, want 0", out.FlowMW)
	}

	// All 150 MW now leaves b0 over line_02; b1's 80 MW arrives via b2.
	if got := byID["line_02"].FlowMW; math.Abs(got-150) > 1e-6 {
		t.Errorf("line_02 flow = %v MW, want 150", got)
	}
	if got := byID["line_12"].FlowMW; math.Abs(got-80) > 1e-6 {
		t.Errorf("line_12 flow = %v MW, want 80", got)
	}

	// line_12 runs at 80/0.95 = 84.2 MVA on 60 MVA (~140%); line_02 at
	// 150/0.95 = 157.9 MVA on 120 MVA (~132%). Both overload, worst first.
	if len(res.Overloaded) != 2 {
		t.Fatalf("Overloaded = %v, want line_12 and line_02", res.Overloaded)
	}
	if res.Overloaded[0].LineID != "line_12" || res.Overloaded[1].LineID != "line_02" {
		t.Errorf("Overloaded order = [%s %s], want [line_12 line_02]",
			res.Overloaded[0].LineID, res.Overloaded[1].LineID)
	}
	if res.Metrics.OutagedCount != 1 {
		t.Errorf("OutagedCount = %d, want 1", res.Metrics.OutagedCount)
	}
	if len(res.IslandedBuses) != 0 {
		t.Errorf("Islanded buses = %v, want none (loop survives)", res.IslandedBuses)
	}
}

func TestSimulateOutage_IslandedBus(t *testing.T) {
	a := triangleArena(t)
	eng := newTestEngine(t, a, flow.NewDCSolver())

	// Cutting both lines into b2 strands it.
	res, err := eng.SimulateOutage([]string{"line_02", "line_12"}, true)
	if err != nil {
		t.Fatalf("SimulateOutage failed: %v", err)
	}

	if len(res.IslandedBuses) != 1 {
		t.Fatalf("IslandedBuses = %v, want exactly b2", res.IslandedBuses)
	}
	ib := res.IslandedBuses[0]
	if ib.BusID != "b2" || ib.Name != "Mill" || ib.VoltageKV != 230 {
		t.Errorf("IslandedBus = %+v, want b2/Mill/230", ib)
	}
	if res.Metrics.IslandedBusCount != 1 {
		t.Errorf("IslandedBusCount = %d, want 1", res.Metrics.IslandedBusCount)
	}
}

func TestSimulateOutage_LinearFallbackRetry(t *testing.T) {
	a := triangleArena(t)
	stub := &flow.StubSolver{
		FlowsMW:      map[string]float64{"line_01": 80, "line_02": 70, "line_12": 5},
		ConvergeFail: true, // non-linear attempts report divergence
	}
	eng := newTestEngine(t, a, stub)

	res, err := eng.SimulateOutage([]string{"line_12"}, false)
	if err != nil {
		t.Fatalf("SimulateOutage failed: %v", err)
	}

	// The engine retried in linear mode and flagged the result.
	if !res.Solve.Linear {
		t.Error("Result should be flagged linear after fallback")
	}
	if res.Solve.Converged {
		t.Error("Fallback result should not claim convergence")
	}
	// Two solves per snapshot (non-linear then linear), two snapshots.
	if stub.LinearCalls != 2 {
		t.Errorf("LinearCalls = %d, want 2 (one fallback per snapshot)", stub.LinearCalls)
	}
	if stub.Calls != 4 {
		t.Errorf("Calls = %d, want 4", stub.Calls)
	}
}

func TestSimulateOutage_SolverError(t *testing.T) {
	a := triangleArena(t)
	stub := &flow.StubSolver{Err: errors.New("matrix blew up")}
	eng := newTestEngine(t, a, stub)

	_, err := eng.SimulateOutage([]string{"line_01"}, false)
	if err == nil {
		t.Fatal("Expected error when both solve modes fail")
	}
}

func TestRunScenarios(t *testing.T) {
	a := triangleArena(t)
	eng := newTestEngine(t, a, flow.NewDCSolver())

	results := eng.RunScenarios([][]string{
		{"line_01"},
		{"line_01", "line_02"},
		{"ghost"},
	}, true)

	if len(results) != 3 {
		t.Fatalf("Got %d scenario results, want 3", len(results))
	}
	if results[0].Label != "N-1" || results[1].Label != "N-2" {
		t.Errorf("Labels = %s, %s; want N-1, N-2", results[0].Label, results[1].Label)
	}
	if results[0].Err != nil || results[1].Err != nil {
		t.Error("Valid scenarios should not error")
	}
	// A bad scenario fails alone without stopping the batch.
	if results[2].Err == nil {
		t.Error("Unknown-line scenario should carry its error")
	}
	if results[0].Scenario != 1 || results[2].Scenario != 3 {
		t.Errorf("Scenario ordinals = %d, %d; want 1, 3", results[0].Scenario, results[2].Scenario)
	}
}

func TestSimulateOutage_AffectedThreshold(t *testing.T) {
	a := triangleArena(t)
	eng := New(a, flow.NewDCSolver(), Config{AffectedThresholdPct: 5}).
		WithLogger(logging.NewNopLogger())

	res, err := eng.SimulateOutage([]string{"line_01"}, true)
	if err != nil {
		t.Fatalf("SimulateOutage failed: %v", err)
	}

	// line_02 jumps from ~50 MW to 150 MW, far past any threshold; the
	// outaged line itself drops to zero, which also counts as affected.
	if len(res.Affected) < 2 {
		t.Errorf("Affected = %v, want at least line_02 and line_01", res.Affected)
	}
	for i := 1; i < len(res.Affected); i++ {
		a0 := math.Abs(res.Affected[i-1].LoadingChangePct.Or(0))
		a1 := math.Abs(res.Affected[i].LoadingChangePct.Or(0))
		if a0 < a1 {
			t.Errorf("Affected not sorted by |change| descending at %d", i)
		}
	}
}
