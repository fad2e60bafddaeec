package grid

import (
	"math"
	"testing"
)

func TestSnapshot_Defaults(t *testing.T) {
	a := testArena(t)
	s := a.NewSnapshot()

	if !s.IsActive("line_a") || !s.IsActive("line_b") {
		t.Error("All lines should start active")
	}
	if got := s.TotalLoadMW(); got != 150 {
		t.Errorf("TotalLoadMW() = %v, want 150", got)
	}
	if got := s.TotalGenMW(); got != 150 {
		t.Errorf("TotalGenMW() = %v, want 150", got)
	}
	if s.Converged {
		t.Error("Fresh snapshot should not be marked converged")
	}
}

func TestSnapshot_Deactivate(t *testing.T) {
	a := testArena(t)
	s := a.NewSnapshot()
	s.FlowsMW["line_a"] = 42

	s.Deactivate("line_a", "not_a_line")

	if s.IsActive("line_a") {
		t.Error("line_a should be inactive")
	}
	if s.FlowsMW["line_a"] != 0 {
		t.Errorf("Deactivated line flow = %v, want 0", s.FlowsMW["line_a"])
	}
	if !s.IsActive("line_b") {
		t.Error("line_b should still be active")
	}

	active := s.ActiveLineIDs()
	if len(active) != 1 || active[0] != "line_b" {
		t.Errorf("ActiveLineIDs() = %v, want [line_b]", active)
	}
}

func TestSnapshot_Scale(t *testing.T) {
	a := testArena(t)
	s := a.NewSnapshot()

	s.Scale(1.1)
	if got := s.TotalLoadMW(); math.Abs(got-165) > 1e-9 {
		t.Errorf("TotalLoadMW after 1.1x = %v, want 165", got)
	}
	if got := s.TotalGenMW(); math.Abs(got-165) > 1e-9 {
		t.Errorf("TotalGenMW after 1.1x = %v, want 165", got)
	}

	// Scale resets from the arena baseline, it does not compound.
	s.Scale(0.9)
	if got := s.TotalLoadMW(); math.Abs(got-135) > 1e-9 {
		t.Errorf("TotalLoadMW after 0.9x = %v, want 135 (no compounding)", got)
	}
}

func TestSnapshot_ScaleDoesNotTouchArena(t *testing.T) {
	a := testArena(t)
	s := a.NewSnapshot()

	s.Scale(2.0)
	if a.TotalLoadMW() != 150 {
		t.Errorf("Arena load = %v after snapshot scale, want 150", a.TotalLoadMW())
	}

	// A second snapshot starts from the untouched baseline.
	s2 := a.NewSnapshot()
	if s2.TotalLoadMW() != 150 {
		t.Errorf("Fresh snapshot load = %v, want 150", s2.TotalLoadMW())
	}
}

func TestSnapshot_BusInjectionsMW(t *testing.T) {
	a := testArena(t)
	s := a.NewSnapshot()

	inj := s.BusInjectionsMW()
	if inj["bus_0"] != 150 {
		t.Errorf("bus_0 injection = %v, want 150", inj["bus_0"])
	}
	if inj["bus_1"] != -90 {
		t.Errorf("bus_1 injection = %v, want -90", inj["bus_1"])
	}
	if inj["bus_2"] != -60 {
		t.Errorf("bus_2 injection = %v, want -60", inj["bus_2"])
	}

	var sum float64
	for _, v := range inj {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("Balanced system injections sum to %v, want 0", sum)
	}
}

func TestSnapshot_ActiveAdjacency(t *testing.T) {
	a := testArena(t)
	s := a.NewSnapshot()

	adj := s.ActiveAdjacency()
	if len(adj) != 3 {
		t.Fatalf("Adjacency has %d buses, want 3", len(adj))
	}
	if len(adj["bus_1"]) != 2 {
		t.Errorf("bus_1 degree = %d, want 2", len(adj["bus_1"]))
	}

	s.Deactivate("line_b")
	adj = s.ActiveAdjacency()
	if len(adj["bus_2"]) != 0 {
		t.Errorf("bus_2 degree after outage = %d, want 0", len(adj["bus_2"]))
	}
	// Isolated buses still appear as keys.
	if _, ok := adj["bus_2"]; !ok {
		t.Error("Isolated bus missing from adjacency")
	}
}
