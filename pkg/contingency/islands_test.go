package contingency

import (
	"testing"

	"github.com/wattline/gridrate/pkg/grid"
)

func TestDetectIslandedBuses_IntactTopology(t *testing.T) {
	a := triangleArena(t)
	if got := DetectIslandedBuses(a.NewSnapshot()); len(got) != 0 {
		t.Errorf("Intact topology islanded = %v, want none", got)
	}
}

func TestDetectIslandedBuses_LeafCutOff(t *testing.T) {
	a := triangleArena(t)
	snap := a.NewSnapshot()
	snap.Deactivate("line_02", "line_12")

	got := DetectIslandedBuses(snap)
	if len(got) != 1 || got[0].BusID != "b2" {
		t.Fatalf("Islanded = %v, want [b2]", got)
	}
	if got[0].Name != "Mill" || got[0].VoltageKV != 230 {
		t.Errorf("Islanded bus = %+v, want Mill at 230 kV", got[0])
	}
}

func TestDetectIslandedBuses_GeneratorSideSurvives(t *testing.T) {
	a := triangleArena(t)
	snap := a.NewSnapshot()
	// Splitting the loop leaves b1 and b2 connected to each other but not
	// to the generator at b0.
	snap.Deactivate("line_01", "line_02")

	got := DetectIslandedBuses(snap)
	if len(got) != 2 {
		t.Fatalf("Islanded = %v, want [b1 b2]", got)
	}
	if got[0].BusID != "b1" || got[1].BusID != "b2" {
		t.Errorf("Islanded order = [%s %s], want sorted [b1 b2]", got[0].BusID, got[1].BusID)
	}
}

func TestDetectIslandedBuses_NoGenerators(t *testing.T) {
	a, err := grid.NewArena(nil,
		[]grid.Bus{{ID: "b0", VNomKV: 115}, {ID: "b1", VNomKV: 115}},
		[]grid.LineSpec{{ID: "l", Bus0: "b0", Bus1: "b1", X: 0.1, SNomMVA: 50}},
		nil,
		[]grid.Load{{ID: "d", Bus: "b1", PSetMW: 20}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewArena failed: %v", err)
	}

	// Without a source there is nothing to reach from.
	got := DetectIslandedBuses(a.NewSnapshot())
	if len(got) != 2 {
		t.Errorf("Islanded = %v, want every bus", got)
	}
}
