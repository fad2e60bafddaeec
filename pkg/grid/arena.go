package grid

import (
	"fmt"
	"sort"
)

// Arena is the shared, read-only reference data for one network: conductor
// library, buses, line specs, generator and load schedules, and the nominal
// scheduled flows. An Arena is never mutated after construction; scenario
// engines derive fresh Snapshots from it instead. Safe for concurrent reads.
type Arena struct {
	conductors map[string]ConductorSpec
	buses      map[string]Bus
	lines      map[string]LineSpec
	generators []Generator
	loads      []Load

	// NominalFlowsMVA are the scheduled per-line flows used as the default
	// comparison point for static ratings.
	nominalFlows map[string]float64

	lineOrder []string
	busOrder  []string
}

// NewArena assembles an arena from provider records. Referential integrity of
// line endpoints and generator/load buses is enforced here; an unresolvable
// conductor reference is not an error (rating degrades to the static s_nom
// per the rating engine's contract).
func NewArena(conductors []ConductorSpec, buses []Bus, lines []LineSpec, gens []Generator, loads []Load, nominalFlowsMVA map[string]float64) (*Arena, error) {
	a := &Arena{
		conductors:   make(map[string]ConductorSpec, len(conductors)),
		buses:        make(map[string]Bus, len(buses)),
		lines:        make(map[string]LineSpec, len(lines)),
		generators:   append([]Generator(nil), gens...),
		loads:        append([]Load(nil), loads...),
		nominalFlows: make(map[string]float64, len(nominalFlowsMVA)),
	}

	for _, c := range conductors {
		if c.Name == "" {
			return nil, fmt.Errorf("conductor with empty name")
		}
		a.conductors[c.Name] = c
	}
	for _, b := range buses {
		if b.ID == "" {
			return nil, fmt.Errorf("bus with empty id")
		}
		if _, dup := a.buses[b.ID]; dup {
			return nil, fmt.Errorf("duplicate bus %q", b.ID)
		}
		a.buses[b.ID] = b
		a.busOrder = append(a.busOrder, b.ID)
	}
	for _, l := range lines {
		if l.ID == "" {
			return nil, fmt.Errorf("line with empty id")
		}
		if _, dup := a.lines[l.ID]; dup {
			return nil, fmt.Errorf("duplicate line %q", l.ID)
		}
		if l.SNomMVA <= 0 {
			return nil, fmt.Errorf("line %q: s_nom must be positive, got %v", l.ID, l.SNomMVA)
		}
		if _, ok := a.buses[l.Bus0]; !ok {
			return nil, fmt.Errorf("line %q: unknown bus0 %q", l.ID, l.Bus0)
		}
		if _, ok := a.buses[l.Bus1]; !ok {
			return nil, fmt.Errorf("line %q: unknown bus1 %q", l.ID, l.Bus1)
		}
		a.lines[l.ID] = l
		a.lineOrder = append(a.lineOrder, l.ID)
	}
	for _, g := range a.generators {
		if _, ok := a.buses[g.Bus]; !ok {
			return nil, fmt.Errorf("generator %q: unknown bus %q", g.ID, g.Bus)
		}
	}
	for _, d := range a.loads {
		if _, ok := a.buses[d.Bus]; !ok {
			return nil, fmt.Errorf("load %q: unknown bus %q", d.ID, d.Bus)
		}
	}
	for id, f := range nominalFlowsMVA {
		if _, ok := a.lines[id]; !ok {
			return nil, fmt.Errorf("nominal flow for unknown line %q", id)
		}
		a.nominalFlows[id] = f
	}

	sort.Strings(a.lineOrder)
	sort.Strings(a.busOrder)
	return a, nil
}

// Conductor looks up a conductor spec by name.
func (a *Arena) Conductor(name string) (ConductorSpec, bool) {
	c, ok := a.conductors[name]
	return c, ok
}

// Line looks up a line spec.
func (a *Arena) Line(id string) (LineSpec, bool) {
	l, ok := a.lines[id]
	return l, ok
}

// Bus looks up a bus.
func (a *Arena) Bus(id string) (Bus, bool) {
	b, ok := a.buses[id]
	return b, ok
}

// LineIDs returns all line ids in a stable order.
func (a *Arena) LineIDs() []string {
	return append([]string(nil), a.lineOrder...)
}

// BusIDs returns all bus ids in a stable order.
func (a *Arena) BusIDs() []string {
	return append([]string(nil), a.busOrder...)
}

// Generators returns the generator schedule.
func (a *Arena) Generators() []Generator {
	return append([]Generator(nil), a.generators...)
}

// Loads returns the load schedule.
func (a *Arena) Loads() []Load {
	return append([]Load(nil), a.loads...)
}

// NominalFlowMVA returns the scheduled flow for a line, zero if none recorded.
func (a *Arena) NominalFlowMVA(lineID string) float64 {
	return a.nominalFlows[lineID]
}

// NominalFlowsMVA returns a copy of the full scheduled-flow table.
func (a *Arena) NominalFlowsMVA() map[string]float64 {
	out := make(map[string]float64, len(a.nominalFlows))
	for k, v := range a.nominalFlows {
		out[k] = v
	}
	return out
}

// LineVoltageKV returns the nominal voltage for a line, taken from its bus0.
func (a *Arena) LineVoltageKV(lineID string) (float64, bool) {
	l, ok := a.lines[lineID]
	if !ok {
		return 0, false
	}
	b, ok := a.buses[l.Bus0]
	if !ok {
		return 0, false
	}
	return b.VNomKV, true
}

// BusVoltageKV returns the nominal voltage of a bus.
func (a *Arena) BusVoltageKV(busID string) float64 {
	return a.buses[busID].VNomKV
}

// TotalLoadMW sums the baseline load schedule.
func (a *Arena) TotalLoadMW() float64 {
	var sum float64
	for _, d := range a.loads {
		sum += d.PSetMW
	}
	return sum
}

// TotalGenMW sums the baseline generation schedule.
func (a *Arena) TotalGenMW() float64 {
	var sum float64
	for _, g := range a.generators {
		sum += g.PSetMW
	}
	return sum
}

// GeneratorBuses returns the distinct set of buses hosting at least one
// generator, in stable order.
func (a *Arena) GeneratorBuses() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range a.generators {
		if !seen[g.Bus] {
			seen[g.Bus] = true
			out = append(out, g.Bus)
		}
	}
	sort.Strings(out)
	return out
}
