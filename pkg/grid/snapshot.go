package grid

import "sort"

// Snapshot is a mutable, exclusively-owned view of the network for one
// scenario evaluation: which lines are active, the scaled load and generator
// setpoints, and the solved flows. A Snapshot is derived fresh from an Arena
// per scenario and must never be shared across concurrent evaluations.
type Snapshot struct {
	arena *Arena

	active map[string]bool
	loadMW map[string]float64 // by load id
	genMW  map[string]float64 // by generator id

	// Solved state, populated by a flow solver.
	FlowsMW   map[string]float64 // signed, bus0 -> bus1 positive
	Converged bool
	Linear    bool
}

// NewSnapshot derives a fresh snapshot with all lines active and setpoints at
// their baseline values.
func (a *Arena) NewSnapshot() *Snapshot {
	s := &Snapshot{
		arena:   a,
		active:  make(map[string]bool, len(a.lines)),
		loadMW:  make(map[string]float64, len(a.loads)),
		genMW:   make(map[string]float64, len(a.generators)),
		FlowsMW: make(map[string]float64, len(a.lines)),
	}
	for id := range a.lines {
		s.active[id] = true
	}
	for _, d := range a.loads {
		s.loadMW[d.ID] = d.PSetMW
	}
	for _, g := range a.generators {
		s.genMW[g.ID] = g.PSetMW
	}
	return s
}

// Arena returns the reference data this snapshot was derived from.
func (s *Snapshot) Arena() *Arena {
	return s.arena
}

// Deactivate takes the named lines out of service: removed from the active
// set with any solved flow forced to zero.
func (s *Snapshot) Deactivate(lineIDs ...string) {
	for _, id := range lineIDs {
		if _, ok := s.active[id]; ok {
			s.active[id] = false
			s.FlowsMW[id] = 0
		}
	}
}

// IsActive reports whether a line is in service.
func (s *Snapshot) IsActive(lineID string) bool {
	return s.active[lineID]
}

// ActiveLineIDs returns in-service line ids in stable order.
func (s *Snapshot) ActiveLineIDs() []string {
	out := make([]string, 0, len(s.active))
	for id, on := range s.active {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Scale resets loads and generation to their stored baselines and multiplies
// both by factor. Scaling the two sides together preserves power balance.
func (s *Snapshot) Scale(factor float64) {
	for _, d := range s.arena.loads {
		s.loadMW[d.ID] = d.PSetMW * factor
	}
	for _, g := range s.arena.generators {
		s.genMW[g.ID] = g.PSetMW * factor
	}
}

// TotalLoadMW sums the current load setpoints.
func (s *Snapshot) TotalLoadMW() float64 {
	var sum float64
	for _, v := range s.loadMW {
		sum += v
	}
	return sum
}

// TotalGenMW sums the current generator setpoints.
func (s *Snapshot) TotalGenMW() float64 {
	var sum float64
	for _, v := range s.genMW {
		sum += v
	}
	return sum
}

// BusInjectionsMW returns net injection (generation minus load) per bus under
// the current setpoints.
func (s *Snapshot) BusInjectionsMW() map[string]float64 {
	inj := make(map[string]float64, len(s.arena.buses))
	for id := range s.arena.buses {
		inj[id] = 0
	}
	for _, g := range s.arena.generators {
		inj[g.Bus] += s.genMW[g.ID]
	}
	for _, d := range s.arena.loads {
		inj[d.Bus] -= s.loadMW[d.ID]
	}
	return inj
}

// ActiveAdjacency builds the undirected bus adjacency over active lines only.
// Every bus appears as a key even when isolated.
func (s *Snapshot) ActiveAdjacency() map[string][]string {
	adj := make(map[string][]string, len(s.arena.buses))
	for id := range s.arena.buses {
		adj[id] = nil
	}
	for id, on := range s.active {
		if !on {
			continue
		}
		l := s.arena.lines[id]
		adj[l.Bus0] = append(adj[l.Bus0], l.Bus1)
		adj[l.Bus1] = append(adj[l.Bus1], l.Bus0)
	}
	return adj
}
