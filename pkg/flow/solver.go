// Package flow defines the narrow contract between the analysis engines and
// a power-flow solver, plus a bundled DC reference implementation. The
// engines treat any Solver as a black box and only inspect flow magnitudes,
// sign, and convergence status, so a production AC solver (or a canned stub
// in tests) substitutes without touching classification or diffing logic.
package flow

import "github.com/wattline/gridrate/pkg/grid"

// Result is the outcome of one solve over a snapshot.
type Result struct {
	// FlowsMW is the signed real-power flow per line, positive from bus0 to
	// bus1. Inactive lines carry zero.
	FlowsMW map[string]float64

	Converged bool
	// MaxError is the solver's residual metric; zero for an exact linear
	// solve.
	MaxError float64
	// Linear reports whether the linear approximation produced this result.
	Linear bool
}

// Solver solves a snapshot's power flow. Implementations must not retain the
// snapshot and must not mutate it; the caller owns it exclusively.
type Solver interface {
	Solve(snap *grid.Snapshot, linear bool) (*Result, error)
}

// Apply copies a solve result into a snapshot's solved state.
func Apply(snap *grid.Snapshot, res *Result) {
	for id, f := range res.FlowsMW {
		if snap.IsActive(id) {
			snap.FlowsMW[id] = f
		} else {
			snap.FlowsMW[id] = 0
		}
	}
	snap.Converged = res.Converged
	snap.Linear = res.Linear
}

// StubSolver returns canned results, for tests.
type StubSolver struct {
	FlowsMW      map[string]float64
	ConvergeFail bool // first (non-linear) attempt reports non-convergence
	Err          error

	Calls       int
	LinearCalls int
}

// Solve implements Solver with the configured canned behavior.
func (s *StubSolver) Solve(snap *grid.Snapshot, linear bool) (*Result, error) {
	s.Calls++
	if linear {
		s.LinearCalls++
	}
	if s.Err != nil {
		return nil, s.Err
	}
	flows := make(map[string]float64, len(s.FlowsMW))
	for id, f := range s.FlowsMW {
		if snap.IsActive(id) {
			flows[id] = f
		}
	}
	converged := true
	if s.ConvergeFail && !linear {
		converged = false
	}
	return &Result{FlowsMW: flows, Converged: converged, Linear: linear}, nil
}
