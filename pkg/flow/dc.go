package flow

import (
	"fmt"
	"math"
	"sort"

	"github.com/wattline/gridrate/pkg/grid"
)

// DCSolver is the bundled reference solver: a B-theta DC power flow with
// per-component slack selection. Line impedances are taken as per unit on
// SBaseMVA. The linear mode is the plain DC solve; the non-linear mode adds
// an iterative loss-compensation pass, distributing each line's estimated
// I^2 R loss onto its endpoint buses and re-solving until flows settle.
type DCSolver struct {
	// SBaseMVA is the per-unit power base for the loss estimate. Default 100.
	SBaseMVA float64
	// MaxIterations bounds the loss-compensation loop. Default 20.
	MaxIterations int
	// ToleranceMW is the flow-settling threshold. Default 1e-3.
	ToleranceMW float64
}

// NewDCSolver returns a solver with the standard defaults.
func NewDCSolver() *DCSolver {
	return &DCSolver{SBaseMVA: 100, MaxIterations: 20, ToleranceMW: 1e-3}
}

func (s *DCSolver) defaults() (base float64, iters int, tol float64) {
	base, iters, tol = s.SBaseMVA, s.MaxIterations, s.ToleranceMW
	if base <= 0 {
		base = 100
	}
	if iters <= 0 {
		iters = 20
	}
	if tol <= 0 {
		tol = 1e-3
	}
	return
}

// Solve implements Solver.
func (s *DCSolver) Solve(snap *grid.Snapshot, linear bool) (*Result, error) {
	base, iters, tol := s.defaults()

	inj := snap.BusInjectionsMW()
	flows, err := dcSolveOnce(snap, inj)
	if err != nil {
		return nil, err
	}

	if linear {
		return &Result{FlowsMW: flows, Converged: true, MaxError: 0, Linear: true}, nil
	}

	// Loss-compensation iterations: split each line's estimated loss onto
	// its endpoints as extra load, re-solve, and watch for settling.
	arena := snap.Arena()
	var maxDelta float64
	converged := false
	for iter := 0; iter < iters; iter++ {
		adjusted := make(map[string]float64, len(inj))
		for k, v := range inj {
			adjusted[k] = v
		}
		for id, f := range flows {
			line, _ := arena.Line(id)
			lossMW := line.R * (f / base) * (f / base) * base
			adjusted[line.Bus0] -= lossMW / 2
			adjusted[line.Bus1] -= lossMW / 2
		}

		next, err := dcSolveOnce(snap, adjusted)
		if err != nil {
			return nil, err
		}

		maxDelta = 0
		for id, f := range next {
			if d := math.Abs(f - flows[id]); d > maxDelta {
				maxDelta = d
			}
		}
		flows = next
		if maxDelta < tol {
			converged = true
			break
		}
	}

	return &Result{FlowsMW: flows, Converged: converged, MaxError: maxDelta, Linear: false}, nil
}

// dcSolveOnce runs one B-theta solve over the active topology with the given
// bus injections.
func dcSolveOnce(snap *grid.Snapshot, injectionsMW map[string]float64) (map[string]float64, error) {
	arena := snap.Arena()
	flows := make(map[string]float64, len(arena.LineIDs()))
	for _, id := range arena.LineIDs() {
		flows[id] = 0
	}

	genBuses := make(map[string]bool)
	for _, b := range arena.GeneratorBuses() {
		genBuses[b] = true
	}

	adj := snap.ActiveAdjacency()
	visited := make(map[string]bool)

	for _, start := range arena.BusIDs() {
		if visited[start] {
			continue
		}
		component := bfsComponent(adj, start, visited)

		slack := pickSlack(component, genBuses)
		if slack == "" {
			// No generation in this component; it is de-energized and its
			// lines carry nothing.
			continue
		}

		theta, err := solveComponent(snap, component, slack, injectionsMW)
		if err != nil {
			return nil, err
		}
		for _, id := range snap.ActiveLineIDs() {
			line, _ := arena.Line(id)
			t0, ok0 := theta[line.Bus0]
			t1, ok1 := theta[line.Bus1]
			if !ok0 || !ok1 {
				continue
			}
			if line.X <= 0 {
				return nil, fmt.Errorf("line %s: non-positive reactance %v", id, line.X)
			}
			flows[id] = (t0 - t1) / line.X
		}
	}
	return flows, nil
}

func bfsComponent(adj map[string][]string, start string, visited map[string]bool) []string {
	var comp []string
	queue := []string{start}
	visited[start] = true
	for len(queue) > 0 {
		bus := queue[0]
		queue = queue[1:]
		comp = append(comp, bus)
		for _, nb := range adj[bus] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	sort.Strings(comp)
	return comp
}

func pickSlack(component []string, genBuses map[string]bool) string {
	for _, b := range component {
		if genBuses[b] {
			return b
		}
	}
	return ""
}

// solveComponent assembles the reduced susceptance matrix for one connected
// component (slack row/column removed) and solves B * theta = P by Gaussian
// elimination with partial pivoting.
func solveComponent(snap *grid.Snapshot, component []string, slack string, injectionsMW map[string]float64) (map[string]float64, error) {
	arena := snap.Arena()

	idx := make(map[string]int, len(component))
	n := 0
	for _, b := range component {
		if b == slack {
			continue
		}
		idx[b] = n
		n++
	}

	theta := make(map[string]float64, len(component))
	theta[slack] = 0
	if n == 0 {
		return theta, nil
	}

	inComp := make(map[string]bool, len(component))
	for _, b := range component {
		inComp[b] = true
	}

	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n+1)
	}
	for _, id := range snap.ActiveLineIDs() {
		line, _ := arena.Line(id)
		if !inComp[line.Bus0] || !inComp[line.Bus1] {
			continue
		}
		if line.X <= 0 {
			return nil, fmt.Errorf("line %s: non-positive reactance %v", id, line.X)
		}
		b := 1.0 / line.X
		i0, has0 := idx[line.Bus0]
		i1, has1 := idx[line.Bus1]
		if has0 {
			mat[i0][i0] += b
		}
		if has1 {
			mat[i1][i1] += b
		}
		if has0 && has1 {
			mat[i0][i1] -= b
			mat[i1][i0] -= b
		}
	}
	for b, i := range idx {
		mat[i][n] = injectionsMW[b]
	}

	sol, err := gaussianSolve(mat, n)
	if err != nil {
		return nil, err
	}
	for b, i := range idx {
		theta[b] = sol[i]
	}
	return theta, nil
}

// gaussianSolve performs in-place elimination on an augmented n x (n+1)
// matrix.
func gaussianSolve(mat [][]float64, n int) ([]float64, error) {
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(mat[row][col]) > math.Abs(mat[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(mat[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular susceptance matrix at column %d", col)
		}
		mat[col], mat[pivot] = mat[pivot], mat[col]

		for row := col + 1; row < n; row++ {
			factor := mat[row][col] / mat[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k <= n; k++ {
				mat[row][k] -= factor * mat[col][k]
			}
		}
	}

	sol := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := mat[row][n]
		for k := row + 1; k < n; k++ {
			sum -= mat[row][k] * sol[k]
		}
		sol[row] = sum / mat[row][row]
	}
	return sol, nil
}
