// Package contingency simulates N-k line outages: it deactivates the named
// lines on a fresh snapshot, re-solves the network, and quantifies the
// impact against a baseline solve of the intact topology.
package contingency

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wattline/gridrate/pkg/flow"
	"github.com/wattline/gridrate/pkg/grid"
	"github.com/wattline/gridrate/pkg/logging"
	"github.com/wattline/gridrate/pkg/metrics"
	"github.com/wattline/gridrate/pkg/rating"
)

// Config tunes a contingency engine.
type Config struct {
	// PowerFactor converts solver MW to MVA. A documented approximation, not
	// a measurement. Default 0.95.
	PowerFactor float64
	// AffectedThresholdPct marks a line "affected" when its loading moved by
	// more than this, in either direction. Default 10.
	AffectedThresholdPct float64
}

func (c Config) withDefaults() Config {
	if c.PowerFactor <= 0 {
		c.PowerFactor = 0.95
	}
	if c.AffectedThresholdPct <= 0 {
		c.AffectedThresholdPct = 10
	}
	return c
}

// Engine runs outage scenarios. Each simulation derives fresh snapshots from
// the shared read-only arena, so an Engine is safe for concurrent use as long
// as its solver is.
type Engine struct {
	arena  *grid.Arena
	solver flow.Solver
	cfg    Config
	log    logging.Logger
	reg    *metrics.Registry
}

// New builds a contingency engine.
func New(arena *grid.Arena, solver flow.Solver, cfg Config) *Engine {
	return &Engine{
		arena:  arena,
		solver: solver,
		cfg:    cfg.withDefaults(),
		log:    logging.DefaultLogger().With(logging.Component("contingency")),
	}
}

// WithLogger replaces the engine's logger.
func (e *Engine) WithLogger(l logging.Logger) *Engine {
	e.log = l.With(logging.Component("contingency"))
	return e
}

// WithMetrics attaches a metrics registry.
func (e *Engine) WithMetrics(r *metrics.Registry) *Engine {
	e.reg = r
	return e
}

// SimulateOutage removes the named lines from service and re-solves.
// Unknown line names are rejected before any solve with an
// *UnknownLinesError carrying the valid name set. Solver non-convergence is
// recoverable: the engine retries once with the linear approximation and
// flags the result; it never drops lines to force convergence.
func (e *Engine) SimulateOutage(linesOut []string, linear bool) (*Result, error) {
	start := time.Now()

	if err := e.validateLineNames(linesOut); err != nil {
		if e.reg != nil {
			e.reg.RecordContingency("rejected")
		}
		return nil, err
	}

	// Baseline: fresh snapshot, all lines active.
	baseline := e.arena.NewSnapshot()
	if _, err := e.solveWithFallback(baseline, linear); err != nil {
		if e.reg != nil {
			e.reg.RecordContingency("error")
		}
		return nil, fmt.Errorf("baseline solve: %w", err)
	}
	baselineLoading := e.loadings(baseline, nil)

	// Modified: named lines deactivated, flows forced to zero.
	modified := e.arena.NewSnapshot()
	modified.Deactivate(linesOut...)
	info, err := e.solveWithFallback(modified, linear)
	if err != nil {
		if e.reg != nil {
			e.reg.RecordContingency("error")
		}
		return nil, fmt.Errorf("outage solve: %w", err)
	}

	res := e.analyze(modified, linesOut, baselineLoading)
	res.Solve = info
	res.ScenarioID = uuid.NewString()

	if e.reg != nil {
		e.reg.RecordContingency("ok")
		e.reg.SetIslandedBuses(len(res.IslandedBuses))
	}
	e.log.Info("outage simulated",
		logging.Int("outaged", len(linesOut)),
		logging.Int("overloaded", res.Metrics.OverloadedCount),
		logging.Int("islanded_buses", res.Metrics.IslandedBusCount),
		logging.Bool("converged", info.Converged),
		logging.Duration("elapsed", time.Since(start)))
	return res, nil
}

// RunScenarios executes a batch of outage scenarios, tagging each result
// with its ordinal and N-k label. Individual scenario failures do not stop
// the batch.
func (e *Engine) RunScenarios(scenarios [][]string, linear bool) []ScenarioResult {
	out := make([]ScenarioResult, 0, len(scenarios))
	for i, linesOut := range scenarios {
		res, err := e.SimulateOutage(linesOut, linear)
		out = append(out, ScenarioResult{
			Scenario: i + 1,
			Label:    fmt.Sprintf("N-%d", len(linesOut)),
			Result:   res,
			Err:      err,
		})
	}
	return out
}

func (e *Engine) validateLineNames(linesOut []string) error {
	var unknown []string
	for _, id := range linesOut {
		if _, ok := e.arena.Line(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &UnknownLinesError{Unknown: unknown, Valid: e.arena.LineIDs()}
	}
	return nil
}

// solveWithFallback runs the solver, retrying once in linear mode when the
// requested mode fails to converge or errors. This is the only retry.
func (e *Engine) solveWithFallback(snap *grid.Snapshot, linear bool) (SolveInfo, error) {
	res, err := e.solveOnce(snap, linear)
	if err == nil && (res.Converged || linear) {
		flow.Apply(snap, res)
		return SolveInfo{Converged: res.Converged, Linear: res.Linear, MaxError: res.MaxError}, nil
	}
	if linear {
		// Already in the fallback mode; nothing further to try.
		if err != nil {
			return SolveInfo{}, err
		}
		flow.Apply(snap, res)
		return SolveInfo{Converged: false, Linear: true, MaxError: res.MaxError}, nil
	}

	e.log.Warn("non-linear solve did not converge, retrying with linear approximation",
		logging.Error(err))
	linRes, linErr := e.solveOnce(snap, true)
	if linErr != nil {
		return SolveInfo{}, fmt.Errorf("both solve modes failed: %v; linear: %w", err, linErr)
	}
	flow.Apply(snap, linRes)
	return SolveInfo{Converged: false, Linear: true, MaxError: linRes.MaxError}, nil
}

func (e *Engine) solveOnce(snap *grid.Snapshot, linear bool) (*flow.Result, error) {
	mode := "nonlinear"
	if linear {
		mode = "linear"
	}
	start := time.Now()
	res, err := e.solver.Solve(snap, linear)
	if e.reg != nil {
		status := "ok"
		switch {
		case err != nil:
			status = "error"
		case !res.Converged:
			status = "diverged"
		}
		e.reg.RecordSolve(mode, status, time.Since(start))
	}
	return res, err
}

// loadings computes per-line loading percentages from a solved snapshot.
func (e *Engine) loadings(snap *grid.Snapshot, outaged map[string]bool) map[string]LineLoading {
	out := make(map[string]LineLoading, len(e.arena.LineIDs()))
	for _, id := range e.arena.LineIDs() {
		line, _ := e.arena.Line(id)
		flowMW := math.Abs(snap.FlowsMW[id])
		flowMVA := 0.0
		if flowMW != 0 {
			flowMVA = flowMW / e.cfg.PowerFactor
		}
		pct := grid.Invalid()
		if line.SNomMVA > 0 {
			pct = grid.Float(flowMVA / line.SNomMVA * 100.0)
		}
		out[id] = LineLoading{
			LineID:     id,
			Bus0:       line.Bus0,
			Bus1:       line.Bus1,
			SNomMVA:    line.SNomMVA,
			FlowMW:     flowMW,
			FlowMVA:    flowMVA,
			LoadingPct: pct,
			Active:     snap.IsActive(id),
			Outaged:    outaged[id],
		}
	}
	return out
}

// analyze diffs the modified snapshot against the baseline loadings and
// partitions the outcome.
func (e *Engine) analyze(modified *grid.Snapshot, linesOut []string, baseline map[string]LineLoading) *Result {
	outaged := make(map[string]bool, len(linesOut))
	for _, id := range linesOut {
		outaged[id] = true
	}

	after := e.loadings(modified, outaged)

	res := &Result{OutagedLines: append([]string(nil), linesOut...)}

	var activeLoadings, baselineLoadings, increases []float64
	for _, id := range e.arena.LineIDs() {
		ll := after[id]
		base := baseline[id]
		ll.BaselineLoadingPct = base.LoadingPct
		if ll.LoadingPct.Valid && base.LoadingPct.Valid {
			ll.LoadingChangePct = grid.Float(ll.LoadingPct.Value - base.LoadingPct.Value)
		}
		ll.Stress = rating.ClassifyLine(ll.LoadingPct, ll.Outaged)

		res.LineLoadings = append(res.LineLoadings, ll)

		if ll.Active && !ll.Outaged {
			switch ll.Stress {
			case rating.StressOverloaded:
				res.Overloaded = append(res.Overloaded, ll)
			case rating.StressHighStress:
				res.HighStress = append(res.HighStress, ll)
			}
			if ll.LoadingPct.Valid {
				activeLoadings = append(activeLoadings, ll.LoadingPct.Value)
			}
			if base.LoadingPct.Valid {
				baselineLoadings = append(baselineLoadings, base.LoadingPct.Value)
			}
			if ll.LoadingChangePct.Valid {
				increases = append(increases, ll.LoadingChangePct.Value)
			}
		}
		// Any line counts as affected, active or not.
		if ll.LoadingChangePct.Valid && math.Abs(ll.LoadingChangePct.Value) > e.cfg.AffectedThresholdPct {
			res.Affected = append(res.Affected, ll)
		}
	}

	sort.Slice(res.Overloaded, func(i, j int) bool {
		return res.Overloaded[i].LoadingPct.Or(0) > res.Overloaded[j].LoadingPct.Or(0)
	})
	sort.Slice(res.HighStress, func(i, j int) bool {
		return res.HighStress[i].LoadingPct.Or(0) > res.HighStress[j].LoadingPct.Or(0)
	})
	sort.Slice(res.Affected, func(i, j int) bool {
		return math.Abs(res.Affected[i].LoadingChangePct.Or(0)) > math.Abs(res.Affected[j].LoadingChangePct.Or(0))
	})

	res.IslandedBuses = DetectIslandedBuses(modified)

	m := Metrics{
		TotalLines:       len(res.LineLoadings),
		OutagedCount:     len(linesOut),
		ActiveCount:      len(activeLoadings),
		OverloadedCount:  len(res.Overloaded),
		HighStressCount:  len(res.HighStress),
		AffectedCount:    len(res.Affected),
		IslandedBusCount: len(res.IslandedBuses),
	}
	if len(activeLoadings) > 0 {
		m.MaxLoadingPct = grid.Float(maxOf(activeLoadings))
		m.AvgLoadingPct = grid.Float(meanOf(activeLoadings))
	}
	if len(baselineLoadings) > 0 {
		m.BaselineMaxLoadingPct = grid.Float(maxOf(baselineLoadings))
		m.BaselineAvgLoadingPct = grid.Float(meanOf(baselineLoadings))
	}
	if len(increases) > 0 {
		m.MaxLoadingIncreasePct = grid.Float(maxOf(increases))
	}
	res.Metrics = m
	return res
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
