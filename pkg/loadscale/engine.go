// Package loadscale replays a synthetic daily demand curve through the
// network: loads and generation are scaled together hour by hour, each hour
// is re-solved, and the results aggregate into a 24-hour stress profile.
package loadscale

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wattline/gridrate/pkg/flow"
	"github.com/wattline/gridrate/pkg/grid"
	"github.com/wattline/gridrate/pkg/logging"
	"github.com/wattline/gridrate/pkg/metrics"
	"github.com/wattline/gridrate/pkg/rating"
)

// Config tunes a load-scaling engine.
type Config struct {
	// PowerFactor converts solver MW to MVA. Default 0.95.
	PowerFactor float64
	// TopStressedLines is how many worst lines the summary reports.
	// Default 5.
	TopStressedLines int
}

func (c Config) withDefaults() Config {
	if c.PowerFactor <= 0 {
		c.PowerFactor = 0.95
	}
	if c.TopStressedLines <= 0 {
		c.TopStressedLines = 5
	}
	return c
}

// LineStatus is one line's state for one solved hour.
type LineStatus struct {
	LineID     string        `json:"line_id"`
	FlowMW     float64       `json:"flow_mw"`
	FlowMVA    float64       `json:"flow_mva"`
	LoadingPct grid.OptFloat `json:"loading_pct"`
	Stress     rating.Stress `json:"stress"`
}

// HourlyResult is one hour of the daily analysis. Hours that fail to
// converge are still reported, with Converged false and no line data.
type HourlyResult struct {
	Hour        int     `json:"hour"`
	ScaleFactor float64 `json:"scale_factor"`
	Converged   bool    `json:"converged"`

	TotalLoadMW float64 `json:"total_load_mw"`
	TotalGenMW  float64 `json:"total_gen_mw"`

	MaxLoadingPct grid.OptFloat `json:"max_loading_pct"`
	AvgLoadingPct grid.OptFloat `json:"avg_loading_pct"`

	OverloadedCount int `json:"overloaded_count"`
	HighStressCount int `json:"high_stress_count"`
	CautionCount    int `json:"caution_count"`

	Lines []LineStatus `json:"lines,omitempty"`
}

// PeakHour identifies the hour an extreme occurred.
type PeakHour struct {
	Hour            int           `json:"hour"`
	ScaleFactor     float64       `json:"scale_factor"`
	MaxLoadingPct   grid.OptFloat `json:"max_loading_pct"`
	OverloadedCount int           `json:"overloaded_count"`
}

// StressedLine is a line's worst moment across the day.
type StressedLine struct {
	LineID        string  `json:"line_id"`
	MaxLoadingPct float64 `json:"max_loading_pct"`
	HourOfMax     int     `json:"hour_of_max"`
	ScaleAtMax    float64 `json:"scale_at_max"`
}

// Summary aggregates the full day.
type Summary struct {
	TotalHours     int `json:"total_hours"`
	HoursConverged int `json:"hours_converged"`
	HoursFailed    int `json:"hours_failed"`

	PeakLoading   PeakHour `json:"peak_loading"`
	PeakOverloads PeakHour `json:"peak_overloads"`

	MostStressedLines []StressedLine `json:"most_stressed_lines"`
	LoadProfile       []ProfilePoint `json:"load_profile"`
}

// DailyAnalysis is the complete result of a profile replay.
type DailyAnalysis struct {
	Summary       Summary        `json:"summary"`
	HourlyResults []HourlyResult `json:"hourly_results"`
}

// Engine replays demand profiles. Each hour operates on a fresh snapshot
// derived from the shared arena; hours are evaluated serially because each
// solve owns its snapshot exclusively.
type Engine struct {
	arena  *grid.Arena
	solver flow.Solver
	cfg    Config
	log    logging.Logger
	reg    *metrics.Registry
}

// New builds a load-scaling engine.
func New(arena *grid.Arena, solver flow.Solver, cfg Config) *Engine {
	return &Engine{
		arena:  arena,
		solver: solver,
		cfg:    cfg.withDefaults(),
		log:    logging.DefaultLogger().With(logging.Component("loadscale")),
	}
}

// WithLogger replaces the engine's logger.
func (e *Engine) WithLogger(l logging.Logger) *Engine {
	e.log = l.With(logging.Component("loadscale"))
	return e
}

// WithMetrics attaches a metrics registry.
func (e *Engine) WithMetrics(r *metrics.Registry) *Engine {
	e.reg = r
	return e
}

// AnalyzeDailyProfile runs the full n-hour demand curve. Hours that fail to
// converge are reported with Converged false, excluded from scale-dependent
// aggregates, and included in the hour totals.
func (e *Engine) AnalyzeDailyProfile(hours int) (*DailyAnalysis, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("hours must be positive, got %d", hours)
	}
	start := time.Now()

	profile := Profile(hours)
	hourly := make([]HourlyResult, 0, hours)
	for hour, scale := range profile {
		hourly = append(hourly, e.analyzeHour(hour, scale))
	}

	analysis := &DailyAnalysis{
		Summary:       e.summarize(profile, hourly),
		HourlyResults: hourly,
	}
	e.log.Info("daily profile analyzed",
		logging.Int("hours", hours),
		logging.Int("failed", analysis.Summary.HoursFailed),
		logging.Duration("elapsed", time.Since(start)))
	return analysis, nil
}

// AnalyzeSingleHour evaluates one hour of the standard 24-hour profile.
func (e *Engine) AnalyzeSingleHour(hour int) (*HourlyResult, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid hour %d: must be 0-23", hour)
	}
	res := e.analyzeHour(hour, ScaleFactor(hour, 24))
	return &res, nil
}

// LoadProfile returns the scale curve with projected system totals, without
// running any solves.
func (e *Engine) LoadProfile(hours int) []ProfilePoint {
	baseLoad := e.arena.TotalLoadMW()
	baseGen := e.arena.TotalGenMW()
	points := make([]ProfilePoint, 0, hours)
	for hour, scale := range Profile(hours) {
		points = append(points, ProfilePoint{
			Hour:        hour,
			ScaleFactor: scale,
			LoadMW:      baseLoad * scale,
			GenMW:       baseGen * scale,
		})
	}
	return points
}

// analyzeHour scales a fresh snapshot and solves it. Loads and generation
// scale together to preserve power balance.
func (e *Engine) analyzeHour(hour int, scale float64) HourlyResult {
	res := HourlyResult{Hour: hour, ScaleFactor: scale}

	snap := e.arena.NewSnapshot()
	snap.Scale(scale)
	res.TotalLoadMW = snap.TotalLoadMW()
	res.TotalGenMW = snap.TotalGenMW()

	solved, err := e.solver.Solve(snap, false)
	if err != nil || !solved.Converged {
		e.log.Warn("hour did not converge",
			logging.Hour(hour),
			logging.Scale(scale),
			logging.Error(err))
		if e.reg != nil {
			e.reg.RecordLoadScaleHour("failed")
		}
		return res
	}
	flow.Apply(snap, solved)
	res.Converged = true
	if e.reg != nil {
		e.reg.RecordLoadScaleHour("ok")
	}

	var sum, max float64
	var counted int
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
		stress := rating.Classify(pct)
		switch stress {
		case rating.StressOverloaded:
			res.OverloadedCount++
		case rating.StressHighStress:
			res.HighStressCount++
		case rating.StressCaution:
			res.CautionCount++
		}
		if pct.Valid {
			sum += pct.Value
			if pct.Value > max {
				max = pct.Value
			}
			counted++
		}
		res.Lines = append(res.Lines, LineStatus{
			LineID:     id,
			FlowMW:     flowMW,
			FlowMVA:    flowMVA,
			LoadingPct: pct,
			Stress:     stress,
		})
	}
	if counted > 0 {
		res.MaxLoadingPct = grid.Float(max)
		res.AvgLoadingPct = grid.Float(sum / float64(counted))
	}
	return res
}

func (e *Engine) summarize(profile []float64, hourly []HourlyResult) Summary {
	s := Summary{TotalHours: len(hourly)}

	peakLoading := PeakHour{Hour: -1}
	peakOverloads := PeakHour{Hour: -1}
	worst := make(map[string]StressedLine)

	for _, hr := range hourly {
		if !hr.Converged {
			s.HoursFailed++
			continue
		}
		s.HoursConverged++

		if hr.MaxLoadingPct.Valid && hr.MaxLoadingPct.Value > peakLoading.MaxLoadingPct.Or(-1) {
			peakLoading = PeakHour{
				Hour:            hr.Hour,
				ScaleFactor:     hr.ScaleFactor,
				MaxLoadingPct:   hr.MaxLoadingPct,
				OverloadedCount: hr.OverloadedCount,
			}
		}
		if peakOverloads.Hour < 0 || hr.OverloadedCount > peakOverloads.OverloadedCount {
			peakOverloads = PeakHour{
				Hour:            hr.Hour,
				ScaleFactor:     hr.ScaleFactor,
				MaxLoadingPct:   hr.MaxLoadingPct,
				OverloadedCount: hr.OverloadedCount,
			}
		}

		for _, line := range hr.Lines {
			if !line.LoadingPct.Valid {
				continue
			}
			cur, seen := worst[line.LineID]
			if !seen || line.LoadingPct.Value > cur.MaxLoadingPct {
				worst[line.LineID] = StressedLine{
					LineID:        line.LineID,
					MaxLoadingPct: line.LoadingPct.Value,
					HourOfMax:     hr.Hour,
					ScaleAtMax:    hr.ScaleFactor,
				}
			}
		}
	}

	s.PeakLoading = peakLoading
	s.PeakOverloads = peakOverloads

	lines := make([]StressedLine, 0, len(worst))
	for _, sl := range worst {
		lines = append(lines, sl)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].MaxLoadingPct != lines[j].MaxLoadingPct {
			return lines[i].MaxLoadingPct > lines[j].MaxLoadingPct
		}
		return lines[i].LineID < lines[j].LineID
	})
	if len(lines) > e.cfg.TopStressedLines {
		lines = lines[:e.cfg.TopStressedLines]
	}
	s.MostStressedLines = lines

	baseLoad := e.arena.TotalLoadMW()
	baseGen := e.arena.TotalGenMW()
	for hour, scale := range profile {
		s.LoadProfile = append(s.LoadProfile, ProfilePoint{
			Hour:        hour,
			ScaleFactor: scale,
			LoadMW:      baseLoad * scale,
			GenMW:       baseGen * scale,
		})
	}
	return s
}
