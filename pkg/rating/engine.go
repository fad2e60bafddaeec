package rating

import (
	"math"
	"sort"
	"time"

	"github.com/wattline/gridrate/pkg/grid"
	"github.com/wattline/gridrate/pkg/logging"
	"github.com/wattline/gridrate/pkg/metrics"
	"github.com/wattline/gridrate/pkg/parallel"
	"github.com/wattline/gridrate/pkg/thermal"
)

// MOT bounds: values outside this range are implausible and get clamped.
const (
	MinMOTC     = 50.0
	MaxMOTC     = 100.0
	DefaultMOTC = 75.0
)

// Config tunes a rating engine.
type Config struct {
	// TopN is how many most-loaded lines the summary carries. Default 10.
	TopN int
	// Workers bounds the per-line fan-out. Default 4. Lines are independent,
	// so any worker count produces identical results.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Engine computes weather-dependent thermal ratings for every line in an
// arena. Stateless across calls; safe for concurrent use since the arena is
// read-only.
type Engine struct {
	arena *grid.Arena
	cfg   Config
	log   logging.Logger
	reg   *metrics.Registry
}

// New builds a rating engine over the given reference data.
func New(arena *grid.Arena, cfg Config) *Engine {
	return &Engine{
		arena: arena,
		cfg:   cfg.withDefaults(),
		log:   logging.DefaultLogger().With(logging.Component("rating")),
	}
}

// WithLogger replaces the engine's logger.
func (e *Engine) WithLogger(l logging.Logger) *Engine {
	e.log = l.With(logging.Component("rating"))
	return e
}

// WithMetrics attaches a metrics registry.
func (e *Engine) WithMetrics(r *metrics.Registry) *Engine {
	e.reg = r
	return e
}

// RateAllLines rates every line in the arena against the supplied per-line
// flows (MVA). Lines missing from the flow table rate against a zero flow.
// Every line appears in the result exactly once: resolution failures degrade
// that line to its static nominal rating, they never drop it.
func (e *Engine) RateAllLines(weather grid.WeatherState, flowsMVA map[string]float64) ([]Result, Summary) {
	start := time.Now()
	w := weather

	ids := e.arena.LineIDs()
	results := make([]Result, len(ids))

	pool, err := parallel.NewWorkerPool(e.cfg.Workers)
	if err != nil {
		// Degenerate config; rate serially.
		for i, id := range ids {
			results[i] = e.rateLine(id, w, flowsMVA[id])
		}
	} else {
		for i, id := range ids {
			i, id := i, id
			pool.Submit(func() {
				results[i] = e.rateLine(id, w, flowsMVA[id])
			})
		}
		pool.Wait()
	}

	summary := e.summarize(results)
	if e.reg != nil {
		for _, r := range results {
			if r.Degraded {
				e.reg.RecordRating("degraded")
			} else {
				e.reg.RecordRating("ok")
			}
		}
		e.reg.ObserveRatingDuration(time.Since(start))
	}
	e.log.Info("rated all lines",
		logging.Int("lines", len(results)),
		logging.Int("degraded", summary.DegradedLines),
		logging.Duration("elapsed", time.Since(start)))
	return results, summary
}

// rateLine resolves one line's conductor and computes its thermal rating,
// degrading to the static nominal capacity when resolution fails.
func (e *Engine) rateLine(lineID string, w grid.WeatherState, flowMVA float64) Result {
	line, _ := e.arena.Line(lineID)
	res := Result{
		LineID:          lineID,
		Bus0:            line.Bus0,
		Bus1:            line.Bus1,
		Conductor:       line.Conductor,
		StaticRatingMVA: line.SNomMVA,
		FlowMVA:         math.Abs(flowMVA),
	}
	if kv, ok := e.arena.LineVoltageKV(lineID); ok {
		res.VoltageKV = kv
	}

	amps, motC, cause := e.thermalRating(line, w)
	res.MOTC = motC

	if cause != "" {
		return e.degrade(res, cause)
	}

	res.RatingAmps = grid.Float(amps)
	res.RatingMVA = ampsToMVA(amps, res.VoltageKV)
	res.LoadingPct = loadingPct(res.FlowMVA, res.RatingMVA)
	res.MarginMVA = res.RatingMVA - res.FlowMVA
	res.Stress = Classify(res.LoadingPct)
	return res
}

// thermalRating resolves conductor data and runs the heat balance. An empty
// cause means success.
func (e *Engine) thermalRating(line grid.LineSpec, w grid.WeatherState) (amps, motC float64, cause string) {
	motC = clampMOT(e.resolveMOT(line))

	if line.Conductor == "" {
		return 0, motC, "no conductor reference"
	}
	cond, ok := e.arena.Conductor(line.Conductor)
	if !ok {
		return 0, motC, "conductor not in library"
	}

	// Conductor surface defaults apply when the weather leaves them unset.
	if !w.HasSurfaceOverride() && (cond.Emissivity > 0 || cond.Absorptivity > 0) {
		w = w.WithSurface(
			firstPositive(cond.Emissivity, grid.DefaultEmissivity),
			firstPositive(cond.Absorptivity, grid.DefaultAbsorptivity),
		)
	}

	amps, err := thermal.Ampacity(cond, w, motC)
	if err != nil {
		return 0, motC, err.Error()
	}
	return amps, motC, ""
}

// resolveMOT picks the line override, then the conductor default, then the
// engine default.
func (e *Engine) resolveMOT(line grid.LineSpec) float64 {
	if line.MOTC > 0 {
		return line.MOTC
	}
	if cond, ok := e.arena.Conductor(line.Conductor); ok && cond.MaxOperatingTempC > 0 {
		return cond.MaxOperatingTempC
	}
	return DefaultMOTC
}

func (e *Engine) degrade(res Result, cause string) Result {
	e.log.Warn("rating degraded to static nominal",
		logging.LineID(res.LineID),
		logging.String("cause", cause))
	res.Degraded = true
	res.DegradedCause = cause
	res.RatingAmps = grid.Invalid()
	res.RatingMVA = res.StaticRatingMVA
	res.LoadingPct = loadingPct(res.FlowMVA, res.StaticRatingMVA)
	res.MarginMVA = res.StaticRatingMVA - res.FlowMVA
	res.Stress = Classify(res.LoadingPct)
	return res
}

func (e *Engine) summarize(results []Result) Summary {
	s := Summary{TotalLines: len(results)}
	var sum, max float64
	var counted int
	for _, r := range results {
		switch r.Stress {
		case StressOverloaded:
			s.OverloadedLines++
		case StressHighStress:
			s.HighStressLines++
		case StressCaution:
			s.CautionLines++
		}
		if r.Degraded {
			s.DegradedLines++
		}
		if r.LoadingPct.Valid {
			sum += r.LoadingPct.Value
			if r.LoadingPct.Value > max {
				max = r.LoadingPct.Value
			}
			counted++
		}
	}
	if counted > 0 {
		s.AvgLoadingPct = grid.Float(sum / float64(counted))
		s.MaxLoadingPct = grid.Float(max)
	}

	sorted := append([]Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LoadingPct.Or(-1) > sorted[j].LoadingPct.Or(-1)
	})
	n := s.TotalLines
	if n > e.cfg.TopN {
		n = e.cfg.TopN
	}
	s.CriticalLines = sorted[:n]
	return s
}

// ampsToMVA converts a three-phase current rating to apparent power:
// MVA = sqrt(3) * I * V / 1e6.
func ampsToMVA(amps, voltageKV float64) float64 {
	return math.Sqrt(3) * amps * voltageKV * 1000.0 / 1e6
}

// loadingPct divides flow by rating. A zero rating with nonzero flow has no
// meaningful percentage and yields the explicit unknown marker; zero over
// zero is simply zero.
func loadingPct(flowMVA, ratingMVA float64) grid.OptFloat {
	if ratingMVA <= 0 {
		if flowMVA == 0 {
			return grid.Float(0)
		}
		return grid.Invalid()
	}
	return grid.Float(flowMVA / ratingMVA * 100.0)
}

// clampMOT bounds a maximum operating temperature to the plausible range.
func clampMOT(v float64) float64 {
	if v < MinMOTC {
		return MinMOTC
	}
	if v > MaxMOTC {
		return MaxMOTC
	}
	return v
}

func firstPositive(a, b float64) float64 {
	if a > 0 {
		return a
	}
	return b
}
