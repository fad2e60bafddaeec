package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/wattline/gridrate/pkg/contingency"
	"github.com/wattline/gridrate/pkg/flow"
	"github.com/wattline/gridrate/pkg/grid"
	"github.com/wattline/gridrate/pkg/loadscale"
	"github.com/wattline/gridrate/pkg/logging"
	"github.com/wattline/gridrate/pkg/metrics"
	"github.com/wattline/gridrate/pkg/rating"
	"github.com/wattline/gridrate/pkg/validation"
)

func main() {
	topologyPath := flag.String("topology", "", "Path to YAML topology file (required)")
	rate := flag.Bool("rate", false, "Compute thermal ratings for all lines")
	outage := flag.String("outage", "", "Comma-separated line names to outage")
	daily := flag.Bool("daily", false, "Run the 24-hour demand profile analysis")
	hour := flag.Int("hour", -1, "Analyze a single hour of the daily profile (0-23)")
	linear := flag.Bool("linear", false, "Use the linear power flow approximation")
	pf := flag.Float64("pf", 0.95, "Power factor for MW to MVA conversion")
	workers := flag.Int("workers", 4, "Worker count for per-line rating fan-out")
	topN := flag.Int("top", 10, "Number of most-loaded lines in summaries")

	ambient := flag.Float64("ambient", grid.DefaultAmbientTempC, "Ambient temperature, C")
	wind := flag.Float64("wind", grid.DefaultWindSpeedFtSec, "Wind speed, ft/s")
	angle := flag.Float64("angle", grid.DefaultWindAngleDeg, "Wind angle to conductor, degrees")
	flag.Parse()

	if *topologyPath == "" {
		flag.Usage()
		log.Fatal("missing required -topology flag")
	}

	cv := validation.NewConfigValidator("gridrate")
	cv.RangeFloat("pf", *pf, 0.1, 1.0).
		Positive("workers", *workers).
		Positive("top", *topN)
	if err := cv.Validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}
	weatherReq := validation.WeatherRequest{
		AmbientC:     *ambient,
		WindFtSec:    *wind,
		WindAngleDeg: *angle,
		SunHour:      grid.DefaultSunHour,
		ElevationFt:  grid.DefaultElevationFt,
		LatitudeDeg:  grid.DefaultLatitudeDeg,
	}
	if err := validation.ValidateWeatherRequest(&weatherReq); err != nil {
		log.Fatalf("invalid weather: %v", err)
	}

	fmt.Printf("⚡ GridRate - Line Rating & Contingency Analysis\n")
	fmt.Printf("===============================================\n\n")

	fmt.Printf("📂 Loading topology from %s...\n", *topologyPath)
	arena, err := grid.LoadTopologyFile(*topologyPath)
	if err != nil {
		log.Fatalf("Failed to load topology: %v", err)
	}
	fmt.Printf("   %d buses, %d lines, %.1f MW load, %.1f MW generation\n\n",
		len(arena.BusIDs()), len(arena.LineIDs()), arena.TotalLoadMW(), arena.TotalGenMW())

	logger := logging.NewJSONLogger(os.Stderr, logging.WarnLevel)
	reg := metrics.DefaultRegistry()
	solver := flow.NewDCSolver()

	ran := false

	if *rate {
		ran = true
		weather := grid.NewWeather(*ambient, *wind, *angle)
		eng := rating.New(arena, rating.Config{TopN: *topN, Workers: *workers}).
			WithLogger(logger).
			WithMetrics(reg)
		results, summary := eng.RateAllLines(weather, arena.NominalFlowsMVA())
		printJSON("line_ratings", map[string]any{
			"summary": summary,
			"lines":   results,
		})
	}

	if *outage != "" {
		ran = true
		linesOut := splitNames(*outage)
		req := validation.OutageRequest{Lines: linesOut, Linear: *linear}
		if err := validation.ValidateOutageRequest(&req); err != nil {
			log.Fatalf("invalid outage request: %v", err)
		}

		eng := contingency.New(arena, solver, contingency.Config{PowerFactor: *pf}).
			WithLogger(logger).
			WithMetrics(reg)
		res, err := eng.SimulateOutage(linesOut, *linear)
		if err != nil {
			var unknown *contingency.UnknownLinesError
			if errors.As(err, &unknown) {
				log.Fatalf("unknown lines: %v (valid: %s)",
					unknown.Unknown, strings.Join(unknown.Valid, ", "))
			}
			log.Fatalf("outage simulation failed: %v", err)
		}
		printJSON("outage_analysis", res)
	}

	if *daily {
		ran = true
		eng := loadscale.New(arena, solver, loadscale.Config{PowerFactor: *pf, TopStressedLines: *topN}).
			WithLogger(logger).
			WithMetrics(reg)
		analysis, err := eng.AnalyzeDailyProfile(24)
		if err != nil {
			log.Fatalf("daily profile analysis failed: %v", err)
		}
		printJSON("daily_profile", analysis)
	}

	if *hour >= 0 {
		ran = true
		if err := validation.ValidateHourRequest(&validation.HourRequest{Hour: *hour}); err != nil {
			log.Fatalf("invalid hour: %v", err)
		}
		eng := loadscale.New(arena, solver, loadscale.Config{PowerFactor: *pf, TopStressedLines: *topN}).
			WithLogger(logger).
			WithMetrics(reg)
		res, err := eng.AnalyzeSingleHour(*hour)
		if err != nil {
			log.Fatalf("hour analysis failed: %v", err)
		}
		printJSON("hourly_analysis", res)
	}

	if !ran {
		fmt.Printf("Nothing to do: pass -rate, -outage, -daily or -hour.\n")
		flag.Usage()
		os.Exit(1)
	}
}

// splitNames parses a comma-separated name list, dropping empty entries.
func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(name string, v any) {
	data, err := json.MarshalIndent(map[string]any{name: v}, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode %s: %v", name, err)
	}
	fmt.Println(string(data))
}
