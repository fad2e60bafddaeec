package thermal

import (
	"testing"
	"time"

	"github.com/wattline/gridrate/pkg/grid"
)

// drake is a 795 kcmil ACSR, the standard worked-example conductor.
func drake() grid.ConductorSpec {
	return grid.ConductorSpec{
		Name:        "drake",
		TLoC:        25,
		THiC:        50,
		RLoOhmPerFt: 0.1166 / 5280,
		RHiOhmPerFt: 0.1277 / 5280,
		DiameterIn:  1.108,
	}
}

func TestAmpacity_StudyCase(t *testing.T) {
	amps, err := Ampacity(drake(), grid.DefaultWeather(), 75)
	if err != nil {
		t.Fatalf("Ampacity failed: %v", err)
	}
	// The standard's worked example for this conductor class lands near
	// 1000 A; anything outside a generous band means a unit slipped
	// somewhere.
	if amps < 700 || amps > 1300 {
		t.Errorf("Study-case ampacity = %.1f A, want within [700, 1300]", amps)
	}
}

func TestAmpacity_ZeroWeatherEqualsDefaults(t *testing.T) {
	a1, err := Ampacity(drake(), grid.WeatherState{}, 75)
	if err != nil {
		t.Fatalf("Ampacity with zero weather failed: %v", err)
	}
	a2, err := Ampacity(drake(), grid.DefaultWeather(), 75)
	if err != nil {
		t.Fatalf("Ampacity with default weather failed: %v", err)
	}
	if a1 != a2 {
		t.Errorf("Zero weather = %.3f A, default weather = %.3f A; want equal", a1, a2)
	}
}

func TestAmpacity_NightAboveNoon(t *testing.T) {
	noon := grid.DefaultWeather()
	night := grid.DefaultWeather().WithSun(0, time.Date(2000, time.June, 12, 0, 0, 0, 0, time.UTC))

	aNoon, err := Ampacity(drake(), noon, 75)
	if err != nil {
		t.Fatalf("noon: %v", err)
	}
	aNight, err := Ampacity(drake(), night, 75)
	if err != nil {
		t.Fatalf("night: %v", err)
	}
	if aNight <= aNoon {
		t.Errorf("Night ampacity %.1f A should exceed noon %.1f A (no solar gain)", aNight, aNoon)
	}
}

func TestAmpacity_IndustrialBelowClear(t *testing.T) {
	clear := grid.DefaultWeather()
	industrial := grid.DefaultWeather()
	industrial.Atmosphere = grid.AtmosphereIndustrial

	aClear, err := Ampacity(drake(), clear, 75)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	aInd, err := Ampacity(drake(), industrial, 75)
	if err != nil {
		t.Fatalf("industrial: %v", err)
	}
	// At solar noon the industrial flux is higher, so the rating drops.
	if aInd >= aClear {
		t.Errorf("Industrial ampacity %.1f A should be below clear-sky %.1f A", aInd, aClear)
	}
}

func TestAmpacity_ZeroWhenHeatingExceedsCooling(t *testing.T) {
	// Target temperature below ambient: no convective or radiative relief,
	// only solar heating. The line cannot carry continuous current; that is
	// a zero rating, not an error.
	hot := grid.NewWeather(50, 0.001, 90)
	amps, err := Ampacity(drake(), hot, 40)
	if err != nil {
		t.Fatalf("Ampacity failed: %v", err)
	}
	if amps != 0 {
		t.Errorf("Ampacity = %.2f A with ambient above target, want 0", amps)
	}
}

func TestAmpacity_BadConductor(t *testing.T) {
	w := grid.DefaultWeather()

	bad := drake()
	bad.DiameterIn = 0
	if _, err := Ampacity(bad, w, 75); err == nil {
		t.Error("Expected error for zero diameter")
	}

	bad = drake()
	bad.RLoOhmPerFt = 0
	bad.RHiOhmPerFt = 0
	if _, err := Ampacity(bad, w, 75); err == nil {
		t.Error("Expected error for zero resistance")
	}
}

func TestWindAngleFactor(t *testing.T) {
	perp := windAngleFactor(90)
	parallel := windAngleFactor(0)
	if perp <= parallel {
		t.Errorf("Perpendicular factor %.4f should exceed parallel %.4f", perp, parallel)
	}
	// Parallel flow still moves some heat: the factor does not go to zero.
	if parallel <= 0 {
		t.Errorf("Parallel wind factor = %.4f, want > 0", parallel)
	}
}

func TestConvectiveLoss_StillAirUsesNatural(t *testing.T) {
	w := grid.NewWeather(25, 0, 90).Normalized()
	qc := convectiveLoss(1.108, 75, w)
	natural := naturalConvection(1.108, 75, w)
	if qc != natural {
		t.Errorf("Still-air convective loss = %v, want natural %v", qc, natural)
	}
	if qc <= 0 {
		t.Errorf("Natural convection = %v, want > 0 for hot conductor", qc)
	}
}

func TestSolarDeclination(t *testing.T) {
	// Summer solstice region: declination near +23.5.
	dec := solarDeclination(172)
	if dec < 23 || dec > 23.5 {
		t.Errorf("Declination at day 172 = %.2f, want near 23.45", dec)
	}
	// Winter: strongly negative.
	dec = solarDeclination(355)
	if dec > -23 {
		t.Errorf("Declination at day 355 = %.2f, want near -23.45", dec)
	}
}

func TestSolarGain_NightIsZero(t *testing.T) {
	w := grid.DefaultWeather().WithSun(2, time.Date(2000, time.June, 12, 0, 0, 0, 0, time.UTC)).Normalized()
	if qs := solarGain(1.108, w); qs != 0 {
		t.Errorf("Solar gain at 2am = %v, want 0", qs)
	}
}

func TestHeatFlux_ClampedNonNegative(t *testing.T) {
	// The clear-sky polynomial dips negative at very low altitudes.
	if q := heatFlux(0.1, grid.AtmosphereClear); q < 0 {
		t.Errorf("Heat flux = %v, want clamped to >= 0", q)
	}
}
