package grid

import (
	"encoding/json"
	"math"
	"testing"
)

func TestOptFloat(t *testing.T) {
	if v := Float(42.5); !v.Valid || v.Value != 42.5 {
		t.Errorf("Float(42.5) = %+v, want valid 42.5", v)
	}
	if v := Float(math.NaN()); v.Valid {
		t.Error("Float(NaN) should be invalid")
	}
	if v := Float(math.Inf(1)); v.Valid {
		t.Error("Float(+Inf) should be invalid")
	}
	if v := Float(math.Inf(-1)); v.Valid {
		t.Error("Float(-Inf) should be invalid")
	}
	if v := Invalid(); v.Valid {
		t.Error("Invalid() should be invalid")
	}

	if got := Float(7).Or(-1); got != 7 {
		t.Errorf("Or on valid = %v, want 7", got)
	}
	if got := Invalid().Or(-1); got != -1 {
		t.Errorf("Or on invalid = %v, want -1", got)
	}

	if p := Invalid().Ptr(); p != nil {
		t.Error("Ptr on invalid should be nil")
	}
	if p := Float(3).Ptr(); p == nil || *p != 3 {
		t.Errorf("Ptr on valid = %v, want 3", p)
	}
}

func TestOptFloat_JSON(t *testing.T) {
	data, err := json.Marshal(Float(12.5))
	if err != nil {
		t.Fatalf("Marshal valid failed: %v", err)
	}
	if string(data) != "12.5" {
		t.Errorf("Marshal valid = %s, want 12.5", data)
	}

	data, err = json.Marshal(Invalid())
	if err != nil {
		t.Fatalf("Marshal invalid failed: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Marshal invalid = %s, want null", data)
	}

	var v OptFloat
	if err := json.Unmarshal([]byte("null"), &v); err != nil {
		t.Fatalf("Unmarshal null failed: %v", err)
	}
	if v.Valid {
		t.Error("Unmarshal null should be invalid")
	}
	if err := json.Unmarshal([]byte("99"), &v); err != nil {
		t.Fatalf("Unmarshal number failed: %v", err)
	}
	if !v.Valid || v.Value != 99 {
		t.Errorf("Unmarshal number = %+v, want valid 99", v)
	}
}

func TestConductorSpec_ResistanceAt(t *testing.T) {
	c := ConductorSpec{
		TLoC:        25,
		THiC:        50,
		RLoOhmPerFt: 10,
		RHiOhmPerFt: 12,
	}

	if got := c.ResistanceAt(25); got != 10 {
		t.Errorf("ResistanceAt(25) = %v, want 10", got)
	}
	if got := c.ResistanceAt(50); got != 12 {
		t.Errorf("ResistanceAt(50) = %v, want 12", got)
	}
	if got := c.ResistanceAt(37.5); math.Abs(got-11) > 1e-12 {
		t.Errorf("ResistanceAt(37.5) = %v, want 11", got)
	}
	// Extrapolation past the upper reference keeps the same slope.
	if got := c.ResistanceAt(75); math.Abs(got-14) > 1e-12 {
		t.Errorf("ResistanceAt(75) = %v, want 14", got)
	}

	// Degenerate characteristic with equal reference points.
	flat := ConductorSpec{TLoC: 25, THiC: 25, RLoOhmPerFt: 10, RHiOhmPerFt: 12}
	if got := flat.ResistanceAt(60); got != 10 {
		t.Errorf("Degenerate ResistanceAt = %v, want 10", got)
	}
}

func TestWeather_Defaults(t *testing.T) {
	w := DefaultWeather()
	if w.AmbientTempC != DefaultAmbientTempC {
		t.Errorf("AmbientTempC = %v, want %v", w.AmbientTempC, DefaultAmbientTempC)
	}
	if w.WindSpeedFtSec != DefaultWindSpeedFtSec {
		t.Errorf("WindSpeedFtSec = %v, want %v", w.WindSpeedFtSec, DefaultWindSpeedFtSec)
	}
	if w.WindAngleDeg != DefaultWindAngleDeg {
		t.Errorf("WindAngleDeg = %v, want %v", w.WindAngleDeg, DefaultWindAngleDeg)
	}
	if w.Orientation != EastWest {
		t.Errorf("Orientation = %v, want EastWest", w.Orientation)
	}
	if w.Atmosphere != AtmosphereClear {
		t.Errorf("Atmosphere = %v, want Clear", w.Atmosphere)
	}
}

func TestWeather_ExplicitZeroPreserved(t *testing.T) {
	// A zero ambient passed explicitly means 0 C, not "use the default".
	w := NewWeather(0, 0, 90).Normalized()
	if w.AmbientTempC != 0 {
		t.Errorf("Explicit 0 C ambient = %v after normalize, want 0", w.AmbientTempC)
	}
	if w.WindSpeedFtSec != 0 {
		t.Errorf("Explicit still air = %v after normalize, want 0", w.WindSpeedFtSec)
	}
}

func TestWeather_SurfaceOverride(t *testing.T) {
	w := DefaultWeather()
	if !w.HasSurfaceOverride() {
		// Normalized weather has filled surface values, which counts.
		t.Error("Normalized weather should report surface values present")
	}

	raw := WeatherState{}
	if raw.HasSurfaceOverride() {
		t.Error("Zero weather should not report a surface override")
	}

	over := raw.WithSurface(0.5, 0.5)
	if !over.HasSurfaceOverride() {
		t.Error("WithSurface should mark the override")
	}
	n := over.Normalized()
	if n.Emissivity != 0.5 || n.Absorptivity != 0.5 {
		t.Errorf("Normalize clobbered surface override: %v/%v", n.Emissivity, n.Absorptivity)
	}
}
