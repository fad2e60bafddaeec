package loadscale

import "math"

// Daily demand curve parameters: nominal at the offset, +/-10% swing, phase
// chosen so the minimum (0.9x) lands at hour 6 and the maximum (1.1x) at
// hour 18.
const (
	profileOffset    = 1.0
	profileAmplitude = 0.1
	profilePhase     = math.Pi
)

// ScaleFactor returns the demand multiplier for one hour of an n-hour day.
func ScaleFactor(hour, hours int) float64 {
	f := 1.0 / float64(hours)
	return profileAmplitude*math.Sin(2.0*math.Pi*f*float64(hour)+profilePhase) + profileOffset
}

// Profile returns the full scale-factor curve for an n-hour day.
func Profile(hours int) []float64 {
	out := make([]float64, hours)
	for h := 0; h < hours; h++ {
		out[h] = ScaleFactor(h, hours)
	}
	return out
}

// ProfilePoint pairs an hour with its scale factor and the projected system
// totals at that scale.
type ProfilePoint struct {
	Hour        int     `json:"hour"`
	ScaleFactor float64 `json:"scale_factor"`
	LoadMW      float64 `json:"load_mw"`
	GenMW       float64 `json:"gen_mw"`
}
