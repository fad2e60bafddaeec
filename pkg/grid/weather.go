package grid

import "time"

// Orientation is the compass alignment of a line span, used for solar gain.
type Orientation string

const (
	EastWest   Orientation = "EastWest"
	NorthSouth Orientation = "NorthSouth"
)

// Atmosphere selects the solar attenuation model.
type Atmosphere string

const (
	AtmosphereClear      Atmosphere = "Clear"
	AtmosphereIndustrial Atmosphere = "Industrial"
)

// WeatherState describes ambient conditions for a rating calculation.
// Every field has a default; callers may supply a zero value and get the
// standard study-case weather.
type WeatherState struct {
	AmbientTempC   float64
	WindSpeedFtSec float64
	WindAngleDeg   float64 // relative to the conductor axis, 90 = perpendicular

	SunHour float64   // local solar time, hours (0-24)
	Date    time.Time // only month/day matter

	ElevationFt float64
	LatitudeDeg float64

	Emissivity   float64
	Absorptivity float64

	Orientation Orientation
	Atmosphere  Atmosphere

	// set marks fields that were explicitly provided, so zero-valued inputs
	// are distinguishable from omitted ones.
	set weatherSet
}

type weatherSet struct {
	ambient, wind, angle, sunHour, elevation, latitude bool
	emissivity, absorptivity                           bool
}

// Default study-case weather, matching the historical rating assumptions.
const (
	DefaultAmbientTempC   = 25.0
	DefaultWindSpeedFtSec = 2.0
	DefaultWindAngleDeg   = 90.0
	DefaultSunHour        = 12.0
	DefaultElevationFt    = 1000.0
	DefaultLatitudeDeg    = 21.0
	DefaultEmissivity     = 0.8
	DefaultAbsorptivity   = 0.8
)

// DefaultWeather returns the standard study-case weather state: 25 C ambient,
// 2 ft/s perpendicular wind, solar noon on June 12.
func DefaultWeather() WeatherState {
	w := WeatherState{}
	return w.Normalized()
}

// NewWeather builds a fully-specified weather state from explicit values.
func NewWeather(ambientC, windFtSec, windAngleDeg float64) WeatherState {
	w := WeatherState{
		AmbientTempC:   ambientC,
		WindSpeedFtSec: windFtSec,
		WindAngleDeg:   windAngleDeg,
	}
	w.set.ambient = true
	w.set.wind = true
	w.set.angle = true
	return w.Normalized()
}

// WithSun overrides the solar inputs.
func (w WeatherState) WithSun(hour float64, date time.Time) WeatherState {
	w.SunHour = hour
	w.set.sunHour = true
	w.Date = date
	return w
}

// WithSurface overrides emissivity and absorptivity.
func (w WeatherState) WithSurface(emissivity, absorptivity float64) WeatherState {
	w.Emissivity = emissivity
	w.Absorptivity = absorptivity
	w.set.emissivity = true
	w.set.absorptivity = true
	return w
}

// HasSurfaceOverride reports whether emissivity/absorptivity were explicitly
// supplied, letting callers decide if conductor-level defaults should apply.
func (w WeatherState) HasSurfaceOverride() bool {
	return w.set.emissivity || w.set.absorptivity || w.Emissivity != 0 || w.Absorptivity != 0
}

// WithSite overrides elevation and latitude.
func (w WeatherState) WithSite(elevationFt, latitudeDeg float64) WeatherState {
	w.ElevationFt = elevationFt
	w.LatitudeDeg = latitudeDeg
	w.set.elevation = true
	w.set.latitude = true
	return w
}

// Normalized fills every unset field with its default and returns the
// completed state. The result is safe to hand to the thermal model.
func (w WeatherState) Normalized() WeatherState {
	if !w.set.ambient && w.AmbientTempC == 0 {
		w.AmbientTempC = DefaultAmbientTempC
	}
	if !w.set.wind && w.WindSpeedFtSec == 0 {
		w.WindSpeedFtSec = DefaultWindSpeedFtSec
	}
	if !w.set.angle && w.WindAngleDeg == 0 {
		w.WindAngleDeg = DefaultWindAngleDeg
	}
	if !w.set.sunHour && w.SunHour == 0 {
		w.SunHour = DefaultSunHour
	}
	if w.Date.IsZero() {
		w.Date = time.Date(2000, time.June, 12, 0, 0, 0, 0, time.UTC)
	}
	if !w.set.elevation && w.ElevationFt == 0 {
		w.ElevationFt = DefaultElevationFt
	}
	if !w.set.latitude && w.LatitudeDeg == 0 {
		w.LatitudeDeg = DefaultLatitudeDeg
	}
	if !w.set.emissivity && w.Emissivity == 0 {
		w.Emissivity = DefaultEmissivity
	}
	if !w.set.absorptivity && w.Absorptivity == 0 {
		w.Absorptivity = DefaultAbsorptivity
	}
	if w.Orientation == "" {
		w.Orientation = EastWest
	}
	if w.Atmosphere == "" {
		w.Atmosphere = AtmosphereClear
	}
	return w
}
