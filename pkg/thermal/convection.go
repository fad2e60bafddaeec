package thermal

import (
	"math"

	"github.com/wattline/gridrate/pkg/grid"
)

// Air film properties evaluated at the boundary-layer temperature
// (Tc + Ta) / 2, per IEEE 738.

// airConductivity returns thermal conductivity of air, W/(ft*C).
func airConductivity(filmTempC float64) float64 {
	return 0.007388 + 2.27889e-5*filmTempC - 1.34328e-9*filmTempC*filmTempC
}

// airViscosity returns dynamic viscosity of air, lb/(ft*hr).
func airViscosity(filmTempC float64) float64 {
	return 0.00353 * math.Pow(filmTempC+273.0, 1.5) / (filmTempC + 383.4)
}

// airDensity returns air density, lb/ft^3, corrected for elevation in feet.
func airDensity(filmTempC, elevationFt float64) float64 {
	return (0.080695 - 0.2901e-5*elevationFt + 0.37e-10*elevationFt*elevationFt) /
		(1.0 + 0.00367*filmTempC)
}

// windAngleFactor adjusts forced convection for wind direction relative to
// the conductor axis. 90 degrees (perpendicular) gives the full effect.
func windAngleFactor(angleDeg float64) float64 {
	phi := angleDeg * math.Pi / 180.0
	return 1.194 - math.Cos(phi) + 0.194*math.Cos(2*phi) + 0.368*math.Sin(2*phi)
}

// forcedConvection returns the wind-driven convective loss in W/ft. The two
// Reynolds-regime correlations cross over around Re ~ 1000; the standard
// takes the larger of the two.
func forcedConvection(diameterIn, condTempC float64, w grid.WeatherState) float64 {
	dT := condTempC - w.AmbientTempC
	if dT <= 0 || w.WindSpeedFtSec <= 0 {
		return 0
	}

	film := (condTempC + w.AmbientTempC) / 2.0
	kf := airConductivity(film)
	muf := airViscosity(film)
	rhof := airDensity(film, w.ElevationFt)

	// Reynolds-number term with wind in ft/hr.
	windFtHr := w.WindSpeedFtSec * 3600.0
	re := diameterIn * rhof * windFtHr / muf

	kAngle := windAngleFactor(w.WindAngleDeg)

	low := (1.01 + 0.371*math.Pow(re, 0.52)) * kf * kAngle * dT
	high := 0.1695 * math.Pow(re, 0.6) * kf * kAngle * dT
	return math.Max(low, high)
}

// naturalConvection returns the buoyancy-driven convective loss in W/ft, the
// no-wind limit.
func naturalConvection(diameterIn, condTempC float64, w grid.WeatherState) float64 {
	dT := condTempC - w.AmbientTempC
	if dT <= 0 {
		return 0
	}
	film := (condTempC + w.AmbientTempC) / 2.0
	rhof := airDensity(film, w.ElevationFt)
	return 0.283 * math.Sqrt(rhof) * math.Pow(diameterIn, 0.75) * math.Pow(dT, 1.25)
}

// convectiveLoss takes the larger of natural and forced convection, the
// standard's conservative-cooling convention.
func convectiveLoss(diameterIn, condTempC float64, w grid.WeatherState) float64 {
	return math.Max(
		naturalConvection(diameterIn, condTempC, w),
		forcedConvection(diameterIn, condTempC, w),
	)
}
