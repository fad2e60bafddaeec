package thermal

import (
	"math"

	"github.com/wattline/gridrate/pkg/grid"
)

// Total solar and sky radiated heat flux polynomials, W/ft^2, as a function
// of solar altitude in degrees. Coefficients per IEEE 738 for clear and
// industrial atmospheres.
var (
	clearSkyCoeffs = [7]float64{
		-3.9241, 5.9276, -1.7856e-1, 3.223e-3, -3.3549e-5, 1.8053e-7, -3.7868e-10,
	}
	industrialCoeffs = [7]float64{
		4.9408, 1.3202, 6.1444e-2, -2.9411e-3, 5.07752e-5, -4.03627e-7, 1.22967e-9,
	}
)

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }

// solarDeclination returns the sun's declination in degrees for a day of
// year.
func solarDeclination(dayOfYear int) float64 {
	return 23.46 * math.Sin(deg2rad(float64(284+dayOfYear)/365.0*360.0))
}

// solarAltitude returns the sun's altitude above the horizon in degrees.
// Negative at night.
func solarAltitude(latitudeDeg, declinationDeg, hourAngleDeg float64) float64 {
	lat := deg2rad(latitudeDeg)
	dec := deg2rad(declinationDeg)
	ha := deg2rad(hourAngleDeg)
	return math.Asin(math.Cos(lat)*math.Cos(dec)*math.Cos(ha)+math.Sin(lat)*math.Sin(dec)) * 180.0 / math.Pi
}

// solarAzimuth returns the sun's azimuth in degrees from north.
func solarAzimuth(latitudeDeg, declinationDeg, hourAngleDeg float64) float64 {
	lat := deg2rad(latitudeDeg)
	dec := deg2rad(declinationDeg)
	ha := deg2rad(hourAngleDeg)

	denom := math.Sin(lat)*math.Cos(ha) - math.Cos(lat)*math.Tan(dec)
	chi := math.Sin(ha) / denom

	var c float64
	switch {
	case hourAngleDeg < 0 && chi >= 0:
		c = 0
	case hourAngleDeg < 0:
		c = 180
	case chi >= 0:
		c = 180
	default:
		c = 360
	}
	return c + math.Atan(chi)*180.0/math.Pi
}

// heatFlux evaluates the altitude polynomial for the given atmosphere,
// clamped to non-negative.
func heatFlux(altitudeDeg float64, atmosphere grid.Atmosphere) float64 {
	coeffs := clearSkyCoeffs
	if atmosphere == grid.AtmosphereIndustrial {
		coeffs = industrialCoeffs
	}
	var q, pow float64
	pow = 1
	for _, c := range coeffs {
		q += c * pow
		pow *= altitudeDeg
	}
	if q < 0 {
		return 0
	}
	return q
}

// elevationCorrection scales the sea-level heat flux for site elevation in
// feet.
func elevationCorrection(elevationFt float64) float64 {
	return 1.0 + 1.148e-4*elevationFt - 1.108e-8*elevationFt*elevationFt
}

// lineAzimuthDeg maps a span orientation to its compass azimuth.
func lineAzimuthDeg(o grid.Orientation) float64 {
	if o == grid.NorthSouth {
		return 0
	}
	return 90
}

// solarGain returns the absorbed solar heating in W/ft. Zero whenever the
// sun is at or below the horizon.
func solarGain(diameterIn float64, w grid.WeatherState) float64 {
	day := w.Date.YearDay()
	dec := solarDeclination(day)
	hourAngle := (w.SunHour - 12.0) * 15.0

	altitude := solarAltitude(w.LatitudeDeg, dec, hourAngle)
	if altitude <= 0 {
		return 0
	}

	azimuth := solarAzimuth(w.LatitudeDeg, dec, hourAngle)
	incidence := math.Acos(math.Cos(deg2rad(altitude)) * math.Cos(deg2rad(azimuth-lineAzimuthDeg(w.Orientation))))

	qse := elevationCorrection(w.ElevationFt) * heatFlux(altitude, w.Atmosphere)
	projectedAreaFt := diameterIn / 12.0
	return w.Absorptivity * qse * math.Sin(incidence) * projectedAreaFt
}
