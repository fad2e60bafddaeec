// Package thermal implements the IEEE 738 steady-state heat balance for
// overhead conductors. Given a conductor's resistance characteristic and an
// ambient weather state it returns the maximum continuous current that holds
// the conductor at its target temperature:
//
//	qc + qr = qs + I^2 * R(Tc)
//
// The target temperature is fixed (the conductor's MOT), so current is the
// only unknown and the balance solves in closed form. All quantities are in
// the standard's English units: W/ft losses, inches diameter, ohms/ft
// resistance, ft/s wind, feet elevation.
package thermal

import (
	"fmt"
	"math"

	"github.com/wattline/gridrate/pkg/grid"
)

// Ampacity returns the steady-state thermal rating in amps for the conductor
// held at targetTempC under the given weather. The weather state is
// normalized first, so a zero value yields the standard study case.
//
// When net heating exceeds cooling (strong sun, hot still air) the returned
// ampacity is 0: the line cannot be continuously loaded under those
// conditions. That is a valid analytical outcome, not an error. Errors are
// reserved for unusable conductor data.
func Ampacity(cond grid.ConductorSpec, weather grid.WeatherState, targetTempC float64) (float64, error) {
	w := weather.Normalized()

	if cond.DiameterIn <= 0 {
		return 0, fmt.Errorf("conductor %s: non-positive diameter %v", cond.Name, cond.DiameterIn)
	}
	r := cond.ResistanceAt(targetTempC)
	if r <= 0 {
		return 0, fmt.Errorf("conductor %s: non-positive resistance %v at %v C", cond.Name, r, targetTempC)
	}

	qc := convectiveLoss(cond.DiameterIn, targetTempC, w)
	qr := radiativeLoss(cond.DiameterIn, w.Emissivity, targetTempC, w.AmbientTempC)
	qs := solarGain(cond.DiameterIn, w)

	net := qc + qr - qs
	if net <= 0 {
		return 0, nil
	}
	return math.Sqrt(net / r), nil
}

// radiativeLoss is the Stefan-Boltzmann style radiated heat loss in W/ft.
func radiativeLoss(diameterIn, emissivity, condTempC, ambientTempC float64) float64 {
	tc := (condTempC + 273.0) / 100.0
	ta := (ambientTempC + 273.0) / 100.0
	return 0.1380 * diameterIn * emissivity * (math.Pow(tc, 4) - math.Pow(ta, 4))
}
