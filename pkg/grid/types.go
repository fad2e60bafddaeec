package grid

import (
	"encoding/json"
	"math"
)

// ConductorSpec holds the thermal reference data for a conductor type.
// Resistances are per foot; the topology loader converts from the
// ohms-per-mile figures carried by conductor libraries.
type ConductorSpec struct {
	Name string

	// Resistance characteristic at two reference temperatures.
	TLoC       float64 // lower reference temperature, Celsius
	THiC       float64 // upper reference temperature, Celsius
	RLoOhmPerFt float64
	RHiOhmPerFt float64

	DiameterIn float64 // outer diameter, inches

	// MaxOperatingTempC is the conductor's thermal design limit. Lines may
	// override it per-span.
	MaxOperatingTempC float64

	// Surface defaults used when the weather state does not specify them.
	Emissivity   float64
	Absorptivity float64
}

// ResistanceAt returns the AC resistance (ohms/ft) at the given conductor
// temperature, linearly interpolated between the two reference points.
func (c ConductorSpec) ResistanceAt(tempC float64) float64 {
	if c.THiC == c.TLoC {
		return c.RLoOhmPerFt
	}
	return c.RLoOhmPerFt + (c.RHiOhmPerFt-c.RLoOhmPerFt)*(tempC-c.TLoC)/(c.THiC-c.TLoC)
}

// Bus is a network node.
type Bus struct {
	ID       string
	Name     string
	VNomKV   float64
	X, Y     float64 // map coordinates, carried through to islanding reports
}

// LineSpec is the immutable description of a transmission line.
// Invariant: SNomMVA > 0. Conductor may be empty or unresolvable, in which
// case rating falls back to the static SNomMVA.
type LineSpec struct {
	ID      string
	Bus0    string
	Bus1    string
	R       float64 // series resistance
	X       float64 // series reactance
	B       float64 // shunt susceptance
	SNomMVA float64

	Conductor string  // conductor library reference, may be empty
	MOTC      float64 // maximum operating temperature override, 0 = unset
}

// Generator injects power at a bus.
type Generator struct {
	ID      string
	Bus     string
	PSetMW  float64
}

// Load withdraws power at a bus.
type Load struct {
	ID      string
	Bus     string
	PSetMW  float64
}

// OptFloat is a tagged optional numeric. Any value that would be NaN or
// infinite is represented as invalid so downstream classification can match
// on "unknown" instead of comparing NaN.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float wraps a float64, mapping NaN and infinities to the invalid state.
func Float(v float64) OptFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return OptFloat{}
	}
	return OptFloat{Value: v, Valid: true}
}

// Invalid returns the explicit unknown marker.
func Invalid() OptFloat {
	return OptFloat{}
}

// Or returns the value when valid, otherwise the fallback.
func (o OptFloat) Or(fallback float64) float64 {
	if o.Valid {
		return o.Value
	}
	return fallback
}

// Ptr returns the value as a pointer for JSON boundaries, nil when invalid.
func (o OptFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// MarshalJSON encodes a valid value as a number and an invalid one as null.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Ptr())
}

// UnmarshalJSON accepts a number or null.
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*o = OptFloat{}
		return nil
	}
	*o = Float(*v)
	return nil
}
