package rating

import "github.com/wattline/gridrate/pkg/grid"

// Stress is the four-bucket loading classification shared by the rating,
// contingency, and load-scaling engines, plus the two sentinel states for
// out-of-service lines and unknown loading.
type Stress string

const (
	StressNormal     Stress = "normal"      // loading < 60%
	StressCaution    Stress = "caution"     // 60% <= loading < 90%
	StressHighStress Stress = "high_stress" // 90% <= loading < 100%
	StressOverloaded Stress = "overloaded"  // loading >= 100%

	// StressOutaged marks a line deliberately out of service, regardless of
	// its (zero) flow.
	StressOutaged Stress = "outaged"

	// StressUnknown marks a loading value that could not be computed. An
	// unknown loading must never silently classify as normal.
	StressUnknown Stress = "unknown"
)

// Classification thresholds in percent. Boundary values belong to the higher
// bucket (>= not >).
const (
	CautionThresholdPct    = 60.0
	HighStressThresholdPct = 90.0
	OverloadThresholdPct   = 100.0
)

// Classify maps a loading percentage to its stress bucket. An invalid
// (NaN/infinite) loading classifies as unknown.
func Classify(loadingPct grid.OptFloat) Stress {
	if !loadingPct.Valid {
		return StressUnknown
	}
	switch {
	case loadingPct.Value >= OverloadThresholdPct:
		return StressOverloaded
	case loadingPct.Value >= HighStressThresholdPct:
		return StressHighStress
	case loadingPct.Value >= CautionThresholdPct:
		return StressCaution
	default:
		return StressNormal
	}
}

// ClassifyLine is Classify with the outage override applied first.
func ClassifyLine(loadingPct grid.OptFloat, outaged bool) Stress {
	if outaged {
		return StressOutaged
	}
	return Classify(loadingPct)
}
