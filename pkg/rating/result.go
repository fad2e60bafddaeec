package rating

import "github.com/wattline/gridrate/pkg/grid"

// Result is the per-line outcome of a rating pass. Recomputed per request,
// never persisted.
type Result struct {
	LineID    string `json:"line_id"`
	Bus0      string `json:"bus0"`
	Bus1      string `json:"bus1"`
	Conductor string `json:"conductor,omitempty"`

	MOTC      float64 `json:"mot_c"`
	VoltageKV float64 `json:"voltage_kv"`

	RatingAmps grid.OptFloat `json:"rating_amps"`
	RatingMVA  float64       `json:"rating_mva"`

	// StaticRatingMVA is the line's nominal capacity; it is also the
	// effective rating whenever Degraded is set.
	StaticRatingMVA float64 `json:"static_rating_mva"`

	FlowMVA    float64       `json:"flow_mva"`
	LoadingPct grid.OptFloat `json:"loading_pct"`
	MarginMVA  float64       `json:"margin_mva"`

	Stress Stress `json:"stress"`

	// Degraded is set when the thermal model could not be applied and the
	// static nominal rating was used instead.
	Degraded      bool   `json:"degraded,omitempty"`
	DegradedCause string `json:"degraded_cause,omitempty"`
}

// Summary aggregates a rating pass for the API boundary.
type Summary struct {
	TotalLines      int `json:"total_lines"`
	OverloadedLines int `json:"overloaded_lines"`
	HighStressLines int `json:"high_stress_lines"`
	CautionLines    int `json:"caution_lines"`
	DegradedLines   int `json:"degraded_lines"`

	AvgLoadingPct grid.OptFloat `json:"avg_loading_pct"`
	MaxLoadingPct grid.OptFloat `json:"max_loading_pct"`

	// CriticalLines are the top-N most loaded lines, descending.
	CriticalLines []Result `json:"critical_lines"`
}
