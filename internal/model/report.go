package model

import "time"

// Report gathers every output of one analysis run for the presentation layer.
type Report struct {
	RunID              string              `json:"run_id"`
	GeneratedAt        time.Time           `json:"generated_at"`
	Horizon            Horizon             `json:"horizon"`
	Snapshots          []IndicatorSnapshot `json:"snapshots"`
	Risk               []RiskAssessment    `json:"risk"`
	Comparison         *Comparison         `json:"comparison,omitempty"`
	ComparisonError    string              `json:"comparison_error,omitempty"`
	ComparisonExcluded map[string]string   `json:"comparison_excluded,omitempty"` // analysed but not aligned with the rest
	Descriptors        []ETFDescriptor     `json:"descriptors"`
	Families           []FamilyCount       `json:"families"`
	Excluded           map[string]string   `json:"excluded,omitempty"`
}

// Snapshot returns the snapshot of etf, if present.
func (r *Report) Snapshot(etf string) (IndicatorSnapshot, bool) {
	for _, s := range r.Snapshots {
		if s.ETF == etf {
			return s, true
		}
	}
	return IndicatorSnapshot{}, false
}

// Assessment returns the risk assessment of etf, if present.
func (r *Report) Assessment(etf string) (RiskAssessment, bool) {
	for _, a := range r.Risk {
		if a.ETF == etf {
			return a, true
		}
	}
	return RiskAssessment{}, false
}

// Descriptor returns the descriptor of etf, if present.
func (r *Report) Descriptor(etf string) (ETFDescriptor, bool) {
	for _, d := range r.Descriptors {
		if d.ETF == etf {
			return d, true
		}
	}
	return ETFDescriptor{}, false
}
