package risk

import (
	"math"
	"sort"

	"Prisme/internal/model"
)

// Thresholds bound the volatility buckets. Volatility at or below LowVolMax is
// defensive, at or above HighVolMin is dynamic, anything between is balanced.
type Thresholds struct {
	LowVolMax  float64 `yaml:"low_vol_max"`
	HighVolMin float64 `yaml:"high_vol_min"`
}

// DefaultThresholds suits annualized daily volatility of equity ETFs.
func DefaultThresholds() Thresholds {
	return Thresholds{LowVolMax: 0.12, HighVolMin: 0.20}
}

// Validate checks that both bounds are finite, non-negative and ordered.
func (t Thresholds) Validate() error {
	switch {
	case math.IsNaN(t.LowVolMax) || math.IsInf(t.LowVolMax, 0) || t.LowVolMax < 0:
		return &model.ConfigurationError{Field: "low_vol_max", Reason: "must be a non-negative number"}
	case math.IsNaN(t.HighVolMin) || math.IsInf(t.HighVolMin, 0) || t.HighVolMin < 0:
		return &model.ConfigurationError{Field: "high_vol_min", Reason: "must be a non-negative number"}
	case t.LowVolMax >= t.HighVolMin:
		return &model.ConfigurationError{Field: "low_vol_max", Reason: "must be lower than high_vol_min"}
	}
	return nil
}

// Classifier assigns risk profiles from indicator snapshots. It is a pure
// function of its thresholds.
type Classifier struct {
	th Thresholds
}

// NewClassifier validates th and returns a Classifier.
func NewClassifier(th Thresholds) (*Classifier, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{th: th}, nil
}

// Thresholds returns the classifier bounds.
func (c *Classifier) Thresholds() Thresholds { return c.th }

// ClassifyVolatility maps a volatility to its bucket.
func (c *Classifier) ClassifyVolatility(vol float64) model.RiskProfile {
	switch {
	case vol <= c.th.LowVolMax:
		return model.ProfileDefensive
	case vol >= c.th.HighVolMin:
		return model.ProfileDynamic
	default:
		return model.ProfileBalanced
	}
}

// Classify maps a snapshot to its bucket.
func (c *Classifier) Classify(snap model.IndicatorSnapshot) model.RiskProfile {
	return c.ClassifyVolatility(snap.Volatility)
}

// ClassifyAll maps every snapshot identifier to its bucket.
func (c *Classifier) ClassifyAll(snaps []model.IndicatorSnapshot) map[string]model.RiskProfile {
	out := make(map[string]model.RiskProfile, len(snaps))
	for _, s := range snaps {
		out[s.ETF] = c.Classify(s)
	}
	return out
}

// Assess classifies a snapshot and computes its factor risk score.
func (c *Classifier) Assess(snap model.IndicatorSnapshot) model.RiskAssessment {
	factors := []model.FactorScore{
		scoreVolatility(snap, c.th),
		scoreDrawdown(snap),
		scoreReturn(snap),
	}
	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}
	return model.RiskAssessment{
		ETF:     snap.ETF,
		Profile: c.Classify(snap),
		Score:   total,
		Factors: factors,
	}
}

// AssessAll assesses every snapshot, ordered by identifier.
func (c *Classifier) AssessAll(snaps []model.IndicatorSnapshot) []model.RiskAssessment {
	out := make([]model.RiskAssessment, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, c.Assess(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ETF < out[j].ETF })
	return out
}
