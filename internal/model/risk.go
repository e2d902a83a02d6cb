package model

import (
	"fmt"
	"strings"
)

// RiskProfile is a qualitative risk bucket for an ETF or a client.
type RiskProfile string

const (
	ProfileDefensive RiskProfile = "defensive"
	ProfileBalanced  RiskProfile = "balanced"
	ProfileDynamic   RiskProfile = "dynamic"
)

// Profiles lists every risk profile from least to most risky.
var Profiles = []RiskProfile{ProfileDefensive, ProfileBalanced, ProfileDynamic}

// ParseRiskProfile accepts the English names and the advisory French labels.
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "defensive", "défensif", "defensif":
		return ProfileDefensive, nil
	case "balanced", "équilibré", "equilibre":
		return ProfileBalanced, nil
	case "dynamic", "dynamique":
		return ProfileDynamic, nil
	}
	return "", fmt.Errorf("unknown risk profile %q", s)
}

// Rank orders profiles: defensive < balanced < dynamic.
func (p RiskProfile) Rank() int {
	switch p {
	case ProfileDefensive:
		return 0
	case ProfileBalanced:
		return 1
	case ProfileDynamic:
		return 2
	}
	return -1
}

// FactorScore represents a single factor's contribution to a risk score.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// RiskAssessment is the classifier output for one ETF.
type RiskAssessment struct {
	ETF     string        `json:"etf"`
	Profile RiskProfile   `json:"profile"`
	Score   float64       `json:"score"` // higher is riskier
	Factors []FactorScore `json:"factors"`
}

// AllocationSlice is one asset class weight of a model allocation.
type AllocationSlice struct {
	AssetClass string  `json:"asset_class"`
	Weight     float64 `json:"weight"` // percent
}

// Recommendation lists the ETFs suggested for a client risk profile.
type Recommendation struct {
	Profile    RiskProfile         `json:"profile"`
	Picks      []IndicatorSnapshot `json:"picks"`
	Allocation []AllocationSlice   `json:"allocation"`
}
