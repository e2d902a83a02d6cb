package risk

import (
	"fmt"
	"sort"

	"Prisme/internal/model"
)

// modelAllocations holds the advisory asset-class split per client profile.
var modelAllocations = map[model.RiskProfile][]model.AllocationSlice{
	model.ProfileDefensive: {
		{AssetClass: "World equity", Weight: 30},
		{AssetClass: "US equity", Weight: 15},
		{AssetClass: "Europe equity", Weight: 15},
		{AssetClass: "Bonds", Weight: 40},
	},
	model.ProfileBalanced: {
		{AssetClass: "World equity", Weight: 40},
		{AssetClass: "US equity", Weight: 30},
		{AssetClass: "Europe equity", Weight: 20},
		{AssetClass: "Bonds", Weight: 10},
	},
	model.ProfileDynamic: {
		{AssetClass: "World equity", Weight: 40},
		{AssetClass: "US equity", Weight: 35},
		{AssetClass: "Europe equity", Weight: 15},
		{AssetClass: "Emerging equity", Weight: 10},
	},
}

// ModelAllocation returns a copy of the model allocation of profile.
func ModelAllocation(profile model.RiskProfile) ([]model.AllocationSlice, error) {
	alloc, ok := modelAllocations[profile]
	if !ok {
		return nil, fmt.Errorf("no model allocation for profile %q", profile)
	}
	out := make([]model.AllocationSlice, len(alloc))
	copy(out, alloc)
	return out, nil
}

// Recommend picks up to n ETFs for a client profile:
// defensive takes the n least volatile, dynamic the n best mean returns, and
// balanced skips the best mean return and takes the next n.
// Ties are broken by identifier.
func Recommend(profile model.RiskProfile, snaps []model.IndicatorSnapshot, n int) (*model.Recommendation, error) {
	if n <= 0 {
		return nil, &model.ConfigurationError{Field: "recommend", Reason: "must be positive"}
	}
	alloc, err := ModelAllocation(profile)
	if err != nil {
		return nil, err
	}

	sorted := make([]model.IndicatorSnapshot, len(snaps))
	copy(sorted, snaps)

	var picks []model.IndicatorSnapshot
	switch profile {
	case model.ProfileDefensive:
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].Volatility != sorted[j].Volatility {
				return sorted[i].Volatility < sorted[j].Volatility
			}
			return sorted[i].ETF < sorted[j].ETF
		})
		picks = head(sorted, 0, n)
	case model.ProfileBalanced:
		sortByMeanReturn(sorted)
		if len(sorted) <= 1 {
			picks = sorted
		} else {
			picks = head(sorted, 1, n)
		}
	case model.ProfileDynamic:
		sortByMeanReturn(sorted)
		picks = head(sorted, 0, n)
	}

	return &model.Recommendation{Profile: profile, Picks: picks, Allocation: alloc}, nil
}

func sortByMeanReturn(s []model.IndicatorSnapshot) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].MeanReturn != s[j].MeanReturn {
			return s[i].MeanReturn > s[j].MeanReturn
		}
		return s[i].ETF < s[j].ETF
	})
}

func head(s []model.IndicatorSnapshot, from, n int) []model.IndicatorSnapshot {
	if from >= len(s) {
		return nil
	}
	return s[from:min(from+n, len(s))]
}
