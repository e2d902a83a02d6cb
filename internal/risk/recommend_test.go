package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Prisme/internal/model"
)

var universe = []model.IndicatorSnapshot{
	{ETF: "CAC40_ETF", MeanReturn: 0.0004, Volatility: 0.16},
	{ETF: "EMERGING_PEA", MeanReturn: 0.0001, Volatility: 0.18},
	{ETF: "EUROSTOXX_ETF", MeanReturn: 0.0003, Volatility: 0.17},
	{ETF: "NASDAQ_PEA", MeanReturn: 0.0009, Volatility: 0.24},
	{ETF: "S&P500_PEA", MeanReturn: 0.0007, Volatility: 0.15},
}

func ids(snaps []model.IndicatorSnapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.ETF
	}
	return out
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		profile model.RiskProfile
		want    []string
	}{
		{model.ProfileDefensive, []string{"S&P500_PEA", "CAC40_ETF", "EUROSTOXX_ETF"}},
		{model.ProfileBalanced, []string{"S&P500_PEA", "CAC40_ETF", "EUROSTOXX_ETF"}},
		{model.ProfileDynamic, []string{"NASDAQ_PEA", "S&P500_PEA", "CAC40_ETF"}},
	}
	for _, tt := range tests {
		rec, err := Recommend(tt.profile, universe, 3)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ids(rec.Picks), tt.profile)
		assert.NotEmpty(t, rec.Allocation)
	}
}

func TestRecommend_SmallUniverse(t *testing.T) {
	rec, err := Recommend(model.ProfileBalanced, universe[:1], 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAC40_ETF"}, ids(rec.Picks))

	rec, err = Recommend(model.ProfileDynamic, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, rec.Picks)
}

func TestRecommend_DoesNotMutateInput(t *testing.T) {
	before := ids(universe)
	_, err := Recommend(model.ProfileDynamic, universe, 2)
	require.NoError(t, err)
	assert.Equal(t, before, ids(universe))
}

func TestModelAllocation_SumsTo100(t *testing.T) {
	for _, p := range model.Profiles {
		alloc, err := ModelAllocation(p)
		require.NoError(t, err)
		total := 0.0
		for _, s := range alloc {
			total += s.Weight
		}
		assert.InDelta(t, 100, total, 1e-9, p)
	}
	_, err := ModelAllocation("reckless")
	assert.Error(t, err)
}
