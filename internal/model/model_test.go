package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeries_SortsAndDedupes(t *testing.T) {
	bars := []OHLCV{
		{Time: day(3), Close: 103},
		{Time: day(1), Close: 101},
		{Time: day(2), Close: 102},
		{Time: day(2).Add(15 * time.Hour), Close: 102.5},
	}
	ps := NewPriceSeries("X", bars)

	require.Equal(t, 3, ps.Len())
	assert.Equal(t, []float64{101, 102.5, 103}, ps.Closes())
	assert.Equal(t, day(3), bars[0].Time, "input must not be reordered")
}

func TestPriceSeries_Since(t *testing.T) {
	ps := NewPriceSeries("X", []OHLCV{{Time: day(1), Close: 1}, {Time: day(5), Close: 2}, {Time: day(9), Close: 3}})

	assert.Equal(t, 3, ps.Since(time.Time{}).Len())
	assert.Equal(t, 2, ps.Since(day(5)).Len())
	assert.Equal(t, 1, ps.Since(day(6)).Len())
	assert.Equal(t, 0, ps.Since(day(10)).Len())
	assert.Equal(t, "X", ps.Since(day(6)).ETF)
}

func TestParseHorizon(t *testing.T) {
	h, err := ParseHorizon(" 1Y ")
	require.NoError(t, err)
	assert.Equal(t, Horizon1Y, h)

	_, err = ParseHorizon("2w")
	assert.Error(t, err)

	now := time.Date(2024, 6, 30, 17, 0, 0, 0, time.UTC)
	assert.True(t, HorizonMax.Start(now).IsZero())
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), Horizon1M.Start(now))
}

func TestParseRiskProfile(t *testing.T) {
	cases := map[string]RiskProfile{
		"defensive": ProfileDefensive,
		"Défensif":  ProfileDefensive,
		"équilibré": ProfileBalanced,
		"DYNAMIQUE": ProfileDynamic,
	}
	for in, want := range cases {
		got, err := ParseRiskProfile(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRiskProfile("aggressive")
	assert.Error(t, err)

	assert.Less(t, ProfileDefensive.Rank(), ProfileBalanced.Rank())
	assert.Less(t, ProfileBalanced.Rank(), ProfileDynamic.Rank())
}

func TestErrorsAs(t *testing.T) {
	var err error = &InsufficientDataError{ETF: "X", Points: 1, Required: 2}
	var ide *InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Contains(t, err.Error(), "need at least 2")

	err = &InvalidPriceError{Price: -1, Date: day(4)}
	assert.Contains(t, err.Error(), "series: invalid price -1 on 2024-01-04")
}

func TestCorrelationMatrix_Get(t *testing.T) {
	m := CorrelationMatrix{ETFs: []string{"A", "B"}, Values: [][]float64{{1, 0.4}, {0.4, 1}}}
	v, ok := m.Get("B", "A")
	require.True(t, ok)
	assert.InDelta(t, 0.4, v, 1e-12)

	_, ok = m.Get("A", "Z")
	assert.False(t, ok)
}
