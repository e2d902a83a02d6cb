package ranking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Prisme/internal/model"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func returnSeries(etf string, offset int, values ...float64) model.ReturnSeries {
	rs := model.ReturnSeries{ETF: etf, Values: values, Dates: make([]time.Time, len(values))}
	for i := range values {
		rs.Dates[i] = day0.AddDate(0, 0, offset+i)
	}
	return rs
}

func priceSeries(etf string, offset int, closes ...float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: day0.AddDate(0, 0, offset+i), Open: c, High: c, Low: c, Close: c}
	}
	return model.PriceSeries{ETF: etf, Bars: bars}
}

func newRanker(t *testing.T) *Ranker {
	t.Helper()
	r, err := NewRanker(DefaultOptions())
	require.NoError(t, err)
	return r
}

func TestAlign_Intersection(t *testing.T) {
	a, err := Align(map[string]model.ReturnSeries{
		"B": returnSeries("B", 0, 0.01, 0.02, 0.03, 0.04),
		"A": returnSeries("A", 2, 0.10, 0.20, 0.30),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, a.ETFs)
	require.Len(t, a.Dates, 2)
	assert.Equal(t, []float64{0.10, 0.20}, a.Values[0])
	assert.Equal(t, []float64{0.03, 0.04}, a.Values[1])
}

func TestAlign_NoOverlap(t *testing.T) {
	_, err := Align(map[string]model.ReturnSeries{
		"A": returnSeries("A", 0, 0.01, 0.02, 0.03),
		"B": returnSeries("B", 10, 0.01, 0.02, 0.03),
	})
	var ae *model.AlignmentError
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Equal(t, 0, ae.Overlap)
	assert.Equal(t, []string{"A", "B"}, ae.ETFs)

	_, err = Align(nil)
	assert.True(t, errors.As(err, &ae))
}

func TestComparePrices_DisjointRanges(t *testing.T) {
	_, err := newRanker(t).ComparePrices(map[string]model.PriceSeries{
		"A": priceSeries("A", 0, 100, 101, 102, 103),
		"B": priceSeries("B", 30, 50, 51, 52, 53),
	})
	var ae *model.AlignmentError
	require.True(t, errors.As(err, &ae), "got %v", err)
}

func TestAlignPrices_ReturnsOnCommonDates(t *testing.T) {
	a, err := AlignPrices(map[string]model.PriceSeries{
		"A": priceSeries("A", 0, 100, 110, 121, 133.1),
		"B": priceSeries("B", 1, 200, 220, 242),
	})
	require.NoError(t, err)
	require.Len(t, a.Dates, 2)
	assert.InDelta(t, 0.10, a.Values[0][0], 1e-12)
	assert.InDelta(t, 0.10, a.Values[1][1], 1e-12)
}

func TestAlignPrices_InvalidPrice(t *testing.T) {
	_, err := AlignPrices(map[string]model.PriceSeries{
		"A": priceSeries("A", 0, 100, -1, 100),
	})
	var ipe *model.InvalidPriceError
	assert.True(t, errors.As(err, &ipe))
}

func TestCorrelation(t *testing.T) {
	a, err := Align(map[string]model.ReturnSeries{
		"UP":   returnSeries("UP", 0, 0.01, -0.02, 0.03, -0.01),
		"SAME": returnSeries("SAME", 0, 0.02, -0.04, 0.06, -0.02),
		"INV":  returnSeries("INV", 0, -0.01, 0.02, -0.03, 0.01),
		"FLAT": returnSeries("FLAT", 0, 0, 0, 0, 0),
	})
	require.NoError(t, err)

	m := Correlation(a)
	get := func(x, y string) float64 {
		v, ok := m.Get(x, y)
		require.True(t, ok)
		return v
	}
	assert.InDelta(t, 1.0, get("UP", "SAME"), 1e-12)
	assert.InDelta(t, -1.0, get("UP", "INV"), 1e-12)
	assert.Equal(t, 0.0, get("UP", "FLAT"))
	assert.Equal(t, 1.0, get("FLAT", "FLAT"))
}

func TestRank_OrderAndTieBreak(t *testing.T) {
	r := newRanker(t)
	cmp, err := r.Compare(map[string]model.ReturnSeries{
		"LOW":  returnSeries("LOW", 0, 0.001, 0.002, 0.001, 0.002),
		"HIGH": returnSeries("HIGH", 0, 0.010, 0.011, 0.010, 0.011),
		"TWIN": returnSeries("TWIN", 0, 0.001, 0.002, 0.001, 0.002),
		"NEG":  returnSeries("NEG", 0, -0.01, -0.02, -0.01, -0.02),
	})
	require.NoError(t, err)

	got := make([]string, len(cmp.Ranking))
	for i, e := range cmp.Ranking {
		got[i] = e.ETF
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"HIGH", "LOW", "TWIN", "NEG"}, got)
	assert.Equal(t, 4, cmp.Overlap)
}

func TestRank_RiskFreeRate(t *testing.T) {
	r, err := NewRanker(Options{RiskFreeRate: 0.5, PeriodsPerYear: 252})
	require.NoError(t, err)
	cmp, err := r.Compare(map[string]model.ReturnSeries{
		"A": returnSeries("A", 0, 0.001, 0.001, 0.001),
		"B": returnSeries("B", 0, 0.004, -0.001, 0.003),
	})
	require.NoError(t, err)

	// A is riskless with a negative excess return: it trails any finite ratio.
	require.Len(t, cmp.Ranking, 2)
	assert.Equal(t, "B", cmp.Ranking[0].ETF)
	last := cmp.Ranking[1]
	assert.Equal(t, "A", last.ETF)
	assert.True(t, last.ZeroVolatility)
	assert.Zero(t, last.Volatility)
	assert.InDelta(t, 0.001*252-0.5, last.Score, 1e-9)
}

func TestRank_ZeroVolatilityOrdering(t *testing.T) {
	r := newRanker(t)
	cmp, err := r.Compare(map[string]model.ReturnSeries{
		"STEADY": returnSeries("STEADY", 0, 0.001, 0.001, 0.001, 0.001),
		"NEARLY": returnSeries("NEARLY", 0, 0.001, 0.0010001, 0.001, 0.0010001),
		"NOISY":  returnSeries("NOISY", 0, 0.02, -0.01, 0.015, -0.02),
		"FLAT":   returnSeries("FLAT", 0, 0, 0, 0, 0),
		"DOWN":   returnSeries("DOWN", 0, -0.002, -0.002, -0.002, -0.002),
		"LOSER":  returnSeries("LOSER", 0, -0.02, 0.01, -0.015, -0.01),
	})
	require.NoError(t, err)

	got := make([]string, len(cmp.Ranking))
	for i, e := range cmp.Ranking {
		got[i] = e.ETF
	}
	// riskless gain first, riskless zero between positive and negative
	// ratios, riskless loss last
	assert.Equal(t, []string{"STEADY", "NEARLY", "NOISY", "FLAT", "LOSER", "DOWN"}, got)
	assert.True(t, cmp.Ranking[0].ZeroVolatility)
	assert.False(t, cmp.Ranking[1].ZeroVolatility)
}

func TestRank_ZeroVolatilityTieBreak(t *testing.T) {
	r := newRanker(t)
	cmp, err := r.Compare(map[string]model.ReturnSeries{
		"ZED":   returnSeries("ZED", 0, 0.001, 0.001, 0.001),
		"ALPHA": returnSeries("ALPHA", 0, 0.003, 0.003, 0.003),
	})
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", cmp.Ranking[0].ETF)
	assert.Equal(t, "ZED", cmp.Ranking[1].ETF)
}

func TestNewRanker_Invalid(t *testing.T) {
	_, err := NewRanker(Options{PeriodsPerYear: -1})
	var ce *model.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}
