package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Prisme/internal/model"
)

func TestReturns_Example(t *testing.T) {
	rs, err := Returns(makeSeries("ETF", 100, 110, 121))
	require.NoError(t, err)
	require.Len(t, rs.Values, 2)
	assert.InDelta(t, 0.10, rs.Values[0], 1e-12)
	assert.InDelta(t, 0.10, rs.Values[1], 1e-12)
	assert.Equal(t, day0.AddDate(0, 0, 1), rs.Dates[0])

	assert.InDelta(t, 0.21, CumulativeReturn(rs.Values), 1e-12)
	assert.InDelta(t, 0.0, Volatility(rs.Values, 0), 1e-12)
}

func TestReturns_InsufficientData(t *testing.T) {
	for _, s := range []model.PriceSeries{makeSeries("A"), makeSeries("A", 100)} {
		_, err := Returns(s)
		var ide *model.InsufficientDataError
		require.True(t, errors.As(err, &ide), "got %v", err)
		assert.Equal(t, s.Len(), ide.Points)
		assert.Equal(t, "A", ide.ETF)
	}
}

func TestReturns_InvalidPrice(t *testing.T) {
	for _, bad := range []float64{0, -5, math.NaN()} {
		_, err := Returns(makeSeries("B", 100, bad, 50))
		var ipe *model.InvalidPriceError
		require.True(t, errors.As(err, &ipe), "price %v: got %v", bad, err)
		assert.Equal(t, day0.AddDate(0, 0, 1), ipe.Date)
	}
}

func TestSnapshot_ValidatesCloseOnly(t *testing.T) {
	e, err := NewEngine(DefaultOptions())
	require.NoError(t, err)

	bars := []model.OHLCV{
		{Time: day0, Open: 100, High: 101, Low: 99, Close: 100},
		{Time: day0.AddDate(0, 0, 1), Close: 102}, // open/high/low left null by the vendor
		{Time: day0.AddDate(0, 0, 2), Open: 102, High: 104, Low: 101, Close: 103},
	}
	snap, err := e.Snapshot(model.NewPriceSeries("GAPS", bars))
	require.NoError(t, err)
	assert.InDelta(t, 0.03, snap.CumulativeReturn, 1e-12)
	assert.Equal(t, 104.0, snap.High52w)
	assert.Equal(t, 99.0, snap.Low52w)

	bars[1].Close = math.Inf(1)
	_, err = e.Snapshot(model.NewPriceSeries("GAPS", bars))
	var ipe *model.InvalidPriceError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, day0.AddDate(0, 0, 1), ipe.Date)
}

func TestVolatility_Annualized(t *testing.T) {
	returns := []float64{0.01, -0.01}
	raw := math.Sqrt(2 * 0.01 * 0.01)
	assert.InDelta(t, raw, Volatility(returns, 0), 1e-12)
	assert.InDelta(t, raw*math.Sqrt(252), Volatility(returns, 252), 1e-12)
	assert.Zero(t, Volatility([]float64{0.05}, 252))
}

func TestMaxDrawdown(t *testing.T) {
	rs, err := Returns(makeSeries("C", 100, 120, 90, 110, 80, 130))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, MaxDrawdown(rs.Values), 1e-12)

	rising, err := Returns(makeSeries("C", 100, 101, 102, 103))
	require.NoError(t, err)
	assert.Zero(t, MaxDrawdown(rising.Values))
}

func TestNewEngine_RejectsBadPeriods(t *testing.T) {
	_, err := NewEngine(Options{PeriodsPerYear: 0, Annualize: true})
	var ce *model.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "periods_per_year", ce.Field)
}

func TestSnapshot_Flat(t *testing.T) {
	e, err := NewEngine(DefaultOptions())
	require.NoError(t, err)

	snap, err := e.Snapshot(makeSeries("FLAT", 50, 50, 50, 50, 50))
	require.NoError(t, err)
	assert.Zero(t, snap.Volatility)
	assert.Zero(t, snap.CumulativeReturn)
	assert.Zero(t, snap.MaxDrawdown)
	assert.Zero(t, snap.MeanReturn)
	assert.Equal(t, 5, snap.Points)
	assert.True(t, snap.Annualized)
}

func TestSnapshot_SupplementaryIndicators(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	e, err := NewEngine(DefaultOptions())
	require.NoError(t, err)

	snap, err := e.Snapshot(makeSeries("LONG", closes...))
	require.NoError(t, err)
	assert.Greater(t, snap.MA200, 0.0)
	assert.Greater(t, snap.High52w, snap.Low52w)
	assert.InDelta(t, closes[299]/closes[0]-1, snap.CumulativeReturn, 1e-9)
	assert.GreaterOrEqual(t, snap.Position52w, 0.0)
	assert.LessOrEqual(t, snap.Position52w, 1.0)

	short, err := e.Snapshot(makeSeries("SHORT", 100, 101, 99))
	require.NoError(t, err)
	assert.Zero(t, short.MA200, "MA200 needs 200 bars")
}

func TestNormalize(t *testing.T) {
	points, err := Normalize(makeSeries("N", 50, 75, 25), 100)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 100, points[0].Value, 1e-12)
	assert.InDelta(t, 150, points[1].Value, 1e-12)
	assert.InDelta(t, 50, points[2].Value, 1e-12)

	_, err = Normalize(makeSeries("N"), 100)
	assert.Error(t, err)
}

func TestPeriodPerformance(t *testing.T) {
	perf, err := PeriodPerformance(makeSeries("P", 80, 90, 100))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, perf, 1e-12)
}

func TestCalculate52WeekPosition(t *testing.T) {
	tests := []struct {
		current, high, low float64
		want               float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := Calculate52WeekPosition(tt.current, tt.high, tt.low)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12)
	}
	_, err := Calculate52WeekPosition(1, 1, 2)
	assert.Error(t, err)
}
