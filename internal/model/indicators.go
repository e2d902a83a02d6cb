package model

import "time"

// ReturnSeries holds period-over-period returns derived from a PriceSeries.
// Dates[i] is the date of the bar closing period i.
type ReturnSeries struct {
	ETF    string      `json:"etf"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of returns.
func (r ReturnSeries) Len() int { return len(r.Values) }

// IndicatorSnapshot aggregates the indicators of one ETF.
// It is always derived from a PriceSeries and never stored authoritatively.
type IndicatorSnapshot struct {
	ETF              string    `json:"etf"`
	Points           int       `json:"points"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	FirstClose       float64   `json:"first_close"`
	LastClose        float64   `json:"last_close"`
	MeanReturn       float64   `json:"mean_return"`
	Volatility       float64   `json:"volatility"`
	Annualized       bool      `json:"annualized"`
	CumulativeReturn float64   `json:"cumulative_return"` // fraction
	MaxDrawdown      float64   `json:"max_drawdown"`      // positive fraction

	// Supplementary indicators, zero when there is not enough data.
	MA200       float64 `json:"ma200,omitempty"`
	High52w     float64 `json:"high_52w,omitempty"`
	Low52w      float64 `json:"low_52w,omitempty"`
	Position52w float64 `json:"position_52w,omitempty"` // 0.0 ~ 1.0
}

// NormalizedPoint is one point of an index-100 rebased series.
type NormalizedPoint struct {
	Time  time.Time `json:"date"`
	Value float64   `json:"value"`
}
