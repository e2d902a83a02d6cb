package model

import (
	"sort"
	"time"
)

// OHLCV represents a single daily price record.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the historical bars of one ETF, ordered by date ascending
// with no duplicate dates. Treat it as read-only once built.
type PriceSeries struct {
	ETF  string  `json:"etf"`
	Bars []OHLCV `json:"bars"`
}

// NewPriceSeries sorts a copy of bars by date and drops duplicate dates,
// keeping the last bar seen for a given day.
func NewPriceSeries(etf string, bars []OHLCV) PriceSeries {
	sorted := make([]OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]OHLCV, 0, len(sorted))
	for _, b := range sorted {
		if n := len(out); n > 0 && SameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return PriceSeries{ETF: etf, Bars: out}
}

// Len returns the number of bars.
func (p PriceSeries) Len() int { return len(p.Bars) }

// Closes returns the close prices in date order.
func (p PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the bar dates in order.
func (p PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(p.Bars))
	for i, b := range p.Bars {
		dates[i] = b.Time
	}
	return dates
}

// Since returns the sub-series of bars dated on or after start.
// A zero start returns the series unchanged.
func (p PriceSeries) Since(start time.Time) PriceSeries {
	if start.IsZero() {
		return p
	}
	i := sort.Search(len(p.Bars), func(i int) bool { return !p.Bars[i].Time.Before(start) })
	return PriceSeries{ETF: p.ETF, Bars: p.Bars[i:]}
}

// First returns the oldest bar. The series must not be empty.
func (p PriceSeries) First() OHLCV { return p.Bars[0] }

// Last returns the most recent bar. The series must not be empty.
func (p PriceSeries) Last() OHLCV { return p.Bars[len(p.Bars)-1] }

// SameDay reports whether a and b fall on the same calendar day (UTC).
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DayKey truncates t to its UTC calendar day, for use as a map key.
func DayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
