package calculator

import (
	"time"

	"Prisme/internal/model"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// makeSeries builds a daily series with the given closes.
func makeSeries(etf string, closes ...float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   day0.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return model.PriceSeries{ETF: etf, Bars: bars}
}
