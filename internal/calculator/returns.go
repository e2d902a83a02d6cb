package calculator

import (
	"math"
	"time"

	"Prisme/internal/model"
)

// Returns computes r_t = close_t / close_{t-1} - 1 for each consecutive pair
// of bars. Every close must be a positive finite number.
func Returns(series model.PriceSeries) (model.ReturnSeries, error) {
	if series.Len() < 2 {
		return model.ReturnSeries{}, &model.InsufficientDataError{ETF: series.ETF, Points: series.Len(), Required: 2}
	}
	if err := ValidatePrices(series); err != nil {
		return model.ReturnSeries{}, err
	}

	n := series.Len() - 1
	rs := model.ReturnSeries{
		ETF:    series.ETF,
		Dates:  make([]time.Time, n),
		Values: make([]float64, n),
	}
	for i := 1; i < series.Len(); i++ {
		prev, cur := series.Bars[i-1], series.Bars[i]
		rs.Dates[i-1] = cur.Time
		rs.Values[i-1] = cur.Close/prev.Close - 1
	}
	return rs, nil
}

// ValidatePrices checks that every close is positive and finite.
func ValidatePrices(series model.PriceSeries) error {
	for _, b := range series.Bars {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			return &model.InvalidPriceError{ETF: series.ETF, Date: b.Time, Price: b.Close}
		}
	}
	return nil
}
