package calculator

import (
	"errors"

	"Prisme/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateMA200 returns the 200-day simple moving average of a daily series.
func CalculateMA200(series model.PriceSeries) (float64, error) {
	return CalculateSMA(series.Closes(), 200)
}
