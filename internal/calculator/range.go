package calculator

import (
	"errors"
	"math"

	"Prisme/internal/model"
)

// tradingDaysPerYear is the lookback of the 52-week range.
const tradingDaysPerYear = 252

// Calculate52WeekRange scans the most recent 252 bars and returns the high and
// low. Non-positive highs and lows are ignored.
func Calculate52WeekRange(series model.PriceSeries) (high, low float64, err error) {
	n := series.Len()
	if n == 0 {
		return 0, 0, errors.New("no daily bars provided")
	}
	start := max(n-tradingDaysPerYear, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range series.Bars[start:] {
		if b.High > 0 && b.High > high {
			high = b.High
		}
		if b.Low > 0 && b.Low < low {
			low = b.Low
		}
	}
	if math.IsInf(high, 0) || math.IsInf(low, 0) {
		return 0, 0, errors.New("no valid high/low in range")
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
