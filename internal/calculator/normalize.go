package calculator

import "Prisme/internal/model"

// Normalize rebases the closes of series so that the first point equals base
// (index 100 when base is 100).
func Normalize(series model.PriceSeries, base float64) ([]model.NormalizedPoint, error) {
	if series.Len() == 0 {
		return nil, &model.InsufficientDataError{ETF: series.ETF, Points: 0, Required: 1}
	}
	if err := ValidatePrices(series); err != nil {
		return nil, err
	}
	first := series.First().Close
	points := make([]model.NormalizedPoint, series.Len())
	for i, b := range series.Bars {
		points[i] = model.NormalizedPoint{Time: b.Time, Value: base * b.Close / first}
	}
	return points, nil
}

// PeriodPerformance returns last/first - 1 over the whole series.
func PeriodPerformance(series model.PriceSeries) (float64, error) {
	if series.Len() < 2 {
		return 0, &model.InsufficientDataError{ETF: series.ETF, Points: series.Len(), Required: 2}
	}
	if err := ValidatePrices(series); err != nil {
		return 0, err
	}
	return series.Last().Close/series.First().Close - 1, nil
}
