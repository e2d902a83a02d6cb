package calculator

import "math"

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the sample (N-1) standard deviation of values.
// Fewer than two values yield 0.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Volatility returns the sample standard deviation of returns, annualized by
// sqrt(periodsPerYear) when periodsPerYear is positive.
func Volatility(returns []float64, periodsPerYear int) float64 {
	vol := SampleStdDev(returns)
	if periodsPerYear > 0 {
		vol *= math.Sqrt(float64(periodsPerYear))
	}
	return vol
}

// CumulativeReturn compounds returns: prod(1 + r_t) - 1.
func CumulativeReturn(returns []float64) float64 {
	value := 1.0
	for _, r := range returns {
		value *= 1 + r
	}
	return value - 1
}

// MaxDrawdown returns the largest peak-to-trough decline of the compounded
// value, as a positive fraction. One forward pass with a running peak.
func MaxDrawdown(returns []float64) float64 {
	value, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
			continue
		}
		if dd := (peak - value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
