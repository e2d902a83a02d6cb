package ranking

import (
	"math"

	"Prisme/internal/calculator"
	"Prisme/internal/model"
)

// Correlation computes the Pearson correlation matrix of aligned returns.
// The diagonal is 1.0; pairs involving a constant series are 0.
func Correlation(a Aligned) model.CorrelationMatrix {
	n := len(a.ETFs)
	m := model.CorrelationMatrix{ETFs: append([]string(nil), a.ETFs...), Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := pearson(a.Values[i], a.Values[j])
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

func pearson(x, y []float64) float64 {
	mx, my := calculator.Mean(x), calculator.Mean(y)
	var sxy, sxx, syy float64
	for k := range x {
		dx, dy := x[k]-mx, y[k]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	c := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, c))
}
