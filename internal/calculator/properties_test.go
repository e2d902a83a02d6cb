package calculator

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func relClose(a, b, tol float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol*scale
}

func TestCumulativeReturnMatchesEndpoints(t *testing.T) {
	properties := gopter.NewProperties(nil)

	for _, n := range []int{2, 3, 30, 250} {
		properties.Property("cumulative = last/first - 1", prop.ForAll(
			func(closes []float64) bool {
				e, err := NewEngine(DefaultOptions())
				if err != nil {
					return false
				}
				snap, err := e.Snapshot(makeSeries("P", closes...))
				if err != nil {
					return false
				}
				want := closes[len(closes)-1]/closes[0] - 1
				return relClose(snap.CumulativeReturn, want, 1e-9)
			},
			gen.SliceOfN(n, gen.Float64Range(0.5, 5000)),
		))
	}

	properties.TestingRun(t)
}

func TestFlatSeriesHasNoVolatility(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("flat closes give zero vol and zero cumulative", prop.ForAll(
		func(price float64, n int) bool {
			closes := make([]float64, n)
			for i := range closes {
				closes[i] = price
			}
			e, _ := NewEngine(DefaultOptions())
			snap, err := e.Snapshot(makeSeries("F", closes...))
			return err == nil && snap.Volatility == 0 && snap.CumulativeReturn == 0 && snap.MaxDrawdown == 0
		},
		gen.Float64Range(0.01, 1e5),
		gen.IntRange(2, 400),
	))

	properties.TestingRun(t)
}

func TestMaxDrawdownBounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("drawdown within [0, 1)", prop.ForAll(
		func(closes []float64) bool {
			rs, err := Returns(makeSeries("D", closes...))
			if err != nil {
				return false
			}
			dd := MaxDrawdown(rs.Values)
			return dd >= 0 && dd < 1
		},
		gen.SliceOfN(40, gen.Float64Range(1, 1000)),
	))

	properties.TestingRun(t)
}
