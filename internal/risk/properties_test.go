package risk

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"Prisme/internal/model"
)

func TestClassifierMonotonic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("higher volatility never lowers the bucket", prop.ForAll(
		func(low, gap, vol, bump float64) bool {
			c, err := NewClassifier(Thresholds{LowVolMax: low, HighVolMin: low + gap})
			if err != nil {
				return false
			}
			before := c.ClassifyVolatility(vol)
			after := c.ClassifyVolatility(vol + bump)
			return after.Rank() >= before.Rank()
		},
		gen.Float64Range(0, 0.5),
		gen.Float64Range(0.001, 0.5),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	))

	properties.Property("deterministic", prop.ForAll(
		func(vol float64) bool {
			c, _ := NewClassifier(DefaultThresholds())
			s := model.IndicatorSnapshot{ETF: "X", Volatility: vol}
			return c.Classify(s) == c.Classify(s)
		},
		gen.Float64Range(0, 2),
	))

	properties.TestingRun(t)
}
