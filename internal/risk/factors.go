package risk

import (
	"fmt"

	"Prisme/internal/model"
)

// Factor weights of the risk score. Raw scores range from -2 (calm) to +2 (risky).
const (
	weightVolatility = 0.50
	weightDrawdown   = 0.30
	weightReturn     = 0.20
)

// scoreVolatility scores the volatility relative to the bucket thresholds.
// Weight: 0.50
func scoreVolatility(snap model.IndicatorSnapshot, th Thresholds) model.FactorScore {
	vol := snap.Volatility
	mid := (th.LowVolMax + th.HighVolMin) / 2

	var score float64
	switch {
	case vol <= th.LowVolMax/2:
		score = -2.0
	case vol <= th.LowVolMax:
		score = -1.0
	case vol < mid:
		score = -0.5
	case vol < th.HighVolMin:
		score = 0.5
	case vol < th.HighVolMin*1.5:
		score = 1.5
	default:
		score = 2.0
	}

	return model.FactorScore{
		Name:       "volatility",
		RawScore:   score,
		Weight:     weightVolatility,
		Weighted:   score * weightVolatility,
		Commentary: fmt.Sprintf("vol=%.1f%%", vol*100),
	}
}

// scoreDrawdown scores the worst peak-to-trough decline.
// Weight: 0.30
func scoreDrawdown(snap model.IndicatorSnapshot) model.FactorScore {
	dd := snap.MaxDrawdown * 100 // percentage

	var score float64
	switch {
	case dd <= 5:
		score = -2.0
	case dd <= 10:
		score = -1.0
	case dd <= 20:
		score = 0
	case dd <= 30:
		score = 1.0
	case dd <= 40:
		score = 1.5
	default:
		score = 2.0
	}

	return model.FactorScore{
		Name:       "max drawdown",
		RawScore:   score,
		Weight:     weightDrawdown,
		Weighted:   score * weightDrawdown,
		Commentary: fmt.Sprintf("drawdown=%.1f%%", dd),
	}
}

// scoreReturn penalises realised losses over the window.
// Weight: 0.20
func scoreReturn(snap model.IndicatorSnapshot) model.FactorScore {
	cum := snap.CumulativeReturn * 100

	var score float64
	switch {
	case cum <= -20:
		score = 2.0
	case cum <= -10:
		score = 1.0
	case cum <= 0:
		score = 0.5
	case cum <= 10:
		score = 0
	default:
		score = -0.5
	}

	return model.FactorScore{
		Name:       "cumulative return",
		RawScore:   score,
		Weight:     weightReturn,
		Weighted:   score * weightReturn,
		Commentary: fmt.Sprintf("cumulative=%+.1f%%", cum),
	}
}
