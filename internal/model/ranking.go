package model

// CorrelationMatrix is a square, symmetric matrix of pairwise return
// correlations. Values[i][j] relates ETFs[i] and ETFs[j].
type CorrelationMatrix struct {
	ETFs   []string    `json:"etfs"`
	Values [][]float64 `json:"values"`
}

// Get returns the correlation between a and b, and false if either is unknown.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, id := range m.ETFs {
		if id == a {
			i = k
		}
		if id == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// RankEntry is one row of the risk/return ranking. When ZeroVolatility is
// set the ratio is unbounded and Score holds the excess return instead.
type RankEntry struct {
	Rank           int     `json:"rank"`
	ETF            string  `json:"etf"`
	MeanReturn     float64 `json:"mean_return"` // annualized when configured
	Volatility     float64 `json:"volatility"`
	Score          float64 `json:"score"`
	ZeroVolatility bool    `json:"zero_volatility,omitempty"`
}

// Comparison is the output of the comparative ranking.
type Comparison struct {
	Overlap     int               `json:"overlap"` // number of common return dates
	Correlation CorrelationMatrix `json:"correlation"`
	Ranking     []RankEntry       `json:"ranking"`
}
