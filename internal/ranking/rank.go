package ranking

import (
	"math"
	"sort"

	"Prisme/internal/calculator"
	"Prisme/internal/model"
)

// Options configures the risk/return score.
type Options struct {
	RiskFreeRate   float64 `yaml:"risk_free_rate"` // annual
	PeriodsPerYear int     `yaml:"periods_per_year"`
}

// DefaultOptions uses daily data and a zero risk-free rate.
func DefaultOptions() Options {
	return Options{RiskFreeRate: 0, PeriodsPerYear: calculator.DefaultPeriodsPerYear}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.PeriodsPerYear <= 0 {
		return &model.ConfigurationError{Field: "periods_per_year", Reason: "must be positive"}
	}
	if math.IsNaN(o.RiskFreeRate) || math.IsInf(o.RiskFreeRate, 0) {
		return &model.ConfigurationError{Field: "risk_free_rate", Reason: "must be a finite number"}
	}
	return nil
}

// Ranker compares ETFs on aligned returns.
type Ranker struct {
	opts Options
}

// NewRanker validates opts and returns a Ranker.
func NewRanker(opts Options) (*Ranker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{opts: opts}, nil
}

// zeroVolatility absorbs the rounding noise left in the deviation of
// constant returns.
const zeroVolatility = 1e-12

// Rank scores every ETF with a Sharpe-like ratio,
// (annualized mean - risk free) / annualized volatility, best first.
// A riskless ETF keeps its excess return as score and is flagged
// ZeroVolatility: a positive excess ranks ahead of every finite ratio, a
// negative one behind them all. Equal keys are ordered by identifier.
func (r *Ranker) Rank(a Aligned) []model.RankEntry {
	p := float64(r.opts.PeriodsPerYear)
	entries := make([]model.RankEntry, len(a.ETFs))
	for i, id := range a.ETFs {
		mean := calculator.Mean(a.Values[i]) * p
		vol := calculator.SampleStdDev(a.Values[i]) * math.Sqrt(p)
		excess := mean - r.opts.RiskFreeRate
		e := model.RankEntry{ETF: id, MeanReturn: mean, Volatility: vol, Score: excess}
		if vol < zeroVolatility {
			e.Volatility = 0
			e.ZeroVolatility = true
		} else {
			e.Score = excess / vol
		}
		entries[i] = e
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := rankKey(entries[i]), rankKey(entries[j])
		if ki != kj {
			return ki > kj
		}
		return entries[i].ETF < entries[j].ETF
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// rankKey maps a riskless entry to +Inf, 0 or -Inf by the sign of its
// excess return.
func rankKey(e model.RankEntry) float64 {
	if !e.ZeroVolatility {
		return e.Score
	}
	switch {
	case e.Score > 0:
		return math.Inf(1)
	case e.Score < 0:
		return math.Inf(-1)
	}
	return 0
}

// Compare aligns returns and produces the correlation matrix and ranking.
func (r *Ranker) Compare(returns map[string]model.ReturnSeries) (*model.Comparison, error) {
	a, err := Align(returns)
	if err != nil {
		return nil, err
	}
	return r.compare(a), nil
}

// ComparePrices aligns price series on their common dates before comparing.
func (r *Ranker) ComparePrices(prices map[string]model.PriceSeries) (*model.Comparison, error) {
	a, err := AlignPrices(prices)
	if err != nil {
		return nil, err
	}
	return r.compare(a), nil
}

func (r *Ranker) compare(a Aligned) *model.Comparison {
	return &model.Comparison{
		Overlap:     len(a.Dates),
		Correlation: Correlation(a),
		Ranking:     r.Rank(a),
	}
}
