package calculator

import (
	"github.com/phuslu/log"

	"Prisme/internal/model"
)

// DefaultPeriodsPerYear is the annualization factor for daily data.
const DefaultPeriodsPerYear = 252

// Options configures the Indicator Engine.
type Options struct {
	PeriodsPerYear int  // annualization factor, 252 for daily bars
	Annualize      bool // scale volatility by sqrt(PeriodsPerYear)
}

// DefaultOptions returns daily, annualized settings.
func DefaultOptions() Options {
	return Options{PeriodsPerYear: DefaultPeriodsPerYear, Annualize: true}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.PeriodsPerYear <= 0 {
		return &model.ConfigurationError{Field: "periods_per_year", Reason: "must be positive"}
	}
	return nil
}

// Engine turns price series into indicator snapshots. It holds no state
// besides its validated options and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine validates opts and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine settings.
func (e *Engine) Options() Options { return e.opts }

// Returns computes the return series of series.
func (e *Engine) Returns(series model.PriceSeries) (model.ReturnSeries, error) {
	return Returns(series)
}

// Snapshot computes the IndicatorSnapshot of a series with at least 2 points.
func (e *Engine) Snapshot(series model.PriceSeries) (model.IndicatorSnapshot, error) {
	returns, err := Returns(series)
	if err != nil {
		return model.IndicatorSnapshot{}, err
	}

	periods := 0
	if e.opts.Annualize {
		periods = e.opts.PeriodsPerYear
	}
	first, last := series.First(), series.Last()
	snap := model.IndicatorSnapshot{
		ETF:              series.ETF,
		Points:           series.Len(),
		From:             first.Time,
		To:               last.Time,
		FirstClose:       first.Close,
		LastClose:        last.Close,
		MeanReturn:       Mean(returns.Values),
		Volatility:       Volatility(returns.Values, periods),
		Annualized:       e.opts.Annualize,
		CumulativeReturn: CumulativeReturn(returns.Values),
		MaxDrawdown:      MaxDrawdown(returns.Values),
	}

	// MA200
	if ma, err := CalculateMA200(series); err != nil {
		log.Debug().Str("etf", series.ETF).Err(err).Msg("MA200 unavailable")
	} else {
		snap.MA200 = ma
	}

	// 52-week range and position
	if h, l, err := Calculate52WeekRange(series); err != nil {
		log.Warn().Str("etf", series.ETF).Err(err).Msg("52-week range calculation failed")
	} else {
		snap.High52w, snap.Low52w = h, l
		if pos, err := Calculate52WeekPosition(last.Close, h, l); err != nil {
			log.Warn().Str("etf", series.ETF).Err(err).Msg("52-week position calculation failed")
		} else {
			snap.Position52w = pos
		}
	}

	return snap, nil
}
