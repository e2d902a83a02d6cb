package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"Prisme/internal/calculator"
	"Prisme/internal/model"
	"Prisme/internal/store"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price    float64
	Days     int
	Currency string
	Bars     map[string][]model.OHLCV // per ticker, overrides generated bars
	Errors   map[string]error         // per ticker
	Profiles map[string]*FundProfile  // per ticker, others have no profile
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, ticker, _ string) (*History, error) {
	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	bars, ok := m.Bars[ticker]
	if !ok {
		days := m.Days
		if days == 0 {
			days = 300
		}
		bars = generateMockBars(m.Price, days)
	}
	currency := m.Currency
	if currency == "" {
		currency = "EUR"
	}
	return &History{
		Ticker: ticker,
		Bars:   bars,
		Meta:   ListingMeta{Symbol: ticker, Currency: currency, LongName: "Mock " + ticker},
		Raw:    []byte(`{"mock":true}`),
	}, nil
}

func (m *MockFetcher) FetchProfile(_ context.Context, ticker string) (*FundProfile, error) {
	if p, ok := m.Profiles[ticker]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("mock: no profile for %s", ticker)
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	day0 := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   day0.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Options tunes an ETL run.
type Options struct {
	Period            string  // Yahoo range, e.g. "5y"
	RequestsPerSecond float64 // <= 0 disables throttling
	Workers           int
}

// DefaultOptions fetches five years at two requests per second.
func DefaultOptions() Options {
	return Options{Period: "5y", RequestsPerSecond: 2, Workers: 4}
}

// Result summarises an ETL run.
type Result struct {
	Written []string          // identifiers whose processed files were written
	Failed  map[string]string // identifier -> error message
}

// Collector fetches the universe and persists raw and processed files.
type Collector struct {
	fetcher Fetcher
	store   *store.Store
	opts    Options
	limiter *rate.Limiter
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st *store.Store, opts Options) *Collector {
	if opts.Period == "" {
		opts.Period = DefaultOptions().Period
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Collector{
		fetcher: fetcher,
		store:   st,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Source names the underlying fetcher.
func (c *Collector) Source() string { return c.fetcher.Name() }

// Period returns the history range fetched per ETF.
func (c *Collector) Period() string { return c.opts.Period }

// Run fetches every product. A failing ETF is recorded in Result.Failed and
// does not stop the others; Run errors only when the context is cancelled,
// the data directory is unusable or nothing at all could be written.
func (c *Collector) Run(ctx context.Context, products []model.Product) (*Result, error) {
	if err := c.store.Init(); err != nil {
		return nil, err
	}

	res := &Result{Failed: make(map[string]string)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for _, p := range products {
		g.Go(func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			err := c.collectOne(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn().Str("etf", p.ETF).Str("ticker", p.Ticker).Err(err).Msg("etl failed")
				res.Failed[p.ETF] = err.Error()
				return nil
			}
			log.Info().Str("etf", p.ETF).Str("source", c.fetcher.Name()).Msg("etl done")
			res.Written = append(res.Written, p.ETF)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(res.Written)
	if len(res.Written) == 0 && len(products) > 0 {
		return res, errors.New("etl: no etf could be collected")
	}
	return res, nil
}

func (c *Collector) collectOne(ctx context.Context, p model.Product) error {
	hist, err := c.fetcher.FetchHistory(ctx, p.Ticker, c.opts.Period)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", p.Ticker, err)
	}
	if err := c.store.WriteRaw(p.ETF, "prices", hist.Raw); err != nil {
		return fmt.Errorf("write raw prices: %w", err)
	}
	if err := c.store.WriteRaw(p.ETF, "infos", hist.Meta); err != nil {
		return fmt.Errorf("write raw infos: %w", err)
	}

	series := model.NewPriceSeries(p.ETF, hist.Bars)
	if series.Len() == 0 {
		return fmt.Errorf("no bars for %s", p.Ticker)
	}
	if err := calculator.ValidatePrices(series); err != nil {
		return err
	}
	if err := c.store.WritePrices(series); err != nil {
		return err
	}
	return c.store.WriteDescriptor(describe(p, hist.Meta, c.profile(ctx, p), series))
}

// profile fetches the fund details when the source publishes them. Failures
// only cost the descriptor its fund size.
func (c *Collector) profile(ctx context.Context, p model.Product) *FundProfile {
	pf, ok := c.fetcher.(ProfileFetcher)
	if !ok {
		return nil
	}
	fp, err := pf.FetchProfile(ctx, p.Ticker)
	if err != nil {
		log.Warn().Str("etf", p.ETF).Str("ticker", p.Ticker).Err(err).Msg("fund profile unavailable")
		return nil
	}
	if len(fp.Raw) > 0 {
		if err := c.store.WriteRaw(p.ETF, "profile", fp.Raw); err != nil {
			log.Warn().Str("etf", p.ETF).Err(err).Msg("write raw profile")
		}
	}
	return fp
}

// describe builds the descriptor of p from the chart metadata and, when
// available, the fund profile. YTD is derived from the bars.
func describe(p model.Product, meta ListingMeta, fp *FundProfile, series model.PriceSeries) model.ETFDescriptor {
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	d := model.ETFDescriptor{
		ETF:       p.ETF,
		Ticker:    p.Ticker,
		LongName:  name,
		Currency:  meta.Currency,
		Family:    p.Family,
		LegalType: meta.InstrumentType,
		YTDReturn: yearToDate(series),
	}
	if fp != nil {
		d.NetAssets = fp.NetAssets
		if fp.Family != "" {
			d.Family = fp.Family
		}
		if fp.LegalType != "" {
			d.LegalType = fp.LegalType
		}
	}
	return d
}

// yearToDate is the performance since the first bar of the last bar's year.
func yearToDate(series model.PriceSeries) float64 {
	last := series.Last()
	start := time.Date(last.Time.UTC().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	perf, err := calculator.PeriodPerformance(series.Since(start))
	if err != nil {
		return 0
	}
	return perf
}
