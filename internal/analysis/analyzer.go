// Package analysis runs the indicator engine, the risk classifier and the
// comparative ranking over a loaded universe and assembles a Report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"Prisme/internal/calculator"
	"Prisme/internal/model"
	"Prisme/internal/ranking"
	"Prisme/internal/risk"
	"Prisme/internal/store"
)

// ErrUnknownETF is returned for an identifier absent from the universe.
var ErrUnknownETF = errors.New("unknown etf")

// Analyzer wires the three core components together. It is stateless
// between runs and safe for concurrent use.
type Analyzer struct {
	engine     *calculator.Engine
	classifier *risk.Classifier
	ranker     *ranking.Ranker
	workers    int
	now        func() time.Time
}

// New creates an Analyzer computing at most workers snapshots at once.
func New(engine *calculator.Engine, classifier *risk.Classifier, ranker *ranking.Ranker, workers int) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		engine:     engine,
		classifier: classifier,
		ranker:     ranker,
		workers:    workers,
		now:        time.Now,
	}
}

type outcome struct {
	snap model.IndicatorSnapshot
	err  error
}

// Run analyses u over horizon h. ETFs whose snapshot cannot be computed are
// listed in Report.Excluded and left out of every other section. ETFs whose
// dates do not overlap the rest are left out of the comparison only and
// listed in Report.ComparisonExcluded. When fewer than two comparable ETFs
// remain the comparison is omitted and the reason kept in
// Report.ComparisonError.
func (a *Analyzer) Run(ctx context.Context, u *store.Universe, h model.Horizon) (*model.Report, error) {
	now := a.now()
	window := u.Window(h.Start(now))
	ids := window.IDs()

	outcomes := make([]outcome, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap, err := a.engine.Snapshot(window.Prices[id])
			outcomes[i] = outcome{snap: snap, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC(),
		Horizon:     h,
		Excluded:    make(map[string]string),
	}
	included := make(map[string]model.PriceSeries, len(ids))
	for i, id := range ids {
		o := outcomes[i]
		if o.err != nil {
			log.Warn().Str("etf", id).Err(o.err).Msg("excluded from analysis")
			report.Excluded[id] = o.err.Error()
			continue
		}
		report.Snapshots = append(report.Snapshots, o.snap)
		included[id] = window.Prices[id]
		if d, ok := u.Descriptors[id]; ok {
			report.Descriptors = append(report.Descriptors, d)
		} else {
			report.Descriptors = append(report.Descriptors, model.ETFDescriptor{ETF: id})
		}
	}

	report.Risk = a.classifier.AssessAll(report.Snapshots)
	report.Families = CountFamilies(report.Descriptors)

	if len(included) < 2 {
		report.ComparisonError = fmt.Sprintf("comparison needs at least 2 ETFs, have %d", len(included))
	} else {
		cmp, dropped, err := a.compare(included)
		if len(dropped) > 0 {
			report.ComparisonExcluded = dropped
		}
		if err != nil {
			log.Warn().Err(err).Msg("comparison skipped")
			report.ComparisonError = err.Error()
		} else {
			report.Comparison = cmp
		}
	}

	log.Info().Str("run_id", report.RunID).Str("horizon", string(h)).
		Int("etfs", len(report.Snapshots)).Int("excluded", len(report.Excluded)).
		Msg("analysis done")
	return report, nil
}

// compare runs the comparative ranking. On an alignment failure it drops the
// ETF sharing the fewest dates with the others and retries, until the rest
// align or only two are left.
func (a *Analyzer) compare(prices map[string]model.PriceSeries) (*model.Comparison, map[string]string, error) {
	remaining := make(map[string]model.PriceSeries, len(prices))
	for id, p := range prices {
		remaining[id] = p
	}
	dropped := make(map[string]string)
	for {
		cmp, err := a.ranker.ComparePrices(remaining)
		var ae *model.AlignmentError
		if err == nil || !errors.As(err, &ae) || len(remaining) <= 2 {
			return cmp, dropped, err
		}
		id, shared := leastOverlapping(remaining)
		log.Warn().Str("etf", id).Int("shared_dates", shared).Msg("left out of comparison")
		dropped[id] = fmt.Sprintf("shares %d dates with the other ETFs", shared)
		delete(remaining, id)
	}
}

// leastOverlapping returns the ETF with the smallest total pairwise date
// overlap, and that total. Ties go to the first identifier.
func leastOverlapping(prices map[string]model.PriceSeries) (string, int) {
	ids := make([]string, 0, len(prices))
	days := make(map[string]map[time.Time]struct{}, len(prices))
	for id, p := range prices {
		ids = append(ids, id)
		set := make(map[time.Time]struct{}, p.Len())
		for _, b := range p.Bars {
			set[model.DayKey(b.Time)] = struct{}{}
		}
		days[id] = set
	}
	sort.Strings(ids)

	worst, worstShared := "", -1
	for _, id := range ids {
		shared := 0
		for _, other := range ids {
			if other == id {
				continue
			}
			for d := range days[id] {
				if _, ok := days[other][d]; ok {
					shared++
				}
			}
		}
		if worstShared < 0 || shared < worstShared {
			worst, worstShared = id, shared
		}
	}
	return worst, worstShared
}

// CountFamilies counts descriptors per fund family, most represented first.
// ETFs without a family are counted under "Unknown".
func CountFamilies(descs []model.ETFDescriptor) []model.FamilyCount {
	counts := make(map[string]int)
	for _, d := range descs {
		family := d.Family
		if family == "" {
			family = "Unknown"
		}
		counts[family]++
	}
	out := make([]model.FamilyCount, 0, len(counts))
	for f, n := range counts {
		out = append(out, model.FamilyCount{Family: f, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Family < out[j].Family
	})
	return out
}

// Recommend picks n ETFs of report for profile.
func Recommend(report *model.Report, profile model.RiskProfile, n int) (*model.Recommendation, error) {
	return risk.Recommend(profile, report.Snapshots, n)
}

// Normalized returns the index-100 series of etf over horizon h.
func Normalized(u *store.Universe, etf string, h model.Horizon, now time.Time) ([]model.NormalizedPoint, error) {
	series, ok := u.Prices[etf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownETF, etf)
	}
	return calculator.Normalize(series.Since(h.Start(now)), 100)
}
