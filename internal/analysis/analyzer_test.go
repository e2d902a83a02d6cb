package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Prisme/internal/calculator"
	"Prisme/internal/model"
	"Prisme/internal/ranking"
	"Prisme/internal/risk"
	"Prisme/internal/store"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func series(etf string, closes ...float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: day0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return model.NewPriceSeries(etf, bars)
}

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	engine, err := calculator.NewEngine(calculator.Options{PeriodsPerYear: 252, Annualize: false})
	require.NoError(t, err)
	classifier, err := risk.NewClassifier(risk.Thresholds{LowVolMax: 0.005, HighVolMin: 0.02})
	require.NoError(t, err)
	ranker, err := ranking.NewRanker(ranking.DefaultOptions())
	require.NoError(t, err)

	a := New(engine, classifier, ranker, 2)
	a.now = func() time.Time { return day0.AddDate(0, 0, 10) }
	return a
}

func testUniverse() *store.Universe {
	return &store.Universe{
		Prices: map[string]model.PriceSeries{
			"CALM":   series("CALM", 100, 100.1, 100.2, 100.1, 100.3, 100.4),
			"WILD":   series("WILD", 100, 105, 98, 106, 101, 110),
			"MID":    series("MID", 100, 101, 100.5, 101.5, 101, 102),
			"BROKEN": series("BROKEN", 100, 0, 101),
			"SHORT":  series("SHORT", 100),
		},
		Descriptors: map[string]model.ETFDescriptor{
			"CALM": {ETF: "CALM", Family: "Amundi"},
			"WILD": {ETF: "WILD", Family: "Lyxor"},
			"MID":  {ETF: "MID", Family: "Amundi"},
		},
	}
}

func TestRun(t *testing.T) {
	report, err := newAnalyzer(t).Run(context.Background(), testUniverse(), model.HorizonMax)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, model.HorizonMax, report.Horizon)

	require.Len(t, report.Snapshots, 3)
	assert.Equal(t, "CALM", report.Snapshots[0].ETF)
	assert.Equal(t, "MID", report.Snapshots[1].ETF)
	assert.Equal(t, "WILD", report.Snapshots[2].ETF)

	require.Len(t, report.Excluded, 2)
	assert.Contains(t, report.Excluded["BROKEN"], "invalid price")
	assert.Contains(t, report.Excluded, "SHORT")

	calm, ok := report.Assessment("CALM")
	require.True(t, ok)
	assert.Equal(t, model.ProfileDefensive, calm.Profile)
	wild, _ := report.Assessment("WILD")
	assert.Equal(t, model.ProfileDynamic, wild.Profile)

	require.NotNil(t, report.Comparison)
	assert.Empty(t, report.ComparisonError)
	assert.Equal(t, []string{"CALM", "MID", "WILD"}, report.Comparison.Correlation.ETFs)
	assert.Len(t, report.Comparison.Ranking, 3)
	assert.Equal(t, 5, report.Comparison.Overlap)

	assert.Equal(t, []model.FamilyCount{{Family: "Amundi", Count: 2}, {Family: "Lyxor", Count: 1}}, report.Families)
}

func TestRunHorizonWindow(t *testing.T) {
	a := newAnalyzer(t)
	// 1m back from day0+40 starts at day0+10, past every bar.
	a.now = func() time.Time { return day0.AddDate(0, 0, 40) }

	report, err := a.Run(context.Background(), testUniverse(), model.Horizon1M)
	require.NoError(t, err)
	assert.Empty(t, report.Snapshots)
	assert.Len(t, report.Excluded, 5)
	assert.Nil(t, report.Comparison)
	assert.Contains(t, report.ComparisonError, "at least 2")
}

func TestRunSingleETF(t *testing.T) {
	u := &store.Universe{Prices: map[string]model.PriceSeries{"ONLY": series("ONLY", 1, 2, 3)}}
	report, err := newAnalyzer(t).Run(context.Background(), u, model.HorizonMax)
	require.NoError(t, err)
	require.Len(t, report.Snapshots, 1)
	assert.Nil(t, report.Comparison)
	assert.NotEmpty(t, report.ComparisonError)
	assert.Equal(t, []model.FamilyCount{{Family: "Unknown", Count: 1}}, report.Families)
}

func TestRunDisjointDates(t *testing.T) {
	late := model.NewPriceSeries("LATE", []model.OHLCV{
		{Time: day0.AddDate(0, 1, 0), Close: 10},
		{Time: day0.AddDate(0, 1, 1), Close: 11},
		{Time: day0.AddDate(0, 1, 2), Close: 12},
	})
	u := &store.Universe{Prices: map[string]model.PriceSeries{
		"EARLY": series("EARLY", 1, 2, 3),
		"LATE":  late,
	}}
	report, err := newAnalyzer(t).Run(context.Background(), u, model.HorizonMax)
	require.NoError(t, err)
	assert.Len(t, report.Snapshots, 2)
	assert.Nil(t, report.Comparison)
	assert.NotEmpty(t, report.ComparisonError)
	assert.Empty(t, report.ComparisonExcluded)
}

func TestRunLeavesDisjointETFOutOfComparison(t *testing.T) {
	u := testUniverse()
	delete(u.Prices, "BROKEN")
	delete(u.Prices, "SHORT")
	u.Prices["LATE"] = model.NewPriceSeries("LATE", []model.OHLCV{
		{Time: day0.AddDate(0, 2, 0), Close: 50},
		{Time: day0.AddDate(0, 2, 1), Close: 51},
		{Time: day0.AddDate(0, 2, 2), Close: 50.5},
	})

	report, err := newAnalyzer(t).Run(context.Background(), u, model.HorizonMax)
	require.NoError(t, err)

	assert.Len(t, report.Snapshots, 4)
	assert.Empty(t, report.Excluded)
	require.NotNil(t, report.Comparison)
	assert.Empty(t, report.ComparisonError)
	assert.Equal(t, []string{"CALM", "MID", "WILD"}, report.Comparison.Correlation.ETFs)
	assert.Len(t, report.Comparison.Ranking, 3)
	assert.Equal(t, 5, report.Comparison.Overlap)

	require.Len(t, report.ComparisonExcluded, 1)
	assert.Contains(t, report.ComparisonExcluded["LATE"], "shares 0 dates")
	_, ok := report.Assessment("LATE")
	assert.True(t, ok, "risk section keeps the ETF")
}

func TestRunPartialOverlapKeepsLargestGroup(t *testing.T) {
	// SHIFTED overlaps the others on two dates only, not enough to align.
	shifted := make([]model.OHLCV, 4)
	for i := range shifted {
		shifted[i] = model.OHLCV{Time: day0.AddDate(0, 0, 4+i), Close: 20 + float64(i)}
	}
	u := &store.Universe{Prices: map[string]model.PriceSeries{
		"CALM":    series("CALM", 100, 100.1, 100.2, 100.1, 100.3, 100.4),
		"MID":     series("MID", 100, 101, 100.5, 101.5, 101, 102),
		"SHIFTED": model.NewPriceSeries("SHIFTED", shifted),
	}}

	report, err := newAnalyzer(t).Run(context.Background(), u, model.HorizonMax)
	require.NoError(t, err)
	require.NotNil(t, report.Comparison)
	assert.Equal(t, []string{"CALM", "MID"}, report.Comparison.Correlation.ETFs)
	assert.Contains(t, report.ComparisonExcluded, "SHIFTED")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAnalyzer(t).Run(ctx, testUniverse(), model.HorizonMax)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecommend(t *testing.T) {
	report, err := newAnalyzer(t).Run(context.Background(), testUniverse(), model.HorizonMax)
	require.NoError(t, err)

	rec, err := Recommend(report, model.ProfileDefensive, 1)
	require.NoError(t, err)
	require.Len(t, rec.Picks, 1)
	assert.Equal(t, "CALM", rec.Picks[0].ETF)
	assert.NotEmpty(t, rec.Allocation)
}

func TestNormalized(t *testing.T) {
	u := testUniverse()
	points, err := Normalized(u, "WILD", model.HorizonMax, day0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, points[0].Value)
	assert.InDelta(t, 110.0, points[len(points)-1].Value, 1e-9)

	_, err = Normalized(u, "NOPE", model.HorizonMax, day0)
	assert.True(t, errors.Is(err, ErrUnknownETF))
}

func TestLatest(t *testing.T) {
	var l Latest
	assert.Nil(t, l.Get())

	u := testUniverse()
	r := &model.Report{RunID: "one"}
	l.Set(r, u)
	got := l.Get()
	require.NotNil(t, got)
	assert.Same(t, r, got.Report)
	assert.Same(t, u, got.Universe)

	l.Set(&model.Report{RunID: "two"}, u)
	assert.Equal(t, "one", got.Report.RunID)
	assert.Equal(t, "two", l.Get().Report.RunID)
}
