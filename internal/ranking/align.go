package ranking

import (
	"sort"
	"time"

	"Prisme/internal/calculator"
	"Prisme/internal/model"
)

// Aligned holds return series restricted to their common dates.
// Values[i] belongs to ETFs[i]; ETFs are sorted ascending.
type Aligned struct {
	ETFs   []string
	Dates  []time.Time
	Values [][]float64
}

// Align intersects the dates of every return series. It fails with an
// AlignmentError when fewer than 2 dates are shared by all series.
func Align(returns map[string]model.ReturnSeries) (Aligned, error) {
	ids := sortedKeys(returns)
	if len(ids) == 0 {
		return Aligned{}, &model.AlignmentError{}
	}

	byDay := make(map[string]map[time.Time]float64, len(ids))
	for _, id := range ids {
		rs := returns[id]
		m := make(map[time.Time]float64, rs.Len())
		for i, d := range rs.Dates {
			m[model.DayKey(d)] = rs.Values[i]
		}
		byDay[id] = m
	}

	common := intersect(ids, func(id string) map[time.Time]float64 { return byDay[id] })
	if len(common) < 2 {
		return Aligned{}, &model.AlignmentError{ETFs: ids, Overlap: len(common)}
	}

	a := Aligned{ETFs: ids, Dates: common, Values: make([][]float64, len(ids))}
	for i, id := range ids {
		vals := make([]float64, len(common))
		for j, d := range common {
			vals[j] = byDay[id][d]
		}
		a.Values[i] = vals
	}
	return a, nil
}

// AlignPrices intersects the price dates first and computes returns on the
// common dates, so every aligned return spans the same interval.
func AlignPrices(prices map[string]model.PriceSeries) (Aligned, error) {
	ids := sortedKeys(prices)
	if len(ids) == 0 {
		return Aligned{}, &model.AlignmentError{}
	}

	closes := make(map[string]map[time.Time]float64, len(ids))
	for _, id := range ids {
		ps := prices[id]
		if err := calculator.ValidatePrices(ps); err != nil {
			return Aligned{}, err
		}
		m := make(map[time.Time]float64, ps.Len())
		for _, b := range ps.Bars {
			m[model.DayKey(b.Time)] = b.Close
		}
		closes[id] = m
	}

	common := intersect(ids, func(id string) map[time.Time]float64 { return closes[id] })
	if len(common) < 3 {
		return Aligned{}, &model.AlignmentError{ETFs: ids, Overlap: max(len(common)-1, 0)}
	}

	a := Aligned{ETFs: ids, Dates: common[1:], Values: make([][]float64, len(ids))}
	for i, id := range ids {
		vals := make([]float64, len(common)-1)
		for j := 1; j < len(common); j++ {
			vals[j-1] = closes[id][common[j]]/closes[id][common[j-1]] - 1
		}
		a.Values[i] = vals
	}
	return a, nil
}

func intersect(ids []string, days func(string) map[time.Time]float64) []time.Time {
	var common []time.Time
	for d := range days(ids[0]) {
		shared := true
		for _, id := range ids[1:] {
			if _, ok := days(id)[d]; !ok {
				shared = false
				break
			}
		}
		if shared {
			common = append(common, d)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })
	return common
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
