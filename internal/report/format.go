package report

import (
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"Prisme/internal/model"
)

// Percent renders a fraction as a percentage with two decimals (0.1234 -> "12.34%").
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Shift(2).StringFixed(2) + "%"
}

// SignedPercent is Percent with an explicit sign on positive values.
func SignedPercent(fraction float64) string {
	d := decimal.NewFromFloat(fraction).Shift(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// Fixed renders v rounded to places decimals.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Money renders an amount in currency. Unknown currencies and zero amounts
// fall back to a plain number or "n/a".
func Money(amount float64, currency string) string {
	if amount == 0 {
		return "n/a"
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return strconv.FormatFloat(amount, 'f', 0, 64)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor)
	return money.New(minor.IntPart(), currency).Display()
}

// RankScore renders a ranking score; riskless entries show as +∞ or -∞ by
// the sign of their excess return.
func RankScore(e model.RankEntry) string {
	if e.ZeroVolatility {
		switch {
		case e.Score > 0:
			return "+∞"
		case e.Score < 0:
			return "-∞"
		}
	}
	return Fixed(e.Score, 2)
}
