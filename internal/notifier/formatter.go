package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"Prisme/internal/model"
	"Prisme/internal/report"
)

var profileIcons = map[model.RiskProfile]string{
	model.ProfileDefensive: "🛡",
	model.ProfileBalanced:  "⚖️",
	model.ProfileDynamic:   "🚀",
}

// FormatDigest formats the daily summary of an analysis run.
func FormatDigest(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Prisme digest</b> | %s | horizon %s\n\n",
		r.GeneratedAt.Format("2006-01-02"), r.Horizon))

	b.WriteString("<b>Risk profiles:</b>\n")
	for _, a := range r.Risk {
		snap, _ := r.Snapshot(a.ETF)
		b.WriteString(fmt.Sprintf("  %s %s: %s (vol %s, perf %s)\n",
			profileIcons[a.Profile], html.EscapeString(a.ETF), a.Profile,
			report.Percent(snap.Volatility), report.SignedPercent(snap.CumulativeReturn)))
	}

	b.WriteString("\n")
	b.WriteString(formatRankingBody(r))

	if len(r.Excluded) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d ETF(s) excluded: %s\n", len(r.Excluded), excludedList(r.Excluded)))
	}
	return b.String()
}

// FormatRanking formats the risk/return ranking alone.
func FormatRanking(r *model.Report) string {
	return fmt.Sprintf("🏆 <b>Ranking</b> | horizon %s\n\n", r.Horizon) + formatRankingBody(r)
}

func formatRankingBody(r *model.Report) string {
	if r.Comparison == nil {
		return fmt.Sprintf("Ranking unavailable: %s\n", html.EscapeString(r.ComparisonError))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>Risk/return ranking</b> (%d common days):\n", r.Comparison.Overlap))
	for _, e := range r.Comparison.Ranking {
		b.WriteString(fmt.Sprintf("  %d. %s score %s (mean %s, vol %s)\n",
			e.Rank, html.EscapeString(e.ETF), report.RankScore(e),
			report.SignedPercent(e.MeanReturn), report.Percent(e.Volatility)))
	}
	if len(r.ComparisonExcluded) > 0 {
		b.WriteString(fmt.Sprintf("  not compared: %s\n", excludedList(r.ComparisonExcluded)))
	}
	return b.String()
}

// FormatRecommendation formats the picks and model allocation of a profile.
func FormatRecommendation(rec *model.Recommendation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Profile %s</b>\n\n", profileIcons[rec.Profile], rec.Profile))

	b.WriteString("<b>Suggested ETFs:</b>\n")
	if len(rec.Picks) == 0 {
		b.WriteString("  none available\n")
	}
	for _, p := range rec.Picks {
		b.WriteString(fmt.Sprintf("  • %s (mean %s, vol %s)\n",
			html.EscapeString(p.ETF), report.SignedPercent(p.MeanReturn), report.Percent(p.Volatility)))
	}

	b.WriteString("\n<b>Model allocation:</b>\n")
	for _, a := range rec.Allocation {
		b.WriteString(fmt.Sprintf("  %s: %s%%\n", a.AssetClass, report.Fixed(a.Weight, 0)))
	}
	return b.String()
}

// FormatETF formats the detail card of one ETF.
func FormatETF(r *model.Report, etf string) string {
	snap, ok := r.Snapshot(etf)
	if !ok {
		if reason, excluded := r.Excluded[etf]; excluded {
			return fmt.Sprintf("⚠️ %s is excluded: %s", html.EscapeString(etf), html.EscapeString(reason))
		}
		return fmt.Sprintf("Unknown ETF %s", html.EscapeString(etf))
	}
	desc, _ := r.Descriptor(etf)
	a, _ := r.Assessment(etf)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📄 <b>%s</b>", html.EscapeString(etf)))
	if desc.LongName != "" {
		b.WriteString(" | " + html.EscapeString(desc.LongName))
	}
	b.WriteString("\n\n")
	if desc.Family != "" {
		b.WriteString(fmt.Sprintf("Family: %s\n", html.EscapeString(desc.Family)))
	}
	b.WriteString(fmt.Sprintf("Assets: %s | YTD: %s\n",
		report.Money(desc.NetAssets, desc.Currency), report.SignedPercent(desc.YTDReturn)))
	b.WriteString(fmt.Sprintf("Last close: %s (%s)\n", report.Fixed(snap.LastClose, 2), snap.To.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Performance: %s over %d points\n", report.SignedPercent(snap.CumulativeReturn), snap.Points))
	b.WriteString(fmt.Sprintf("Volatility: %s | Max drawdown: %s\n", report.Percent(snap.Volatility), report.Percent(snap.MaxDrawdown)))
	if snap.MA200 > 0 {
		b.WriteString(fmt.Sprintf("MA200: %s\n", report.Fixed(snap.MA200, 2)))
	}
	if snap.High52w > 0 {
		b.WriteString(fmt.Sprintf("52w: %s – %s (position %s)\n",
			report.Fixed(snap.Low52w, 2), report.Fixed(snap.High52w, 2), report.Percent(snap.Position52w)))
	}
	b.WriteString(fmt.Sprintf("\n%s Profile: <b>%s</b> (risk score %+.2f)\n", profileIcons[a.Profile], a.Profile, a.Score))
	for _, f := range a.Factors {
		b.WriteString(fmt.Sprintf("  %s (%s): %+.0f (×%.2f) = %+.1f\n",
			f.Name, f.Commentary, f.RawScore, f.Weight, f.Weighted))
	}
	return b.String()
}

// FormatETLSummary formats the outcome of a data refresh.
func FormatETLSummary(written []string, failed map[string]string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔄 <b>Data refresh</b>: %d updated", len(written)))
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf(", %d failed: %s", len(failed), excludedList(failed)))
	}
	return b.String()
}

// FormatHelp lists the available commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /digest - latest summary\n" +
		"• /ranking - risk/return ranking\n" +
		"• /profile &lt;defensive|balanced|dynamic&gt; - recommendations\n" +
		"• /etf &lt;id&gt; - ETF detail"
}

func excludedList(m map[string]string) string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, html.EscapeString(id))
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
