// Package report renders an analysis Report as markdown for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"Prisme/internal/model"
)

type etfRow struct {
	ETF         string
	Name        string
	Family      string
	Currency    string
	AUM         string
	YTD         string
	Points      int
	LastClose   string
	Mean        string
	Vol         string
	Cumulative  string
	Drawdown    string
	Profile     string
	Score       string
	Position52w string
}

type rankRow struct {
	Rank  int
	ETF   string
	Mean  string
	Vol   string
	Score string
}

type view struct {
	RunID, Generated, Horizon string
	VolLabel                  string
	ETFs                      []etfRow
	Ranking                   []rankRow
	Overlap                   int
	CorrHeader                string
	CorrAlign                 string
	CorrRows                  []string
	ComparisonError           string
	ComparisonExcluded        []string
	Families                  []model.FamilyCount
	Excluded                  []string
	Recommendations           []*model.Recommendation
}

var funcs = template.FuncMap{
	"pct":     Percent,
	"percent": func(w float64) string { return Fixed(w, 0) + "%" },
}

const reportTemplate = `# Prisme ETF report

Run **{{ .RunID }}**, generated {{ .Generated }}, horizon **{{ .Horizon }}**.

## Indicators

| ETF | Family | Points | Last close | Mean return | {{ .VolLabel }} | Cumulative | Max drawdown | 52w position |
|:---|:---|---:|---:|---:|---:|---:|---:|---:|
{{- range .ETFs }}
| {{ .ETF }} | {{ .Family }} | {{ .Points }} | {{ .LastClose }} | {{ .Mean }} | {{ .Vol }} | {{ .Cumulative }} | {{ .Drawdown }} | {{ .Position52w }} |
{{- end }}

## Risk profiles

| ETF | Profile | Risk score |
|:---|:---|---:|
{{- range .ETFs }}
| {{ .ETF }} | {{ .Profile }} | {{ .Score }} |
{{- end }}

## Products

| ETF | Name | Currency | Assets | YTD |
|:---|:---|:---|---:|---:|
{{- range .ETFs }}
| {{ .ETF }} | {{ .Name }} | {{ .Currency }} | {{ .AUM }} | {{ .YTD }} |
{{- end }}
{{ if .ComparisonError }}
## Comparison

Comparison unavailable: {{ .ComparisonError }}
{{ range .ComparisonExcluded }}
- {{ . }}
{{- end }}
{{ else }}
## Risk/return ranking

Computed over {{ .Overlap }} common return dates.
{{ if .ComparisonExcluded }}
Not compared:
{{ range .ComparisonExcluded }}
- {{ . }}
{{- end }}

{{ end }}
| # | ETF | Annual mean | Annual volatility | Score |
|---:|:---|---:|---:|---:|
{{- range .Ranking }}
| {{ .Rank }} | {{ .ETF }} | {{ .Mean }} | {{ .Vol }} | {{ .Score }} |
{{- end }}

## Correlation

{{ .CorrHeader }}
{{ .CorrAlign }}
{{- range .CorrRows }}
{{ . }}
{{- end }}
{{ end }}
## Fund families

| Family | ETFs |
|:---|---:|
{{- range .Families }}
| {{ .Family }} | {{ .Count }} |
{{- end }}
{{ if .Recommendations }}
## Recommendations
{{ range .Recommendations }}
### {{ .Profile }}
{{ range .Picks }}
- {{ .ETF }}: mean {{ pct .MeanReturn }}, volatility {{ pct .Volatility }}
{{- end }}

| Asset class | Weight |
|:---|---:|
{{- range .Allocation }}
| {{ .AssetClass }} | {{ percent .Weight }} |
{{- end }}
{{ end }}
{{- end }}
{{- if .Excluded }}
## Excluded
{{ range .Excluded }}
- {{ . }}
{{- end }}
{{ end -}}
`

var tmpl = template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate))

// Markdown renders r, with optional profile recommendations, as markdown.
func Markdown(r *model.Report, recs []*model.Recommendation) (string, error) {
	v := buildView(r, recs)
	var b strings.Builder
	if err := tmpl.Execute(&b, v); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

// Glamour styles accepted by Render.
const (
	StyleDark  = "dark"
	StylePlain = "notty"
)

// Render turns markdown into styled terminal output.
func Render(md, style string) (string, error) {
	return glamour.Render(md, style)
}

func buildView(r *model.Report, recs []*model.Recommendation) view {
	v := view{
		RunID:           r.RunID,
		Generated:       r.GeneratedAt.Format("2006-01-02 15:04 MST"),
		Horizon:         string(r.Horizon),
		VolLabel:        "Volatility",
		ComparisonError: r.ComparisonError,
		Families:        r.Families,
		Recommendations: recs,
	}
	for _, s := range r.Snapshots {
		if s.Annualized {
			v.VolLabel = "Annual volatility"
		}
		d, _ := r.Descriptor(s.ETF)
		a, _ := r.Assessment(s.ETF)
		row := etfRow{
			ETF:         escape(s.ETF),
			Name:        escape(orDash(d.LongName)),
			Family:      escape(orDash(d.Family)),
			Currency:    orDash(d.Currency),
			AUM:         Money(d.NetAssets, d.Currency),
			YTD:         SignedPercent(d.YTDReturn),
			Points:      s.Points,
			LastClose:   Fixed(s.LastClose, 2),
			Mean:        SignedPercent(s.MeanReturn),
			Vol:         Percent(s.Volatility),
			Cumulative:  SignedPercent(s.CumulativeReturn),
			Drawdown:    Percent(s.MaxDrawdown),
			Profile:     string(a.Profile),
			Score:       fmt.Sprintf("%+.2f", a.Score),
			Position52w: "-",
		}
		if s.High52w > 0 {
			row.Position52w = Percent(s.Position52w)
		}
		v.ETFs = append(v.ETFs, row)
	}

	if c := r.Comparison; c != nil {
		v.Overlap = c.Overlap
		for _, e := range c.Ranking {
			v.Ranking = append(v.Ranking, rankRow{
				Rank:  e.Rank,
				ETF:   escape(e.ETF),
				Mean:  SignedPercent(e.MeanReturn),
				Vol:   Percent(e.Volatility),
				Score: RankScore(e),
			})
		}
		v.CorrHeader, v.CorrAlign, v.CorrRows = correlationTable(c.Correlation)
	}

	for _, id := range sortedExcluded(r.ComparisonExcluded) {
		v.ComparisonExcluded = append(v.ComparisonExcluded, escape(id)+": "+r.ComparisonExcluded[id])
	}
	for _, id := range sortedExcluded(r.Excluded) {
		v.Excluded = append(v.Excluded, escape(id)+": "+r.Excluded[id])
	}
	return v
}

func correlationTable(m model.CorrelationMatrix) (string, string, []string) {
	header := "| |"
	align := "|:---|"
	for _, id := range m.ETFs {
		header += " " + escape(id) + " |"
		align += "---:|"
	}
	rows := make([]string, len(m.ETFs))
	for i, id := range m.ETFs {
		row := "| **" + escape(id) + "** |"
		for j := range m.ETFs {
			row += " " + Fixed(m.Values[i][j], 2) + " |"
		}
		rows[i] = row
	}
	return header, align, rows
}

// escape keeps identifiers such as "S&P500_PEA" from being read as markdown.
func escape(s string) string {
	return strings.NewReplacer("_", `\_`, "|", `\|`, "*", `\*`).Replace(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedExcluded(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
