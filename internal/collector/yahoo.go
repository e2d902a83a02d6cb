package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"Prisme/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// validRanges are the chart ranges Yahoo accepts with a daily interval.
var validRanges = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true, "ytd": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "max": true,
}

// ValidPeriod reports whether period is a chart range Yahoo accepts.
func ValidPeriod(period string) bool { return validRanges[period] }

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: yahooBaseURL,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       ListingMeta `json:"meta"`
			Timestamp  []int64     `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// at guards against quote arrays shorter than the timestamp array.
func at(values []interface{}, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return toFloat(values[i])
}

// get issues a GET against the Yahoo API and returns the body of a 200 reply.
func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker, period string) (*History, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("yahoo: unsupported period %q", period)
	}
	body, err := f.get(ctx, fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(ticker), period))
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", ticker)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // no close: holiday or partial bar
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return &History{Ticker: ticker, Bars: bars, Meta: result.Meta, Raw: body}, nil
}

// yahooValue is a formatted number as quoteSummary reports it.
type yahooValue struct {
	Raw float64 `json:"raw"`
}

// yahooSummary is the response of the quoteSummary API for the fund modules.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			FundProfile struct {
				Family    string `json:"family"`
				LegalType string `json:"legalType"`
			} `json:"fundProfile"`
			DefaultKeyStatistics struct {
				TotalAssets yahooValue `json:"totalAssets"`
			} `json:"defaultKeyStatistics"`
			SummaryDetail struct {
				TotalAssets yahooValue `json:"totalAssets"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchProfile reads the fund family, legal type and net assets of ticker.
func (f *YahooFetcher) FetchProfile(ctx context.Context, ticker string) (*FundProfile, error) {
	body, err := f.get(ctx, fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=fundProfile,defaultKeyStatistics,summaryDetail",
		f.BaseURL, url.PathEscape(ticker)))
	if err != nil {
		return nil, err
	}

	var summary yahooSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := summary.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no profile returned for %s", ticker)
	}

	r := summary.QuoteSummary.Result[0]
	assets := r.DefaultKeyStatistics.TotalAssets.Raw
	if assets == 0 {
		assets = r.SummaryDetail.TotalAssets.Raw
	}
	return &FundProfile{
		Family:    r.FundProfile.Family,
		LegalType: r.FundProfile.LegalType,
		NetAssets: assets,
		Raw:       body,
	}, nil
}
