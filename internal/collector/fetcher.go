package collector

import (
	"context"
	"encoding/json"

	"Prisme/internal/model"
)

// Fetcher defines the interface for fetching ETF history.
type Fetcher interface {
	// FetchHistory returns the daily bars of ticker over period
	// (a Yahoo range such as "1y", "5y" or "max") with the listing metadata.
	FetchHistory(ctx context.Context, ticker, period string) (*History, error)
	Name() string
}

// History is the result of one fetch. Raw keeps the untouched payload for
// the raw/ archive.
type History struct {
	Ticker string
	Bars   []model.OHLCV
	Meta   ListingMeta
	Raw    json.RawMessage
}

// ListingMeta is the instrument metadata returned alongside the bars.
type ListingMeta struct {
	Symbol         string  `json:"symbol"`
	Currency       string  `json:"currency"`
	ExchangeName   string  `json:"exchangeName"`
	InstrumentType string  `json:"instrumentType"`
	LongName       string  `json:"longName"`
	ShortName      string  `json:"shortName"`
	MarketPrice    float64 `json:"regularMarketPrice"`
}

// ProfileFetcher is implemented by sources that also publish fund details.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, ticker string) (*FundProfile, error)
}

// FundProfile holds the fund details missing from the chart metadata.
// Zero values mean the source did not report the field.
type FundProfile struct {
	Family    string
	LegalType string
	NetAssets float64 // in the listing currency
	Raw       json.RawMessage
}
