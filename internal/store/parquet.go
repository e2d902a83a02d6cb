package store

import (
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"Prisme/internal/model"
)

// priceRow is the columnar layout of one daily bar. Dates are epoch milliseconds.
type priceRow struct {
	Date   int64   `parquet:"date"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume float64 `parquet:"volume"`
}

// infoRow is the columnar layout of an ETF descriptor.
type infoRow struct {
	Symbol     string  `parquet:"symbol"`
	Ticker     string  `parquet:"ticker"`
	LongName   string  `parquet:"longName"`
	Currency   string  `parquet:"currency"`
	FundFamily string  `parquet:"fundFamily"`
	LegalType  string  `parquet:"legalType"`
	NetAssets  float64 `parquet:"netAssets"`
	YTDReturn  float64 `parquet:"ytdReturn"`
}

// WritePrices stores series as <etf>_data.parquet.
func (s *Store) WritePrices(series model.PriceSeries) error {
	rows := make([]priceRow, series.Len())
	for i, b := range series.Bars {
		rows[i] = priceRow{
			Date:   b.Time.UnixMilli(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	if err := parquet.WriteFile(s.dataPath(series.ETF), rows); err != nil {
		return fmt.Errorf("write prices %s: %w", series.ETF, err)
	}
	return nil
}

// ReadPrices loads <etf>_data.parquet into a sorted, de-duplicated series.
func (s *Store) ReadPrices(etf string) (model.PriceSeries, error) {
	rows, err := parquet.ReadFile[priceRow](s.dataPath(etf))
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("read prices %s: %w", etf, err)
	}
	bars := make([]model.OHLCV, len(rows))
	for i, r := range rows {
		bars[i] = model.OHLCV{
			Time:   time.UnixMilli(r.Date).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return model.NewPriceSeries(etf, bars), nil
}

// WriteDescriptor stores d as <etf>_infos.parquet.
func (s *Store) WriteDescriptor(d model.ETFDescriptor) error {
	row := infoRow{
		Symbol:     d.ETF,
		Ticker:     d.Ticker,
		LongName:   d.LongName,
		Currency:   d.Currency,
		FundFamily: d.Family,
		LegalType:  d.LegalType,
		NetAssets:  d.NetAssets,
		YTDReturn:  d.YTDReturn,
	}
	if err := parquet.WriteFile(s.infosPath(d.ETF), []infoRow{row}); err != nil {
		return fmt.Errorf("write descriptor %s: %w", d.ETF, err)
	}
	return nil
}

// ReadDescriptor loads <etf>_infos.parquet.
func (s *Store) ReadDescriptor(etf string) (model.ETFDescriptor, error) {
	rows, err := parquet.ReadFile[infoRow](s.infosPath(etf))
	if err != nil {
		return model.ETFDescriptor{}, fmt.Errorf("read descriptor %s: %w", etf, err)
	}
	if len(rows) == 0 {
		return model.ETFDescriptor{}, fmt.Errorf("read descriptor %s: empty file", etf)
	}
	r := rows[0]
	return model.ETFDescriptor{
		ETF:       etf,
		Ticker:    r.Ticker,
		LongName:  r.LongName,
		Currency:  r.Currency,
		Family:    r.FundFamily,
		LegalType: r.LegalType,
		NetAssets: r.NetAssets,
		YTDReturn: r.YTDReturn,
	}, nil
}
