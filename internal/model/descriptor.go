package model

// ETFDescriptor is the static metadata of one ETF.
type ETFDescriptor struct {
	ETF       string  `json:"etf"`
	Ticker    string  `json:"ticker"`
	LongName  string  `json:"long_name,omitempty"`
	Currency  string  `json:"currency"`
	Family    string  `json:"fund_family"` // managing company
	LegalType string  `json:"legal_type,omitempty"`
	NetAssets float64 `json:"net_assets"`
	YTDReturn float64 `json:"ytd_return"` // fraction, 0.05 = +5%
}

// FamilyCount is the number of ETFs managed by one fund family.
type FamilyCount struct {
	Family string `json:"fund_family"`
	Count  int    `json:"count"`
}

// Product is one configured member of the ETF universe.
type Product struct {
	ETF    string `json:"etf"`
	Ticker string `json:"ticker"`
	Family string `json:"fund_family"`
}
