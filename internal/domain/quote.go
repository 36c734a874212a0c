package domain

// PricePoint is a normalized USD spot quote. Change and market cap are
// pointers because not every upstream reports them for every coin.
type PricePoint struct {
	Price        float64  `json:"price"`
	Change24hPct *float64 `json:"change24hPct,omitempty"`
	MarketCapUSD *float64 `json:"marketCapUsd,omitempty"`
}

// HistoryPoint is one sample of a historical price series.
type HistoryPoint struct {
	Timestamp int64   `json:"t"` // Unix milliseconds
	Price     float64 `json:"p"` // USD
}
