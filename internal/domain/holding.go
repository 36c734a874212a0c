package domain

// Holding records an owned amount of one coin plus its last known valuation.
// After every ledger mutation Value == Amount * LastPrice holds.
type Holding struct {
	Coin      CoinRef `json:"coin"`
	Amount    float64 `json:"amount"`
	LastPrice float64 `json:"lastPrice"`
	Value     float64 `json:"value"`
}
