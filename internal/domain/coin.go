package domain

// CoinRef identifies a cryptocurrency independently of any upstream
// provider's naming scheme.
type CoinRef struct {
	ID     string `json:"id"`     // canonical lowercase slug, e.g. "bitcoin"
	Name   string `json:"name"`   // display name, e.g. "Bitcoin"
	Symbol string `json:"symbol"` // uppercase ticker, e.g. "BTC"
}
