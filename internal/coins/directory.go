package coins

import (
	"strings"

	"github.com/samber/lo"

	"github.com/cryptopal/assistant/internal/domain"
)

type entry struct {
	coin    domain.CoinRef
	aliases []string // lowercase: slug, ticker, common spellings
}

// defaultTable maps colloquial names, tickers and common spellings to
// canonical coins. Declaration order is the tie-breaker for ambiguous
// input, so more prominent coins come first. Extending coverage means
// adding a row here; callers never change.
var defaultTable = []entry{
	{domain.CoinRef{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC"}, []string{"bitcoin", "btc"}},
	{domain.CoinRef{ID: "ethereum", Name: "Ethereum", Symbol: "ETH"}, []string{"ethereum", "ether", "eth"}},
	{domain.CoinRef{ID: "litecoin", Name: "Litecoin", Symbol: "LTC"}, []string{"litecoin", "ltc"}},
	{domain.CoinRef{ID: "cardano", Name: "Cardano", Symbol: "ADA"}, []string{"cardano", "ada"}},
	{domain.CoinRef{ID: "polkadot", Name: "Polkadot", Symbol: "DOT"}, []string{"polkadot", "dot"}},
	{domain.CoinRef{ID: "chainlink", Name: "Chainlink", Symbol: "LINK"}, []string{"chainlink", "link"}},
	{domain.CoinRef{ID: "ripple", Name: "Ripple", Symbol: "XRP"}, []string{"ripple", "xrp"}},
	{domain.CoinRef{ID: "solana", Name: "Solana", Symbol: "SOL"}, []string{"solana", "sol"}},
	{domain.CoinRef{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE"}, []string{"dogecoin", "doge"}},
	{domain.CoinRef{ID: "shiba-inu", Name: "Shiba Inu", Symbol: "SHIB"}, []string{"shiba-inu", "shiba inu", "shib"}},
}

// Directory resolves free-text coin mentions to canonical CoinRefs.
type Directory struct {
	entries []entry
}

// NewDirectory builds a directory over the default alias table.
func NewDirectory() *Directory {
	return &Directory{entries: defaultTable}
}

// Resolve returns the first table entry whose alias is a substring of the
// lowercased input, or nil when nothing matches. Substring containment can
// false-positive on short tickers inside unrelated words ("dot", "link");
// the scan is deterministic but callers must not assume unique resolution
// for pathological input.
func (d *Directory) Resolve(token string) *domain.CoinRef {
	lower := strings.ToLower(strings.TrimSpace(token))
	if lower == "" {
		return nil
	}
	for _, e := range d.entries {
		for _, alias := range e.aliases {
			if strings.Contains(lower, alias) {
				coin := e.coin
				return &coin
			}
		}
	}
	return nil
}

// ByID returns the coin with the given canonical id, or nil.
func (d *Directory) ByID(id string) *domain.CoinRef {
	e, ok := lo.Find(d.entries, func(e entry) bool { return e.coin.ID == id })
	if !ok {
		return nil
	}
	coin := e.coin
	return &coin
}

// Coins lists all known coins in declaration order.
func (d *Directory) Coins() []domain.CoinRef {
	return lo.Map(d.entries, func(e entry, _ int) domain.CoinRef { return e.coin })
}
