package market

import (
	"context"
	"errors"

	"github.com/cryptopal/assistant/internal/domain"
)

// Provider failures normalized at the adapter boundary. Callers branch with
// errors.Is and never see provider-specific shapes.
var (
	// ErrCoinNotFound means the upstream has no data for the identifier.
	ErrCoinNotFound = errors.New("coin not found")
	// ErrTransport covers network and HTTP-level failures, including
	// timeouts. No response is treated the same as an error response.
	ErrTransport = errors.New("upstream transport failure")
	// ErrMalformed means the upstream answered but expected fields were
	// absent or unusable.
	ErrMalformed = errors.New("malformed upstream response")
)

// DefaultTrendingLimit bounds Trending when the caller passes limit <= 0.
const DefaultTrendingLimit = 10

// TrendingCoin pairs a coin with its current quote.
type TrendingCoin struct {
	Coin  domain.CoinRef
	Point domain.PricePoint
}

// Source is the normalized view over one upstream price provider. Adapters
// translate field names, units and identifier schemes once, at this
// boundary. A single failed call surfaces as an error; retrying is the
// caller's decision.
type Source interface {
	// SpotPrice fetches the instantaneous USD price, 24h percent change
	// and market cap for a coin.
	SpotPrice(ctx context.Context, coin domain.CoinRef) (domain.PricePoint, error)

	// Trending returns up to limit coins ranked by market cap, descending.
	Trending(ctx context.Context, limit int) ([]TrendingCoin, error)

	// History returns USD price samples spanning the timeframe with
	// strictly increasing timestamps and at least one sample.
	History(ctx context.Context, coin domain.CoinRef, tf domain.Timeframe) ([]domain.HistoryPoint, error)
}

// ascending drops samples whose timestamp does not advance, enforcing the
// strictly-increasing series contract regardless of upstream hiccups.
func ascending(points []domain.HistoryPoint) []domain.HistoryPoint {
	out := points[:0]
	last := int64(-1 << 62)
	for _, p := range points {
		if p.Timestamp <= last {
			continue
		}
		out = append(out, p)
		last = p.Timestamp
	}
	return out
}
