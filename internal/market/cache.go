package market

import (
	"context"
	"sync"
	"time"

	"github.com/cryptopal/assistant/internal/domain"
)

const spotCacheTTL = 30 * time.Second

type cacheEntry struct {
	point     domain.PricePoint
	expiresAt time.Time
}

// cachingSource keeps spot quotes for a short TTL so repeated mentions of
// the same coin within one exchange do not hammer the upstream. Trending
// and history calls pass through untouched.
type cachingSource struct {
	Source

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// WithSpotCache decorates src with the spot-price cache.
func WithSpotCache(src Source) Source {
	return &cachingSource{
		Source:  src,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cachingSource) SpotPrice(ctx context.Context, coin domain.CoinRef) (domain.PricePoint, error) {
	c.mu.RLock()
	entry, ok := c.entries[coin.ID]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.point, nil
	}

	point, err := c.Source.SpotPrice(ctx, coin)
	if err != nil {
		return domain.PricePoint{}, err
	}

	c.mu.Lock()
	c.entries[coin.ID] = cacheEntry{point: point, expiresAt: time.Now().Add(spotCacheTTL)}
	c.mu.Unlock()

	return point, nil
}
