package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/cryptopal/assistant/internal/coins"
	"github.com/cryptopal/assistant/internal/domain"
	"github.com/cryptopal/assistant/internal/market"
)

// ErrPriceUnavailable is returned when a mutation cannot obtain a current
// price from the market source. The ledger is left untouched in that case.
var ErrPriceUnavailable = errors.New("price unavailable")

// Ledger owns the ordered collection of a user's holdings. It is constructed
// once at startup, restored with Load and persisted as a full snapshot on
// every mutation. At most one holding exists per coin id, and after every
// mutation each holding satisfies Value == Amount * LastPrice.
type Ledger struct {
	dir    *coins.Directory
	source market.Source
	store  SnapshotStore

	mu       sync.Mutex
	holdings []domain.Holding
}

// NewLedger creates an empty ledger. Call Load to restore persisted state.
func NewLedger(dir *coins.Directory, source market.Source, store SnapshotStore) *Ledger {
	return &Ledger{dir: dir, source: source, store: store}
}

// Load restores the persisted snapshot. A missing snapshot yields an empty
// ledger; a corrupt one is an error so state is never silently discarded.
func (l *Ledger) Load(ctx context.Context) error {
	raw, ok, err := l.store.Get(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("loading ledger snapshot: %w", err)
	}
	if !ok {
		return nil
	}

	var holdings []domain.Holding
	if err := json.Unmarshal([]byte(raw), &holdings); err != nil {
		return fmt.Errorf("decoding ledger snapshot: %w", err)
	}

	l.mu.Lock()
	l.holdings = holdings
	l.mu.Unlock()
	return nil
}

// AddHolding records amount of the given coin at the current spot price.
// If a holding for the coin exists, amounts are merged and both price and
// value take the fresh figures; otherwise the holding is appended. A failed
// price fetch leaves the ledger exactly as it was.
func (l *Ledger) AddHolding(ctx context.Context, coinID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", amount)
	}

	coin := l.coinRef(coinID)
	point, err := l.source.SpotPrice(ctx, coin)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrPriceUnavailable, coinID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Holding, len(l.holdings))
	copy(next, l.holdings)

	_, idx, found := lo.FindIndexOf(next, func(h domain.Holding) bool { return h.Coin.ID == coin.ID })
	if found {
		next[idx].Amount += amount
		next[idx].LastPrice = point.Price
		next[idx].Value = next[idx].Amount * point.Price
	} else {
		next = append(next, domain.Holding{
			Coin:      coin,
			Amount:    amount,
			LastPrice: point.Price,
			Value:     amount * point.Price,
		})
	}

	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.holdings = next
	return nil
}

// RemoveHolding drops the holding for coinID. Removing an absent coin is a
// no-op, not an error.
func (l *Ledger) RemoveHolding(ctx context.Context, coinID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := lo.Reject(l.holdings, func(h domain.Holding, _ int) bool { return h.Coin.ID == coinID })
	if len(next) == len(l.holdings) {
		return nil
	}

	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.holdings = next
	return nil
}

// Reprice refetches the spot price of every held coin concurrently and
// recomputes values. Failed fetches keep their stale figures; a portfolio
// view is more useful imprecise than empty. The lock is released during the
// fetches, so fetched prices are merged into the current holdings by coin
// id afterwards — mutations that land mid-fetch are preserved.
func (l *Ledger) Reprice(ctx context.Context) error {
	l.mu.Lock()
	held := make([]domain.CoinRef, len(l.holdings))
	for i, h := range l.holdings {
		held[i] = h.Coin
	}
	l.mu.Unlock()

	if len(held) == 0 {
		return nil
	}

	prices := make([]*float64, len(held))
	var wg sync.WaitGroup
	for i, coin := range held {
		wg.Add(1)
		go func(i int, coin domain.CoinRef) {
			defer wg.Done()
			point, err := l.source.SpotPrice(ctx, coin)
			if err != nil {
				slog.Warn("reprice: keeping stale price", "coin", coin.ID, "error", err)
				return
			}
			prices[i] = &point.Price
		}(i, coin)
	}
	wg.Wait()

	fetched := make(map[string]float64, len(held))
	for i, coin := range held {
		if prices[i] != nil {
			fetched[coin.ID] = *prices[i]
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Holding, len(l.holdings))
	copy(next, l.holdings)
	for i := range next {
		if price, ok := fetched[next[i].Coin.ID]; ok {
			next[i].LastPrice = price
			next[i].Value = next[i].Amount * price
		}
	}

	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.holdings = next
	return nil
}

// TotalValue reprices first so the figure reflects current prices, then
// sums holding values. A fully failed reprice still returns the last-known
// total rather than nothing.
func (l *Ledger) TotalValue(ctx context.Context) float64 {
	if err := l.Reprice(ctx); err != nil {
		slog.Warn("total value: reprice incomplete", "error", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return lo.SumBy(l.holdings, func(h domain.Holding) float64 { return h.Value })
}

// Holdings returns a copy of the holdings in display (insertion) order.
func (l *Ledger) Holdings() []domain.Holding {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

func (l *Ledger) persist(ctx context.Context, holdings []domain.Holding) error {
	data, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("encoding ledger snapshot: %w", err)
	}
	if err := l.store.Set(ctx, snapshotKey, string(data)); err != nil {
		return fmt.Errorf("persisting ledger snapshot: %w", err)
	}
	return nil
}

// coinRef resolves a canonical id to its directory entry, falling back to a
// synthetic ref so unknown ids still display something sensible.
func (l *Ledger) coinRef(coinID string) domain.CoinRef {
	if coin := l.dir.ByID(coinID); coin != nil {
		return *coin
	}
	return domain.CoinRef{ID: coinID, Name: coinID, Symbol: strings.ToUpper(coinID)}
}
