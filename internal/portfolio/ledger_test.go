package portfolio

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/cryptopal/assistant/internal/coins"
	"github.com/cryptopal/assistant/internal/domain"
	"github.com/cryptopal/assistant/internal/market"
)

// fakeSource serves canned spot prices and records which coins failed.
type fakeSource struct {
	mu     sync.Mutex
	prices map[string]float64
	fail   map[string]bool
}

func newFakeSource(prices map[string]float64) *fakeSource {
	return &fakeSource{prices: prices, fail: make(map[string]bool)}
}

func (s *fakeSource) SpotPrice(ctx context.Context, coin domain.CoinRef) (domain.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[coin.ID] {
		return domain.PricePoint{}, market.ErrTransport
	}
	price, ok := s.prices[coin.ID]
	if !ok {
		return domain.PricePoint{}, market.ErrCoinNotFound
	}
	return domain.PricePoint{Price: price}, nil
}

func (s *fakeSource) Trending(ctx context.Context, limit int) ([]market.TrendingCoin, error) {
	return nil, market.ErrTransport
}

func (s *fakeSource) History(ctx context.Context, coin domain.CoinRef, tf domain.Timeframe) ([]domain.HistoryPoint, error) {
	return nil, market.ErrTransport
}

func (s *fakeSource) setPrice(coinID string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[coinID] = price
}

func (s *fakeSource) setFail(coinID string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[coinID] = fail
}

func newTestLedger(t *testing.T, src market.Source) (*Ledger, *MemSnapshotStore) {
	t.Helper()
	store := NewMemSnapshotStore()
	l := NewLedger(coins.NewDirectory(), src, store)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l, store
}

func TestAddHoldingMerges(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000})
	l, _ := newTestLedger(t, src)
	ctx := context.Background()

	if err := l.AddHolding(ctx, "bitcoin", 1.0); err != nil {
		t.Fatalf("first add: %v", err)
	}
	src.setPrice("bitcoin", 42000)
	if err := l.AddHolding(ctx, "bitcoin", 0.5); err != nil {
		t.Fatalf("second add: %v", err)
	}

	holdings := l.Holdings()
	if len(holdings) != 1 {
		t.Fatalf("len = %d, want 1 (merge, not duplicate)", len(holdings))
	}
	h := holdings[0]
	if h.Amount != 1.5 {
		t.Errorf("Amount = %v, want 1.5", h.Amount)
	}
	if h.LastPrice != 42000 {
		t.Errorf("LastPrice = %v, want 42000 (current figure replaces old)", h.LastPrice)
	}
	if math.Abs(h.Value-1.5*42000) > 1e-9 {
		t.Errorf("Value = %v, want %v", h.Value, 1.5*42000)
	}
}

func TestAddHoldingRejectsNonPositive(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000})
	l, _ := newTestLedger(t, src)

	for _, amount := range []float64{0, -1} {
		if err := l.AddHolding(context.Background(), "bitcoin", amount); err == nil {
			t.Errorf("AddHolding(%v) = nil, want error", amount)
		}
	}
	if len(l.Holdings()) != 0 {
		t.Errorf("holdings = %d, want 0", len(l.Holdings()))
	}
}

func TestAddHoldingPriceFailureLeavesLedgerUntouched(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000})
	l, store := newTestLedger(t, src)
	ctx := context.Background()

	if err := l.AddHolding(ctx, "bitcoin", 1.0); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _, _ := store.Get(ctx, snapshotKey)

	src.setFail("ethereum", true)
	err := l.AddHolding(ctx, "ethereum", 2.0)
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}

	if len(l.Holdings()) != 1 {
		t.Errorf("holdings = %d, want 1 (no partial mutation)", len(l.Holdings()))
	}
	after, _, _ := store.Get(ctx, snapshotKey)
	if before != after {
		t.Errorf("persisted snapshot changed on failed add")
	}
}

func TestRemoveHolding(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000, "ethereum": 2500})
	l, _ := newTestLedger(t, src)
	ctx := context.Background()

	l.AddHolding(ctx, "bitcoin", 1.0)
	l.AddHolding(ctx, "ethereum", 2.0)

	if err := l.RemoveHolding(ctx, "bitcoin"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	holdings := l.Holdings()
	if len(holdings) != 1 || holdings[0].Coin.ID != "ethereum" {
		t.Errorf("holdings = %+v, want just ethereum", holdings)
	}

	// Removing an absent coin is a no-op, not an error.
	if err := l.RemoveHolding(ctx, "dogecoin"); err != nil {
		t.Errorf("remove absent = %v, want nil", err)
	}
	if len(l.Holdings()) != 1 {
		t.Errorf("holdings changed by no-op remove")
	}
}

func TestRepricePartialFailureKeepsStalePrice(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000, "ethereum": 2500})
	l, _ := newTestLedger(t, src)
	ctx := context.Background()

	l.AddHolding(ctx, "bitcoin", 1.0)
	l.AddHolding(ctx, "ethereum", 2.0)

	src.setPrice("bitcoin", 50000)
	src.setFail("ethereum", true)

	if err := l.Reprice(ctx); err != nil {
		t.Fatalf("reprice: %v", err)
	}

	holdings := l.Holdings()
	if holdings[0].LastPrice != 50000 || holdings[0].Value != 50000 {
		t.Errorf("bitcoin = %+v, want repriced to 50000", holdings[0])
	}
	if holdings[1].LastPrice != 2500 || holdings[1].Value != 5000 {
		t.Errorf("ethereum = %+v, want stale 2500/5000", holdings[1])
	}
}

func TestTotalValueSumsRepricedHoldings(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000, "ethereum": 2500})
	l, _ := newTestLedger(t, src)
	ctx := context.Background()

	l.AddHolding(ctx, "bitcoin", 1.0)
	l.AddHolding(ctx, "ethereum", 2.0)

	src.setPrice("bitcoin", 41000)
	total := l.TotalValue(ctx)

	want := 41000.0 + 2*2500.0
	if math.Abs(total-want) > 1e-9 {
		t.Errorf("TotalValue = %v, want %v", total, want)
	}

	// The reprice triggered by TotalValue must be reflected in holdings.
	if got := l.Holdings()[0].LastPrice; got != 41000 {
		t.Errorf("LastPrice after TotalValue = %v, want 41000", got)
	}
}

func TestTotalValueAllFetchesFailedKeepsLastKnown(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000})
	l, _ := newTestLedger(t, src)
	ctx := context.Background()

	l.AddHolding(ctx, "bitcoin", 2.0)
	src.setFail("bitcoin", true)

	total := l.TotalValue(ctx)
	if total != 80000 {
		t.Errorf("TotalValue = %v, want 80000 (best-effort, never empty)", total)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 40000, "ethereum": 2500, "solana": 150})
	store := NewMemSnapshotStore()
	dir := coins.NewDirectory()
	ctx := context.Background()

	l := NewLedger(dir, src, store)
	l.AddHolding(ctx, "bitcoin", 1.0)
	l.AddHolding(ctx, "ethereum", 2.0)
	l.AddHolding(ctx, "solana", 10.0)

	reloaded := NewLedger(dir, src, store)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	orig, restored := l.Holdings(), reloaded.Holdings()
	if len(restored) != len(orig) {
		t.Fatalf("len = %d, want %d", len(restored), len(orig))
	}
	for i := range orig {
		if orig[i] != restored[i] {
			t.Errorf("holding %d: %+v != %+v", i, orig[i], restored[i])
		}
	}
}

func TestInvariantValueEqualsAmountTimesPrice(t *testing.T) {
	src := newFakeSource(map[string]float64{"bitcoin": 39123.45, "dogecoin": 0.081})
	l, _ := newTestLedger(t, src)
	ctx := context.Background()

	l.AddHolding(ctx, "bitcoin", 0.37)
	l.AddHolding(ctx, "dogecoin", 1234)
	src.setPrice("bitcoin", 40321.99)
	l.Reprice(ctx)

	for _, h := range l.Holdings() {
		if math.Abs(h.Value-h.Amount*h.LastPrice) > 1e-9 {
			t.Errorf("%s: Value %v != Amount %v * LastPrice %v", h.Coin.ID, h.Value, h.Amount, h.LastPrice)
		}
	}
}

func TestAddHoldingUnknownCoinUsesSyntheticRef(t *testing.T) {
	src := newFakeSource(map[string]float64{"pepe": 0.000012})
	l, _ := newTestLedger(t, src)

	if err := l.AddHolding(context.Background(), "pepe", 1000); err != nil {
		t.Fatalf("add: %v", err)
	}
	h := l.Holdings()[0]
	if h.Coin.Name != "pepe" || h.Coin.Symbol != "PEPE" {
		t.Errorf("synthetic ref = %+v, want pepe/PEPE", h.Coin)
	}
}

// gatedSource blocks the spot fetch for one coin until released, so tests
// can interleave ledger mutations with an in-flight reprice.
type gatedSource struct {
	*fakeSource
	blockCoin string
	entered   chan struct{}
	release   chan struct{}
}

func (s *gatedSource) SpotPrice(ctx context.Context, coin domain.CoinRef) (domain.PricePoint, error) {
	if coin.ID == s.blockCoin {
		s.entered <- struct{}{}
		<-s.release
	}
	return s.fakeSource.SpotPrice(ctx, coin)
}

func TestRepriceKeepsHoldingAddedMidFetch(t *testing.T) {
	src := &gatedSource{
		fakeSource: newFakeSource(map[string]float64{"bitcoin": 41000, "ethereum": 2600}),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	l, store := newTestLedger(t, src)
	ctx := context.Background()

	if err := l.AddHolding(ctx, "bitcoin", 1); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	src.blockCoin = "bitcoin"

	done := make(chan error, 1)
	go func() { done <- l.Reprice(ctx) }()

	<-src.entered // reprice fetch in flight
	if err := l.AddHolding(ctx, "ethereum", 2); err != nil {
		t.Fatalf("add during reprice: %v", err)
	}
	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("Reprice: %v", err)
	}

	holdings := l.Holdings()
	if len(holdings) != 2 {
		t.Fatalf("holdings = %d, want 2 (add during reprice kept); %+v", len(holdings), holdings)
	}
	if holdings[1].Coin.ID != "ethereum" || holdings[1].Value != 2*2600 {
		t.Errorf("ethereum holding = %+v, want amount 2 @ 2600", holdings[1])
	}
	if holdings[0].LastPrice != 41000 {
		t.Errorf("bitcoin LastPrice = %v, want repriced 41000", holdings[0].LastPrice)
	}

	persisted, _, _ := store.Get(ctx, snapshotKey)
	if !strings.Contains(persisted, "ethereum") {
		t.Errorf("persisted snapshot lost the concurrent add: %s", persisted)
	}
}
