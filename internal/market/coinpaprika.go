package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cryptopal/assistant/internal/domain"
)

// CoinPaprika adapts the CoinPaprika v1 API. Unlike CoinGecko it uses
// proprietary "sym-slug" identifiers ("btc-bitcoin"), nests quotes under a
// currency key with its own field names, and reports history timestamps as
// RFC 3339 strings. All of that is translated here and nowhere else.
type CoinPaprika struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinPaprika creates a CoinPaprika adapter with a bounded per-call timeout.
func NewCoinPaprika(baseURL string, timeout time.Duration) *CoinPaprika {
	return &CoinPaprika{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// paprikaID translates a canonical CoinRef into CoinPaprika's identifier
// scheme, e.g. {bitcoin, BTC} -> "btc-bitcoin".
func paprikaID(coin domain.CoinRef) string {
	return strings.ToLower(coin.Symbol) + "-" + coin.ID
}

type paprikaQuote struct {
	Price     float64  `json:"price"`
	MarketCap *float64 `json:"market_cap"`
	Change24h *float64 `json:"percent_change_24h"`
}

type paprikaTicker struct {
	ID     string                  `json:"id"`
	Name   string                  `json:"name"`
	Symbol string                  `json:"symbol"`
	Rank   int                     `json:"rank"`
	Quotes map[string]paprikaQuote `json:"quotes"`
}

// SpotPrice implements Source.
func (c *CoinPaprika) SpotPrice(ctx context.Context, coin domain.CoinRef) (domain.PricePoint, error) {
	u := fmt.Sprintf("%s/tickers/%s?quotes=USD", c.baseURL, url.PathEscape(paprikaID(coin)))

	body, err := c.get(ctx, u)
	if err != nil {
		return domain.PricePoint{}, err
	}

	var raw paprikaTicker
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PricePoint{}, fmt.Errorf("%w: decoding ticker: %v", ErrMalformed, err)
	}
	quote, ok := raw.Quotes["USD"]
	if !ok {
		return domain.PricePoint{}, fmt.Errorf("%w: no USD quote for %s", ErrMalformed, coin.ID)
	}

	return domain.PricePoint{
		Price:        quote.Price,
		Change24hPct: quote.Change24h,
		MarketCapUSD: quote.MarketCap,
	}, nil
}

// Trending implements Source. CoinPaprika's listing is rank-annotated rather
// than pre-sorted, so ordering happens here.
func (c *CoinPaprika) Trending(ctx context.Context, limit int) ([]TrendingCoin, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	u := fmt.Sprintf("%s/tickers?quotes=USD&limit=%d", c.baseURL, limit)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw []paprikaTicker
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding tickers listing: %v", ErrMalformed, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty tickers listing", ErrMalformed)
	}

	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Rank < raw[j].Rank })

	coins := make([]TrendingCoin, 0, limit)
	for _, r := range raw {
		quote, ok := r.Quotes["USD"]
		if !ok {
			continue
		}
		coins = append(coins, TrendingCoin{
			Coin: domain.CoinRef{ID: paprikaSlug(r.ID), Name: r.Name, Symbol: strings.ToUpper(r.Symbol)},
			Point: domain.PricePoint{
				Price:        quote.Price,
				Change24hPct: quote.Change24h,
				MarketCapUSD: quote.MarketCap,
			},
		})
		if len(coins) == limit {
			break
		}
	}
	return coins, nil
}

// paprikaSlug strips the ticker prefix from a CoinPaprika id:
// "btc-bitcoin" -> "bitcoin".
func paprikaSlug(id string) string {
	if _, slug, ok := strings.Cut(id, "-"); ok {
		return slug
	}
	return id
}

// History implements Source via the historical ticks endpoint.
func (c *CoinPaprika) History(ctx context.Context, coin domain.CoinRef, tf domain.Timeframe) ([]domain.HistoryPoint, error) {
	interval := "1d"
	if tf.Hourly() {
		interval = "1h"
	}
	start := time.Now().UTC().Add(-tf.Window())
	u := fmt.Sprintf("%s/tickers/%s/historical?start=%s&interval=%s",
		c.baseURL, url.PathEscape(paprikaID(coin)), url.QueryEscape(start.Format(time.RFC3339)), interval)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Timestamp string  `json:"timestamp"`
		Price     float64 `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding historical ticks: %v", ErrMalformed, err)
	}

	points := make([]domain.HistoryPoint, 0, len(raw))
	for _, tick := range raw {
		ts, err := time.Parse(time.RFC3339, tick.Timestamp)
		if err != nil {
			continue
		}
		points = append(points, domain.HistoryPoint{Timestamp: ts.UnixMilli(), Price: tick.Price})
	}
	points = ascending(points)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty price series for %s", ErrMalformed, coin.ID)
	}
	return points, nil
}

func (c *CoinPaprika) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: HTTP 404", ErrCoinNotFound)
	default:
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrTransport, resp.StatusCode, string(body))
	}
}
