package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/cryptopal/assistant/internal/domain"
)

// CoinGecko adapts the CoinGecko v3 API. It speaks canonical slug ids
// directly, reports the 24h change as a percentage and prices in plain USD,
// so normalization here is mostly field renaming.
type CoinGecko struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGecko creates a CoinGecko adapter. The client timeout bounds every
// upstream call; a hung request surfaces as ErrTransport.
func NewCoinGecko(baseURL string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SpotPrice implements Source.
func (c *CoinGecko) SpotPrice(ctx context.Context, coin domain.CoinRef) (domain.PricePoint, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_market_cap=true",
		c.baseURL, url.QueryEscape(coin.ID))

	body, err := c.get(ctx, u)
	if err != nil {
		return domain.PricePoint{}, err
	}

	// Shape: {"bitcoin":{"usd":45000,"usd_24h_change":1.2,"usd_market_cap":...}}
	var raw map[string]map[string]*float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PricePoint{}, fmt.Errorf("%w: decoding spot price: %v", ErrMalformed, err)
	}

	data, ok := raw[coin.ID]
	if !ok {
		return domain.PricePoint{}, fmt.Errorf("%w: %s", ErrCoinNotFound, coin.ID)
	}
	price := data["usd"]
	if price == nil {
		return domain.PricePoint{}, fmt.Errorf("%w: missing usd price for %s", ErrMalformed, coin.ID)
	}

	return domain.PricePoint{
		Price:        *price,
		Change24hPct: data["usd_24h_change"],
		MarketCapUSD: data["usd_market_cap"],
	}, nil
}

// geckoMarketRow is one entry of the /coins/markets listing.
type geckoMarketRow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"current_price"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	MarketCap *float64 `json:"market_cap"`
}

// Trending implements Source using the market-cap ranked listing endpoint.
func (c *CoinGecko) Trending(ctx context.Context, limit int) ([]TrendingCoin, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1", c.baseURL, limit)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw []geckoMarketRow
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding markets listing: %v", ErrMalformed, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty markets listing", ErrMalformed)
	}

	coins := lo.FilterMap(raw, func(r geckoMarketRow, _ int) (TrendingCoin, bool) {
		if r.Price == nil {
			return TrendingCoin{}, false
		}
		return TrendingCoin{
			Coin: domain.CoinRef{ID: r.ID, Name: r.Name, Symbol: strings.ToUpper(r.Symbol)},
			Point: domain.PricePoint{
				Price:        *r.Price,
				Change24hPct: r.Change24h,
				MarketCapUSD: r.MarketCap,
			},
		}, true
	})

	if len(coins) > limit {
		coins = coins[:limit]
	}
	return coins, nil
}

// History implements Source via the market_chart endpoint. Windows of three
// days or less request hourly sampling; longer windows use the provider's
// default granularity.
func (c *CoinGecko) History(ctx context.Context, coin domain.CoinRef, tf domain.Timeframe) ([]domain.HistoryPoint, error) {
	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		c.baseURL, url.PathEscape(coin.ID), tf.Days())
	if tf.Hourly() {
		u += "&interval=hourly"
	}

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	// Shape: {"prices":[[1700000000000,45000.1],...]}
	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding market chart: %v", ErrMalformed, err)
	}

	points := make([]domain.HistoryPoint, 0, len(raw.Prices))
	for _, pair := range raw.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.HistoryPoint{Timestamp: int64(pair[0]), Price: pair[1]})
	}
	points = ascending(points)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty price series for %s", ErrMalformed, coin.ID)
	}
	return points, nil
}

// get performs a single attempt; the data source never retries on its own.
func (c *CoinGecko) get(ctx context.Context, u string) ([]byte, error) {
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
