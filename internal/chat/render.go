package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptopal/assistant/internal/coins"
	"github.com/cryptopal/assistant/internal/domain"
	"github.com/cryptopal/assistant/internal/market"
)

const (
	replyInternalError = "Sorry, I encountered an error while fetching data. Please try again in a moment."

	replyTrendingFailed = "Sorry, I couldn't fetch trending coins right now. Please try again."

	replyEmptyPortfolio = `Your portfolio is empty. Try saying "I have 1 BTC" or "I have 2 ETH" to add holdings!`

	replyBadAmount = `I didn't catch a valid amount. Try saying "I have 1.5 BTC" or "I have 2 ETH".`
)

func renderPrice(coin domain.CoinRef, point domain.PricePoint) string {
	line := fmt.Sprintf("%s (%s) is trading at $%s", coin.Name, coin.Symbol, formatUSD(point.Price))
	if point.Change24hPct != nil {
		line += fmt.Sprintf(" with a 24h change of %s", formatChange(*point.Change24hPct))
	}
	return line
}

func renderTrending(items []market.TrendingCoin) string {
	lines := lo.Map(items, func(tc market.TrendingCoin, _ int) string {
		return fmt.Sprintf("%s (%s): $%s", tc.Coin.Name, tc.Coin.Symbol, formatUSD(tc.Point.Price))
	})
	return "Here are the top trending cryptocurrencies:\n\n" + strings.Join(lines, "\n")
}

func renderChartConfirmation(coin domain.CoinRef, tf domain.Timeframe) string {
	return fmt.Sprintf("Here's the %s price chart for the last %s!", coin.Name, describeTimeframe(tf))
}

func renderPortfolio(holdings []domain.Holding, total float64) string {
	lines := lo.Map(holdings, func(h domain.Holding, _ int) string {
		return fmt.Sprintf("%s (%s): %s @ $%s = $%s",
			h.Coin.Name, h.Coin.Symbol, formatAmount(h.Amount), formatUSD(h.LastPrice), formatUSD(h.Value))
	})
	return fmt.Sprintf("Your portfolio is worth $%s!\n\n%s", formatUSD(total), strings.Join(lines, "\n"))
}

func renderAdded(coin domain.CoinRef, amount, total float64) string {
	return fmt.Sprintf("Added %s %s to your portfolio! Your total portfolio value is now $%s.",
		formatAmount(amount), coin.Symbol, formatUSD(total))
}

func renderApology(coin domain.CoinRef) string {
	return fmt.Sprintf("Sorry, I couldn't fetch data for %s right now. Please try again.", coin.Name)
}

func renderAddFailed(coin domain.CoinRef) string {
	return fmt.Sprintf("Sorry, I couldn't get a current price for %s, so nothing was added. Please try again.", coin.Name)
}

// renderHelp enumerates the supported coins so the user knows what to ask for.
func renderHelp(dir *coins.Directory) string {
	names := lo.Map(dir.Coins(), func(c domain.CoinRef, _ int) string { return c.Name })
	return fmt.Sprintf("I can help with crypto prices, trending coins, price charts and your portfolio. "+
		`Try "What's the price of bitcoin?", "Show trending cryptos" or "I have 1 BTC". `+
		"Supported coins: %s.", strings.Join(names, ", "))
}

func describeTimeframe(tf domain.Timeframe) string {
	if tf == domain.Timeframe1Y {
		return "year"
	}
	days := tf.Days()
	if days == 1 {
		return "24 hours"
	}
	return fmt.Sprintf("%d days", days)
}

// formatUSD renders a dollar figure with thousands separators, keeping more
// precision for sub-dollar prices so micro-cap coins don't collapse to 0.00.
func formatUSD(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Abs().LessThan(decimal.NewFromInt(1)) && !d.IsZero() {
		return d.Round(6).String()
	}
	return groupThousands(d.StringFixed(2))
}

// formatChange keeps the explicit "+" for gains, matching how the 24h move
// is usually read aloud.
func formatChange(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupThousands inserts commas into the integer part of a fixed-point
// decimal string, e.g. "45000.50" -> "45,000.50".
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
