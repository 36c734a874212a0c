package intent

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptopal/assistant/internal/coins"
)

// numberWord maps a spelled-out cardinal to its value. Matching scans the
// table in order and takes the first word contained in the token, so "seven"
// wins over "seventeen" — a quirk kept deliberately (see the tests).
type numberWord struct {
	word  string
	value float64
}

var numberWords = []numberWord{
	{"zero", 0}, {"one", 1}, {"two", 2}, {"three", 3}, {"four", 4},
	{"five", 5}, {"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9},
	{"ten", 10}, {"eleven", 11}, {"twelve", 12}, {"thirteen", 13},
	{"fourteen", 14}, {"fifteen", 15}, {"sixteen", 16}, {"seventeen", 17},
	{"eighteen", 18}, {"nineteen", 19}, {"twenty", 20},
}

// An amount token is a decimal number or one of the spelled-out cardinals.
var amountAlt = `\d*\.?\d+|` + strings.Join(
	lo.Map(numberWords, func(n numberWord, _ int) string { return n.word }), "|")

var (
	// Trigger phrase immediately followed by amount and coin tokens.
	phraseRe = regexp.MustCompile(`(?:i have|i own|add)\s+(` + amountAlt + `)\s+([a-z][a-z-]*)`)
	// Fallback: amount then coin token anywhere in the text.
	bareRe = regexp.MustCompile(`\b(` + amountAlt + `)\s*([a-z][a-z-]*)`)
)

type rule struct {
	match func(text string) bool
	build func(text string) Intent
}

// Interpreter turns a raw utterance into an Intent by evaluating an ordered
// rule table; the first matching rule wins, so the table order IS the
// precedence policy. Pure function of the text, no dialogue memory.
type Interpreter struct {
	dir   *coins.Directory
	rules []rule
}

// NewInterpreter creates an interpreter over the given coin directory.
func NewInterpreter(dir *coins.Directory) *Interpreter {
	in := &Interpreter{dir: dir}
	in.rules = []rule{
		{containsAny("price", "trading", "worth"), in.coinIntent(KindPrice)},
		{containsAny("trending", "top"), constIntent(KindTrending)},
		{containsAny("chart"), in.coinIntent(KindChart)},
		{containsAny("portfolio"), constIntent(KindPortfolio)},
		{containsAny("i have", "i own", "add"), in.addIntent},
	}
	return in
}

// Interpret classifies text into exactly one Intent.
func (in *Interpreter) Interpret(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range in.rules {
		if r.match(lower) {
			return r.build(lower)
		}
	}
	return Intent{Kind: KindUnrecognized, Reason: ReasonNoMatch}
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		return lo.SomeBy(keywords, func(k string) bool { return strings.Contains(text, k) })
	}
}

func constIntent(kind Kind) func(string) Intent {
	return func(string) Intent { return Intent{Kind: kind} }
}

// coinIntent builds a coin-carrying intent, degrading to NoCoin when the
// utterance names no known coin.
func (in *Interpreter) coinIntent(kind Kind) func(string) Intent {
	return func(text string) Intent {
		coin := in.dir.Resolve(text)
		if coin == nil {
			return Intent{Kind: KindUnrecognized, Reason: ReasonNoCoin}
		}
		return Intent{Kind: kind, Coin: coin}
	}
}

// addIntent extracts an amount and a coin for a holding addition. The
// phrase-anchored pattern is tried first; the bare amount-then-coin pattern
// is the fallback for phrasing like "add roughly 2 btc".
func (in *Interpreter) addIntent(text string) Intent {
	m := phraseRe.FindStringSubmatch(text)
	if m == nil {
		m = bareRe.FindStringSubmatch(text)
	}
	if m == nil {
		return Intent{Kind: KindUnrecognized, Reason: ReasonNoAmount}
	}

	amount, ok := parseAmount(m[1])
	if !ok || amount <= 0 {
		return Intent{Kind: KindUnrecognized, Reason: ReasonNoAmount}
	}

	coin := in.dir.Resolve(m[2])
	if coin == nil {
		// A parsed amount without a recognizable coin is still no match.
		return Intent{Kind: KindUnrecognized, Reason: ReasonNoMatch}
	}

	return Intent{Kind: KindAdd, Coin: coin, Amount: amount}
}

// parseAmount turns an amount token into a value: decimal numbers first,
// then the cardinal word table in declaration order.
func parseAmount(token string) (float64, bool) {
	if d, err := decimal.NewFromString(token); err == nil {
		v, _ := d.Float64()
		return v, true
	}
	for _, n := range numberWords {
		if strings.Contains(token, n.word) {
			return n.value, true
		}
	}
	return 0, false
}
