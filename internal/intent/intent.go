package intent

import "github.com/cryptopal/assistant/internal/domain"

// Kind enumerates the actions an utterance can request.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindPrice
	KindTrending
	KindChart
	KindPortfolio
	KindAdd
)

func (k Kind) String() string {
	switch k {
	case KindPrice:
		return "price"
	case KindTrending:
		return "trending"
	case KindChart:
		return "chart"
	case KindPortfolio:
		return "portfolio"
	case KindAdd:
		return "add"
	default:
		return "unrecognized"
	}
}

// Reason explains why an utterance could not be turned into an action.
// These are classification outcomes, not errors.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonNoCoin   Reason = "no-coin"   // action keyword present, coin missing
	ReasonNoAmount Reason = "no-amount" // holding phrase present, amount missing or non-positive
	ReasonNoMatch  Reason = "no-match"  // nothing recognizable
)

// Intent is the structured representation of what one utterance requests.
// Values are immutable and created fresh per utterance.
type Intent struct {
	Kind   Kind
	Coin   *domain.CoinRef // Price, Chart, Add; may be set on Unrecognized
	Amount float64         // Add only, always > 0
	Reason Reason          // Unrecognized only
}
