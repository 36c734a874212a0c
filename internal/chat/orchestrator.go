package chat

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cryptopal/assistant/internal/coins"
	"github.com/cryptopal/assistant/internal/domain"
	"github.com/cryptopal/assistant/internal/intent"
	"github.com/cryptopal/assistant/internal/market"
	"github.com/cryptopal/assistant/internal/portfolio"
)

// Greeting is the opening message a presentation layer should show before
// the first utterance.
const Greeting = "Hello! I'm your crypto assistant. Ask me about prices, trends, or manage your portfolio. You can type or use voice commands!"

const (
	defaultChartTimeframe = domain.Timeframe7D
	trendingLimit         = 5
)

// ChartRequest is the payload handed to a chart-rendering collaborator.
type ChartRequest struct {
	Coin   domain.CoinRef        `json:"coin"`
	Series []domain.HistoryPoint `json:"series"`
}

// Reply is the orchestrator's answer to one utterance: text for the chat
// bubble (and the speech synthesizer, verbatim), plus an optional chart.
type Reply struct {
	Text  string        `json:"reply"`
	Chart *ChartRequest `json:"chart,omitempty"`
}

// Orchestrator executes exactly one step per utterance: interpret, call the
// market source and/or the ledger, render a reply. It keeps no dialogue
// state between utterances. Every collaborator failure is converted into a
// user-facing reply here; nothing below the presentation layer ever sees a
// raw error. Callers must let one HandleUtterance call resolve before
// issuing the next.
type Orchestrator struct {
	dir     *coins.Directory
	interp  *intent.Interpreter
	source  market.Source
	ledger  *portfolio.Ledger
	speaker Speaker
}

// NewOrchestrator wires the conversation pipeline. Pass NopSpeaker when no
// speech synthesis collaborator is available.
func NewOrchestrator(dir *coins.Directory, interp *intent.Interpreter, source market.Source, ledger *portfolio.Ledger, speaker Speaker) *Orchestrator {
	if speaker == nil {
		speaker = NopSpeaker{}
	}
	return &Orchestrator{dir: dir, interp: interp, source: source, ledger: ledger, speaker: speaker}
}

// HandleUtterance processes one typed or transcribed utterance and returns
// the reply. It never returns an error; unexpected failures become the
// generic apology.
func (o *Orchestrator) HandleUtterance(ctx context.Context, text string) (reply Reply) {
	requestID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("utterance handling panicked", "request", requestID, "panic", r)
			reply = Reply{Text: replyInternalError}
		}
		o.speaker.Speak(reply.Text)
	}()

	it := o.interp.Interpret(text)
	slog.Info("utterance interpreted", "request", requestID, "kind", it.Kind.String())

	switch it.Kind {
	case intent.KindPrice:
		return o.priceReply(ctx, requestID, *it.Coin)
	case intent.KindTrending:
		return o.trendingReply(ctx, requestID)
	case intent.KindChart:
		return o.chartReply(ctx, requestID, *it.Coin)
	case intent.KindPortfolio:
		return o.portfolioReply(ctx)
	case intent.KindAdd:
		return o.addReply(ctx, requestID, it)
	default:
		return o.unrecognizedReply(it)
	}
}

func (o *Orchestrator) priceReply(ctx context.Context, requestID string, coin domain.CoinRef) Reply {
	point, err := o.source.SpotPrice(ctx, coin)
	if err != nil {
		slog.Warn("spot price failed", "request", requestID, "coin", coin.ID, "error", err)
		return Reply{Text: renderApology(coin)}
	}
	return Reply{Text: renderPrice(coin, point)}
}

func (o *Orchestrator) trendingReply(ctx context.Context, requestID string) Reply {
	items, err := o.source.Trending(ctx, trendingLimit)
	if err != nil {
		slog.Warn("trending fetch failed", "request", requestID, "error", err)
		return Reply{Text: replyTrendingFailed}
	}
	return Reply{Text: renderTrending(items)}
}

func (o *Orchestrator) chartReply(ctx context.Context, requestID string, coin domain.CoinRef) Reply {
	series, err := o.source.History(ctx, coin, defaultChartTimeframe)
	if err != nil {
		slog.Warn("history fetch failed", "request", requestID, "coin", coin.ID, "error", err)
		return Reply{Text: renderApology(coin)}
	}
	return Reply{
		Text:  renderChartConfirmation(coin, defaultChartTimeframe),
		Chart: &ChartRequest{Coin: coin, Series: series},
	}
}

func (o *Orchestrator) portfolioReply(ctx context.Context) Reply {
	if len(o.ledger.Holdings()) == 0 {
		return Reply{Text: replyEmptyPortfolio}
	}
	total := o.ledger.TotalValue(ctx)
	return Reply{Text: renderPortfolio(o.ledger.Holdings(), total)}
}

func (o *Orchestrator) addReply(ctx context.Context, requestID string, it intent.Intent) Reply {
	if err := o.ledger.AddHolding(ctx, it.Coin.ID, it.Amount); err != nil {
		slog.Warn("add holding failed", "request", requestID, "coin", it.Coin.ID, "error", err)
		return Reply{Text: renderAddFailed(*it.Coin)}
	}
	total := o.ledger.TotalValue(ctx)
	return Reply{Text: renderAdded(*it.Coin, it.Amount, total)}
}

func (o *Orchestrator) unrecognizedReply(it intent.Intent) Reply {
	if it.Reason == intent.ReasonNoAmount {
		return Reply{Text: replyBadAmount}
	}
	return Reply{Text: renderHelp(o.dir)}
}
