package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/cryptopal/assistant/internal/domain"
)

// scriptedRecognizer delivers canned transcripts synchronously on Start.
type scriptedRecognizer struct {
	transcripts []string
	stopped     bool
}

func (r *scriptedRecognizer) Start(_ context.Context, onResult func(string)) error {
	for _, tr := range r.transcripts {
		onResult(tr)
	}
	return nil
}

func (r *scriptedRecognizer) Stop() error {
	r.stopped = true
	return nil
}

func TestRecognizerTranscriptsFlowLikeTypedInput(t *testing.T) {
	src := &scriptedSource{prices: map[string]domain.PricePoint{
		"bitcoin": {Price: 45000, Change24hPct: pct(2.5)},
	}}
	orch, _, speaker := newTestOrchestrator(t, src)

	ctx := context.Background()
	var replies []string
	rec := &scriptedRecognizer{transcripts: []string{"what is the price of bitcoin"}}
	if err := rec.Start(ctx, func(text string) {
		replies = append(replies, orch.HandleUtterance(ctx, text).Text)
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rec.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !rec.stopped {
		t.Error("recognizer not stopped")
	}

	if len(replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(replies))
	}
	if !strings.Contains(replies[0], "Bitcoin (BTC) is trading at $45,000.00") {
		t.Errorf("reply = %q, want price reply", replies[0])
	}
	// Spoken output matches the transcribed path exactly like the typed one.
	if len(speaker.spoken) != 1 || speaker.spoken[0] != replies[0] {
		t.Errorf("spoken = %v, want the reply verbatim", speaker.spoken)
	}
}

func TestNopRecognizer(t *testing.T) {
	var r Recognizer = NopRecognizer{}
	if err := r.Start(context.Background(), func(string) {
		t.Error("NopRecognizer produced a transcript")
	}); err != nil {
		t.Errorf("Start() error = %v, want nil", err)
	}
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
}
