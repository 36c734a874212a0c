package worker

import (
	"context"
	"log/slog"
	"time"
)

// Repricer refreshes stored holdings against current market prices.
type Repricer interface {
	Reprice(ctx context.Context) error
}

// RepriceWorker periodically refreshes portfolio valuations.
type RepriceWorker struct {
	repricer Repricer
	interval time.Duration
}

// NewRepriceWorker creates a new RepriceWorker.
func NewRepriceWorker(repricer Repricer, interval time.Duration) *RepriceWorker {
	return &RepriceWorker{
		repricer: repricer,
		interval: interval,
	}
}

// Run starts the reprice loop. It blocks until the context is cancelled.
func (w *RepriceWorker) Run(ctx context.Context) {
	slog.Info("RepriceWorker: starting", "interval", w.interval)

	// Refresh immediately so a restarted process does not serve stale values
	// for a full interval.
	if err := w.repricer.Reprice(ctx); err != nil {
		slog.Error("RepriceWorker: initial reprice failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RepriceWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.repricer.Reprice(ctx); err != nil {
				slog.Error("RepriceWorker: reprice failed", "error", err)
			} else {
				slog.Info("RepriceWorker: reprice completed")
			}
		}
	}
}
