package api

import (
	"net/http"
	"time"

	"github.com/cryptopal/assistant/internal/chat"
	"github.com/cryptopal/assistant/internal/portfolio"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, orch *chat.Orchestrator, ledger *portfolio.Ledger) *http.Server {
	handler := NewHandler(orch, ledger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", handler.PostChat)
	mux.HandleFunc("GET /api/v1/portfolio", handler.GetPortfolio)
	mux.HandleFunc("GET /healthz", handler.GetHealth)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
