// Package api exposes the assistant over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cryptopal/assistant/internal/chat"
	"github.com/cryptopal/assistant/internal/domain"
	"github.com/cryptopal/assistant/internal/portfolio"
)

const maxChatBodyBytes = 64 << 10

// Handler provides HTTP endpoints for the assistant.
type Handler struct {
	orch   *chat.Orchestrator
	ledger *portfolio.Ledger
}

// NewHandler creates a new API handler.
func NewHandler(orch *chat.Orchestrator, ledger *portfolio.Ledger) *Handler {
	return &Handler{orch: orch, ledger: ledger}
}

type chatRequest struct {
	Text string `json:"text"`
}

// PostChat handles POST /api/v1/chat.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply := h.orch.HandleUtterance(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, reply)
}

type portfolioResponse struct {
	Holdings   []domain.Holding `json:"holdings"`
	TotalValue float64          `json:"totalValue"`
}

// GetPortfolio handles GET /api/v1/portfolio.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	total := h.ledger.TotalValue(r.Context())
	writeJSON(w, http.StatusOK, portfolioResponse{Holdings: h.ledger.Holdings(), TotalValue: total})
}

// GetHealth handles GET /healthz.
func (h *Handler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
