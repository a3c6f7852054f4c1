package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/ports"
)

// Handler contains all HTTP handlers
type Handler struct {
	market          ports.MarketDataService
	defaultExchange string
	logger          *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(market ports.MarketDataService, defaultExchange string, logger *slog.Logger) *Handler {
	return &Handler{
		market:          market,
		defaultExchange: defaultExchange,
		logger:          logger.With("component", "http_handler"),
	}
}

// Root returns a welcome message
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Cryptocurrency market data service. See /ticker/{symbol} and /historical/{symbol}.",
	})
}

// GetTicker returns the current ticker for a trading pair
func (h *Handler) GetTicker(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	exchange := h.exchangeParam(r)

	ticker, err := h.market.GetTicker(r.Context(), symbol, exchange)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ticker)
}

// GetHistorical returns OHLCV candles for a trading pair
func (h *Handler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	exchange := h.exchangeParam(r)

	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "1h"
	}

	var since int64
	if sinceParam := r.URL.Query().Get("since"); sinceParam != "" {
		v, err := strconv.ParseInt(sinceParam, 10, 64)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, "since must be a millisecond epoch timestamp", "INVALID_PARAMETER")
			return
		}
		since = v
	}

	var limit int
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		v, err := strconv.Atoi(limitParam)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_PARAMETER")
			return
		}
		limit = v
	}

	candles, err := h.market.GetHistorical(r.Context(), symbol, exchange, timeframe, since, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, candles)
}

// ListExchanges returns the supported exchange ids
func (h *Handler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"exchanges": h.market.Exchanges(),
	})
}

// Health returns service health status, probing the default exchange
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	exchangeStatus := "healthy"
	if err := h.market.CheckExchange(checkCtx, h.defaultExchange); err != nil {
		h.logger.Warn("health probe failed", "exchange", h.defaultExchange, "error", err)
		exchangeStatus = "unhealthy"
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"exchanges": map[string]string{
			h.defaultExchange: exchangeStatus,
		},
	})
}

func (h *Handler) exchangeParam(r *http.Request) string {
	if exchange := r.URL.Query().Get("exchange"); exchange != "" {
		return exchange
	}
	return h.defaultExchange
}
