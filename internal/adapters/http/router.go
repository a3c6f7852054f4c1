package http

import (
	"log/slog"
	"net/http"
)

// NewRouter creates the HTTP router with all routes
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)

	// Health check
	mux.HandleFunc("GET /health", h.Health)

	// Market data
	mux.HandleFunc("GET /ticker/{symbol}", h.GetTicker)
	mux.HandleFunc("GET /historical/{symbol}", h.GetHistorical)

	// Supported exchanges
	mux.HandleFunc("GET /exchanges", h.ListExchanges)

	// Apply middleware chain (order matters: outer -> inner)
	var handler http.Handler = mux
	handler = ContentTypeMiddleware(handler)
	handler = CORSMiddleware(handler)
	handler = RecoveryMiddleware(logger)(handler)
	handler = LoggingMiddleware(logger)(handler)

	return handler
}
