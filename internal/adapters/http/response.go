package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ishagupta145/mcp-server/internal/domain"
)

// Response helpers for consistent JSON responses

// ErrorResponse represents an error response. Every error body carries a
// human-readable message; the code is a stable machine-readable kind.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, ErrorResponse{Message: message, Code: code})
}

// handleServiceError maps classified service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	message := err.Error()
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) {
		message = svcErr.Error()
	}

	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		respondError(w, http.StatusBadRequest, message, "INVALID_PARAMETER")

	case errors.Is(err, domain.ErrSymbolNotFound):
		respondError(w, http.StatusNotFound, message, "SYMBOL_NOT_FOUND")

	case errors.Is(err, domain.ErrExchangeNotSupported):
		respondError(w, http.StatusNotFound, message, "EXCHANGE_NOT_SUPPORTED")

	case errors.Is(err, domain.ErrUpstream):
		respondError(w, http.StatusBadGateway, message, "UPSTREAM_ERROR")

	default:
		respondError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
