package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ishagupta145/mcp-server/internal/domain"
)

func TestServiceError_Unwrap(t *testing.T) {
	err := domain.NewServiceError(domain.ErrSymbolNotFound, `symbol "BAD/SYMBOL" was not found on binance`, "binance", "BAD/SYMBOL")

	assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
	assert.NotErrorIs(t, err, domain.ErrExchangeNotSupported)
	assert.Equal(t, `symbol "BAD/SYMBOL" was not found on binance`, err.Error())
	assert.Equal(t, "binance", err.Exchange)
	assert.Equal(t, "BAD/SYMBOL", err.Symbol)
}

func TestServiceError_MessageFallsBackToKind(t *testing.T) {
	err := domain.NewServiceError(domain.ErrUpstream, "", "kraken", "ETH/USD")
	assert.Equal(t, "upstream exchange error", err.Error())
}

func TestIsServiceError(t *testing.T) {
	classified := domain.NewServiceError(domain.ErrUpstream, "boom", "binance", "BTC/USDT")
	wrapped := fmt.Errorf("handler: %w", classified)

	assert.True(t, domain.IsServiceError(classified))
	assert.True(t, domain.IsServiceError(wrapped))
	assert.False(t, domain.IsServiceError(errors.New("plain")))
}
