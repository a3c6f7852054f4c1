package exchange_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ishagupta145/mcp-server/internal/adapters/exchange"
	"github.com/Ishagupta145/mcp-server/internal/domain"
)

func TestGateway_UnknownExchangeFailsFast(t *testing.T) {
	gw := exchange.NewGateway()
	sym := mustSymbol(t, "btc-usdt")

	_, err := gw.FetchTicker(context.Background(), "bitfinex", sym)
	assert.ErrorIs(t, err, domain.ErrExchangeNotSupported)

	_, err = gw.FetchOHLCV(context.Background(), "bitfinex", sym, domain.CandleQuery{Timeframe: "1h", Limit: 10})
	assert.ErrorIs(t, err, domain.ErrExchangeNotSupported)

	err = gw.Ping(context.Background(), "bitfinex")
	assert.ErrorIs(t, err, domain.ErrExchangeNotSupported)
}

func TestGateway_Exchanges(t *testing.T) {
	gw := exchange.NewGateway()
	assert.Equal(t, []string{"binance", "kraken"}, gw.Exchanges())
}
