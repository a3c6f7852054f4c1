package exchange_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishagupta145/mcp-server/internal/adapters/exchange"
	"github.com/Ishagupta145/mcp-server/internal/domain"
)

func mustSymbol(t *testing.T, raw string) domain.Symbol {
	t.Helper()
	sym, err := domain.ParseSymbol(raw)
	require.NoError(t, err)
	return sym
}

func newBinanceGateway(serverURL string) *exchange.Gateway {
	return exchange.NewGateway(
		exchange.WithClient(exchange.NewBinanceClient(exchange.WithBinanceBaseURL(serverURL))),
	)
}

func TestBinance_FetchTicker(t *testing.T) {
	t.Run("successfully fetches ticker", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
			assert.Equal(t, "ETHBTC", r.URL.Query().Get("symbol"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"symbol":    "ETHBTC",
				"lastPrice": "0.065",
				"volume":    "120.5",
				"closeTime": 1700000000000,
			})
		}))
		defer server.Close()

		gw := newBinanceGateway(server.URL)

		ticker, err := gw.FetchTicker(context.Background(), "binance", mustSymbol(t, "eth-btc"))
		require.NoError(t, err)
		assert.Equal(t, "ETH/BTC", ticker.Symbol)
		assert.Equal(t, int64(1700000000000), ticker.Timestamp)
		assert.Equal(t, "2023-11-14T22:13:20.000Z", ticker.Datetime)
		assert.True(t, ticker.Last.Equal(decimal.NewFromFloat(0.065)))
		assert.True(t, ticker.Volume.Equal(decimal.NewFromFloat(120.5)))
	})

	t.Run("maps invalid symbol code to symbol not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": -1121,
				"msg":  "Invalid symbol.",
			})
		}))
		defer server.Close()

		gw := newBinanceGateway(server.URL)

		_, err := gw.FetchTicker(context.Background(), "binance", mustSymbol(t, "bad-symbol"))
		assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
	})

	t.Run("maps server errors to upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		gw := newBinanceGateway(server.URL)

		_, err := gw.FetchTicker(context.Background(), "binance", mustSymbol(t, "btc-usdt"))
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("maps unreachable upstream to upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		gw := newBinanceGateway(server.URL)

		_, err := gw.FetchTicker(context.Background(), "binance", mustSymbol(t, "btc-usdt"))
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestBinance_FetchOHLCV(t *testing.T) {
	t.Run("successfully fetches candles", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/klines", r.URL.Path)
			assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
			assert.Equal(t, "1h", r.URL.Query().Get("interval"))
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			assert.Equal(t, "1700000000000", r.URL.Query().Get("startTime"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]interface{}{
				[]interface{}{1700000000000, "2000.1", "2010.5", "1995.0", "2005.2", "310.4", 1700003599999},
				[]interface{}{1700003600000, "2005.2", "2020.0", "2001.1", "2018.7", "280.9", 1700007199999},
			})
		}))
		defer server.Close()

		gw := newBinanceGateway(server.URL)

		candles, err := gw.FetchOHLCV(context.Background(), "binance", mustSymbol(t, "eth-usdt"), domain.CandleQuery{
			Timeframe: "1h",
			Since:     1700000000000,
			Limit:     2,
		})
		require.NoError(t, err)
		require.Len(t, candles, 2)

		assert.Equal(t, int64(1700000000000), candles[0].Timestamp)
		assert.True(t, candles[0].Open.Equal(decimal.NewFromFloat(2000.1)))
		assert.True(t, candles[0].High.Equal(decimal.NewFromFloat(2010.5)))
		assert.True(t, candles[0].Low.Equal(decimal.NewFromFloat(1995.0)))
		assert.True(t, candles[0].Close.Equal(decimal.NewFromFloat(2005.2)))
		assert.True(t, candles[0].Volume.Equal(decimal.NewFromFloat(310.4)))
		assert.Less(t, candles[0].Timestamp, candles[1].Timestamp)
	})

	t.Run("rejects unsupported timeframe before any network call", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer server.Close()

		gw := newBinanceGateway(server.URL)

		_, err := gw.FetchOHLCV(context.Background(), "binance", mustSymbol(t, "eth-usdt"), domain.CandleQuery{
			Timeframe: "7m",
			Limit:     10,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
		assert.Zero(t, calls)
	})
}

func TestBinance_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ping", r.URL.Path)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	gw := newBinanceGateway(server.URL)
	assert.NoError(t, gw.Ping(context.Background(), "binance"))
}
