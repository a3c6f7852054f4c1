package ports

import (
	"context"

	"github.com/Ishagupta145/mcp-server/internal/domain"
)

// ExchangeGateway defines the contract for fetching market data from an
// upstream exchange. Implementations validate the exchange id before any
// network call and acquire/release a network session per call.
type ExchangeGateway interface {
	// FetchTicker fetches the current ticker snapshot for a symbol
	FetchTicker(ctx context.Context, exchangeID string, symbol domain.Symbol) (*domain.Ticker, error)

	// FetchOHLCV fetches historical candles ordered ascending by timestamp
	FetchOHLCV(ctx context.Context, exchangeID string, symbol domain.Symbol, query domain.CandleQuery) ([]domain.Candle, error)

	// Exchanges returns the ids of all supported exchanges
	Exchanges() []string

	// Ping checks whether an exchange is reachable
	Ping(ctx context.Context, exchangeID string) error
}

// TickerCache defines the contract for the time-bounded ticker cache.
// Implementations must coalesce concurrent refills for the same key and must
// never store a failed fetch.
type TickerCache interface {
	// GetOrFetch returns the live cached ticker for key, or invokes fetch
	// once per concurrent wave of callers and stores its result
	GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*domain.Ticker, error)) (*domain.Ticker, error)
}

// MarketDataService is the sole entry point consumed by the transport layer.
// All failures it returns are classified *domain.ServiceError values.
type MarketDataService interface {
	// GetTicker returns the (possibly cached) ticker for a raw symbol spelling
	GetTicker(ctx context.Context, rawSymbol, exchangeID string) (*domain.Ticker, error)

	// GetHistorical returns candles for a raw symbol spelling, bypassing the cache
	GetHistorical(ctx context.Context, rawSymbol, exchangeID, timeframe string, since int64, limit int) ([]domain.Candle, error)

	// Exchanges returns the ids of all supported exchanges
	Exchanges() []string

	// CheckExchange probes an exchange for reachability
	CheckExchange(ctx context.Context, exchangeID string) error
}
