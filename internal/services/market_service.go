package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ishagupta145/mcp-server/internal/cache"
	"github.com/Ishagupta145/mcp-server/internal/domain"
	"github.com/Ishagupta145/mcp-server/internal/ports"
	"github.com/Ishagupta145/mcp-server/pkg/retry"
)

const (
	defaultCandleLimit = 100
	maxCandleLimit     = 1000
)

// MarketService orchestrates symbol normalization, the ticker cache and the
// exchange gateway. Every failure it returns has passed through the
// classifier and is a *domain.ServiceError.
type MarketService struct {
	gateway   ports.ExchangeGateway
	cache     ports.TickerCache
	retryConf retry.Config
	logger    *slog.Logger
}

// NewMarketService creates a new market data service
func NewMarketService(gateway ports.ExchangeGateway, tickerCache ports.TickerCache, logger *slog.Logger) *MarketService {
	return &MarketService{
		gateway:   gateway,
		cache:     tickerCache,
		retryConf: retry.DefaultConfig(),
		logger:    logger.With("component", "market_service"),
	}
}

// GetTicker returns the current ticker for a raw symbol spelling, served
// from the cache when a live entry exists.
func (s *MarketService) GetTicker(ctx context.Context, rawSymbol, exchangeID string) (*domain.Ticker, error) {
	symbol, err := domain.ParseSymbol(rawSymbol)
	if err != nil {
		return nil, Classify(exchangeID, symbol, err)
	}

	key := cache.Key(exchangeID, symbol)

	ticker, err := s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*domain.Ticker, error) {
		return s.gateway.FetchTicker(ctx, exchangeID, symbol)
	})
	if err != nil {
		s.logger.Warn("ticker lookup failed",
			"exchange", exchangeID,
			"symbol", symbol.String(),
			"error", err)
		return nil, Classify(exchangeID, symbol, err)
	}

	return ticker, nil
}

// GetHistorical returns candles for a raw symbol spelling. The ticker cache
// is never consulted: the (timeframe, since, limit) cardinality makes naive
// caching ineffective here.
func (s *MarketService) GetHistorical(ctx context.Context, rawSymbol, exchangeID, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	symbol, err := domain.ParseSymbol(rawSymbol)
	if err != nil {
		return nil, Classify(exchangeID, symbol, err)
	}

	if limit == 0 {
		limit = defaultCandleLimit
	}
	if limit < 0 || limit > maxCandleLimit {
		return nil, Classify(exchangeID, symbol,
			fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidParameter, maxCandleLimit))
	}
	if since < 0 {
		return nil, Classify(exchangeID, symbol,
			fmt.Errorf("%w: since must be a millisecond epoch timestamp", domain.ErrInvalidParameter))
	}

	candles, err := s.gateway.FetchOHLCV(ctx, exchangeID, symbol, domain.CandleQuery{
		Timeframe: timeframe,
		Since:     since,
		Limit:     limit,
	})
	if err != nil {
		s.logger.Warn("historical lookup failed",
			"exchange", exchangeID,
			"symbol", symbol.String(),
			"timeframe", timeframe,
			"error", err)
		return nil, Classify(exchangeID, symbol, err)
	}

	return candles, nil
}

// Exchanges returns the ids of all supported exchanges.
func (s *MarketService) Exchanges() []string {
	return s.gateway.Exchanges()
}

// CheckExchange probes an exchange for reachability. Transient faults are
// retried with backoff so a single blip does not flap the reported health;
// the market-data fetch paths never retry.
func (s *MarketService) CheckExchange(ctx context.Context, exchangeID string) error {
	err := retry.Do(ctx, s.retryConf, func(ctx context.Context) error {
		if err := s.gateway.Ping(ctx, exchangeID); err != nil {
			if errors.Is(err, domain.ErrExchangeNotSupported) {
				return err
			}
			return retry.NewRetryableError(err)
		}
		return nil
	})
	if err != nil {
		return Classify(exchangeID, domain.Symbol{}, err)
	}
	return nil
}

// Ensure MarketService implements ports.MarketDataService
var _ ports.MarketDataService = (*MarketService)(nil)
