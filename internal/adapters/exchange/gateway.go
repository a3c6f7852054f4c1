package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/domain"
	"github.com/Ishagupta145/mcp-server/internal/ports"
)

// Client is implemented by each exchange-specific REST client. Methods
// receive the per-call session the gateway acquired for them and must not
// hold on to it past the call.
type Client interface {
	// ID returns the exchange id this client serves
	ID() string

	// Timeframes reports the candle granularities the exchange supports
	Timeframes() []string

	// FetchTicker fetches the current ticker for a symbol
	FetchTicker(ctx context.Context, session *Session, symbol domain.Symbol) (*domain.Ticker, error)

	// FetchOHLCV fetches candles ordered ascending by timestamp
	FetchOHLCV(ctx context.Context, session *Session, symbol domain.Symbol, query domain.CandleQuery) ([]domain.Candle, error)

	// Ping checks exchange reachability
	Ping(ctx context.Context, session *Session) error
}

// Gateway dispatches market-data requests to the registered exchange
// clients. The exchange id is validated before any network activity, and
// every upstream call runs on a session that is released on all exit paths.
type Gateway struct {
	clients map[string]Client
	timeout time.Duration
	logger  *slog.Logger
}

// GatewayOption configures the gateway
type GatewayOption func(*Gateway)

// WithTimeout sets the per-call network timeout
func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger.With("component", "exchange_gateway")
	}
}

// WithClient registers an additional exchange client, replacing any
// registered client with the same id.
func WithClient(c Client) GatewayOption {
	return func(g *Gateway) {
		g.clients[c.ID()] = c
	}
}

// NewGateway creates a gateway with the built-in exchange clients
// registered.
func NewGateway(opts ...GatewayOption) *Gateway {
	g := &Gateway{
		clients: make(map[string]Client),
		timeout: 10 * time.Second,
		logger:  slog.Default().With("component", "exchange_gateway"),
	}

	for _, c := range []Client{NewBinanceClient(), NewKrakenClient()} {
		g.clients[c.ID()] = c
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// FetchTicker fetches the current ticker from the identified exchange.
func (g *Gateway) FetchTicker(ctx context.Context, exchangeID string, symbol domain.Symbol) (*domain.Ticker, error) {
	c, err := g.client(exchangeID)
	if err != nil {
		return nil, err
	}

	session := newSession(g.timeout)
	defer session.Close()

	ticker, err := c.FetchTicker(ctx, session, symbol)
	if err != nil {
		g.logger.Debug("ticker fetch failed",
			"exchange", exchangeID,
			"symbol", symbol.String(),
			"error", err)
		return nil, err
	}

	return ticker, nil
}

// FetchOHLCV fetches historical candles from the identified exchange. The
// timeframe is validated against the exchange's capability report before any
// network call.
func (g *Gateway) FetchOHLCV(ctx context.Context, exchangeID string, symbol domain.Symbol, query domain.CandleQuery) ([]domain.Candle, error) {
	c, err := g.client(exchangeID)
	if err != nil {
		return nil, err
	}

	if !supportsTimeframe(c, query.Timeframe) {
		return nil, fmt.Errorf("%w: timeframe %q not supported by %s (supported: %s)",
			domain.ErrInvalidParameter, query.Timeframe, exchangeID, strings.Join(c.Timeframes(), ", "))
	}

	session := newSession(g.timeout)
	defer session.Close()

	candles, err := c.FetchOHLCV(ctx, session, symbol, query)
	if err != nil {
		g.logger.Debug("ohlcv fetch failed",
			"exchange", exchangeID,
			"symbol", symbol.String(),
			"timeframe", query.Timeframe,
			"error", err)
		return nil, err
	}

	return candles, nil
}

// Ping checks whether the identified exchange is reachable.
func (g *Gateway) Ping(ctx context.Context, exchangeID string) error {
	c, err := g.client(exchangeID)
	if err != nil {
		return err
	}

	session := newSession(g.timeout)
	defer session.Close()

	return c.Ping(ctx, session)
}

// Exchanges returns the sorted ids of all registered exchanges.
func (g *Gateway) Exchanges() []string {
	ids := make([]string, 0, len(g.clients))
	for id := range g.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Gateway) client(exchangeID string) (Client, error) {
	c, ok := g.clients[exchangeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrExchangeNotSupported, exchangeID)
	}
	return c, nil
}

func supportsTimeframe(c Client, timeframe string) bool {
	for _, tf := range c.Timeframes() {
		if tf == timeframe {
			return true
		}
	}
	return false
}

// Ensure Gateway implements ports.ExchangeGateway
var _ ports.ExchangeGateway = (*Gateway)(nil)
