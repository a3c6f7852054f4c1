package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Ishagupta145/mcp-server/internal/domain"
)

const (
	binanceBaseURL    = "https://api.binance.com"
	binanceTickerPath = "/api/v3/ticker/24hr"
	binanceKlinesPath = "/api/v3/klines"
	binancePingPath   = "/api/v3/ping"

	// Binance API error codes
	binanceCodeBadSymbol   = -1121
	binanceCodeBadInterval = -1120
)

var binanceTimeframes = []string{
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "8h", "12h",
	"1d", "3d", "1w", "1M",
}

// BinanceClient fetches market data from the Binance spot REST API.
type BinanceClient struct {
	baseURL string
	logger  *slog.Logger
}

// BinanceOption configures the client
type BinanceOption func(*BinanceClient)

// WithBinanceBaseURL overrides the API base URL
func WithBinanceBaseURL(u string) BinanceOption {
	return func(c *BinanceClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithBinanceLogger sets the logger
func WithBinanceLogger(logger *slog.Logger) BinanceOption {
	return func(c *BinanceClient) {
		c.logger = logger.With("component", "binance_client")
	}
}

// NewBinanceClient creates a new Binance client
func NewBinanceClient(opts ...BinanceOption) *BinanceClient {
	c := &BinanceClient{
		baseURL: binanceBaseURL,
		logger:  slog.Default().With("component", "binance_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *BinanceClient) ID() string {
	return "binance"
}

func (c *BinanceClient) Timeframes() []string {
	return binanceTimeframes
}

// binanceTicker is the subset of the 24hr statistics response the service
// needs. Volume is base-asset volume.
type binanceTicker struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	Volume    string `json:"volume"`
	CloseTime int64  `json:"closeTime"`
}

// binanceError is the structured error body Binance returns on 4xx.
type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// FetchTicker fetches the 24hr ticker statistics for a symbol.
func (c *BinanceClient) FetchTicker(ctx context.Context, session *Session, symbol domain.Symbol) (*domain.Ticker, error) {
	q := url.Values{}
	q.Set("symbol", symbol.Exchange())

	resp, err := c.get(ctx, session, binanceTickerPath, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var t binanceTicker
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decoding binance ticker: %v", domain.ErrUpstream, err)
	}

	last, err := decimal.NewFromString(t.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: binance returned invalid price %q", domain.ErrUpstream, t.LastPrice)
	}

	volume, err := decimal.NewFromString(t.Volume)
	if err != nil {
		return nil, fmt.Errorf("%w: binance returned invalid volume %q", domain.ErrUpstream, t.Volume)
	}

	return domain.NewTicker(symbol, t.CloseTime, last, volume), nil
}

// FetchOHLCV fetches klines. Binance already returns bars ascending by open
// time and honors startTime/limit server-side.
func (c *BinanceClient) FetchOHLCV(ctx context.Context, session *Session, symbol domain.Symbol, query domain.CandleQuery) ([]domain.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol.Exchange())
	q.Set("interval", query.Timeframe)
	q.Set("limit", strconv.Itoa(query.Limit))
	if query.Since > 0 {
		q.Set("startTime", strconv.FormatInt(query.Since, 10))
	}

	resp, err := c.get(ctx, session, binanceKlinesPath, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decoding binance klines: %v", domain.ErrUpstream, err)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseBinanceKline(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// Ping checks API reachability.
func (c *BinanceClient) Ping(ctx context.Context, session *Session) error {
	resp, err := c.get(ctx, session, binancePingPath, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: binance ping returned status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return nil
}

func (c *BinanceClient) get(ctx context.Context, session *Session, path string, query url.Values) (*http.Response, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	resp, err := session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return resp, nil
}

// checkStatus maps non-200 responses to taxonomy errors using the
// structured error code Binance ships in 4xx bodies.
func (c *BinanceClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		var apiErr binanceError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			switch apiErr.Code {
			case binanceCodeBadSymbol:
				return fmt.Errorf("%w: binance code %d", domain.ErrSymbolNotFound, apiErr.Code)
			case binanceCodeBadInterval:
				return fmt.Errorf("%w: binance code %d: %s", domain.ErrInvalidParameter, apiErr.Code, apiErr.Msg)
			}
		}
	}

	c.logger.Warn("unexpected binance response", "status", resp.StatusCode)
	return fmt.Errorf("%w: binance returned status %d", domain.ErrUpstream, resp.StatusCode)
}

// parseBinanceKline converts one kline row
// [openTime, open, high, low, close, volume, ...] into a candle.
func parseBinanceKline(row []json.RawMessage) (domain.Candle, error) {
	if len(row) < 6 {
		return domain.Candle{}, fmt.Errorf("%w: binance kline row has %d fields", domain.ErrUpstream, len(row))
	}

	var ts int64
	if err := json.Unmarshal(row[0], &ts); err != nil {
		return domain.Candle{}, fmt.Errorf("%w: binance kline timestamp: %v", domain.ErrUpstream, err)
	}

	values := make([]decimal.Decimal, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return domain.Candle{}, fmt.Errorf("%w: binance kline field %d: %v", domain.ErrUpstream, i+1, err)
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("%w: binance kline value %q", domain.ErrUpstream, s)
		}
		values[i] = v
	}

	return domain.Candle{
		Timestamp: ts,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// Ensure BinanceClient implements Client
var _ Client = (*BinanceClient)(nil)
