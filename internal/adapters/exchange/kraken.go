package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ishagupta145/mcp-server/internal/domain"
)

const (
	krakenBaseURL    = "https://api.kraken.com"
	krakenTickerPath = "/0/public/Ticker"
	krakenOHLCPath   = "/0/public/OHLC"
	krakenStatusPath = "/0/public/SystemStatus"
)

// krakenIntervals maps service timeframes to Kraken's interval minutes.
var krakenIntervals = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
	"1w":  10080,
}

// Kraken encodes error kinds only as "Severity+Category:message" strings in
// the error array of an otherwise-200 response. These prefixes are the
// structured signal it offers for an unknown trading pair.
var krakenBadPairPrefixes = []string{
	"EQuery:Unknown asset pair",
	"EGeneral:Invalid arguments:pair",
}

// KrakenClient fetches market data from the Kraken public REST API.
type KrakenClient struct {
	baseURL string
	logger  *slog.Logger
}

// KrakenOption configures the client
type KrakenOption func(*KrakenClient)

// WithKrakenBaseURL overrides the API base URL
func WithKrakenBaseURL(u string) KrakenOption {
	return func(c *KrakenClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithKrakenLogger sets the logger
func WithKrakenLogger(logger *slog.Logger) KrakenOption {
	return func(c *KrakenClient) {
		c.logger = logger.With("component", "kraken_client")
	}
}

// NewKrakenClient creates a new Kraken client
func NewKrakenClient(opts ...KrakenOption) *KrakenClient {
	c := &KrakenClient{
		baseURL: krakenBaseURL,
		logger:  slog.Default().With("component", "kraken_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *KrakenClient) ID() string {
	return "kraken"
}

func (c *KrakenClient) Timeframes() []string {
	return []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w"}
}

// krakenEnvelope is the common response wrapper: errors travel in a string
// array next to the result, even on HTTP 200.
type krakenEnvelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// krakenTicker is the per-pair ticker payload. c = last trade [price, lot
// volume], v = base volume [today, last 24h].
type krakenTicker struct {
	C []string `json:"c"`
	V []string `json:"v"`
}

// FetchTicker fetches the current ticker. Kraken does not timestamp its
// ticker payload, so the snapshot carries the fetch time.
func (c *KrakenClient) FetchTicker(ctx context.Context, session *Session, symbol domain.Symbol) (*domain.Ticker, error) {
	q := url.Values{}
	q.Set("pair", symbol.Exchange())

	result, err := c.get(ctx, session, krakenTickerPath, q)
	if err != nil {
		return nil, err
	}

	// The result is keyed by Kraken's own pair name (e.g. XETHZUSD for
	// ETHUSD); a single-pair request yields a single entry.
	var pairs map[string]krakenTicker
	if err := json.Unmarshal(result, &pairs); err != nil {
		return nil, fmt.Errorf("%w: decoding kraken ticker: %v", domain.ErrUpstream, err)
	}
	if len(pairs) != 1 {
		return nil, fmt.Errorf("%w: kraken ticker returned %d pairs", domain.ErrUpstream, len(pairs))
	}

	for _, t := range pairs {
		if len(t.C) < 1 || len(t.V) < 2 {
			return nil, fmt.Errorf("%w: kraken ticker payload incomplete", domain.ErrUpstream)
		}

		last, err := decimal.NewFromString(t.C[0])
		if err != nil {
			return nil, fmt.Errorf("%w: kraken returned invalid price %q", domain.ErrUpstream, t.C[0])
		}

		volume, err := decimal.NewFromString(t.V[1])
		if err != nil {
			return nil, fmt.Errorf("%w: kraken returned invalid volume %q", domain.ErrUpstream, t.V[1])
		}

		return domain.NewTicker(symbol, time.Now().UnixMilli(), last, volume), nil
	}

	return nil, fmt.Errorf("%w: kraken ticker payload empty", domain.ErrUpstream)
}

// FetchOHLCV fetches OHLC bars. Kraken reports bar times in seconds and has
// no limit parameter, so the row count is trimmed client-side.
func (c *KrakenClient) FetchOHLCV(ctx context.Context, session *Session, symbol domain.Symbol, query domain.CandleQuery) ([]domain.Candle, error) {
	interval, ok := krakenIntervals[query.Timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: timeframe %q not supported by kraken", domain.ErrInvalidParameter, query.Timeframe)
	}

	q := url.Values{}
	q.Set("pair", symbol.Exchange())
	q.Set("interval", strconv.Itoa(interval))
	if query.Since > 0 {
		// Kraken's since is exclusive and in seconds; back off one second
		// and filter client-side so bars at exactly query.Since survive.
		q.Set("since", strconv.FormatInt(query.Since/1000-1, 10))
	}

	result, err := c.get(ctx, session, krakenOHLCPath, q)
	if err != nil {
		return nil, err
	}

	// The result holds the bar array under the pair name plus a "last"
	// pagination cursor.
	var body map[string]json.RawMessage
	if err := json.Unmarshal(result, &body); err != nil {
		return nil, fmt.Errorf("%w: decoding kraken ohlc: %v", domain.ErrUpstream, err)
	}

	var rows [][]json.RawMessage
	for key, raw := range body {
		if key == "last" {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("%w: decoding kraken ohlc rows: %v", domain.ErrUpstream, err)
		}
		break
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKrakenBar(row)
		if err != nil {
			return nil, err
		}
		if query.Since > 0 && candle.Timestamp < query.Since {
			continue
		}
		candles = append(candles, candle)
		if query.Limit > 0 && len(candles) == query.Limit {
			break
		}
	}

	return candles, nil
}

// Ping checks the exchange system status endpoint.
func (c *KrakenClient) Ping(ctx context.Context, session *Session) error {
	_, err := c.get(ctx, session, krakenStatusPath, nil)
	return err
}

// get performs the request and unwraps Kraken's error-array envelope.
func (c *KrakenClient) get(ctx context.Context, session *Session, path string, query url.Values) (json.RawMessage, error) {
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
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected kraken response", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: kraken returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var envelope krakenEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding kraken response: %v", domain.ErrUpstream, err)
	}

	if len(envelope.Error) > 0 {
		return nil, c.classifyAPIError(envelope.Error)
	}

	return envelope.Result, nil
}

func (c *KrakenClient) classifyAPIError(apiErrors []string) error {
	for _, e := range apiErrors {
		for _, prefix := range krakenBadPairPrefixes {
			if strings.HasPrefix(e, prefix) {
				return fmt.Errorf("%w: kraken: %s", domain.ErrSymbolNotFound, e)
			}
		}
	}
	return fmt.Errorf("%w: kraken: %s", domain.ErrUpstream, strings.Join(apiErrors, "; "))
}

// parseKrakenBar converts one OHLC row
// [time, open, high, low, close, vwap, volume, count] into a candle.
func parseKrakenBar(row []json.RawMessage) (domain.Candle, error) {
	if len(row) < 7 {
		return domain.Candle{}, fmt.Errorf("%w: kraken ohlc row has %d fields", domain.ErrUpstream, len(row))
	}

	var sec int64
	if err := json.Unmarshal(row[0], &sec); err != nil {
		return domain.Candle{}, fmt.Errorf("%w: kraken ohlc timestamp: %v", domain.ErrUpstream, err)
	}

	fields := []int{1, 2, 3, 4, 6} // open, high, low, close, volume (5 is vwap)
	values := make([]decimal.Decimal, len(fields))
	for i, idx := range fields {
		var s string
		if err := json.Unmarshal(row[idx], &s); err != nil {
			return domain.Candle{}, fmt.Errorf("%w: kraken ohlc field %d: %v", domain.ErrUpstream, idx, err)
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("%w: kraken ohlc value %q", domain.ErrUpstream, s)
		}
		values[i] = v
	}

	return domain.Candle{
		Timestamp: sec * 1000,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// Ensure KrakenClient implements Client
var _ Client = (*KrakenClient)(nil)
