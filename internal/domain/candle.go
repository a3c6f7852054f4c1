package domain

import "github.com/shopspring/decimal"

// Candle is a single OHLCV bar. Timestamp is the bar open time in epoch
// milliseconds. Candles are never cached; each historical request rebuilds
// its sequence from the exchange.
type Candle struct {
	Timestamp int64           `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// CandleQuery describes a historical candle request.
type CandleQuery struct {
	// Timeframe is the bar duration, e.g. "1m", "1h", "1d". Must be one of
	// the granularities the target exchange reports as supported.
	Timeframe string

	// Since is the earliest bar open time in epoch milliseconds. Zero means
	// the exchange's default starting point.
	Since int64

	// Limit is the maximum number of candles to return.
	Limit int
}
