package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// API payloads carry prices and volumes as JSON numbers, not quoted
	// strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Ticker is a point-in-time market snapshot for a trading pair. Volume is
// base-asset volume. Immutable once constructed; cache entries and responses
// share the same value without copying.
type Ticker struct {
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Datetime  string          `json:"datetime"`
	Last      decimal.Decimal `json:"last"`
	Volume    decimal.Decimal `json:"volume"`
}

// NewTicker creates a ticker snapshot, deriving the ISO-8601 datetime from
// the millisecond timestamp.
func NewTicker(symbol Symbol, timestamp int64, last, volume decimal.Decimal) *Ticker {
	return &Ticker{
		Symbol:    symbol.String(),
		Timestamp: timestamp,
		Datetime:  FormatMillis(timestamp),
		Last:      last,
		Volume:    volume,
	}
}

// FormatMillis renders a millisecond epoch timestamp as ISO-8601 with
// millisecond precision and a Z suffix, e.g. "2023-11-14T22:13:20.000Z".
func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
