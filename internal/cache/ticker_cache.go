package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Ishagupta145/mcp-server/internal/domain"
	"github.com/Ishagupta145/mcp-server/internal/ports"
)

const (
	// DefaultTTL matches the service default of one minute for ticker data.
	DefaultTTL = 60 * time.Second

	// DefaultMaxEntries is a soft cap on the number of cached keys. When
	// exceeded on insert, expired entries are swept; live entries are never
	// evicted early.
	DefaultMaxEntries = 1024
)

// Key builds the cache key for an (exchange, normalized symbol) pair.
func Key(exchangeID string, symbol domain.Symbol) string {
	return exchangeID + ":" + symbol.String()
}

type entry struct {
	ticker    *domain.Ticker
	fetchedAt time.Time
}

// TickerCache is an in-memory TTL cache for ticker snapshots. Reads for
// distinct keys proceed concurrently; refills for the same key are coalesced
// so a wave of concurrent callers triggers at most one upstream fetch.
// Failed fetches are never stored.
type TickerCache struct {
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry

	group singleflight.Group
}

// Option configures the cache
type Option func(*TickerCache)

// WithMaxEntries sets the soft entry cap
func WithMaxEntries(n int) Option {
	return func(c *TickerCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *TickerCache) {
		c.logger = logger.With("component", "ticker_cache")
	}
}

// New creates a ticker cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *TickerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &TickerCache{
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		logger:     slog.Default().With("component", "ticker_cache"),
		entries:    make(map[string]entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetOrFetch returns the cached ticker for key if its age is below the TTL.
// Otherwise it invokes fetch, shared across all concurrent callers for the
// same key, stores the result on success and returns it. On failure nothing
// is stored: a previous (now stale) entry stays in place for the next
// attempt, and the error is delivered to every waiter.
func (c *TickerCache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*domain.Ticker, error)) (*domain.Ticker, error) {
	if ticker, ok := c.lookup(key); ok {
		return ticker, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Another caller may have refreshed the entry between our miss and
		// joining the flight.
		if ticker, ok := c.lookup(key); ok {
			return ticker, nil
		}

		ticker, err := fetch(ctx)
		if err != nil {
			c.logger.Debug("fetch failed, entry not cached", "key", key, "error", err)
			return nil, err
		}

		c.store(key, ticker)
		return ticker, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Ticker), nil
	case <-ctx.Done():
		// This caller gives up waiting; the in-flight fetch keeps running on
		// the initiating caller's context and other waiters still get its
		// result.
		return nil, ctx.Err()
	}
}

// Len returns the number of entries currently held, live or stale.
func (c *TickerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TickerCache) lookup(key string) (*domain.Ticker, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.ticker, true
}

func (c *TickerCache) store(key string, ticker *domain.Ticker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.sweepLocked()
	}

	c.entries[key] = entry{ticker: ticker, fetchedAt: time.Now()}
}

// sweepLocked drops expired entries. Callers must hold the write lock.
func (c *TickerCache) sweepLocked() {
	for key, e := range c.entries {
		if time.Since(e.fetchedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}

// Ensure TickerCache implements ports.TickerCache
var _ ports.TickerCache = (*TickerCache)(nil)
