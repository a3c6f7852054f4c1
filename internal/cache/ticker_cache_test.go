package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishagupta145/mcp-server/internal/cache"
	"github.com/Ishagupta145/mcp-server/internal/domain"
)

func testTicker(t *testing.T, raw string, ts int64) *domain.Ticker {
	t.Helper()
	sym, err := domain.ParseSymbol(raw)
	require.NoError(t, err)
	return domain.NewTicker(sym, ts, decimal.NewFromFloat(0.065), decimal.NewFromFloat(120.5))
}

func TestTickerCache_HitWithinTTL(t *testing.T) {
	c := cache.New(time.Minute)
	want := testTicker(t, "btc-usdt", 1700000000000)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		fetches.Add(1)
		return want, nil
	}

	first, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err)

	second, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fetches.Load(), "second request within TTL must not fetch")
}

func TestTickerCache_ExpiryTriggersRefetch(t *testing.T) {
	c := cache.New(20 * time.Millisecond)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		n := fetches.Add(1)
		return testTicker(t, "btc-usdt", 1700000000000+int64(n)), nil
	}

	first, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	second, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetches.Load(), "expired entry must trigger exactly one new fetch")
	assert.NotEqual(t, first.Timestamp, second.Timestamp)
}

func TestTickerCache_SingleFlight(t *testing.T) {
	c := cache.New(time.Minute)
	want := testTicker(t, "eth-btc", 1700000000000)

	var fetches atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		fetches.Add(1)
		<-release
		return want, nil
	}

	const n = 20
	var wg sync.WaitGroup
	results := make([]*domain.Ticker, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetch(context.Background(), "binance:ETH/BTC", fetch)
		}(i)
	}

	// Let all goroutines reach the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(), "concurrent first-time requests must collapse into one fetch")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, want, results[i])
	}
}

func TestTickerCache_FailureNotCached(t *testing.T) {
	c := cache.New(time.Minute)
	want := testTicker(t, "btc-usdt", 1700000000000)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		if fetches.Add(1) == 1 {
			return nil, errors.New("upstream down")
		}
		return want, nil
	}

	_, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.Error(t, err)

	got, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err, "a failed fetch must not be cached; the next request retries")
	assert.Same(t, want, got)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestTickerCache_FailureKeepsStaleEntry(t *testing.T) {
	c := cache.New(20 * time.Millisecond)

	stale := testTicker(t, "btc-usdt", 1700000000000)
	calls := 0
	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		calls++
		if calls == 1 {
			return stale, nil
		}
		return nil, errors.New("upstream down")
	}

	_, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.Error(t, err)

	// The stale entry is superseded, not deleted: it stays counted until a
	// successful refresh replaces it.
	assert.Equal(t, 1, c.Len())
}

func TestTickerCache_DistinctKeysFetchIndependently(t *testing.T) {
	c := cache.New(time.Minute)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		fetches.Add(1)
		return testTicker(t, "btc-usdt", 1700000000000), nil
	}

	_, err := c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch)
	require.NoError(t, err)

	_, err = c.GetOrFetch(context.Background(), "kraken:BTC/USDT", fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetches.Load())
}

func TestTickerCache_CanceledWaiterReturnsContextError(t *testing.T) {
	c := cache.New(time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	fetch := func(ctx context.Context) (*domain.Ticker, error) {
		close(started)
		<-release
		return testTicker(t, "btc-usdt", 1700000000000), nil
	}

	go c.GetOrFetch(context.Background(), "binance:BTC/USDT", fetch) //nolint:errcheck

	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetOrFetch(ctx, "binance:BTC/USDT", func(ctx context.Context) (*domain.Ticker, error) {
		t.Fatal("joining waiter must not start its own fetch")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKey(t *testing.T) {
	sym, err := domain.ParseSymbol("eth-btc")
	require.NoError(t, err)
	assert.Equal(t, "binance:ETH/BTC", cache.Key("binance", sym))
}
