package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"DebtVsDCA/internal/metrics"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/pricecache"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// countingFetcher wraps MockFetcher and counts upstream calls.
type countingFetcher struct {
	MockFetcher
	history, price int
}

func (c *countingFetcher) FetchHistoricalPrices(ctx context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	c.history++
	return c.MockFetcher.FetchHistoricalPrices(ctx, assetID, period)
}

func (c *countingFetcher) FetchCurrentPrice(ctx context.Context, assetID string) (float64, error) {
	c.price++
	return c.MockFetcher.FetchCurrentPrice(ctx, assetID)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk on fire")
}
func (brokenStore) Close() error { return nil }

func TestCachedFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("second call is served from cache", func(t *testing.T) {
		upstream := &countingFetcher{MockFetcher: MockFetcher{Price: 100, History: []float64{100, 110, 99}}}
		m := metrics.New()
		f := NewCachedFetcher(upstream, pricecache.NewMemoryStore(), time.Minute, m)

		first, err := f.FetchHistoricalPrices(ctx, "bitcoin", model.Period3Months)
		require.NoError(t, err)
		first.Points[0].Price = -1 // must not leak into the cache

		second, err := f.FetchHistoricalPrices(ctx, "bitcoin", model.Period3Months)
		require.NoError(t, err)
		require.Equal(t, []float64{100, 110, 99}, second.Prices())
		require.Equal(t, 1, upstream.history)

		_, err = f.FetchHistoricalPrices(ctx, "bitcoin", model.Period1Year)
		require.NoError(t, err)
		require.Equal(t, 2, upstream.history, "period is part of the key")

		for i := 0; i < 3; i++ {
			p, err := f.FetchCurrentPrice(ctx, "bitcoin")
			require.NoError(t, err)
			require.Equal(t, 100.0, p)
		}
		require.Equal(t, 1, upstream.price)

		expected := `
# HELP debtvsdca_cache_lookups_total Price cache lookups by result
# TYPE debtvsdca_cache_lookups_total counter
debtvsdca_cache_lookups_total{result="hit"} 3
debtvsdca_cache_lookups_total{result="miss"} 3
`
		require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "debtvsdca_cache_lookups_total"))
	})

	t.Run("store errors degrade to direct fetch", func(t *testing.T) {
		upstream := &countingFetcher{MockFetcher: MockFetcher{Price: 42}}
		f := NewCachedFetcher(upstream, brokenStore{}, time.Minute, nil)

		for i := 0; i < 2; i++ {
			p, err := f.FetchCurrentPrice(ctx, "bitcoin")
			require.NoError(t, err)
			require.Equal(t, 42.0, p)
		}
		require.Equal(t, 2, upstream.price)
	})

	t.Run("catalog passthrough", func(t *testing.T) {
		f := NewCachedFetcher(&MockFetcher{Price: 1}, pricecache.NewMemoryStore(), 0, nil)
		_, err := f.TopAssets(ctx, 20)
		require.ErrorIs(t, err, ErrNoCatalog)
		_, err = f.SearchAssets(ctx, "btc")
		require.ErrorIs(t, err, ErrNoCatalog)
	})
}
