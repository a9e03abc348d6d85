package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"DebtVsDCA/internal/logger"
	"DebtVsDCA/internal/metrics"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/pricecache"
)

// DefaultCacheTTL matches how often the free APIs refresh their data.
const DefaultCacheTTL = 5 * time.Minute

// ErrNoCatalog is returned by CachedFetcher when the wrapped source cannot list assets.
var ErrNoCatalog = errors.New("price source has no asset catalog")

// CachedFetcher wraps a Fetcher and keeps its responses in a pricecache.Store.
// Values round-trip through JSON so every caller gets its own copy.
type CachedFetcher struct {
	next    Fetcher
	store   pricecache.Store
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewCachedFetcher(next Fetcher, store pricecache.Store, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{next: next, store: store, ttl: ttl, metrics: m}
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

func (c *CachedFetcher) key(parts ...string) string {
	return c.next.Name() + ":" + strings.Join(parts, ":")
}

func cached[T any](ctx context.Context, c *CachedFetcher, kind, key string, load func() (T, error)) (T, error) {
	log := logger.FromContext(ctx)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		log.Warnw("price cache read failed, fetching directly", "key", key, "error", err)
	case ok:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.metrics.RecordCacheLookup(true)
			return v, nil
		}
		log.Warnw("discarding undecodable cache entry", "key", key)
	}
	c.metrics.RecordCacheLookup(false)

	v, err := load()
	c.metrics.RecordFetch(c.next.Name(), kind, err)
	if err != nil {
		return v, err
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			log.Warnw("price cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}

func (c *CachedFetcher) FetchHistoricalPrices(ctx context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	return cached(ctx, c, "history", c.key("history", assetID, string(period)), func() (model.PriceSeries, error) {
		return c.next.FetchHistoricalPrices(ctx, assetID, period)
	})
}

func (c *CachedFetcher) FetchCurrentPrice(ctx context.Context, assetID string) (float64, error) {
	return cached(ctx, c, "price", c.key("price", assetID), func() (float64, error) {
		return c.next.FetchCurrentPrice(ctx, assetID)
	})
}

func (c *CachedFetcher) TopAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	cat, ok := c.next.(Catalog)
	if !ok {
		return nil, ErrNoCatalog
	}
	return cached(ctx, c, "top", c.key("top", fmt.Sprint(limit)), func() ([]model.Asset, error) {
		return cat.TopAssets(ctx, limit)
	})
}

func (c *CachedFetcher) SearchAssets(ctx context.Context, query string) ([]model.Asset, error) {
	cat, ok := c.next.(Catalog)
	if !ok {
		return nil, ErrNoCatalog
	}
	q := strings.ToLower(strings.TrimSpace(query))
	return cached(ctx, c, "search", c.key("search", q), func() ([]model.Asset, error) {
		return cat.SearchAssets(ctx, q)
	})
}
