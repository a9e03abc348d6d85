package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/logger"
	"DebtVsDCA/internal/metrics"
	"DebtVsDCA/internal/model"
)

// TopAssetsLimit is how many assets the picker lists.
const TopAssetsLimit = 20

// MinQueryLength is the shortest query sent to a catalog search.
const MinQueryLength = 2

var ErrQueryTooShort = fmt.Errorf("search query must be at least %d characters", MinQueryLength)

var defaultAssets = []model.Asset{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
	{ID: "tether", Symbol: "USDT", Name: "Tether"},
	{ID: "binancecoin", Symbol: "BNB", Name: "BNB"},
	{ID: "solana", Symbol: "SOL", Name: "Solana"},
	{ID: "cardano", Symbol: "ADA", Name: "Cardano"},
	{ID: "ripple", Symbol: "XRP", Name: "Ripple"},
	{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin"},
	{ID: "avalanche-2", Symbol: "AVAX", Name: "Avalanche"},
	{ID: "polkadot", Symbol: "DOT", Name: "Polkadot"},
}

// DefaultAssets is the static list shown when no catalog is reachable.
func DefaultAssets() []model.Asset {
	out := make([]model.Asset, len(defaultAssets))
	copy(out, defaultAssets)
	return out
}

// FilterAssets keeps assets whose symbol or name contains filter, ignoring case.
func FilterAssets(assets []model.Asset, filter string) []model.Asset {
	filter = strings.TrimSpace(filter)
	out := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		if filter == "" ||
			strings.Contains(strings.ToUpper(a.Symbol), strings.ToUpper(filter)) ||
			strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter)) {
			out = append(out, a)
		}
	}
	return out
}

// Collector turns a Fetcher into market snapshots with return estimates.
type Collector struct {
	Fetcher            Fetcher
	FallbackMean       float64
	FallbackVolatility float64
	Metrics            *metrics.Metrics
}

// NewCollector creates a new Collector with the default fallback constants.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{
		Fetcher:            fetcher,
		FallbackMean:       calculator.FallbackMeanDailyReturn,
		FallbackVolatility: calculator.FallbackDailyVolatility,
	}
}

// Estimate derives return stats from the period's history. It never fails:
// unusable history yields the fallback constants with the reason attached.
func (c *Collector) Estimate(ctx context.Context, assetID string, period model.Period) model.ReturnStats {
	log := logger.FromContext(ctx)

	var stats model.ReturnStats
	series, err := c.Fetcher.FetchHistoricalPrices(ctx, assetID, period)
	if err != nil {
		log.Warnw("history fetch failed, using fallback returns", "asset", assetID, "period", period, "error", err)
		stats = calculator.FallbackStatsWith(c.FallbackMean, c.FallbackVolatility, err)
	} else if stats, err = calculator.EstimateReturns(series.Prices()); err != nil {
		log.Warnw("return estimation failed, using fallback returns", "asset", assetID, "period", period, "error", err)
		stats = calculator.FallbackStatsWith(c.FallbackMean, c.FallbackVolatility, err)
	}

	c.Metrics.RecordEstimate(string(stats.Source))
	return stats
}

// Snapshot fetches the current price and return stats for asset.
func (c *Collector) Snapshot(ctx context.Context, asset model.Asset, period model.Period) (*model.MarketSnapshot, error) {
	if asset.ID == "" {
		return nil, fmt.Errorf("%w: empty asset id", ErrAssetNotFound)
	}

	price, err := c.Fetcher.FetchCurrentPrice(ctx, asset.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", asset.ID, err)
	}
	asset.Price = price

	return &model.MarketSnapshot{
		Asset:        asset,
		Period:       period,
		CurrentPrice: price,
		Stats:        c.Estimate(ctx, asset.ID, period),
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// Assets lists the top assets by market cap, filtered by symbol or name.
func (c *Collector) Assets(ctx context.Context, filter string) []model.Asset {
	assets := DefaultAssets()
	if cat, ok := c.Fetcher.(Catalog); ok {
		top, err := cat.TopAssets(ctx, TopAssetsLimit)
		switch {
		case errors.Is(err, ErrNoCatalog):
		case err != nil:
			logger.FromContext(ctx).Warnw("failed to load top assets, using default list", "error", err)
		case len(top) > 0:
			assets = top
		}
	}
	return FilterAssets(assets, filter)
}

// Search returns every asset matching query. Sources without a catalog
// are searched against DefaultAssets.
func (c *Collector) Search(ctx context.Context, query string) ([]model.Asset, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	if cat, ok := c.Fetcher.(Catalog); ok {
		hits, err := cat.SearchAssets(ctx, query)
		if err == nil {
			return hits, nil
		}
		if !errors.Is(err, ErrNoCatalog) {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
	}
	return FilterAssets(defaultAssets, query), nil
}

// Lookup resolves query to the best matching asset.
func (c *Collector) Lookup(ctx context.Context, query string) (model.Asset, error) {
	hits, err := c.Search(ctx, query)
	if err != nil {
		return model.Asset{}, err
	}
	if len(hits) == 0 {
		return model.Asset{}, fmt.Errorf("%w: %q", ErrAssetNotFound, query)
	}
	return hits[0], nil
}
