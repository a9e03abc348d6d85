package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"DebtVsDCA/internal/model"
)

const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// searchPriceLimit bounds how many search hits get a price lookup.
const searchPriceLimit = 10

// CoinGeckoFetcher implements Fetcher and Catalog using the CoinGecko public API.
type CoinGeckoFetcher struct {
	api *apiClient
}

// NewCoinGeckoFetcher creates a CoinGecko client. apiKey is the optional demo key.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string, perMinute int) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGeckoFetcher{
		api: newAPIClient("coingecko", baseURL, proxyURL, perMinute, map[string]string{
			"x-cg-demo-api-key": apiKey,
		}),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

type geckoMarket struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
}

type geckoSearch struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"coins"`
}

// geckoChart holds [timestamp_ms, price] pairs.
type geckoChart struct {
	Prices [][]float64 `json:"prices"`
}

func (f *CoinGeckoFetcher) TopAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(limit))
	q.Set("page", "1")
	q.Set("sparkline", "false")

	var markets []geckoMarket
	if err := f.api.getJSON(ctx, "coins/markets", q, &markets); err != nil {
		return nil, fmt.Errorf("top assets: %w", err)
	}
	assets := make([]model.Asset, 0, len(markets))
	for _, m := range markets {
		assets = append(assets, model.Asset{
			ID:     m.ID,
			Symbol: strings.ToUpper(m.Symbol),
			Name:   m.Name,
			Price:  m.CurrentPrice,
		})
	}
	return assets, nil
}

func (f *CoinGeckoFetcher) SearchAssets(ctx context.Context, query string) ([]model.Asset, error) {
	var res geckoSearch
	if err := f.api.getJSON(ctx, "search", url.Values{"query": {query}}, &res); err != nil {
		return nil, fmt.Errorf("search assets: %w", err)
	}
	assets := make([]model.Asset, 0, len(res.Coins))
	for _, c := range res.Coins {
		assets = append(assets, model.Asset{
			ID:     c.ID,
			Symbol: strings.ToUpper(c.Symbol),
			Name:   c.Name,
		})
	}
	if len(assets) == 0 {
		return assets, nil
	}

	// One batched price call for the leading hits; a failure leaves prices at zero.
	n := min(len(assets), searchPriceLimit)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = assets[i].ID
	}
	if prices, err := f.simplePrices(ctx, ids); err == nil {
		for i := 0; i < n; i++ {
			assets[i].Price = prices[assets[i].ID]
		}
	}
	return assets, nil
}

func (f *CoinGeckoFetcher) simplePrices(ctx context.Context, ids []string) (map[string]float64, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	var res map[string]map[string]float64
	if err := f.api.getJSON(ctx, "simple/price", q, &res); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(res))
	for id, quotes := range res {
		if usd, ok := quotes["usd"]; ok {
			out[id] = usd
		}
	}
	return out, nil
}

func (f *CoinGeckoFetcher) FetchCurrentPrice(ctx context.Context, assetID string) (float64, error) {
	prices, err := f.simplePrices(ctx, []string{assetID})
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	p, ok := prices[assetID]
	if !ok || p <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrAssetNotFound, assetID)
	}
	return p, nil
}

func (f *CoinGeckoFetcher) FetchHistoricalPrices(ctx context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(period.Days()))

	var chart geckoChart
	if err := f.api.getJSON(ctx, "coins/"+url.PathEscape(assetID)+"/market_chart", q, &chart); err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch history: %w", err)
	}

	series := model.PriceSeries{AssetID: assetID, Points: make([]model.PricePoint, 0, len(chart.Prices))}
	for _, pair := range chart.Prices {
		if len(pair) < 2 {
			continue
		}
		series.Points = append(series.Points, model.PricePoint{
			Time:  time.UnixMilli(int64(pair[0])).UTC(),
			Price: pair[1],
		})
	}
	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Time.Before(series.Points[j].Time)
	})
	return series, nil
}
