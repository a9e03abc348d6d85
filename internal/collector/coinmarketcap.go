package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"DebtVsDCA/internal/model"
)

const CoinMarketCapBaseURL = "https://pro-api.coinmarketcap.com/v1"

// CoinMarketCapFetcher implements Fetcher and Catalog using the CoinMarketCap
// Pro API. Assets are addressed by their CMC slug (e.g. "bitcoin").
type CoinMarketCapFetcher struct {
	api *apiClient
}

// NewCoinMarketCapFetcher creates a CMC client. apiKey is required.
func NewCoinMarketCapFetcher(baseURL, apiKey, proxyURL string, perMinute int) (*CoinMarketCapFetcher, error) {
	if apiKey == "" {
		return nil, errors.New("coinmarketcap: api key not configured, set CMC_API_KEY")
	}
	if baseURL == "" {
		baseURL = CoinMarketCapBaseURL
	}
	return &CoinMarketCapFetcher{
		api: newAPIClient("coinmarketcap", baseURL, proxyURL, perMinute, map[string]string{
			"X-CMC_PRO_API_KEY": apiKey,
		}),
	}, nil
}

func (f *CoinMarketCapFetcher) Name() string { return "coinmarketcap" }

type cmcStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (s cmcStatus) err() error {
	if s.ErrorCode != 0 {
		return fmt.Errorf("coinmarketcap api error %d: %s", s.ErrorCode, s.ErrorMessage)
	}
	return nil
}

type cmcQuote struct {
	USD struct {
		Price     float64 `json:"price"`
		Timestamp string  `json:"timestamp"`
	} `json:"USD"`
}

type cmcCoin struct {
	ID     int      `json:"id"`
	Slug   string   `json:"slug"`
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Quote  cmcQuote `json:"quote"`
}

func (c cmcCoin) asset() model.Asset {
	return model.Asset{ID: c.Slug, Symbol: strings.ToUpper(c.Symbol), Name: c.Name, Price: c.Quote.USD.Price}
}

func (f *CoinMarketCapFetcher) TopAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	q := url.Values{}
	q.Set("start", "1")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("convert", "USD")

	var res struct {
		Status cmcStatus `json:"status"`
		Data   []cmcCoin `json:"data"`
	}
	if err := f.api.getJSON(ctx, "cryptocurrency/listings/latest", q, &res); err != nil {
		return nil, fmt.Errorf("top assets: %w", err)
	}
	if err := res.Status.err(); err != nil {
		return nil, fmt.Errorf("top assets: %w", err)
	}
	assets := make([]model.Asset, 0, len(res.Data))
	for _, c := range res.Data {
		assets = append(assets, c.asset())
	}
	return assets, nil
}

// SearchAssets has no server-side search on CMC; the listing is filtered locally.
func (f *CoinMarketCapFetcher) SearchAssets(ctx context.Context, query string) ([]model.Asset, error) {
	top, err := f.TopAssets(ctx, 200)
	if err != nil {
		return nil, err
	}
	return FilterAssets(top, query), nil
}

func (f *CoinMarketCapFetcher) FetchCurrentPrice(ctx context.Context, assetID string) (float64, error) {
	var res struct {
		Status cmcStatus          `json:"status"`
		Data   map[string]cmcCoin `json:"data"`
	}
	q := url.Values{"slug": {assetID}, "convert": {"USD"}}
	if err := f.api.getJSON(ctx, "cryptocurrency/quotes/latest", q, &res); err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	if err := res.Status.err(); err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	for _, c := range res.Data {
		if c.Slug == assetID && c.Quote.USD.Price > 0 {
			return c.Quote.USD.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrAssetNotFound, assetID)
}

func (f *CoinMarketCapFetcher) FetchHistoricalPrices(ctx context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -period.Days())

	var res struct {
		Status cmcStatus `json:"status"`
		Data   struct {
			Quotes []struct {
				Timestamp string   `json:"timestamp"`
				Quote     cmcQuote `json:"quote"`
			} `json:"quotes"`
		} `json:"data"`
	}
	q := url.Values{}
	q.Set("slug", assetID)
	q.Set("time_start", start.Format(time.RFC3339))
	q.Set("time_end", end.Format(time.RFC3339))
	q.Set("interval", "daily")
	q.Set("convert", "USD")
	if err := f.api.getJSON(ctx, "cryptocurrency/quotes/historical", q, &res); err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch history: %w", err)
	}
	if err := res.Status.err(); err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch history: %w", err)
	}

	series := model.PriceSeries{AssetID: assetID, Points: make([]model.PricePoint, 0, len(res.Data.Quotes))}
	for _, row := range res.Data.Quotes {
		ts, err := time.Parse(time.RFC3339, row.Timestamp)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("%w: bad timestamp %q", ErrUnexpectedResponse, row.Timestamp)
		}
		series.Points = append(series.Points, model.PricePoint{Time: ts, Price: row.Quote.USD.Price})
	}
	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Time.Before(series.Points[j].Time)
	})
	return series, nil
}
