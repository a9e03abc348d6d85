package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"DebtVsDCA/internal/model"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// yahooHistoryStart is where a "max" lookback begins.
var yahooHistoryStart = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

// YahooFetcher implements Fetcher using Yahoo Finance daily charts.
type YahooFetcher struct {
	SymbolMap map[string]string // maps asset id to Yahoo ticker
	now       func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher() *YahooFetcher {
	return &YahooFetcher{
		SymbolMap: map[string]string{
			"bitcoin":     "BTC-USD",
			"ethereum":    "ETH-USD",
			"tether":      "USDT-USD",
			"binancecoin": "BNB-USD",
			"solana":      "SOL-USD",
			"cardano":     "ADA-USD",
			"ripple":      "XRP-USD",
			"dogecoin":    "DOGE-USD",
			"avalanche-2": "AVAX-USD",
			"polkadot":    "DOT-USD",
			"sp500":       "^GSPC",
		},
		now: time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(assetID string) string {
	if mapped, ok := f.SymbolMap[assetID]; ok {
		return mapped
	}
	return assetID
}

func (f *YahooFetcher) fetchChart(ctx context.Context, assetID string, start, end time.Time) ([]model.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol := f.yahooSymbol(assetID)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	points := []model.PricePoint{}
	for iter.Next() {
		bar := iter.Bar()
		px := bar.AdjClose
		if px.IsZero() {
			px = bar.Close
		}
		if px.IsZero() {
			continue // null bars on holidays
		}
		points = append(points, model.PricePoint{
			Time:  time.Unix(int64(bar.Timestamp), 0).UTC(),
			Price: px.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

func (f *YahooFetcher) FetchHistoricalPrices(ctx context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	end := f.now().UTC()
	start := end.AddDate(0, 0, -period.Days())
	if period.IsMax() {
		start = yahooHistoryStart
	}
	points, err := f.fetchChart(ctx, assetID, start, end)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch history: %w", err)
	}
	return model.PriceSeries{AssetID: assetID, Points: points}, nil
}

func (f *YahooFetcher) FetchCurrentPrice(ctx context.Context, assetID string) (float64, error) {
	end := f.now().UTC()
	points, err := f.fetchChart(ctx, assetID, end.AddDate(0, 0, -7), end)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: yahoo has no price data for %s", ErrAssetNotFound, assetID)
	}
	return points[len(points)-1].Price, nil
}
