package collector

import (
	"context"
	"time"

	"DebtVsDCA/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyGain float64 // per-day drift of generated history
	History   []float64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistoricalPrices(_ context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	prices := m.History
	if prices == nil {
		prices = generateMockPrices(m.Price, m.DailyGain, period.Days())
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = model.PricePoint{Time: now.AddDate(0, 0, -(len(prices) - 1 - i)), Price: p}
	}
	return model.PriceSeries{AssetID: assetID, Points: points}, nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	return m.Price, nil
}

// generateMockPrices produces count+1 prices ending at basePrice and growing
// by gain per step.
func generateMockPrices(basePrice, gain float64, count int) []float64 {
	prices := make([]float64, count+1)
	prices[count] = basePrice
	for i := count - 1; i >= 0; i-- {
		prices[i] = prices[i+1] / (1 + gain)
	}
	return prices
}
