package collector

import (
	"context"
	"errors"

	"DebtVsDCA/internal/model"
)

//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrUnexpectedResponse = errors.New("unexpected response from price source")
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchHistoricalPrices(ctx context.Context, assetID string, period model.Period) (model.PriceSeries, error)
	FetchCurrentPrice(ctx context.Context, assetID string) (float64, error)
	Name() string
}

// Catalog is implemented by sources that can list and search assets.
type Catalog interface {
	TopAssets(ctx context.Context, limit int) ([]model.Asset, error)
	SearchAssets(ctx context.Context, query string) ([]model.Asset, error)
}
