package collector

import (
	"fmt"
	"strings"
)

// SourceOptions selects and configures a price source.
type SourceOptions struct {
	Provider          string // coingecko, coinmarketcap, yahoo, csv, mock
	BaseURL           string
	APIKey            string
	ProxyURL          string
	CSVDir            string
	RequestsPerMinute int
	MockPrice         float64
}

// NewFetcher builds the Fetcher named by opts.Provider.
func NewFetcher(opts SourceOptions) (Fetcher, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "coingecko":
		return NewCoinGeckoFetcher(opts.BaseURL, opts.APIKey, opts.ProxyURL, opts.RequestsPerMinute), nil
	case "coinmarketcap", "cmc":
		return NewCoinMarketCapFetcher(opts.BaseURL, opts.APIKey, opts.ProxyURL, opts.RequestsPerMinute)
	case "yahoo":
		return NewYahooFetcher(), nil
	case "csv":
		if opts.CSVDir == "" {
			return nil, fmt.Errorf("csv provider requires a directory")
		}
		return NewCSVFetcher(opts.CSVDir), nil
	case "mock":
		price := opts.MockPrice
		if price <= 0 {
			price = 100
		}
		return &MockFetcher{Price: price, DailyGain: 0.002}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", opts.Provider)
	}
}
