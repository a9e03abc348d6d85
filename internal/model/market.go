package model

import (
	"fmt"
	"time"
)

// Asset identifies a tradable asset as known to a price source.
type Asset struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price,omitempty"`
}

// PricePoint is a single historical price sample.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries holds chronological price samples for one asset.
type PriceSeries struct {
	AssetID string       `json:"asset_id"`
	Points  []PricePoint `json:"points"`
}

// Prices returns the raw price values in order.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	return prices
}

// Period is the historical lookback window used to estimate returns.
type Period string

const (
	Period1Month  Period = "30"
	Period3Months Period = "90"
	Period1Year   Period = "365"
	PeriodMax     Period = "max"
)

// DefaultPeriod is the window used when none is selected.
const DefaultPeriod = Period3Months

var periodLabels = map[Period]string{
	Period1Month:  "1 Month",
	Period3Months: "3 Months",
	Period1Year:   "1 Year",
	PeriodMax:     "All Time",
}

// ParsePeriod validates a period string. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if _, ok := periodLabels[p]; !ok {
		return "", fmt.Errorf("unknown period %q (want 30, 90, 365 or max)", s)
	}
	return p, nil
}

// Days returns the number of days of history requested for the period.
// The free crypto APIs cap history at a year, so max is served as 365 days.
func (p Period) Days() int {
	switch p {
	case Period1Month:
		return 30
	case Period1Year, PeriodMax:
		return 365
	default:
		return 90
	}
}

// IsMax reports whether the full available history was requested.
func (p Period) IsMax() bool { return p == PeriodMax }

// Label returns a human readable name.
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// MarketSnapshot is everything the simulator needs from the price sources.
type MarketSnapshot struct {
	Asset        Asset       `json:"asset"`
	Period       Period      `json:"period"`
	CurrentPrice float64     `json:"current_price"`
	Stats        ReturnStats `json:"stats"`
	FetchedAt    time.Time   `json:"fetched_at"`
}
