package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"DebtVsDCA/internal/model"

	"github.com/gocarina/gocsv"
)

// CSVFetcher reads price history from <Dir>/<assetID>.csv files with a
// "timestamp,price" header. Timestamps are RFC3339 or YYYY-MM-DD.
type CSVFetcher struct {
	Dir string
}

func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

type csvRow struct {
	Timestamp string  `csv:"timestamp"`
	Price     float64 `csv:"price"`
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (f *CSVFetcher) load(assetID string) ([]model.PricePoint, error) {
	if assetID == "" || strings.ContainsAny(assetID, `/\`) || strings.Contains(assetID, "..") {
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, assetID)
	}
	file, err := os.Open(filepath.Join(f.Dir, assetID+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, assetID)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows := []csvRow{}
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("parse %s.csv: %w", assetID, err)
	}

	points := make([]model.PricePoint, 0, len(rows))
	for i, row := range rows {
		ts, err := parseCSVTime(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse %s.csv row %d: %w", assetID, i+1, err)
		}
		points = append(points, model.PricePoint{Time: ts.UTC(), Price: row.Price})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// FetchHistoricalPrices returns the trailing period.Days() days of the file,
// measured back from its newest row. Max returns the whole file.
func (f *CSVFetcher) FetchHistoricalPrices(_ context.Context, assetID string, period model.Period) (model.PriceSeries, error) {
	points, err := f.load(assetID)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch history: %w", err)
	}
	if !period.IsMax() && len(points) > 0 {
		cutoff := points[len(points)-1].Time.AddDate(0, 0, -period.Days())
		i := sort.Search(len(points), func(i int) bool { return !points[i].Time.Before(cutoff) })
		points = points[i:]
	}
	return model.PriceSeries{AssetID: assetID, Points: points}, nil
}

func (f *CSVFetcher) FetchCurrentPrice(_ context.Context, assetID string) (float64, error) {
	points, err := f.load(assetID)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: %s.csv is empty", ErrAssetNotFound, assetID)
	}
	return points[len(points)-1].Price, nil
}
