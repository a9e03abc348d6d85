package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"DebtVsDCA/internal/model"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestCSVFetcher(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "bitcoin.csv", "timestamp,price\n"+
		"2024-04-01,120\n"+
		"2024-01-01,100\n"+
		"2024-03-15T00:00:00Z,115\n"+
		"2024-03-31,118\n")
	writeCSV(t, dir, "empty.csv", "timestamp,price\n")
	writeCSV(t, dir, "broken.csv", "timestamp,price\nyesterday,1\n")

	f := NewCSVFetcher(dir)
	ctx := context.Background()

	t.Run("full history when max", func(t *testing.T) {
		series, err := f.FetchHistoricalPrices(ctx, "bitcoin", model.PeriodMax)
		require.NoError(t, err)
		require.Equal(t, []float64{100, 115, 118, 120}, series.Prices())
	})

	t.Run("window measured from newest row", func(t *testing.T) {
		series, err := f.FetchHistoricalPrices(ctx, "bitcoin", model.Period1Month)
		require.NoError(t, err)
		require.Equal(t, []float64{115, 118, 120}, series.Prices())
	})

	t.Run("current price is newest row", func(t *testing.T) {
		p, err := f.FetchCurrentPrice(ctx, "bitcoin")
		require.NoError(t, err)
		require.Equal(t, 120.0, p)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := f.FetchCurrentPrice(ctx, "dogecoin")
		require.ErrorIs(t, err, ErrAssetNotFound)

		_, err = f.FetchCurrentPrice(ctx, "../etc/passwd")
		require.ErrorIs(t, err, ErrAssetNotFound)

		_, err = f.FetchCurrentPrice(ctx, "empty")
		require.ErrorIs(t, err, ErrAssetNotFound)

		_, err = f.FetchHistoricalPrices(ctx, "broken", model.PeriodMax)
		require.Error(t, err)
	})
}
