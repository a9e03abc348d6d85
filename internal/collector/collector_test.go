package collector

import (
	"context"
	"errors"
	"testing"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/collector/mocks"
	"DebtVsDCA/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type catalogFetcher struct {
	*mocks.MockFetcher
	*mocks.MockCatalog
}

func series(prices ...float64) model.PriceSeries {
	s := model.PriceSeries{AssetID: "bitcoin"}
	for _, p := range prices {
		s.Points = append(s.Points, model.PricePoint{Price: p})
	}
	return s
}

func TestCollectorSnapshot(t *testing.T) {
	ctx := context.Background()
	asset := model.Asset{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"}

	t.Run("history estimate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mocks.NewMockFetcher(ctrl)
		f.EXPECT().FetchCurrentPrice(gomock.Any(), "bitcoin").Return(64000.0, nil)
		f.EXPECT().FetchHistoricalPrices(gomock.Any(), "bitcoin", model.Period1Year).Return(series(100, 110, 99), nil)

		snap, err := NewCollector(f).Snapshot(ctx, asset, model.Period1Year)
		require.NoError(t, err)
		require.Equal(t, 64000.0, snap.CurrentPrice)
		require.Equal(t, 64000.0, snap.Asset.Price)
		require.Equal(t, "BTC", snap.Asset.Symbol)
		require.Equal(t, model.SourceHistory, snap.Stats.Source)
		require.InDelta(t, 0.0, snap.Stats.MeanDailyReturn, 1e-12)
		require.InDelta(t, 0.1, snap.Stats.DailyVolatility, 1e-12)
		require.Equal(t, 2, snap.Stats.Samples)
	})

	t.Run("fetch failure falls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mocks.NewMockFetcher(ctrl)
		f.EXPECT().FetchCurrentPrice(gomock.Any(), "bitcoin").Return(64000.0, nil)
		f.EXPECT().FetchHistoricalPrices(gomock.Any(), "bitcoin", model.Period3Months).
			Return(model.PriceSeries{}, errors.New("status 429"))

		c := NewCollector(f)
		c.FallbackMean = 0.001
		snap, err := c.Snapshot(ctx, asset, model.Period3Months)
		require.NoError(t, err)
		require.True(t, snap.Stats.IsFallback())
		require.Equal(t, 0.001, snap.Stats.MeanDailyReturn)
		require.Equal(t, calculator.FallbackDailyVolatility, snap.Stats.DailyVolatility)
		require.Contains(t, snap.Stats.FallbackReason, "status 429")
	})

	t.Run("bad history falls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mocks.NewMockFetcher(ctrl)
		f.EXPECT().FetchCurrentPrice(gomock.Any(), "bitcoin").Return(64000.0, nil)
		f.EXPECT().FetchHistoricalPrices(gomock.Any(), "bitcoin", model.Period1Month).Return(series(100, 0, 99), nil)

		snap, err := NewCollector(f).Snapshot(ctx, asset, model.Period1Month)
		require.NoError(t, err)
		require.Equal(t, calculator.FallbackStats(calculator.ErrInvalidPriceData).Source, snap.Stats.Source)
		require.Equal(t, calculator.FallbackMeanDailyReturn, snap.Stats.MeanDailyReturn)
	})

	t.Run("current price failure is an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mocks.NewMockFetcher(ctrl)
		f.EXPECT().FetchCurrentPrice(gomock.Any(), "bitcoin").Return(0.0, ErrAssetNotFound)

		_, err := NewCollector(f).Snapshot(ctx, asset, model.Period1Month)
		require.ErrorIs(t, err, ErrAssetNotFound)
	})

	t.Run("empty asset id", func(t *testing.T) {
		_, err := NewCollector(&MockFetcher{}).Snapshot(ctx, model.Asset{}, model.Period1Month)
		require.ErrorIs(t, err, ErrAssetNotFound)
	})
}

func TestCollectorAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("no catalog uses default list", func(t *testing.T) {
		c := NewCollector(&MockFetcher{})
		require.Len(t, c.Assets(ctx, ""), 10)
		require.Equal(t, []model.Asset{{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin"}}, c.Assets(ctx, "doge"))
	})

	t.Run("catalog error uses default list", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cat := mocks.NewMockCatalog(ctrl)
		cat.EXPECT().TopAssets(gomock.Any(), TopAssetsLimit).Return(nil, errors.New("timeout"))

		c := NewCollector(catalogFetcher{mocks.NewMockFetcher(ctrl), cat})
		require.Equal(t, DefaultAssets(), c.Assets(ctx, ""))
	})

	t.Run("catalog top assets filtered", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cat := mocks.NewMockCatalog(ctrl)
		cat.EXPECT().TopAssets(gomock.Any(), TopAssetsLimit).Return([]model.Asset{
			{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
			{ID: "wrapped-bitcoin", Symbol: "WBTC", Name: "Wrapped Bitcoin"},
			{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
		}, nil)

		c := NewCollector(catalogFetcher{mocks.NewMockFetcher(ctrl), cat})
		got := c.Assets(ctx, "btc")
		require.Len(t, got, 2)
		require.Equal(t, "wrapped-bitcoin", got[1].ID)
	})
}

func TestCollectorLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("short query", func(t *testing.T) {
		_, err := NewCollector(&MockFetcher{}).Lookup(ctx, " b ")
		require.ErrorIs(t, err, ErrQueryTooShort)
	})

	t.Run("catalog first hit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cat := mocks.NewMockCatalog(ctrl)
		cat.EXPECT().SearchAssets(gomock.Any(), "sol").Return([]model.Asset{
			{ID: "solana", Symbol: "SOL", Name: "Solana"},
			{ID: "solar", Symbol: "SXP", Name: "Solar"},
		}, nil)

		a, err := NewCollector(catalogFetcher{mocks.NewMockFetcher(ctrl), cat}).Lookup(ctx, "sol")
		require.NoError(t, err)
		require.Equal(t, "solana", a.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := NewCollector(&MockFetcher{}).Lookup(ctx, "zzzz")
		require.ErrorIs(t, err, ErrAssetNotFound)
	})

	t.Run("offline search", func(t *testing.T) {
		a, err := NewCollector(&MockFetcher{}).Lookup(ctx, "polka")
		require.NoError(t, err)
		require.Equal(t, "polkadot", a.ID)
	})
}
