package calculator

import (
	"math"
	"testing"

	"DebtVsDCA/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func scenarioParams(policy model.DebtPolicy) ProjectionParams {
	return ProjectionParams{
		Principal:         10000,
		AnnualRatePercent: 20,
		MonthlyPayment:    200,
		StartPrice:        100,
		Months:            109,
		MeanDailyReturn:   0.002,
		Policy:            policy,
	}
}

func TestProject(t *testing.T) {
	t.Run("series lengths match months", func(t *testing.T) {
		for _, policy := range []model.DebtPolicy{model.Amortizing, model.IgnorePayments} {
			res, err := Project(scenarioParams(policy))
			require.NoError(t, err)
			require.Equal(t, 109, res.Months)
			require.Len(t, res.Debt, res.Months)
			require.Len(t, res.AssetValue, res.Months)
			require.Len(t, res.Price, res.Months)
		}
	})

	t.Run("price follows exponential path", func(t *testing.T) {
		p := scenarioParams(model.IgnorePayments)
		res, err := Project(p)
		require.NoError(t, err)

		g := math.Pow(1+p.MeanDailyReturn, 30) - 1
		require.Equal(t, p.StartPrice, res.Price[0])
		for i, price := range res.Price {
			require.Equal(t, p.StartPrice*math.Pow(1+g, float64(i)), price, "month %d", i)
		}
	})

	t.Run("asset value strictly increasing with positive growth", func(t *testing.T) {
		res, err := Project(scenarioParams(model.Amortizing))
		require.NoError(t, err)
		for i := 1; i < len(res.AssetValue); i++ {
			require.Greater(t, res.AssetValue[i], res.AssetValue[i-1], "month %d", i)
			require.Greater(t, res.Price[i], res.Price[i-1], "month %d", i)
		}
	})

	t.Run("ignoring payments only accrues", func(t *testing.T) {
		p := scenarioParams(model.IgnorePayments)
		res, err := Project(p)
		require.NoError(t, err)

		rate := MonthlyRate(p.AnnualRatePercent)
		debt := p.Principal
		interest := 0.0
		for i := range res.Debt {
			interest += debt * rate
			debt = debt * (1 + rate)
			require.Equal(t, debt, res.Debt[i], "month %d", i)
			if i > 0 {
				require.Greater(t, res.Debt[i], res.Debt[i-1])
			}
		}
		require.InDelta(t, interest, res.TotalInterest, 1e-6)
		require.InDelta(t, res.Debt[len(res.Debt)-1]-p.Principal, res.TotalInterest, 1e-4)
	})

	t.Run("amortizing retires debt at horizon", func(t *testing.T) {
		res, err := Project(scenarioParams(model.Amortizing))
		require.NoError(t, err)

		require.Equal(t, 0.0, res.Debt[len(res.Debt)-1])
		require.Greater(t, res.Debt[len(res.Debt)-2], 0.0)
		for i := 1; i < len(res.Debt); i++ {
			require.Less(t, res.Debt[i], res.Debt[i-1])
		}
	})

	t.Run("units accumulate payment over price", func(t *testing.T) {
		p := ProjectionParams{
			Principal:      1000,
			MonthlyPayment: 100,
			StartPrice:     50,
			Months:         3,
			Policy:         model.IgnorePayments,
		}
		res, err := Project(p)
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff([]float64{50, 50, 50}, res.Price))
		require.Equal(t, "", cmp.Diff([]float64{100, 200, 300}, res.AssetValue))
		require.Equal(t, "", cmp.Diff([]float64{1000, 1000, 1000}, res.Debt))
		require.Equal(t, 6.0, res.Units)
		require.Equal(t, 0.0, res.TotalInterest)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := Project(scenarioParams(model.Amortizing))
		require.NoError(t, err)
		b, err := Project(scenarioParams(model.Amortizing))
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff(a, b))
		a.Debt[0] = -1
		require.NotEqual(t, a.Debt[0], b.Debt[0])
	})

	t.Run("zero months yields empty series", func(t *testing.T) {
		p := scenarioParams(model.Amortizing)
		p.Months = 0
		res, err := Project(p)
		require.NoError(t, err)
		require.Equal(t, 0, res.Months)
		require.Empty(t, res.Debt)
		require.Empty(t, res.AssetValue)
		require.Empty(t, res.Price)
	})

	t.Run("rejects negative months", func(t *testing.T) {
		p := scenarioParams(model.Amortizing)
		p.Months = -1
		_, err := Project(p)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects growth that overflows float64", func(t *testing.T) {
		p := scenarioParams(model.IgnorePayments)
		p.Months = MaxHorizonMonths
		p.MeanDailyReturn = 0.1
		res, err := Project(p)
		require.ErrorIs(t, err, ErrProjectionOverflow)
		require.Nil(t, res)
	})
}
