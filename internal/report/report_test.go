package report

import (
	"math"
	"strings"
	"testing"

	"DebtVsDCA/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func crossedOutcome() *model.Outcome {
	return &model.Outcome{
		Policy: model.Amortizing,
		Inputs: model.SimulationInputs{DebtPrincipal: 10000, AnnualRatePercent: 20, MonthlyPayment: 200, StartPrice: 100},
		Stats:  model.ReturnStats{MeanDailyReturn: 0.002, Source: model.SourceHistory},
		Result: model.SimulationResult{Months: 109},
		Analysis: model.CrossoverAnalysis{
			Crossed:        true,
			CrossoverMonth: 23,
		},
		Insights: model.Insights{
			TotalInterest:          1234.5678,
			TotalInvested:          21800,
			FinalUnits:             91.234567,
			FinalValue:             57000.125,
			FinalDebt:              0,
			ProjectedFinalPrice:    624.7,
			AverageBuyPrice:        238.94,
			UnitsForgoneToInterest: 12.345678,
			ProfitIfSold:           57000.125,
			ProjectedAnnualReturn:  1.0702,
		},
	}
}

func lostOutcome() *model.Outcome {
	return &model.Outcome{
		Policy: model.IgnorePayments,
		Inputs: model.SimulationInputs{DebtPrincipal: 100, MonthlyPayment: 10, StartPrice: 10},
		Stats:  model.ReturnStats{MeanDailyReturn: 0.002, Source: model.SourceFallback},
		Result: model.SimulationResult{Months: 3},
		Analysis: model.CrossoverAnalysis{
			BreakEvenPrice:          ptr(110.0 / 15),
			BreakEvenMonthlyPayment: ptr(110.0 / 3),
		},
		Insights: model.Insights{
			FinalUnits:   15,
			FinalValue:   150,
			FinalDebt:    110,
			ProfitIfSold: -40.004,
		},
	}
}

func TestMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1234.567, "$1,234.57"},
		{0, "$0.00"},
		{0.004, "$0.00"},
		{-5, "-$5.00"},
		{1000000, "$1,000,000.00"},
		{1e20, "$100,000,000,000,000,000,000.00"},
		{-1e20, "-$100,000,000,000,000,000,000.00"},
		{1e200, "$100" + strings.Repeat(",000", 66) + ".00"},
		{math.Inf(1), "n/a"},
		{math.NaN(), "n/a"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Money(tc.in), "Money(%v)", tc.in)
	}
}

func TestNewSummary(t *testing.T) {
	t.Run("crossed", func(t *testing.T) {
		s := NewSummary(crossedOutcome())
		require.Equal(t, "1234.57", s.TotalInterest.StringFixed(2))
		require.Equal(t, "91.2346", s.FinalUnits.StringFixed(4))
		require.Equal(t, "12.3457", s.UnitsForgoneToInterest.StringFixed(4))
		require.Equal(t, "0.2000", s.MeanDailyReturnPct.StringFixed(4))
		require.Equal(t, "107.0200", s.ProjectedAnnualPct.StringFixed(4))
		require.NotNil(t, s.CrossoverMonth)
		require.Equal(t, 23, *s.CrossoverMonth)
		require.Nil(t, s.BreakEvenPrice)
		require.Empty(t, s.FallbackReason)
	})

	t.Run("not crossed", func(t *testing.T) {
		s := NewSummary(lostOutcome())
		require.Nil(t, s.CrossoverMonth)
		require.True(t, decimal.RequireFromString("7.33").Equal(*s.BreakEvenPrice))
		require.True(t, decimal.RequireFromString("36.67").Equal(*s.BreakEvenMonthlyPayment))
		require.Equal(t, "historical data unavailable", s.FallbackReason)
	})

	t.Run("non-finite values become zero", func(t *testing.T) {
		o := crossedOutcome()
		o.Insights.FinalValue = math.Inf(1)
		require.True(t, NewSummary(o).FinalValue.IsZero())
	})
}

func TestMarkdown(t *testing.T) {
	btc := model.Asset{ID: "bitcoin", Symbol: "BTC"}

	t.Run("crossed", func(t *testing.T) {
		md := Markdown(crossedOutcome(), btc, model.Period1Year)
		require.Contains(t, md, "**Debt:** Paid off after 109 m.")
		require.Contains(t, md, "~91.2346 BTC ≈ $57,000.13")
		require.Contains(t, md, "Based on 1 Year historical avg return of 0.200% daily")
		require.Contains(t, md, "Your BTC stack overtakes debt at month **23**.")
		require.Contains(t, md, "You burn ~$1,234.57 in interest, enough for ~12.3457 BTC at today's price.")
		require.Contains(t, md, "If sold at month 109, you profit ~$57,000.13")
		require.NotContains(t, md, "break even")
		require.NotContains(t, md, "fallback")
	})

	t.Run("never crosses", func(t *testing.T) {
		md := Markdown(lostOutcome(), model.Asset{}, model.Period3Months)
		require.Contains(t, md, "Unpaid debt balloons to ~$110.00 after 3 m.")
		require.Contains(t, md, "Your TOKENS stack never overtakes debt within 3 m.")
		require.Contains(t, md, "you lose ~$40.00")
		require.Contains(t, md, "TOKENS must hit ~$7.33 by month 3.")
		require.Contains(t, md, "Or DCA at least $36.67/mo for this to break even.")
		require.Contains(t, md, "Using fallback return estimate (historical data unavailable)")
	})

	t.Run("zero months", func(t *testing.T) {
		md := Markdown(&model.Outcome{}, btc, model.Period1Month)
		require.Contains(t, md, "Nothing to project")
	})
}

func TestRender(t *testing.T) {
	out, err := Render(Markdown(crossedOutcome(), model.Asset{Symbol: "BTC"}, model.Period1Year), "notty", 120)
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "stack overtakes debt at month"), out)
	require.True(t, strings.Contains(out, "Results"), out)
}
