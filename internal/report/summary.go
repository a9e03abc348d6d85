package report

import (
	"math"
	"strings"

	"DebtVsDCA/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	currencyPlaces = 2
	unitPlaces     = 4
	percentPlaces  = 4
)

// Summary is an Outcome rounded for display. Rounding happens here only;
// the simulation itself keeps full precision.
type Summary struct {
	RunID                   uuid.UUID        `json:"run_id"`
	Policy                  model.DebtPolicy `json:"policy"`
	Months                  int              `json:"months"`
	StartPrice              decimal.Decimal  `json:"start_price"`
	ProjectedFinalPrice     decimal.Decimal  `json:"projected_final_price"`
	FinalDebt               decimal.Decimal  `json:"final_debt"`
	FinalValue              decimal.Decimal  `json:"final_value"`
	FinalUnits              decimal.Decimal  `json:"final_units"`
	TotalInterest           decimal.Decimal  `json:"total_interest"`
	TotalInvested           decimal.Decimal  `json:"total_invested"`
	AverageBuyPrice         decimal.Decimal  `json:"average_buy_price"`
	UnitsForgoneToInterest  decimal.Decimal  `json:"units_forgone_to_interest"`
	ProfitIfSold            decimal.Decimal  `json:"profit_if_sold"`
	MeanDailyReturnPct      decimal.Decimal  `json:"mean_daily_return_pct"`
	ProjectedAnnualPct      decimal.Decimal  `json:"projected_annual_return_pct"`
	CrossoverMonth          *int             `json:"crossover_month,omitempty"`
	BreakEvenPrice          *decimal.Decimal `json:"break_even_price,omitempty"`
	BreakEvenMonthlyPayment *decimal.Decimal `json:"break_even_monthly_payment,omitempty"`
	FallbackReason          string           `json:"fallback_reason,omitempty"`
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// round converts v to a decimal with the given places. Non-finite values
// (a runaway projection) become zero because decimal cannot hold them.
func round(v float64, places int32) decimal.Decimal {
	if !finite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

func roundPtr(v *float64, places int32) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := round(*v, places)
	return &d
}

// NewSummary rounds currency to 2 places and units and percentages to 4.
func NewSummary(o *model.Outcome) Summary {
	ins := o.Insights
	s := Summary{
		RunID:                   o.RunID,
		Policy:                  o.Policy,
		Months:                  o.Result.Months,
		StartPrice:              round(o.Inputs.StartPrice, currencyPlaces),
		ProjectedFinalPrice:     round(ins.ProjectedFinalPrice, currencyPlaces),
		FinalDebt:               round(ins.FinalDebt, currencyPlaces),
		FinalValue:              round(ins.FinalValue, currencyPlaces),
		FinalUnits:              round(ins.FinalUnits, unitPlaces),
		TotalInterest:           round(ins.TotalInterest, currencyPlaces),
		TotalInvested:           round(ins.TotalInvested, currencyPlaces),
		AverageBuyPrice:         round(ins.AverageBuyPrice, currencyPlaces),
		UnitsForgoneToInterest:  round(ins.UnitsForgoneToInterest, unitPlaces),
		ProfitIfSold:            round(ins.ProfitIfSold, currencyPlaces),
		MeanDailyReturnPct:      round(o.Stats.MeanDailyReturn*100, percentPlaces),
		ProjectedAnnualPct:      round(ins.ProjectedAnnualReturn*100, percentPlaces),
		BreakEvenPrice:          roundPtr(o.Analysis.BreakEvenPrice, currencyPlaces),
		BreakEvenMonthlyPayment: roundPtr(o.Analysis.BreakEvenMonthlyPayment, currencyPlaces),
		FallbackReason:          o.Stats.FallbackReason,
	}
	if o.Analysis.Crossed {
		m := o.Analysis.CrossoverMonth
		s.CrossoverMonth = &m
	}
	if o.Stats.IsFallback() && s.FallbackReason == "" {
		s.FallbackReason = "historical data unavailable"
	}
	return s
}

// Money formats v as US dollars, e.g. $1,234.57.
func Money(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	cur := money.GetCurrency(money.USD)
	rounded := decimal.NewFromFloat(v).Round(int32(cur.Fraction))
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	amount := rounded.Mul(factor)
	if amount.Abs().GreaterThan(maxCents) {
		return bigMoney(rounded, int32(cur.Fraction))
	}
	return money.New(amount.IntPart(), money.USD).Display()
}

// maxCents is the largest amount go-money can hold in its int64 minor units.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// bigMoney formats amounts beyond go-money's range in the same $1,234.57 layout.
func bigMoney(d decimal.Decimal, places int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(places), ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
