package report

import (
	"fmt"
	"math"
	"strings"

	"DebtVsDCA/internal/model"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the terminal width used by Render when none is given.
const DefaultWordWrap = 100

func units(v float64) string {
	return round(v, unitPlaces).StringFixed(unitPlaces)
}

// Markdown formats an outcome as the results and insights text shown
// alongside the chart.
func Markdown(o *model.Outcome, asset model.Asset, period model.Period) string {
	sym := asset.Symbol
	if sym == "" {
		sym = "TOKENS"
	}
	ins := o.Insights
	months := o.Result.Months

	var b strings.Builder
	b.WriteString("## Results\n\n")

	if months == 0 {
		b.WriteString("Nothing to project: the horizon is zero months.\n")
		return b.String()
	}

	switch {
	case o.Policy == model.Amortizing && ins.FinalDebt == 0:
		b.WriteString(fmt.Sprintf("**Debt:** Paid off after %d m.\n\n", months))
	case o.Policy == model.Amortizing:
		b.WriteString(fmt.Sprintf("**Debt:** Paid down to ~%s after %d m.\n\n", Money(ins.FinalDebt), months))
	default:
		b.WriteString(fmt.Sprintf("**Debt:** Unpaid debt balloons to ~%s after %d m.\n\n", Money(ins.FinalDebt), months))
	}
	b.WriteString(fmt.Sprintf("**DCA Stack:** ~%s %s ≈ %s\n\n", units(ins.FinalUnits), sym, Money(ins.FinalValue)))

	b.WriteString(fmt.Sprintf("**Projection:** Based on %s historical avg return of %.3f%% daily (%.2f%% annualized)\n\n",
		period.Label(), o.Stats.MeanDailyReturn*100, ins.ProjectedAnnualReturn*100))
	b.WriteString(fmt.Sprintf("**%s Price:** %s → %s (%d months)\n\n",
		sym, Money(o.Inputs.StartPrice), Money(ins.ProjectedFinalPrice), months))

	if o.Stats.IsFallback() {
		reason := o.Stats.FallbackReason
		if reason == "" {
			reason = "historical data unavailable"
		}
		b.WriteString(fmt.Sprintf("> Using fallback return estimate (%s).\n\n", reason))
	}

	b.WriteString("### Insights\n\n")
	if o.Analysis.Crossed {
		b.WriteString(fmt.Sprintf("- Your %s stack overtakes debt at month **%d**.\n", sym, o.Analysis.CrossoverMonth))
	} else {
		b.WriteString(fmt.Sprintf("- Your %s stack never overtakes debt within %d m.\n", sym, months))
	}
	b.WriteString(fmt.Sprintf("- You burn ~%s in interest, enough for ~%s %s at today's price.\n",
		Money(ins.TotalInterest), units(ins.UnitsForgoneToInterest), sym))
	b.WriteString(fmt.Sprintf("- Average buy-in price: ~%s per %s\n", Money(ins.AverageBuyPrice), sym))

	verb := "profit"
	if ins.ProfitIfSold < 0 {
		verb = "lose"
	}
	b.WriteString(fmt.Sprintf("- If sold at month %d, you %s ~%s\n", months, verb, Money(math.Abs(ins.ProfitIfSold))))

	if p := o.Analysis.BreakEvenPrice; p != nil {
		b.WriteString(fmt.Sprintf("- To cover all debt, %s must hit ~%s by month %d.\n", sym, Money(*p), months))
	}
	if p := o.Analysis.BreakEvenMonthlyPayment; p != nil {
		b.WriteString(fmt.Sprintf("- Or DCA at least %s/mo for this to break even.\n", Money(*p)))
	}
	return b.String()
}

// Render formats markdown for a terminal. An empty style picks one from the
// terminal background; "notty" gives plain ASCII.
func Render(md, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return r.Render(md)
}
