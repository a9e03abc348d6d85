package simulator

import (
	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/model"
)

// Summarize derives the headline figures of a run. A run without months has
// nothing to summarize beyond the projected annual return.
func Summarize(res *model.SimulationResult, in model.SimulationInputs, stats model.ReturnStats) model.Insights {
	ins := model.Insights{
		ProjectedAnnualReturn: calculator.AnnualizedReturn(stats.MeanDailyReturn),
	}
	if res == nil || res.Months == 0 || len(res.Debt) == 0 {
		return ins
	}

	last := len(res.Debt) - 1
	ins.TotalInterest = res.TotalInterest
	ins.TotalInvested = in.MonthlyPayment * float64(res.Months)
	ins.FinalUnits = res.Units
	ins.FinalValue = res.AssetValue[last]
	ins.FinalDebt = res.Debt[last]
	ins.ProjectedFinalPrice = res.Price[last]
	ins.ProfitIfSold = ins.FinalValue - ins.FinalDebt
	if res.Units > 0 {
		ins.AverageBuyPrice = ins.TotalInvested / res.Units
	}
	if in.StartPrice > 0 {
		ins.UnitsForgoneToInterest = res.TotalInterest / in.StartPrice
	}
	return ins
}
