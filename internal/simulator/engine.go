package simulator

import (
	"fmt"
	"math"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/model"

	"github.com/google/uuid"
)

// Horizon picks the number of months to simulate for the policy. Amortizing
// runs until the scheduled payoff; IgnorePayments honours a fixed horizon when
// one is given and otherwise falls back to the payoff schedule.
func Horizon(scheduled, fixed int, policy model.DebtPolicy) int {
	if policy == model.IgnorePayments && fixed > 0 {
		if fixed > calculator.MaxHorizonMonths {
			return calculator.MaxHorizonMonths
		}
		return fixed
	}
	return scheduled
}

// Run executes one full simulation: validation, payoff schedule, projection,
// crossover analysis and insights. It never mutates its arguments and every
// Outcome owns fresh series.
func Run(in model.SimulationInputs, stats model.ReturnStats, policy model.DebtPolicy) (*model.Outcome, error) {
	// Step a: reject unusable input
	if err := calculator.ValidateInputs(in); err != nil {
		return nil, err
	}
	if policy != model.Amortizing && policy != model.IgnorePayments {
		return nil, fmt.Errorf("%w: unknown debt policy %q", calculator.ErrInvalidInput, policy)
	}

	// Step b: payoff schedule; a payment that cannot cover interest stops the run
	scheduled, err := calculator.ScheduleMonths(in.DebtPrincipal, in.AnnualRatePercent, in.MonthlyPayment)
	if err != nil {
		return nil, err
	}
	horizon := Horizon(scheduled, in.HorizonMonths, policy)

	// Step c: project
	res, err := calculator.Project(calculator.ProjectionParams{
		Principal:         in.DebtPrincipal,
		AnnualRatePercent: in.AnnualRatePercent,
		MonthlyPayment:    in.MonthlyPayment,
		StartPrice:        in.StartPrice,
		Months:            horizon,
		MeanDailyReturn:   stats.MeanDailyReturn,
		Policy:            policy,
	})
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	// Step d: analyze and summarize
	analysis := calculator.Analyze(res)

	insights := Summarize(res, in, stats)
	if !finiteInsights(insights) {
		return nil, fmt.Errorf("%w: insights are not finite", calculator.ErrProjectionOverflow)
	}

	return &model.Outcome{
		RunID:    uuid.New(),
		Policy:   policy,
		Inputs:   in,
		Stats:    stats,
		Horizon:  horizon,
		Result:   *res,
		Analysis: analysis,
		Insights: insights,
	}, nil
}

func finiteInsights(ins model.Insights) bool {
	for _, v := range []float64{
		ins.TotalInterest, ins.TotalInvested, ins.FinalUnits, ins.FinalValue, ins.FinalDebt,
		ins.ProjectedFinalPrice, ins.AverageBuyPrice, ins.UnitsForgoneToInterest,
		ins.ProfitIfSold, ins.ProjectedAnnualReturn,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
