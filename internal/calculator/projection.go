package calculator

import (
	"fmt"
	"math"

	"DebtVsDCA/internal/model"
)

// ProjectionParams parameterizes one deterministic projection.
type ProjectionParams struct {
	Principal         float64
	AnnualRatePercent float64
	MonthlyPayment    float64
	StartPrice        float64
	Months            int
	MeanDailyReturn   float64
	Policy            model.DebtPolicy
}

// Project runs the month-by-month simulation. Every call allocates its own
// series, so concurrent runs never share state.
//
// For month i the asset price is StartPrice*(1+g)^i with g the 30-day
// compounding of MeanDailyReturn, and the full payment buys units at that price.
// The debt accrues monthly interest and, under model.Amortizing, is reduced by
// the payment without going below zero.
func Project(p ProjectionParams) (*model.SimulationResult, error) {
	if p.Months < 0 {
		return nil, fmt.Errorf("%w: months must not be negative, got %d", ErrInvalidInput, p.Months)
	}
	if p.Months > 0 && !(p.StartPrice > 0) {
		return nil, fmt.Errorf("%w: start price must be positive, got %v", ErrInvalidInput, p.StartPrice)
	}

	rate := MonthlyRate(p.AnnualRatePercent)
	growth := MonthlyGrowthRate(p.MeanDailyReturn)

	res := &model.SimulationResult{
		Months:     p.Months,
		Debt:       make([]float64, 0, p.Months),
		AssetValue: make([]float64, 0, p.Months),
		Price:      make([]float64, 0, p.Months),
	}

	debt := p.Principal
	units := 0.0
	for i := 0; i < p.Months; i++ {
		interest := debt * rate
		debt = debt * (1 + rate)
		if p.Policy == model.Amortizing {
			debt -= p.MonthlyPayment
			if debt < 0 {
				debt = 0
			}
		}
		res.TotalInterest += interest
		res.Debt = append(res.Debt, debt)

		price := p.StartPrice * math.Pow(1+growth, float64(i))
		units += p.MonthlyPayment / price
		value := units * price
		if !finite(price) || !finite(value) || !finite(debt) {
			return nil, fmt.Errorf("%w: month %d of %d", ErrProjectionOverflow, i+1, p.Months)
		}
		res.Price = append(res.Price, price)
		res.AssetValue = append(res.AssetValue, value)
	}
	res.Units = units

	return res, nil
}
