package model

import (
	"fmt"

	"github.com/google/uuid"
)

// DebtPolicy selects how the debt balance evolves each month.
type DebtPolicy string

const (
	// Amortizing applies interest then subtracts the fixed payment.
	Amortizing DebtPolicy = "amortizing"
	// IgnorePayments only accrues interest; the payment goes entirely to the asset.
	IgnorePayments DebtPolicy = "ignore_payments"
)

// ParseDebtPolicy validates a policy string. An empty string yields IgnorePayments.
func ParseDebtPolicy(s string) (DebtPolicy, error) {
	switch DebtPolicy(s) {
	case "":
		return IgnorePayments, nil
	case Amortizing, IgnorePayments:
		return DebtPolicy(s), nil
	}
	return "", fmt.Errorf("unknown debt policy %q (want amortizing or ignore_payments)", s)
}

// SimulationInputs are the user supplied numbers for one run.
type SimulationInputs struct {
	DebtPrincipal     float64 `json:"debt_principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	MonthlyPayment    float64 `json:"monthly_payment"`
	StartPrice        float64 `json:"start_price"`
	// HorizonMonths fixes the horizon for IgnorePayments. Zero means use the payoff schedule.
	HorizonMonths int `json:"horizon_months,omitempty"`
}

// SimulationResult holds the three parallel monthly series.
type SimulationResult struct {
	Months        int       `json:"months"`
	Debt          []float64 `json:"debt"`
	AssetValue    []float64 `json:"asset_value"`
	Price         []float64 `json:"price"`
	Units         float64   `json:"units"`
	TotalInterest float64   `json:"total_interest"`
}

// CrossoverAnalysis is derived from a SimulationResult.
// Break-even fields are only set when there is no crossover and data exists.
type CrossoverAnalysis struct {
	Crossed                 bool     `json:"crossed"`
	CrossoverMonth          int      `json:"crossover_month,omitempty"` // 1-based
	BreakEvenPrice          *float64 `json:"break_even_price,omitempty"`
	BreakEvenMonthlyPayment *float64 `json:"break_even_monthly_payment,omitempty"`
}

// Insights are the summary figures shown next to the chart.
type Insights struct {
	TotalInterest          float64 `json:"total_interest"`
	TotalInvested          float64 `json:"total_invested"`
	FinalUnits             float64 `json:"final_units"`
	FinalValue             float64 `json:"final_value"`
	FinalDebt              float64 `json:"final_debt"`
	ProjectedFinalPrice    float64 `json:"projected_final_price"`
	AverageBuyPrice        float64 `json:"average_buy_price"`
	UnitsForgoneToInterest float64 `json:"units_forgone_to_interest"`
	ProfitIfSold           float64 `json:"profit_if_sold"`
	ProjectedAnnualReturn  float64 `json:"projected_annual_return"`
}

// Outcome is the full product of one simulation run.
type Outcome struct {
	RunID    uuid.UUID         `json:"run_id"`
	Policy   DebtPolicy        `json:"policy"`
	Inputs   SimulationInputs  `json:"inputs"`
	Stats    ReturnStats       `json:"stats"`
	Horizon  int               `json:"horizon"`
	Result   SimulationResult  `json:"result"`
	Analysis CrossoverAnalysis `json:"analysis"`
	Insights Insights          `json:"insights"`
}
