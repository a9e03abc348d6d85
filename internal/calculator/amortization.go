package calculator

import "fmt"

// MaxHorizonMonths caps every schedule at 30 years.
const MaxHorizonMonths = 360

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 12 / 100
}

// MinimumPayment is the interest-only threshold for principal at the given rate.
func MinimumPayment(principal, annualRatePercent float64) float64 {
	return principal * MonthlyRate(annualRatePercent)
}

// ScheduleMonths returns the number of months needed to retire principal with a
// fixed monthly payment, capped at MaxHorizonMonths. A payment that does not
// exceed the monthly interest can never retire the debt and yields ErrPaymentTooLow.
func ScheduleMonths(principal, annualRatePercent, monthlyPayment float64) (int, error) {
	minPayment := MinimumPayment(principal, annualRatePercent)
	if monthlyPayment <= minPayment {
		return 0, fmt.Errorf("%w: payment %.2f <= interest %.2f", ErrPaymentTooLow, monthlyPayment, minPayment)
	}

	rate := MonthlyRate(annualRatePercent)
	balance := principal
	months := 0
	for balance > 0 && months < MaxHorizonMonths {
		balance = balance*(1+rate) - monthlyPayment
		months++
	}
	return months, nil
}
