package calculator

import (
	"fmt"
	"math"

	"DebtVsDCA/internal/model"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ValidateInputs rejects missing, non-finite or out-of-range inputs before any
// computation starts.
func ValidateInputs(in model.SimulationInputs) error {
	checks := []struct {
		name  string
		value float64
		ok    func(float64) bool
		want  string
	}{
		{"debt amount", in.DebtPrincipal, func(v float64) bool { return v > 0 }, "positive"},
		{"annual rate", in.AnnualRatePercent, func(v float64) bool { return v >= 0 }, "zero or more"},
		{"monthly payment", in.MonthlyPayment, func(v float64) bool { return v > 0 }, "positive"},
		{"start price", in.StartPrice, func(v float64) bool { return v > 0 }, "positive"},
	}
	for _, c := range checks {
		if !finite(c.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, c.name)
		}
		if !c.ok(c.value) {
			return fmt.Errorf("%w: %s must be %s, got %v", ErrInvalidInput, c.name, c.want, c.value)
		}
	}
	if in.HorizonMonths < 0 {
		return fmt.Errorf("%w: horizon must not be negative, got %d", ErrInvalidInput, in.HorizonMonths)
	}
	return nil
}
