package calculator

import "DebtVsDCA/internal/model"

// CrossoverMonth returns the first 1-based month where the asset value reaches
// the remaining debt, or 0 and false if it never does.
func CrossoverMonth(assetValue, debt []float64) (int, bool) {
	n := len(assetValue)
	if len(debt) < n {
		n = len(debt)
	}
	for i := 0; i < n; i++ {
		if assetValue[i] >= debt[i] {
			return i + 1, true
		}
	}
	return 0, false
}

// Analyze scans res for a crossover. When there is none it also reports the
// terminal price, and the constant monthly payment along the same price path,
// that would have matched the final debt. An empty result has no crossover and
// no break-even figures.
func Analyze(res *model.SimulationResult) model.CrossoverAnalysis {
	var out model.CrossoverAnalysis
	if res == nil || res.Months == 0 || len(res.Debt) == 0 {
		return out
	}

	if month, ok := CrossoverMonth(res.AssetValue, res.Debt); ok {
		out.Crossed = true
		out.CrossoverMonth = month
		return out
	}

	last := len(res.Debt) - 1
	remaining := res.Debt[last]
	finalPrice := res.Price[last]
	if !(finalPrice > 0) {
		return out
	}

	units := res.AssetValue[last] / finalPrice
	if units > 0 {
		price := remaining / units
		out.BreakEvenPrice = &price
	}

	sumInv := 0.0
	for _, p := range res.Price {
		sumInv += 1 / p
	}
	if sumInv > 0 {
		payment := remaining / (finalPrice * sumInv)
		out.BreakEvenMonthlyPayment = &payment
	}
	return out
}
