package calculator

import (
	"fmt"
	"math"

	"DebtVsDCA/internal/model"

	"github.com/montanaflynn/stats"
)

const (
	FallbackMeanDailyReturn = 0.002
	FallbackDailyVolatility = 0.05
)

// FallbackStats returns the conservative constants used when history is unusable.
func FallbackStats(reason error) model.ReturnStats {
	return FallbackStatsWith(FallbackMeanDailyReturn, FallbackDailyVolatility, reason)
}

// FallbackStatsWith is FallbackStats with configurable constants.
func FallbackStatsWith(mean, volatility float64, reason error) model.ReturnStats {
	s := model.ReturnStats{
		MeanDailyReturn: mean,
		DailyVolatility: volatility,
		Source:          model.SourceFallback,
	}
	if reason != nil {
		s.FallbackReason = reason.Error()
	}
	return s
}

// SimpleReturns computes r[i] = (p[i] - p[i-1]) / p[i-1].
// Every price must be finite and strictly positive.
func SimpleReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 prices, got %d", ErrInsufficientData, len(prices))
	}
	for i, p := range prices {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: price[%d] = %v", ErrInvalidPriceData, i, p)
		}
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns, nil
}

// EstimateReturns returns the arithmetic mean and population standard deviation
// of the simple per-step returns of prices.
func EstimateReturns(prices []float64) (model.ReturnStats, error) {
	returns, err := SimpleReturns(prices)
	if err != nil {
		return model.ReturnStats{}, err
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return model.ReturnStats{}, fmt.Errorf("mean: %w", err)
	}
	stdev, err := stats.StandardDeviationPopulation(returns)
	if err != nil {
		return model.ReturnStats{}, fmt.Errorf("stdev: %w", err)
	}

	return model.ReturnStats{
		MeanDailyReturn: mean,
		DailyVolatility: stdev,
		Samples:         len(returns),
		Source:          model.SourceHistory,
	}, nil
}

// AnnualizedReturn compounds a daily rate over 365 days.
func AnnualizedReturn(meanDailyReturn float64) float64 {
	return math.Pow(1+meanDailyReturn, 365) - 1
}

// MonthlyGrowthRate compounds a daily rate over a 30 day month.
func MonthlyGrowthRate(meanDailyReturn float64) float64 {
	return math.Pow(1+meanDailyReturn, 30) - 1
}
