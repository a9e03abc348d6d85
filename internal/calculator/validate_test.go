package calculator

import (
	"math"
	"testing"

	"DebtVsDCA/internal/model"

	"github.com/stretchr/testify/require"
)

func TestValidateInputs(t *testing.T) {
	valid := model.SimulationInputs{
		DebtPrincipal:     10000,
		AnnualRatePercent: 20,
		MonthlyPayment:    200,
		StartPrice:        100,
	}
	require.NoError(t, ValidateInputs(valid))

	zeroRate := valid
	zeroRate.AnnualRatePercent = 0
	require.NoError(t, ValidateInputs(zeroRate))

	tests := []struct {
		name   string
		mutate func(*model.SimulationInputs)
	}{
		{"nan debt", func(in *model.SimulationInputs) { in.DebtPrincipal = math.NaN() }},
		{"zero debt", func(in *model.SimulationInputs) { in.DebtPrincipal = 0 }},
		{"inf rate", func(in *model.SimulationInputs) { in.AnnualRatePercent = math.Inf(1) }},
		{"negative rate", func(in *model.SimulationInputs) { in.AnnualRatePercent = -1 }},
		{"zero payment", func(in *model.SimulationInputs) { in.MonthlyPayment = 0 }},
		{"missing start price", func(in *model.SimulationInputs) { in.StartPrice = 0 }},
		{"negative inf price", func(in *model.SimulationInputs) { in.StartPrice = math.Inf(-1) }},
		{"negative horizon", func(in *model.SimulationInputs) { in.HorizonMonths = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			require.ErrorIs(t, ValidateInputs(in), ErrInvalidInput)
		})
	}
}
