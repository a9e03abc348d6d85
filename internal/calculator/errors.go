package calculator

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPaymentTooLow      = errors.New("monthly payment must exceed interest")
	ErrInsufficientData   = errors.New("not enough price data")
	ErrInvalidPriceData   = errors.New("invalid price data")
	ErrProjectionOverflow = errors.New("projection overflows: growth rate too large for the horizon")
)
