package model

// EstimateSource tells where a ReturnStats came from.
type EstimateSource string

const (
	SourceHistory  EstimateSource = "history"
	SourceFallback EstimateSource = "fallback"
)

// ReturnStats summarizes historical daily returns.
type ReturnStats struct {
	MeanDailyReturn float64        `json:"mean_daily_return"`
	DailyVolatility float64        `json:"daily_volatility"`
	Samples         int            `json:"samples"`
	Source          EstimateSource `json:"source"`
	FallbackReason  string         `json:"fallback_reason,omitempty"`
}

// IsFallback reports whether the stats are the degraded-confidence constants.
func (s ReturnStats) IsFallback() bool { return s.Source == SourceFallback }
