package models

import "time"

// SignalError is the placeholder rendered for any indicator that failed.
const SignalError = "Error"

// MacroRow is one line of the macro section. Value is nil on error.
type MacroRow struct {
	Indicator string   `json:"indicator"`
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit,omitempty"`
	Signal    string   `json:"signal"`
	Detail    string   `json:"detail,omitempty"`
}

// ErrorRow builds the placeholder row for a failed macro indicator.
func ErrorRow(indicator string) MacroRow {
	return MacroRow{Indicator: indicator, Signal: SignalError, Detail: SignalError}
}

// AssetReport holds both timeframes for one configured asset. A nil result
// with a non-empty error string means that timeframe failed.
type AssetReport struct {
	Name      string           `json:"name"`
	Symbol    string           `json:"symbol"`
	Weekly    *IndicatorResult `json:"weekly"`
	Daily     *DailyResult     `json:"daily"`
	WeeklyErr string           `json:"weekly_error,omitempty"`
	DailyErr  string           `json:"daily_error,omitempty"`
}

// Report is the full output of one evaluation run.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Portfolio   string            `json:"portfolio"`
	Macro       []MacroRow        `json:"macro"`
	Liquidity   *LiquidityRecord  `json:"liquidity,omitempty"`
	Volatility  *VolatilityRecord `json:"volatility,omitempty"`
	Sentiment   []Sentiment       `json:"sentiment,omitempty"`
	Assets      []AssetReport     `json:"assets"`
}
