package models

import "time"

// LiquidityTrend is the month-over-month direction of the liquidity gauge.
type LiquidityTrend string

const (
	LiquidityExpanding   LiquidityTrend = "Expanding"
	LiquidityContracting LiquidityTrend = "Contracting"
	LiquidityFlat        LiquidityTrend = "Flat"
)

// PeriodChange is the change of the aggregate against the point Offset
// aligned observations back. Delta and Pct are nil when unavailable.
type PeriodChange struct {
	Offset int      `json:"offset"`
	Delta  *float64 `json:"delta"`
	Pct    *float64 `json:"pct"`
}

// Available reports whether the absolute change could be computed.
func (c PeriodChange) Available() bool { return c.Delta != nil }

// LiquidityRecord is the liquidity gauge derived from balance sheet, cash
// buffer and overnight facility series.
type LiquidityRecord struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`

	BalanceSheet float64 `json:"balance_sheet"`
	CashBuffer   float64 `json:"cash_buffer"`
	Overnight    float64 `json:"overnight"`

	WoW PeriodChange `json:"wow"`
	MoM PeriodChange `json:"mom"`
	QoQ PeriodChange `json:"qoq"`

	Trend  LiquidityTrend `json:"trend"`
	Series TimeSeries     `json:"series"`
}
