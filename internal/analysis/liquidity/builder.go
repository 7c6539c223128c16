package liquidity

import (
	"errors"
	"fmt"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// ErrLiquidityUnavailable is returned when any input series is empty or no
// balance sheet date could be aligned. The gauge is all-or-nothing.
var ErrLiquidityUnavailable = errors.New("liquidity unavailable")

// Period offsets in aligned observations.
const (
	OffsetWoW = 1
	OffsetMoM = 4
	OffsetQoQ = 12
)

// Params tunes the gauge.
type Params struct {
	// Lookback bounds the balance sheet observations aligned.
	Lookback int
	// Scale divides raw values, 1000 turns millions into billions.
	Scale float64
	// TrendThreshold is the MoM percentage beyond which the gauge is
	// Expanding or Contracting.
	TrendThreshold float64
}

// DefaultParams returns the standard gauge parameters.
func DefaultParams() Params {
	return Params{Lookback: 14, Scale: 1000, TrendThreshold: 1.0}
}

// Inputs are the three raw series, in source units.
type Inputs struct {
	BalanceSheet models.TimeSeries
	CashBuffer   models.TimeSeries
	Overnight    models.TimeSeries
}

// Build computes balance sheet minus cash buffer minus overnight facility at
// every alignable balance sheet date and derives the period changes and
// trend from the most recent point.
func Build(in Inputs, p Params) (models.LiquidityRecord, error) {
	switch {
	case len(in.BalanceSheet) == 0:
		return models.LiquidityRecord{}, fmt.Errorf("balance sheet series empty: %w", ErrLiquidityUnavailable)
	case len(in.CashBuffer) == 0:
		return models.LiquidityRecord{}, fmt.Errorf("cash buffer series empty: %w", ErrLiquidityUnavailable)
	case len(in.Overnight) == 0:
		return models.LiquidityRecord{}, fmt.Errorf("overnight facility series empty: %w", ErrLiquidityUnavailable)
	}
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}

	aligned := Align(in.BalanceSheet, p.Lookback, in.CashBuffer, in.Overnight)
	if len(aligned) == 0 {
		return models.LiquidityRecord{}, fmt.Errorf("no aligned dates: %w", ErrLiquidityUnavailable)
	}

	series := make(models.TimeSeries, len(aligned))
	values := make([]float64, len(aligned))
	for i, a := range aligned {
		v := (a.Base - a.Values[0] - a.Values[1]) / scale
		series[i] = models.TimeSeriesPoint{Date: a.Date, Value: v}
		values[i] = v
	}

	bs, _ := in.BalanceSheet.Latest()
	cash, _ := in.CashBuffer.Latest()
	on, _ := in.Overnight.Latest()

	rec := models.LiquidityRecord{
		Date:         series[0].Date,
		Value:        values[0],
		BalanceSheet: bs.Value / scale,
		CashBuffer:   cash.Value / scale,
		Overnight:    on.Value / scale,
		WoW:          Change(values, OffsetWoW),
		MoM:          Change(values, OffsetMoM),
		QoQ:          Change(values, OffsetQoQ),
		Series:       series,
	}
	rec.Trend = TrendOf(rec.MoM, p.TrendThreshold)
	return rec, nil
}

// Change compares values[0] against values[k] in a most-recent-first slice.
// Delta is nil when fewer than k+1 points exist; Pct is also nil when the
// reference value is zero.
func Change(values []float64, k int) models.PeriodChange {
	c := models.PeriodChange{Offset: k}
	if k <= 0 || len(values) <= k {
		return c
	}
	prev := values[k]
	delta := values[0] - prev
	c.Delta = models.Float(delta)
	if prev != 0 {
		c.Pct = models.Float(delta / prev * 100)
	}
	return c
}

// TrendOf labels the month-over-month change. Unavailable is Flat.
func TrendOf(mom models.PeriodChange, threshold float64) models.LiquidityTrend {
	if mom.Pct == nil {
		return models.LiquidityFlat
	}
	switch pct := *mom.Pct; {
	case pct > threshold:
		return models.LiquidityExpanding
	case pct < -threshold:
		return models.LiquidityContracting
	default:
		return models.LiquidityFlat
	}
}
