package regime

import (
	"errors"
	"fmt"
	"math"

	"github.com/seenimoa/marketpulse/internal/analysis/technical"
	"github.com/seenimoa/marketpulse/pkg/models"
)

// ErrVolatilityUnavailable is returned when the volatility history is too
// short for the rolling window.
var ErrVolatilityUnavailable = errors.New("volatility unavailable")

// VolatilityParams tunes the smoothed inverted z-score.
type VolatilityParams struct {
	Window  int     // rolling z-score window, in bars
	Span    int     // EMA smoothing span
	Extreme float64 // |z| at or beyond: Complacency / Fear
	Mild    float64 // |z| at or beyond: Risk-On / Risk-Off
}

// DefaultVolatilityParams returns a one-year window and a 5-bar EMA.
func DefaultVolatilityParams() VolatilityParams {
	return VolatilityParams{Window: 252, Span: 5, Extreme: 1.5, Mild: 0.5}
}

type volRule struct {
	match  func(z float64, p VolatilityParams) bool
	regime models.VolatilityRegime
}

// volRules checks the extremes before the mild bands.
var volRules = []volRule{
	{func(z float64, p VolatilityParams) bool { return z >= p.Extreme }, models.VolComplacency},
	{func(z float64, p VolatilityParams) bool { return z <= -p.Extreme }, models.VolFear},
	{func(z float64, p VolatilityParams) bool { return z >= p.Mild }, models.VolRiskOn},
	{func(z float64, p VolatilityParams) bool { return z <= -p.Mild }, models.VolRiskOff},
}

// ClassifyVolatility maps a smoothed inverted z-score to a regime.
func ClassifyVolatility(z float64, p VolatilityParams) models.VolatilityRegime {
	for _, r := range volRules {
		if r.match(z, p) {
			return r.regime
		}
	}
	return models.VolNeutral
}

var levelBands = []struct {
	below float64
	desc  string
}{
	{15, "Low"},
	{20, "Normal"},
	{30, "Elevated"},
	{math.Inf(1), "High"},
}

// LevelDesc describes the raw volatility index level.
func LevelDesc(level float64) string {
	for _, b := range levelBands {
		if level < b.below {
			return b.desc
		}
	}
	return "High"
}

// SmoothedInvertedZ computes the rolling z-score of every close over window,
// negates it and smooths it with an EMA seeded at the first defined z.
// It returns the latest smoothed value rounded to two decimals.
func SmoothedInvertedZ(closes []float64, window, span int) (float64, bool) {
	if window <= 1 || len(closes) < window {
		return 0, false
	}
	zs := technical.RollingZScores(closes, window)
	for i, z := range zs {
		zs[i] = -z
	}
	smooth := technical.EMA(zs, span)
	if len(smooth) == 0 {
		return 0, false
	}
	last := smooth[len(smooth)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return math.Round(last*100) / 100, true
}

// BuildVolatility produces the volatility record from daily index bars.
func BuildVolatility(symbol string, bars []models.PriceBar, p VolatilityParams) (models.VolatilityRecord, error) {
	closes := models.Closes(bars)
	z, ok := SmoothedInvertedZ(closes, p.Window, p.Span)
	if !ok {
		return models.VolatilityRecord{}, fmt.Errorf("%s: %d bars for window %d: %w",
			symbol, len(bars), p.Window, ErrVolatilityUnavailable)
	}
	last := bars[len(bars)-1]
	return models.VolatilityRecord{
		Symbol:    symbol,
		Date:      last.Date,
		Level:     last.Close,
		LevelDesc: LevelDesc(last.Close),
		ZScore:    z,
		Regime:    ClassifyVolatility(z, p),
	}, nil
}
