// Package regime turns indicator snapshots into regime labels: the per-asset
// trend/momentum regime and the volatility (fear/complacency) regime.
package regime

import (
	"math"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// Thresholds are the cut-offs of the per-asset rules.
type Thresholds struct {
	ADXTrend       float64 // above: trending
	ADXChoppy      float64 // below: choppy
	StrongMomentum float64 // composite momentum, in percent
	MARatio        float64 // minimum MA alignment ratio for TRENDING_UP
	ZExtreme       float64 // |z| beyond: mean reversion
}

// DefaultThresholds returns the standard rule cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ADXTrend:       25,
		ADXChoppy:      20,
		StrongMomentum: 2.0,
		MARatio:        0.6,
		ZExtreme:       1.5,
	}
}

// Inputs is the indicator tuple the rules read. Nil means unavailable.
type Inputs struct {
	ADX      *float64
	Momentum *float64
	ZScore   *float64
	MAScore  *int
	MAMax    *int
}

// FromIndicators extracts the rule inputs from a weekly snapshot.
func FromIndicators(r models.IndicatorResult) Inputs {
	return Inputs{
		ADX:      r.ADX,
		Momentum: r.Momentum,
		ZScore:   r.ZScore,
		MAScore:  r.MAScore,
		MAMax:    r.MAMax,
	}
}

// MARatio is MAScore/MAMax, zero when either is missing or MAMax is zero.
func (in Inputs) MARatio() float64 {
	if in.MAScore == nil || in.MAMax == nil || *in.MAMax <= 0 {
		return 0
	}
	return float64(*in.MAScore) / float64(*in.MAMax)
}

type rule struct {
	name  string
	match func(in Inputs, th Thresholds) bool
	label models.RegimeLabel
}

// rules is evaluated top to bottom; the first match wins. Every rule after
// the first may dereference ADX and Momentum.
var rules = []rule{
	{
		name: "unavailable",
		match: func(in Inputs, _ Thresholds) bool {
			return in.ADX == nil || in.Momentum == nil
		},
		label: models.RegimeUnknown,
	},
	{
		name: "strong uptrend",
		match: func(in Inputs, th Thresholds) bool {
			return *in.ADX > th.ADXTrend && *in.Momentum > th.StrongMomentum && in.MARatio() >= th.MARatio
		},
		label: models.RegimeTrendingUp,
	},
	{
		name: "strong downtrend",
		match: func(in Inputs, th Thresholds) bool {
			return *in.ADX > th.ADXTrend && *in.Momentum < -th.StrongMomentum
		},
		label: models.RegimeTrendingDown,
	},
	{
		name: "oversold in weak trend",
		match: func(in Inputs, th Thresholds) bool {
			return *in.ADX < th.ADXTrend && in.ZScore != nil && *in.ZScore < -th.ZExtreme
		},
		label: models.RegimeMeanRevertBuy,
	},
	{
		name: "overbought in weak trend",
		match: func(in Inputs, th Thresholds) bool {
			return *in.ADX < th.ADXTrend && in.ZScore != nil && math.Abs(*in.ZScore) > th.ZExtreme
		},
		label: models.RegimeMeanRevertSell,
	},
	{
		name: "choppy",
		match: func(in Inputs, th Thresholds) bool {
			return *in.ADX < th.ADXChoppy
		},
		label: models.RegimeChoppy,
	},
}

// Classify applies the ordered rules and falls back to NEUTRAL.
func Classify(in Inputs, th Thresholds) models.Regime {
	for _, r := range rules {
		if r.match(in, th) {
			return models.NewRegime(r.label)
		}
	}
	return models.NewRegime(models.RegimeNeutral)
}

// Apply classifies a weekly snapshot and stores the regime on it.
func Apply(r models.IndicatorResult, th Thresholds) models.IndicatorResult {
	r.Regime = Classify(FromIndicators(r), th)
	return r
}
