package technical

import (
	"math"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// RollingMean returns the mean of the trailing window. ok is false when
// fewer than window points exist.
func RollingMean(data []float64, window int) (float64, bool) {
	return SMALatest(data, window)
}

// RollingStd returns the sample standard deviation (n-1) of the trailing
// window. ok is false when fewer than window points exist.
func RollingStd(data []float64, window int) (float64, bool) {
	if window <= 1 || len(data) < window {
		return 0, false
	}
	tail := data[len(data)-window:]
	return sampleStd(tail, avg(tail)), true
}

// ZScoreResult is a z-score with its zone. Available is false when the
// series was shorter than the window; Value and Zone are then meaningless.
type ZScoreResult struct {
	Value     float64
	Zone      models.ZScoreZone
	Available bool
}

// ZScore standardizes the last value against the trailing window's mean and
// sample standard deviation. A zero or NaN deviation yields 0 / Neutral.
// The value is rounded to two decimals before its zone is classified.
func ZScore(data []float64, window int) ZScoreResult {
	mean, ok := RollingMean(data, window)
	if !ok {
		return ZScoreResult{Zone: models.ZoneNA}
	}
	std, ok := RollingStd(data, window)
	if !ok || degenerate(data[len(data)-window:], mean, std) {
		return ZScoreResult{Value: 0, Zone: models.ZoneNeutral, Available: true}
	}
	z := round2((data[len(data)-1] - mean) / std)
	return ZScoreResult{Value: z, Zone: ClassifyZone(z), Available: true}
}

// RollingZScores returns the z-score of every point against its own trailing
// window. Points without a full window are NaN, as are points whose window
// is flat.
func RollingZScores(data []float64, window int) []float64 {
	out := make([]float64, len(data))
	for i := range out {
		if i+1 < window || window <= 1 {
			out[i] = math.NaN()
			continue
		}
		w := data[i+1-window : i+1]
		mean := avg(w)
		std := sampleStd(w, mean)
		if degenerate(w, mean, std) {
			out[i] = math.NaN()
			continue
		}
		out[i] = (data[i] - mean) / std
	}
	return out
}

type zoneRule struct {
	match func(z float64) bool
	zone  models.ZScoreZone
}

// zoneRules is evaluated top to bottom and the first match wins. Bands are
// closed below and open above, except that -2.5 itself belongs to the
// extreme oversold tail.
var zoneRules = []zoneRule{
	{func(z float64) bool { return z >= 2.5 }, models.ZoneExtremeOverbought},
	{func(z float64) bool { return z >= 2 }, models.ZoneOverbought},
	{func(z float64) bool { return z >= 1 }, models.ZoneUpper},
	{func(z float64) bool { return z >= -1 }, models.ZoneNeutral},
	{func(z float64) bool { return z >= -2 }, models.ZoneLower},
	{func(z float64) bool { return z > -2.5 }, models.ZoneOversold},
	{func(z float64) bool { return true }, models.ZoneExtremeOversold},
}

// ClassifyZone maps a z-score onto the fixed zone partition. NaN is Neutral.
func ClassifyZone(z float64) models.ZScoreZone {
	if math.IsNaN(z) {
		return models.ZoneNeutral
	}
	for _, r := range zoneRules {
		if r.match(z) {
			return r.zone
		}
	}
	return models.ZoneNeutral
}

// --- helper functions ---

func avg(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func sampleStd(data []float64, mean float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}

// flatEpsilon bounds the deviation, relative to the mean, that is rounding
// noise rather than variance.
const flatEpsilon = 1e-12

// degenerate reports a window whose deviation is zero, invalid, or only the
// rounding noise of a constant series such as 0.1 repeated.
func degenerate(w []float64, mean, std float64) bool {
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return true
	}
	if std <= flatEpsilon*math.Abs(mean) {
		return true
	}
	for _, v := range w[1:] {
		if v != w[0] {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
