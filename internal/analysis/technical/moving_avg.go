// Package technical implements the rolling statistics and trend, momentum
// and crossover indicators used to evaluate one asset. All functions are
// pure and operate on ascending []float64 closes or []models.PriceBar.
package technical

import (
	"math"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// SMA calculates the Simple Moving Average for the given window. Entries
// before the first full window are NaN. Returns nil when the series is
// shorter than the window.
func SMA(data []float64, window int) []float64 {
	n := len(data)
	if n < window || window <= 0 {
		return nil
	}

	result := make([]float64, n)
	for i := 0; i < window-1; i++ {
		result[i] = math.NaN()
	}
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += data[i]
	}
	result[window-1] = sum / float64(window)

	for i := window; i < n; i++ {
		sum += data[i] - data[i-window]
		result[i] = sum / float64(window)
	}

	return result
}

// SMALatest returns the trailing SMA value. ok is false when fewer than
// window points exist.
func SMALatest(data []float64, window int) (float64, bool) {
	if window <= 0 || len(data) < window {
		return 0, false
	}
	return avg(data[len(data)-window:]), true
}

// EMA calculates the Exponential Moving Average with decay 2/(span+1),
// seeded with the first observation. Leading NaNs are skipped and the seed
// is the first defined value.
func EMA(data []float64, span int) []float64 {
	n := len(data)
	if n == 0 || span <= 0 {
		return nil
	}

	ema := make([]float64, n)
	alpha := 2.0 / float64(span+1)
	seeded := false
	for i, v := range data {
		switch {
		case math.IsNaN(v):
			if seeded {
				ema[i] = ema[i-1]
			} else {
				ema[i] = math.NaN()
			}
		case !seeded:
			ema[i] = v
			seeded = true
		default:
			ema[i] = alpha*v + (1-alpha)*ema[i-1]
		}
	}
	return ema
}

// EMALatest returns the most recent EMA value.
func EMALatest(data []float64, span int) (float64, bool) {
	vals := EMA(data, span)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[len(vals)-1], true
}

// TEMA calculates the Triple Exponential Moving Average:
// 3*EMA - 3*EMA(EMA) + EMA(EMA(EMA)).
func TEMA(data []float64, span int) []float64 {
	ema1 := EMA(data, span)
	if ema1 == nil {
		return nil
	}
	ema2 := EMA(ema1, span)
	ema3 := EMA(ema2, span)

	tema := make([]float64, len(data))
	for i := range tema {
		tema[i] = 3*ema1[i] - 3*ema2[i] + ema3[i]
	}
	return tema
}

// MASet is the set of simple moving averages that the available history
// supports, computed once per evaluation. MA100 and MA200 are zero when
// Has100 / Has200 is false.
type MASet struct {
	Price float64
	MA20  float64
	MA50  float64
	MA100 float64
	MA200 float64

	Has100 bool
	Has200 bool
}

// NewMASet builds the available MA set for closes. ok is false when fewer
// than 50 points exist, since MA20 and MA50 are the required core.
func NewMASet(closes []float64, price float64) (MASet, bool) {
	set := MASet{Price: price}
	var ok20, ok50 bool
	set.MA20, ok20 = SMALatest(closes, 20)
	set.MA50, ok50 = SMALatest(closes, 50)
	if !ok20 || !ok50 {
		return set, false
	}
	set.MA100, set.Has100 = SMALatest(closes, 100)
	set.MA200, set.Has200 = SMALatest(closes, 200)
	return set, true
}

// longBase is the MA compared against MA200: MA100 when available,
// otherwise MA50.
func (s MASet) longBase() (float64, string) {
	if s.Has100 {
		return s.MA100, "MA100"
	}
	return s.MA50, "MA50"
}

// MADistances computes the percentage distance of price from each SMA period
// with enough history, in the order given.
func MADistances(closes []float64, price float64, periods []int) []models.MADistance {
	var out []models.MADistance
	for _, p := range periods {
		ma, ok := SMALatest(closes, p)
		if !ok || ma == 0 {
			continue
		}
		pct := (price - ma) / ma * 100
		out = append(out, models.MADistance{Period: p, Pct: pct, Above: pct > 0})
	}
	return out
}

// DefaultMAPeriods are the moving averages reported in distance summaries.
var DefaultMAPeriods = []int{20, 50, 100, 200}
