package technical

import (
	"math"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// DefaultADXPeriod is Wilder's standard smoothing window.
const DefaultADXPeriod = 14

// ADXResult is the latest Average Directional Index reading.
type ADXResult struct {
	ADX       float64
	PlusDI    float64
	MinusDI   float64
	Period    int
	Available bool
}

// ADX calculates Wilder's Average Directional Index and the directional
// indicators on high/low/close bars. It needs at least period+1 bars.
//
// True range and directional movement are Wilder-smoothed from a running sum
// seeded over the first period moves. ADX is seeded with the mean of the
// first period DX values (or of all DX values when fewer exist) and then
// smoothed the same way.
func ADX(bars []models.PriceBar, period int) ADXResult {
	if period <= 0 {
		period = DefaultADXPeriod
	}
	n := len(bars)
	if n < period+1 {
		return ADXResult{Period: period}
	}

	// Index i describes the move from bar i-1 to bar i.
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		cur, prev := bars[i], bars[i-1]
		hl := cur.High - cur.Low
		hc := math.Abs(cur.High - prev.Close)
		lc := math.Abs(cur.Low - prev.Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))

		up := cur.High - prev.High
		down := prev.Low - cur.Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var sTR, sPlus, sMinus float64
	for i := 1; i <= period; i++ {
		sTR += tr[i]
		sPlus += plusDM[i]
		sMinus += minusDM[i]
	}

	p := float64(period)
	var plusDI, minusDI float64
	dx := make([]float64, 0, n-period)
	for i := period; i < n; i++ {
		if i > period {
			sTR = sTR - sTR/p + tr[i]
			sPlus = sPlus - sPlus/p + plusDM[i]
			sMinus = sMinus - sMinus/p + minusDM[i]
		}
		plusDI, minusDI = 0, 0
		if sTR > 0 {
			plusDI = 100 * sPlus / sTR
			minusDI = 100 * sMinus / sTR
		}
		d := 0.0
		if sum := plusDI + minusDI; sum > 0 {
			d = 100 * math.Abs(plusDI-minusDI) / sum
		}
		dx = append(dx, d)
	}

	seed := period
	if len(dx) < seed {
		seed = len(dx)
	}
	adx := avg(dx[:seed])
	for _, d := range dx[seed:] {
		adx = (adx*(p-1) + d) / p
	}

	return ADXResult{
		ADX:       adx,
		PlusDI:    plusDI,
		MinusDI:   minusDI,
		Period:    period,
		Available: true,
	}
}
