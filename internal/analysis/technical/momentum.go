package technical

import "github.com/seenimoa/marketpulse/pkg/models"

// DefaultMomentumLookbacks are the TSMOM horizons in bars.
var DefaultMomentumLookbacks = []int{4, 12, 26}

// Momentum is a time-series momentum reading.
type Momentum struct {
	// Composite is the arithmetic mean of the per-lookback returns.
	Composite float64
	Details   []models.LookbackReturn
	Available bool
}

// TSMOM computes the percentage return of the last close against the close
// lookback points from the end (closes[n-lb]) for every lookback, and their
// mean. Unavailable when the history is shorter than the longest lookback.
// A lookback whose reference close is zero has no defined return and is
// left out; when none remain momentum is unavailable.
func TSMOM(closes []float64, lookbacks []int) Momentum {
	if len(lookbacks) == 0 {
		lookbacks = DefaultMomentumLookbacks
	}
	longest := 0
	for _, lb := range lookbacks {
		if lb > longest {
			longest = lb
		}
	}
	n := len(closes)
	if n < longest || longest <= 0 {
		return Momentum{}
	}

	last := closes[n-1]
	details := make([]models.LookbackReturn, 0, len(lookbacks))
	sum := 0.0
	for _, lb := range lookbacks {
		if lb <= 0 {
			continue
		}
		ref := closes[n-lb]
		if ref == 0 {
			continue
		}
		ret := (last/ref - 1) * 100
		details = append(details, models.LookbackReturn{Lookback: lb, ReturnPct: ret})
		sum += ret
	}
	if len(details) == 0 {
		return Momentum{}
	}

	return Momentum{
		Composite: sum / float64(len(details)),
		Details:   details,
		Available: true,
	}
}
