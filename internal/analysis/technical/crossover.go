package technical

import "github.com/seenimoa/marketpulse/pkg/models"

// DetectCross compares a fast and a slow line on the current and prior bar.
// Bullish when fast moves from <= slow to > slow, bearish when it moves from
// >= slow to < slow.
func DetectCross(fast, fastPrev, slow, slowPrev float64) models.Cross {
	switch {
	case fast > slow && fastPrev <= slowPrev:
		return models.CrossBullish
	case fast < slow && fastPrev >= slowPrev:
		return models.CrossBearish
	default:
		return models.CrossNone
	}
}

// CrossOf runs DetectCross over the last two points of two aligned lines.
func CrossOf(fast, slow []float64) models.Cross {
	n := len(fast)
	if n < 2 || len(slow) != n {
		return models.CrossNone
	}
	return DetectCross(fast[n-1], fast[n-2], slow[n-1], slow[n-2])
}
