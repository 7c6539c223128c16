package technical

import "github.com/seenimoa/marketpulse/pkg/models"

// MinTrendBars is the shortest history that supports MA20/MA50 trend work.
const MinTrendBars = 50

// TrendResult is the output of DetectTrend.
type TrendResult struct {
	Label    models.TrendLabel
	Strength string
	Vote     int
	ADX      ADXResult
}

// DetectTrend votes price and MA relationships plus the directional
// indicators into a trend label, gated by ADX strength.
//
// Each comparison contributes +1 or -1: price vs MA20, price vs MA50,
// MA20 vs MA50, +DI vs -DI, then price vs MA100 and MA50 vs MA100 when
// MA100 exists, then price vs MA200 and (MA100 or MA50) vs MA200 when MA200
// exists. ADX below 20 is always sideways; below 25 the vote needs to reach
// 3, otherwise 2.
func DetectTrend(bars []models.PriceBar, set MASet, adxPeriod int) TrendResult {
	if len(bars) < MinTrendBars {
		return TrendResult{Label: models.TrendInsufficient, Strength: models.StrengthNA}
	}
	adx := ADX(bars, adxPeriod)
	if !adx.Available {
		return TrendResult{Label: models.TrendInsufficient, Strength: models.StrengthNA}
	}

	vote := 0
	cast := func(up bool) {
		if up {
			vote++
		} else {
			vote--
		}
	}
	cast(set.Price > set.MA20)
	cast(set.Price > set.MA50)
	cast(set.MA20 > set.MA50)
	cast(adx.PlusDI > adx.MinusDI)
	if set.Has100 {
		cast(set.Price > set.MA100)
		cast(set.MA50 > set.MA100)
	}
	if set.Has200 {
		base, _ := set.longBase()
		cast(set.Price > set.MA200)
		cast(base > set.MA200)
	}

	res := TrendResult{Vote: vote, ADX: adx}
	if adx.ADX < 20 {
		res.Label = models.TrendSideways
		res.Strength = models.StrengthWeak
		return res
	}

	threshold := 2
	res.Strength = models.StrengthStrong
	if adx.ADX < 25 {
		threshold = 3
		res.Strength = models.StrengthModerate
	}
	switch {
	case vote >= threshold:
		res.Label = models.TrendUp
	case vote <= -threshold:
		res.Label = models.TrendDown
	default:
		res.Label = models.TrendSideways
	}
	return res
}

// MAAlignment is the count of bullish MA relationships satisfied.
type MAAlignment struct {
	Score  int
	Max    int
	Checks []string
}

// Ratio is Score/Max, zero when Max is zero.
func (a MAAlignment) Ratio() float64 {
	if a.Max == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.Max)
}

// MAScore checks the bullish MA relationships the set supports. Max is 3
// with MA20/MA50 only, 5 with MA100 and 7 with MA200.
func MAScore(set MASet) MAAlignment {
	type check struct {
		ok   bool
		name string
	}
	checks := []check{
		{set.Price > set.MA20, "Price>MA20"},
		{set.Price > set.MA50, "Price>MA50"},
		{set.MA20 > set.MA50, "MA20>MA50"},
	}
	if set.Has100 {
		checks = append(checks,
			check{set.Price > set.MA100, "Price>MA100"},
			check{set.MA50 > set.MA100, "MA50>MA100"},
		)
	}
	if set.Has200 {
		base, name := set.longBase()
		checks = append(checks,
			check{set.Price > set.MA200, "Price>MA200"},
			check{base > set.MA200, name + ">MA200"},
		)
	}

	out := MAAlignment{Max: len(checks), Checks: []string{}}
	for _, c := range checks {
		if c.ok {
			out.Score++
			out.Checks = append(out.Checks, c.name)
		}
	}
	return out
}
