package technical

import (
	"errors"
	"fmt"

	"github.com/seenimoa/marketpulse/pkg/models"
)

// ErrInsufficientData is returned when a series is too short for any
// meaningful evaluation.
var ErrInsufficientData = errors.New("insufficient data")

// Params holds the indicator windows used by the evaluators.
type Params struct {
	ZScoreWindow      int
	MAPeriods         []int
	ADXPeriod         int
	MomentumLookbacks []int
	MinWeeks          int

	DailyZScoreWindow int
	DailyMinBars      int
	TEMASpans         [3]int
}

// DefaultParams returns the standard weekly/daily indicator windows.
func DefaultParams() Params {
	return Params{
		ZScoreWindow:      20,
		MAPeriods:         DefaultMAPeriods,
		ADXPeriod:         DefaultADXPeriod,
		MomentumLookbacks: DefaultMomentumLookbacks,
		MinWeeks:          26,
		DailyZScoreWindow: 20,
		DailyMinBars:      200,
		TEMASpans:         [3]int{20, 50, 200},
	}
}

// InsufficientResult is the degraded weekly record for a short history.
func InsufficientResult(symbol string, price float64, weeks int) models.IndicatorResult {
	return models.IndicatorResult{
		Symbol:        symbol,
		Price:         price,
		Weeks:         weeks,
		ZScoreZone:    models.ZoneNA,
		Trend:         models.TrendInsufficient,
		TrendStrength: models.StrengthNA,
		Regime:        models.NewRegime(models.RegimeUnknown),
	}
}

// EvaluateWeekly resamples daily bars to weeks and computes the weekly
// indicator snapshot. The price is the latest daily close. Histories under
// MinWeeks weeks yield InsufficientResult. The regime is left to the caller.
func EvaluateWeekly(symbol string, daily []models.PriceBar, p Params) (models.IndicatorResult, error) {
	if len(daily) == 0 {
		return models.IndicatorResult{}, fmt.Errorf("%s: no daily bars: %w", symbol, ErrInsufficientData)
	}
	price := daily[len(daily)-1].Close

	weekly := Weekly(daily)
	if len(weekly) < p.MinWeeks {
		return InsufficientResult(symbol, price, len(weekly)), nil
	}

	closes := models.Closes(weekly)
	res := models.IndicatorResult{
		Symbol:        symbol,
		Price:         price,
		Weeks:         len(weekly),
		MADistance:    MADistances(closes, price, p.MAPeriods),
		Trend:         models.TrendInsufficient,
		TrendStrength: models.StrengthNA,
		Regime:        models.NewRegime(models.RegimeUnknown),
	}

	z := ZScore(closes, p.ZScoreWindow)
	res.ZScoreZone = z.Zone
	if z.Available {
		res.ZScore = models.Float(z.Value)
	}

	if set, ok := NewMASet(closes, price); ok {
		tr := DetectTrend(weekly, set, p.ADXPeriod)
		res.Trend = tr.Label
		res.TrendStrength = tr.Strength
		if tr.ADX.Available {
			res.ADX = models.Float(tr.ADX.ADX)
			res.PlusDI = models.Float(tr.ADX.PlusDI)
			res.MinusDI = models.Float(tr.ADX.MinusDI)
		}

		align := MAScore(set)
		res.MAScore = models.Int(align.Score)
		res.MAMax = models.Int(align.Max)
		res.MAChecks = align.Checks
	}

	if mom := TSMOM(closes, p.MomentumLookbacks); mom.Available {
		res.Momentum = models.Float(mom.Composite)
		res.MomentumDetails = mom.Details
	}

	return res, nil
}

// EvaluateDaily computes the daily TEMA snapshot. It needs at least
// DailyMinBars bars.
func EvaluateDaily(symbol string, daily []models.PriceBar, p Params) (models.DailyResult, error) {
	if len(daily) < p.DailyMinBars || len(daily) < 2 {
		return models.DailyResult{}, fmt.Errorf("%s: %d daily bars, need %d: %w",
			symbol, len(daily), p.DailyMinBars, ErrInsufficientData)
	}

	closes := models.Closes(daily)
	n := len(closes)
	price := closes[n-1]

	fast := TEMA(closes, p.TEMASpans[0])
	mid := TEMA(closes, p.TEMASpans[1])
	slow := TEMA(closes, p.TEMASpans[2])
	t20, t50, t200 := fast[n-1], mid[n-1], slow[n-1]

	res := models.DailyResult{
		Symbol:       symbol,
		Price:        price,
		ZScoreZone:   models.ZoneNA,
		TEMA20:       t20,
		TEMA50:       t50,
		TEMA200:      t200,
		TEMA20Dist:   pctFrom(price, t20),
		TEMA50Dist:   pctFrom(price, t50),
		TEMA200Dist:  pctFrom(price, t200),
		Cross20x50:   CrossOf(fast, mid),
		Cross50x200:  CrossOf(mid, slow),
		Alignment:    TEMAAlignment(price, t20, t50, t200),
		AlignmentMax: 3,
		Trend:        DailyTrendOf(price, t20, t50, t200),
	}

	z := ZScore(closes, p.DailyZScoreWindow)
	res.ZScoreZone = z.Zone
	if z.Available {
		res.ZScore = models.Float(z.Value)
	}

	if adx := ADX(daily, p.ADXPeriod); adx.Available {
		res.ADX = adx.ADX
		res.PlusDI = adx.PlusDI
		res.MinusDI = adx.MinusDI
	}

	return res, nil
}

// TEMAAlignment counts TEMA20>TEMA50, TEMA50>TEMA200 and price>TEMA20.
func TEMAAlignment(price, t20, t50, t200 float64) int {
	n := 0
	if t20 > t50 {
		n++
	}
	if t50 > t200 {
		n++
	}
	if price > t20 {
		n++
	}
	return n
}

// DailyTrendOf labels the TEMA stack.
func DailyTrendOf(price, t20, t50, t200 float64) models.DailyTrend {
	switch {
	case t20 > t50 && t50 > t200 && price > t20:
		return models.DailyStrongBullish
	case t20 > t50 && price > t20:
		return models.DailyBullish
	case t20 < t50 && t50 < t200 && price < t20:
		return models.DailyStrongBearish
	case t20 < t50 && price < t20:
		return models.DailyBearish
	default:
		return models.DailyMixed
	}
}

func pctFrom(price, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return (price - ref) / ref * 100
}
