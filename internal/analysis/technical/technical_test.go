package technical

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketpulse/pkg/models"
)

var monday = time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)

// makeBars generates one bar per calendar day with a linear close.
func makeBars(n int, basePrice, trend float64) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	for i := range bars {
		c := basePrice + trend*float64(i)
		bars[i] = models.PriceBar{
			Date:   monday.AddDate(0, 0, i),
			Open:   c - trend/2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000 + int64(i*10_000),
		}
	}
	return bars
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// --- Moving averages ---

func TestSMA(t *testing.T) {
	vals := SMA([]float64{10, 20, 30, 40, 50}, 3)
	require.Len(t, vals, 5)
	assert.True(t, math.IsNaN(vals[0]))
	assert.True(t, math.IsNaN(vals[1]))
	assert.Equal(t, 20.0, vals[2])
	assert.Equal(t, 40.0, vals[4])

	assert.Nil(t, SMA([]float64{1, 2}, 3))
}

func TestEMASeedsWithFirstValue(t *testing.T) {
	vals := EMA([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 5)
	require.Len(t, vals, 10)
	assert.Equal(t, 10.0, vals[0])
	// alpha = 1/3
	assert.InDelta(t, 10+(20-10)/3.0, vals[1], 1e-9)
}

func TestEMASkipsLeadingNaN(t *testing.T) {
	vals := EMA([]float64{math.NaN(), math.NaN(), 4, 4}, 3)
	assert.True(t, math.IsNaN(vals[0]))
	assert.True(t, math.IsNaN(vals[1]))
	assert.Equal(t, 4.0, vals[2])
	assert.Equal(t, 4.0, vals[3])
}

func TestTEMAOfConstant(t *testing.T) {
	for _, v := range TEMA(constant(60, 42), 20) {
		assert.InDelta(t, 42, v, 1e-9)
	}
}

func TestNewMASet(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	set, ok := NewMASet(closes, 120)
	require.True(t, ok)
	assert.InDelta(t, 110.5, set.MA20, 1e-9)
	assert.InDelta(t, 95.5, set.MA50, 1e-9)
	assert.True(t, set.Has100)
	assert.False(t, set.Has200)

	_, ok = NewMASet(closes[:49], 49)
	assert.False(t, ok)
}

func TestMADistances(t *testing.T) {
	closes := constant(60, 100)
	got := MADistances(closes, 110, DefaultMAPeriods)
	require.Len(t, got, 2)
	assert.Equal(t, 20, got[0].Period)
	assert.InDelta(t, 10, got[0].Pct, 1e-9)
	assert.True(t, got[0].Above)
	assert.Equal(t, 50, got[1].Period)
}

// --- Rolling statistics ---

func TestZScoreFlatSeriesIsNeutral(t *testing.T) {
	z := ZScore(constant(30, 100), 20)
	assert.True(t, z.Available)
	assert.Equal(t, 0.0, z.Value)
	assert.Equal(t, models.ZoneNeutral, z.Zone)
}

func TestZScoreFlatSeriesWithInexactValues(t *testing.T) {
	for _, v := range []float64{0.1, 0.7, 1.1, 2.675, 33.3, 1234.56} {
		z := ZScore(constant(30, v), 20)
		assert.True(t, z.Available, "value %v", v)
		assert.Equal(t, 0.0, z.Value, "value %v", v)
		assert.Equal(t, models.ZoneNeutral, z.Zone, "value %v", v)

		zs := RollingZScores(constant(25, v), 20)
		assert.True(t, math.IsNaN(zs[24]), "value %v", v)
	}
}

func TestZScoreSmallRealVariance(t *testing.T) {
	data := append(constant(19, 0.1), 0.1000001)
	z := ZScore(data, 20)
	assert.Greater(t, z.Value, 4.0)
}

func TestZScoreShortSeriesUnavailable(t *testing.T) {
	z := ZScore(constant(10, 100), 20)
	assert.False(t, z.Available)
	assert.Equal(t, models.ZoneNA, z.Zone)

	_, ok := RollingMean(constant(10, 1), 20)
	assert.False(t, ok)
	_, ok = RollingStd(constant(10, 1), 20)
	assert.False(t, ok)
}

func TestZScoreLinearRamp(t *testing.T) {
	data := make([]float64, 20)
	for i := range data {
		data[i] = float64(i + 1)
	}
	// mean 10.5, sample variance 35
	z := ZScore(data, 20)
	require.True(t, z.Available)
	assert.Equal(t, 1.61, z.Value)
	assert.Equal(t, models.ZoneUpper, z.Zone)
}

func TestRollingStdUsesSampleDeviation(t *testing.T) {
	std, ok := RollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(32.0/7.0), std, 1e-9)

	_, ok = RollingStd([]float64{1, 2, 3}, 1)
	assert.False(t, ok)
}

func TestRollingZScores(t *testing.T) {
	data := append(constant(5, 10), 20)
	zs := RollingZScores(data, 5)
	require.Len(t, zs, 6)
	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(zs[i]), "index %d", i)
	}
	assert.Greater(t, zs[5], 0.0)
}

func TestClassifyZone(t *testing.T) {
	tests := []struct {
		z    float64
		want models.ZScoreZone
	}{
		{math.Inf(1), models.ZoneExtremeOverbought},
		{3.1, models.ZoneExtremeOverbought},
		{2.5, models.ZoneExtremeOverbought},
		{2.49, models.ZoneOverbought},
		{2.0, models.ZoneOverbought},
		{1.99, models.ZoneUpper},
		{1.0, models.ZoneUpper},
		{0, models.ZoneNeutral},
		{-1.0, models.ZoneNeutral},
		{-1.01, models.ZoneLower},
		{-2.0, models.ZoneLower},
		{-2.01, models.ZoneOversold},
		{-2.49, models.ZoneOversold},
		{-2.5, models.ZoneExtremeOversold},
		{-7, models.ZoneExtremeOversold},
		{math.Inf(-1), models.ZoneExtremeOversold},
		{math.NaN(), models.ZoneNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyZone(tt.z), "z=%v", tt.z)
	}
}

// --- ADX / trend ---

func TestADXInsufficientData(t *testing.T) {
	res := ADX(makeBars(14, 100, 1), 14)
	assert.False(t, res.Available)

	res = ADX(makeBars(15, 100, 1), 14)
	assert.True(t, res.Available)
}

func TestADXSteadyUptrend(t *testing.T) {
	res := ADX(makeBars(60, 100, 1), 14)
	require.True(t, res.Available)
	assert.InDelta(t, 100, res.ADX, 1e-6)
	assert.Greater(t, res.PlusDI, 0.0)
	assert.Equal(t, 0.0, res.MinusDI)
}

func TestADXSteadyDowntrend(t *testing.T) {
	res := ADX(makeBars(60, 400, -1), 14)
	require.True(t, res.Available)
	assert.InDelta(t, 100, res.ADX, 1e-6)
	assert.Equal(t, 0.0, res.PlusDI)
	assert.Greater(t, res.MinusDI, 0.0)
}

func TestDetectTrend(t *testing.T) {
	t.Run("insufficient", func(t *testing.T) {
		bars := makeBars(40, 100, 1)
		res := DetectTrend(bars, MASet{}, 14)
		assert.Equal(t, models.TrendInsufficient, res.Label)
		assert.Equal(t, models.StrengthNA, res.Strength)
	})

	t.Run("uptrend", func(t *testing.T) {
		bars := makeBars(250, 100, 1)
		closes := models.Closes(bars)
		set, ok := NewMASet(closes, closes[len(closes)-1])
		require.True(t, ok)

		res := DetectTrend(bars, set, 14)
		assert.Equal(t, models.TrendUp, res.Label)
		assert.Equal(t, models.StrengthStrong, res.Strength)
		assert.Equal(t, 8, res.Vote)
	})

	t.Run("downtrend", func(t *testing.T) {
		bars := makeBars(250, 400, -1)
		closes := models.Closes(bars)
		set, ok := NewMASet(closes, closes[len(closes)-1])
		require.True(t, ok)

		res := DetectTrend(bars, set, 14)
		assert.Equal(t, models.TrendDown, res.Label)
		assert.Equal(t, -8, res.Vote)
	})
}

func TestMAScore(t *testing.T) {
	t.Run("core only", func(t *testing.T) {
		got := MAScore(MASet{Price: 110, MA20: 105, MA50: 100})
		assert.Equal(t, 3, got.Score)
		assert.Equal(t, 3, got.Max)
		assert.Equal(t, []string{"Price>MA20", "Price>MA50", "MA20>MA50"}, got.Checks)
		assert.InDelta(t, 1.0, got.Ratio(), 1e-9)
	})

	t.Run("full stack", func(t *testing.T) {
		got := MAScore(MASet{
			Price: 90, MA20: 105, MA50: 100,
			MA100: 95, Has100: true,
			MA200: 80, Has200: true,
		})
		assert.Equal(t, 7, got.Max)
		assert.Equal(t, []string{"MA20>MA50", "MA50>MA100", "Price>MA200", "MA100>MA200"}, got.Checks)
		assert.Equal(t, 4, got.Score)
	})

	t.Run("MA200 without MA100 falls back to MA50", func(t *testing.T) {
		got := MAScore(MASet{Price: 110, MA20: 105, MA50: 100, MA200: 90, Has200: true})
		assert.Equal(t, 5, got.Max)
		assert.Contains(t, got.Checks, "MA50>MA200")
	})

	assert.Equal(t, 0.0, MAAlignment{}.Ratio())
}

// --- Momentum / crosses ---

func TestTSMOM(t *testing.T) {
	closes := append(constant(25, 100), 110)
	mom := TSMOM(closes, nil)
	require.True(t, mom.Available)
	assert.InDelta(t, 10, mom.Composite, 1e-9)
	require.Len(t, mom.Details, 3)
	assert.Equal(t, 4, mom.Details[0].Lookback)
	assert.InDelta(t, 10, mom.Details[2].ReturnPct, 1e-9)

	assert.False(t, TSMOM(closes[1:], nil).Available)
}

func TestTSMOMMixedReturns(t *testing.T) {
	closes := []float64{50, 100, 200, 100}
	// lb 2 -> 100/200, lb 4 -> 100/50
	mom := TSMOM(closes, []int{2, 4})
	require.True(t, mom.Available)
	assert.InDelta(t, (-50.0+100.0)/2, mom.Composite, 1e-9)
}

func TestTSMOMSkipsZeroReference(t *testing.T) {
	closes := []float64{0, 50, 100, 100}
	mom := TSMOM(closes, []int{2, 4})
	require.True(t, mom.Available)
	require.Len(t, mom.Details, 1)
	assert.Equal(t, 2, mom.Details[0].Lookback)
	assert.InDelta(t, 100.0, mom.Composite, 1e-9)

	mom = TSMOM([]float64{0, 1, 2, 3}, []int{4})
	assert.False(t, mom.Available)
}

func TestDetectCross(t *testing.T) {
	tests := []struct {
		name                           string
		fast, fastPrev, slow, slowPrev float64
		want                           models.Cross
	}{
		{"bullish", 11, 9, 10, 10, models.CrossBullish},
		{"bullish from touch", 11, 10, 10, 10, models.CrossBullish},
		{"bearish", 9, 11, 10, 10, models.CrossBearish},
		{"still above", 12, 11, 10, 10, models.CrossNone},
		{"still below", 8, 9, 10, 10, models.CrossNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCross(tt.fast, tt.fastPrev, tt.slow, tt.slowPrev))
		})
	}

	assert.Equal(t, models.CrossNone, CrossOf([]float64{1}, []float64{1}))
}

// --- Resample / evaluate ---

func TestWeekly(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	daily := []models.PriceBar{
		{Date: day(1), Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Date: day(3), Open: 11, High: 15, Low: 10, Close: 14, Volume: 200},
		{Date: day(7), Open: 14, High: 14, Low: 12, Close: 13, Volume: 50},
		{Date: day(8), Open: 13, High: 16, Low: 13, Close: 16, Volume: 300},
	}

	weeks := Weekly(daily)
	require.Len(t, weeks, 2)
	assert.Equal(t, models.PriceBar{Date: day(7), Open: 10, High: 15, Low: 9, Close: 13, Volume: 350}, weeks[0])
	assert.Equal(t, day(14), weeks[1].Date)
	assert.Equal(t, 16.0, weeks[1].Close)

	assert.Empty(t, Weekly(nil))
}

func TestEvaluateWeeklyEmpty(t *testing.T) {
	_, err := EvaluateWeekly("SPY", nil, DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEvaluateWeeklyShortHistory(t *testing.T) {
	res, err := EvaluateWeekly("NEW", makeBars(70, 10, 0.1), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 10, res.Weeks)
	assert.Nil(t, res.ZScore)
	assert.Equal(t, models.ZoneNA, res.ZScoreZone)
	assert.Equal(t, models.TrendInsufficient, res.Trend)
	assert.Equal(t, models.RegimeUnknown, res.Regime.Label)
	assert.Equal(t, "Insufficient data", res.Regime.Bias)
}

func TestEvaluateWeeklyPartialHistory(t *testing.T) {
	// 40 weeks: enough for z-score and momentum, not for MA50/ADX.
	res, err := EvaluateWeekly("MID", makeBars(280, 50, 0.2), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 40, res.Weeks)
	assert.NotNil(t, res.ZScore)
	assert.NotNil(t, res.Momentum)
	assert.Nil(t, res.ADX)
	assert.Nil(t, res.MAScore)
	assert.Equal(t, models.TrendInsufficient, res.Trend)
}

func TestEvaluateWeeklyUptrend(t *testing.T) {
	bars := makeBars(1400, 100, 0.5)
	res, err := EvaluateWeekly("SPY", bars, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 200, res.Weeks)
	assert.Equal(t, bars[len(bars)-1].Close, res.Price)
	require.NotNil(t, res.ZScore)
	assert.Equal(t, models.ZoneUpper, res.ZScoreZone)

	assert.Equal(t, models.TrendUp, res.Trend)
	assert.Equal(t, models.StrengthStrong, res.TrendStrength)
	require.NotNil(t, res.ADX)
	assert.Greater(t, *res.ADX, 25.0)

	require.NotNil(t, res.MAScore)
	assert.Equal(t, 7, *res.MAScore)
	assert.Equal(t, 7, *res.MAMax)

	require.NotNil(t, res.Momentum)
	assert.Greater(t, *res.Momentum, 0.0)
	assert.Len(t, res.MomentumDetails, 3)
	assert.Len(t, res.MADistance, 4)
}

func TestEvaluateDaily(t *testing.T) {
	_, err := EvaluateDaily("SPY", makeBars(199, 100, 1), DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientData)

	res, err := EvaluateDaily("SPY", makeBars(260, 100, 0.3), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 3, res.AlignmentMax)
	assert.GreaterOrEqual(t, res.Alignment, 0)
	assert.LessOrEqual(t, res.Alignment, 3)
	assert.NotNil(t, res.ZScore)
	assert.InDelta(t, 100, res.ADX, 1e-6)
	assert.InDelta(t, (res.Price-res.TEMA50)/res.TEMA50*100, res.TEMA50Dist, 1e-9)
}

func TestDailyTrendOf(t *testing.T) {
	tests := []struct {
		name                string
		price, t20, t50, t2 float64
		want                models.DailyTrend
	}{
		{"strong bullish", 110, 105, 100, 95, models.DailyStrongBullish},
		{"bullish", 110, 105, 100, 120, models.DailyBullish},
		{"strong bearish", 80, 90, 100, 110, models.DailyStrongBearish},
		{"bearish", 80, 90, 100, 70, models.DailyBearish},
		{"mixed", 100, 105, 100, 95, models.DailyMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DailyTrendOf(tt.price, tt.t20, tt.t50, tt.t2))
		})
	}
	assert.Equal(t, 3, TEMAAlignment(110, 105, 100, 95))
	assert.Equal(t, 0, TEMAAlignment(80, 90, 100, 110))
}
