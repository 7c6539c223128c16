package models

// ZScoreZone labels where a z-score falls in the fixed partition of the
// real line.
type ZScoreZone string

const (
	ZoneExtremeOverbought ZScoreZone = "Extreme Overbought"
	ZoneOverbought        ZScoreZone = "Overbought"
	ZoneUpper             ZScoreZone = "Upper"
	ZoneNeutral           ZScoreZone = "Neutral"
	ZoneLower             ZScoreZone = "Lower"
	ZoneOversold          ZScoreZone = "Oversold"
	ZoneExtremeOversold   ZScoreZone = "Extreme Oversold"
	ZoneNA                ZScoreZone = "N/A"
)

// TrendLabel is the weekly trend direction.
type TrendLabel string

const (
	TrendUp           TrendLabel = "Uptrend"
	TrendDown         TrendLabel = "Downtrend"
	TrendSideways     TrendLabel = "Sideways/Choppy"
	TrendInsufficient TrendLabel = "Insufficient Data"
)

// Trend strength labels.
const (
	StrengthStrong   = "Strong"
	StrengthModerate = "Moderate"
	StrengthWeak     = "Weak"
	StrengthNA       = "N/A"
)

// Cross is the result of comparing a fast and a slow line across two bars.
type Cross string

const (
	CrossBullish Cross = "Bullish Cross"
	CrossBearish Cross = "Bearish Cross"
	CrossNone    Cross = "None"
)

// DailyTrend is the TEMA-stack trend label of the daily timeframe.
type DailyTrend string

const (
	DailyStrongBullish DailyTrend = "Strong Bullish"
	DailyBullish       DailyTrend = "Bullish"
	DailyStrongBearish DailyTrend = "Strong Bearish"
	DailyBearish       DailyTrend = "Bearish"
	DailyMixed         DailyTrend = "Mixed"
)

// MADistance is the percentage distance of price from one moving average.
type MADistance struct {
	Period int     `json:"period"`
	Pct    float64 `json:"pct"`
	Above  bool    `json:"above"`
}

// LookbackReturn is the percentage return over one momentum lookback.
type LookbackReturn struct {
	Lookback  int     `json:"lookback"`
	ReturnPct float64 `json:"return_pct"`
}

// IndicatorResult is the weekly snapshot for one asset. Optional values are
// nil when the history was too short to compute them.
type IndicatorResult struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Price  float64 `json:"price"`
	Weeks  int     `json:"weeks"`

	ZScore     *float64     `json:"zscore"`
	ZScoreZone ZScoreZone   `json:"zscore_zone"`
	MADistance []MADistance `json:"ma_distance,omitempty"`

	Trend         TrendLabel `json:"trend"`
	TrendStrength string     `json:"trend_strength"`
	ADX           *float64   `json:"adx"`
	PlusDI        *float64   `json:"plus_di,omitempty"`
	MinusDI       *float64   `json:"minus_di,omitempty"`

	Momentum        *float64         `json:"momentum"`
	MomentumDetails []LookbackReturn `json:"momentum_details,omitempty"`

	MAScore  *int     `json:"ma_score"`
	MAMax    *int     `json:"ma_max"`
	MAChecks []string `json:"ma_checks,omitempty"`

	Regime Regime `json:"regime"`
}

// DailyResult is the daily TEMA snapshot for one asset.
type DailyResult struct {
	Symbol     string     `json:"symbol"`
	Price      float64    `json:"price"`
	ZScore     *float64   `json:"zscore"`
	ZScoreZone ZScoreZone `json:"zscore_zone"`

	TEMA20  float64 `json:"tema20"`
	TEMA50  float64 `json:"tema50"`
	TEMA200 float64 `json:"tema200"`

	TEMA20Dist  float64 `json:"tema20_dist"`
	TEMA50Dist  float64 `json:"tema50_dist"`
	TEMA200Dist float64 `json:"tema200_dist"`

	Cross20x50  Cross `json:"cross_20_50"`
	Cross50x200 Cross `json:"cross_50_200"`

	Alignment    int `json:"tema_alignment"`
	AlignmentMax int `json:"tema_alignment_max"`

	ADX     float64    `json:"adx"`
	PlusDI  float64    `json:"plus_di"`
	MinusDI float64    `json:"minus_di"`
	Trend   DailyTrend `json:"trend"`
}

// Float returns a pointer to v, for optional record fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional record fields.
func Int(v int) *int { return &v }
