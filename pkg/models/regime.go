package models

// RegimeLabel is the closed set of per-asset market regimes.
type RegimeLabel string

const (
	RegimeUnknown        RegimeLabel = "UNKNOWN"
	RegimeTrendingUp     RegimeLabel = "TRENDING_UP"
	RegimeTrendingDown   RegimeLabel = "TRENDING_DOWN"
	RegimeMeanRevertBuy  RegimeLabel = "MEAN_REVERT_BUY"
	RegimeMeanRevertSell RegimeLabel = "MEAN_REVERT_SELL"
	RegimeChoppy         RegimeLabel = "CHOPPY"
	RegimeNeutral        RegimeLabel = "NEUTRAL"
)

var regimeBias = map[RegimeLabel]string{
	RegimeUnknown:        "Insufficient data",
	RegimeTrendingUp:     "Ride trend, buy dips",
	RegimeTrendingDown:   "Avoid or exit",
	RegimeMeanRevertBuy:  "Z-score oversold",
	RegimeMeanRevertSell: "Z-score overbought",
	RegimeChoppy:         "Reduce exposure, wait",
	RegimeNeutral:        "No strong edge",
}

// Bias returns the fixed action bias paired with the label.
func (r RegimeLabel) Bias() string {
	if b, ok := regimeBias[r]; ok {
		return b
	}
	return regimeBias[RegimeUnknown]
}

// Valid reports whether r is one of the enumerated labels.
func (r RegimeLabel) Valid() bool {
	_, ok := regimeBias[r]
	return ok
}

// AllRegimes lists the labels in display order.
func AllRegimes() []RegimeLabel {
	return []RegimeLabel{
		RegimeTrendingUp,
		RegimeTrendingDown,
		RegimeMeanRevertBuy,
		RegimeMeanRevertSell,
		RegimeChoppy,
		RegimeNeutral,
		RegimeUnknown,
	}
}

// Regime pairs a label with its action bias.
type Regime struct {
	Label RegimeLabel `json:"label"`
	Bias  string      `json:"bias"`
}

// NewRegime builds a Regime with the label's fixed bias.
func NewRegime(label RegimeLabel) Regime {
	return Regime{Label: label, Bias: label.Bias()}
}

// VolatilityRegime is the fear/complacency classification of the
// smoothed, inverted volatility z-score.
type VolatilityRegime string

const (
	VolComplacency VolatilityRegime = "Complacency"
	VolRiskOn      VolatilityRegime = "Risk-On"
	VolNeutral     VolatilityRegime = "Neutral"
	VolRiskOff     VolatilityRegime = "Risk-Off"
	VolFear        VolatilityRegime = "Fear"
)
