package models

import "time"

// VolatilityRecord summarises the volatility index and its regime.
type VolatilityRecord struct {
	Symbol    string           `json:"symbol"`
	Date      time.Time        `json:"date"`
	Level     float64          `json:"level"`
	LevelDesc string           `json:"level_desc"`
	ZScore    float64          `json:"zscore"`
	Regime    VolatilityRegime `json:"regime"`
}

// Sentiment is a 0-100 fear & greed reading.
type Sentiment struct {
	Market string `json:"market"`
	Value  int    `json:"value"`
	Label  string `json:"label"`
	Source string `json:"source,omitempty"`
}

// Sentiment markets.
const (
	MarketStocks = "stocks"
	MarketCrypto = "crypto"
)
