package models

import "time"

// PriceBar is one sampling interval of price data (daily or weekly).
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Closes extracts closing prices, preserving order.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Since returns the trailing bars dated on or after from.
func Since(bars []PriceBar, from time.Time) []PriceBar {
	for i, b := range bars {
		if !b.Date.Before(from) {
			return bars[i:]
		}
	}
	return nil
}
