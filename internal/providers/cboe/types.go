package cboe

// cboeDailyChart is the historical chart payload
// (charts/historical/{SYMBOL}.json).
type cboeDailyChart struct {
	Symbol string         `json:"symbol"`
	Data   []cboeDailyBar `json:"data"`
}

type cboeDailyBar struct {
	Date        string  `json:"date"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	StockVolume int64   `json:"stock_volume"`
}
