package contracts

// Candle is one daily OHLCV bar.
type Candle struct {
	Date     Day     `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adj_close"`
	Volume   int64   `json:"volume"`
}

// PriceHistory is a ticker's daily bars in ascending date order.
type PriceHistory struct {
	Ticker  string   `json:"ticker"`
	Candles []Candle `json:"candles"`
}

// CloseOn returns the close price on the given day, or the most recent
// close on or before it (forward fill). ok is false when the day
// precedes the first candle.
//
// 휴장일/주말은 직전 종가로 채움
func (h PriceHistory) CloseOn(day Day) (float64, bool) {
	price := 0.0
	found := false
	for _, c := range h.Candles {
		if c.Date.After(day) {
			break
		}
		price = c.Close
		found = true
	}
	return price, found
}
