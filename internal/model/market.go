package model

import "time"

// DateLayout is the canonical date format used for price and signal keys.
const DateLayout = "2006-01-02"

// OHLCV represents a single daily candlestick bar as fetched from the
// market-data provider. Only Close feeds the signal pipeline; the rest
// is stored as-is.
type OHLCV struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// DateString returns the bar's date in canonical YYYY-MM-DD form.
func (b OHLCV) DateString() string {
	return b.Date.Format(DateLayout)
}

// ClosePoint is one entry of a ticker's ordered daily closing series.
type ClosePoint struct {
	Date  string
	Close float64
}
