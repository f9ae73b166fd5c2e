package models

// Candle represents a single OHLCV record for one timeframe.
// Timestamp is the candle open time in milliseconds since epoch.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// MarketInfo is the 24h market summary for a pair.
type MarketInfo struct {
	Pair         string  `json:"pair"`
	LastPrice    float64 `json:"lastPrice"`
	Change24hPct float64 `json:"change24hPct"`
	High24h      float64 `json:"high24h"`
	Low24h       float64 `json:"low24h"`
	Volume24h    float64 `json:"volume24h"`
	Turnover24h  float64 `json:"turnover24h"`
	BidPrice     float64 `json:"bidPrice"`
	AskPrice     float64 `json:"askPrice"`
}
