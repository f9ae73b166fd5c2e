package repository

import (
	"fmt"
	"strings"
)

// Timeframe is a candle aggregation period.
type Timeframe string

const (
	TimeframeHour Timeframe = "1h"
	TimeframeFour Timeframe = "4h"
	TimeframeDay  Timeframe = "1d"
)

// AnalysisTimeframes is the fixed short/medium/long horizon set every
// pair analysis spans.
var AnalysisTimeframes = []Timeframe{TimeframeHour, TimeframeFour, TimeframeDay}

// Normalize maps common spellings onto the canonical timeframes.
func Normalize(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1h", "60", "60m", "hour":
		return TimeframeHour, nil
	case "4h", "240", "240m":
		return TimeframeFour, nil
	case "1d", "d", "day", "daily":
		return TimeframeDay, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// BybitInterval returns the kline interval token Bybit v5 expects.
func (t Timeframe) BybitInterval() string {
	switch t {
	case TimeframeHour:
		return "60"
	case TimeframeFour:
		return "240"
	case TimeframeDay:
		return "D"
	}
	return string(t)
}
