package indicators

import (
	"github.com/markcheno/go-talib"

	"SwingRadar/internal/domain/models"
)

const (
	rsiPeriod    = 14
	macdFast     = 12
	macdSlow     = 26
	macdSmooth   = 9
	bbPeriod     = 20
	bbStdDevUp   = 2.0
	bbStdDevDown = 2.0
)

// Neutral substitutes used when warm-up leaves a series empty.
const (
	NeutralRSI = 50.0
)

// Provider computes the indicator series consumed by the signal engine.
// Series are trimmed of their warm-up prefix so the last element of each
// is always the latest valid value.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Compute runs RSI(14), MACD(12,26,9) and Bollinger(20,2) over closes.
// Histories shorter than an indicator's warm-up window yield empty
// series for that indicator rather than an error.
func (p *Provider) Compute(closes []float64) models.IndicatorSet {
	var set models.IndicatorSet

	if len(closes) > rsiPeriod {
		set.RSI = talib.Rsi(closes, rsiPeriod)[rsiPeriod:]
	}

	macdLookback := macdSlow + macdSmooth - 2
	if len(closes) > macdLookback {
		macd, signal, hist := talib.Macd(closes, macdFast, macdSlow, macdSmooth)
		set.MACD = macd[macdLookback:]
		set.MACDSignal = signal[macdLookback:]
		set.MACDHist = hist[macdLookback:]
	}

	if len(closes) >= bbPeriod {
		upper, middle, lower := talib.BBands(closes, bbPeriod, bbStdDevUp, bbStdDevDown, talib.SMA)
		set.BBUpper = upper[bbPeriod-1:]
		set.BBMiddle = middle[bbPeriod-1:]
		set.BBLower = lower[bbPeriod-1:]
	}

	return set
}

// LatestRSI returns the most recent RSI value, or the neutral midpoint
// when the series is empty.
func LatestRSI(set models.IndicatorSet) float64 {
	if len(set.RSI) == 0 {
		return NeutralRSI
	}
	return set.RSI[len(set.RSI)-1]
}

// LatestMACD returns the most recent MACD line, signal and histogram
// values, or zeros when the series are empty.
func LatestMACD(set models.IndicatorSet) (macd, signal, hist float64) {
	if n := len(set.MACD); n > 0 {
		macd = set.MACD[n-1]
	}
	if n := len(set.MACDSignal); n > 0 {
		signal = set.MACDSignal[n-1]
	}
	if n := len(set.MACDHist); n > 0 {
		hist = set.MACDHist[n-1]
	}
	return macd, signal, hist
}

// LatestBands returns the most recent Bollinger triple, or zeros when
// the series are empty. Callers must treat a zero band width as "no
// band opinion".
func LatestBands(set models.IndicatorSet) (upper, middle, lower float64) {
	if n := len(set.BBUpper); n > 0 {
		upper = set.BBUpper[n-1]
	}
	if n := len(set.BBMiddle); n > 0 {
		middle = set.BBMiddle[n-1]
	}
	if n := len(set.BBLower); n > 0 {
		lower = set.BBLower[n-1]
	}
	return upper, middle, lower
}

// Closes extracts the close series from a candle history.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
