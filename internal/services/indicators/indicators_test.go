package indicators

import (
	"math"
	"testing"

	"SwingRadar/internal/domain/models"
)

func syntheticCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/7)
	}
	return closes
}

func TestComputeFullHistory(t *testing.T) {
	set := NewProvider().Compute(syntheticCloses(200))

	if len(set.RSI) == 0 {
		t.Fatalf("expected RSI series")
	}
	last := set.RSI[len(set.RSI)-1]
	if last < 0 || last > 100 {
		t.Errorf("RSI out of range: %v", last)
	}

	if len(set.MACD) == 0 || len(set.MACDSignal) == 0 || len(set.MACDHist) == 0 {
		t.Fatalf("expected MACD series")
	}
	macd, signal, hist := LatestMACD(set)
	if math.Abs((macd-signal)-hist) > 1e-9 {
		t.Errorf("histogram mismatch: macd=%v signal=%v hist=%v", macd, signal, hist)
	}

	upper, middle, lower := LatestBands(set)
	if !(lower < middle && middle < upper) {
		t.Errorf("band ordering violated: %v %v %v", upper, middle, lower)
	}
}

func TestComputeShortHistory(t *testing.T) {
	set := NewProvider().Compute(syntheticCloses(10))

	if len(set.RSI) != 0 || len(set.MACD) != 0 || len(set.BBUpper) != 0 {
		t.Fatalf("expected empty series for short history: %+v", set)
	}

	if got := LatestRSI(set); got != NeutralRSI {
		t.Errorf("LatestRSI fallback = %v, want %v", got, NeutralRSI)
	}
	macd, signal, hist := LatestMACD(set)
	if macd != 0 || signal != 0 || hist != 0 {
		t.Errorf("expected zero MACD fallback, got %v %v %v", macd, signal, hist)
	}
	upper, middle, lower := LatestBands(set)
	if upper != 0 || middle != 0 || lower != 0 {
		t.Errorf("expected zero band fallback, got %v %v %v", upper, middle, lower)
	}
}

func TestCloses(t *testing.T) {
	candles := []models.Candle{
		{Close: 1.5}, {Close: 2.5}, {Close: 3.5},
	}
	closes := Closes(candles)
	if len(closes) != 3 || closes[0] != 1.5 || closes[2] != 3.5 {
		t.Fatalf("unexpected closes: %v", closes)
	}
}
