package engine

import (
	"math"
	"testing"
	"time"

	"github.com/creasty/defaults"

	"SwingRadar/internal/domain/models"
	"SwingRadar/pkg/config"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	var th config.Thresholds
	if err := defaults.Set(&th); err != nil {
		t.Fatalf("thresholds defaults: %v", err)
	}
	return New(th)
}

// singleton turns a latest value into a one-element series.
func singleton(v float64) []float64 { return []float64{v} }

type inputParams struct {
	rsiShort, rsiMedium, rsiLong float64
	histShort, histMedium        float64
	price                        float64
	lower, middle, upper         float64
	forecast, volatility         float64
}

func mkInput(p inputParams) Input {
	set := func(rsi, hist float64) models.IndicatorSet {
		return models.IndicatorSet{
			RSI:      singleton(rsi),
			MACDHist: singleton(hist),
		}
	}
	long := models.IndicatorSet{
		RSI:      singleton(p.rsiLong),
		BBUpper:  singleton(p.upper),
		BBMiddle: singleton(p.middle),
		BBLower:  singleton(p.lower),
	}
	return Input{
		Pair:     "BTC/USDT",
		Exchange: "bybit",
		Price:    p.price,
		Short:    set(p.rsiShort, p.histShort),
		Medium:   set(p.rsiMedium, p.histMedium),
		Long:     long,
		Forecast: models.ForecastResult{
			Pair:          "BTC/USDT",
			PointForecast: p.forecast,
			Volatility:    p.volatility,
		},
	}
}

func strongBuyParams() inputParams {
	return inputParams{
		rsiShort: 25, rsiMedium: 25, rsiLong: 20,
		histShort: 0.5, histMedium: 0.5,
		price: 100, lower: 99, middle: 109, upper: 119, // bbPosition 0.05
		forecast: 108, volatility: 0.8, // forecastDiff +8%
	}
}

func neutralParams() inputParams {
	return inputParams{
		rsiShort: 50, rsiMedium: 50, rsiLong: 50,
		price: 100, lower: 90, middle: 100, upper: 110, // bbPosition 0.5
		forecast: 100, volatility: 1.0,
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	e := testEngine(t)
	in := mkInput(strongBuyParams())
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	a := e.Analyze(in, now)
	b := e.Analyze(in, now)

	if a.Classification != b.Classification || a.Probability != b.Probability || a.Confidence != b.Confidence {
		t.Fatalf("engine is not deterministic: %+v vs %+v", a, b)
	}
}

func TestAnalyzeStrongBuyScenario(t *testing.T) {
	rec := testEngine(t).Analyze(mkInput(strongBuyParams()), time.Now())

	if rec.Classification != models.StrongBuy {
		t.Fatalf("classification = %s, want STRONG_BUY (prob=%v conf=%v)",
			rec.Classification, rec.Probability, rec.Confidence)
	}
	if rec.Reasoning.RiskLevel != models.RiskModerate {
		t.Errorf("risk = %s, want MODERATE for volatility 0.8", rec.Reasoning.RiskLevel)
	}
	if rec.Target == nil {
		t.Fatalf("expected a target for a non-HOLD classification")
	}
	if !(rec.Target.StopLoss < rec.Target.Entry && rec.Target.Entry < rec.Target.TakeProfit) {
		t.Errorf("target ordering violated: %+v", rec.Target)
	}
}

func TestAnalyzeHoldScenario(t *testing.T) {
	rec := testEngine(t).Analyze(mkInput(neutralParams()), time.Now())

	if rec.Classification != models.Hold {
		t.Fatalf("classification = %s, want HOLD", rec.Classification)
	}
	if rec.Probability != 0.5 {
		t.Errorf("probability = %v, want 0.5 for fully neutral input", rec.Probability)
	}
	if rec.Target != nil {
		t.Errorf("HOLD must not carry a target: %+v", rec.Target)
	}
	if len(rec.Reasoning.Technical) == 0 {
		t.Fatalf("expected reasoning for HOLD")
	}
	if rec.Reasoning.Technical[0] != "indicators undetermined, no directional edge" {
		t.Errorf("unexpected HOLD reasoning: %v", rec.Reasoning.Technical)
	}
}

func TestProbabilityAndConfidenceBounds(t *testing.T) {
	e := testEngine(t)
	extremes := []inputParams{
		{rsiShort: 1, rsiMedium: 1, rsiLong: 1, histShort: 10, histMedium: 10,
			price: 100, lower: 120, middle: 130, upper: 140, forecast: 600, volatility: 0.01},
		{rsiShort: 99, rsiMedium: 99, rsiLong: 99, histShort: -10, histMedium: -10,
			price: 100, lower: 60, middle: 70, upper: 80, forecast: 1, volatility: 50},
		{price: 100, forecast: 100, volatility: 0}, // empty series everywhere
	}
	for i, p := range extremes {
		rec := e.Analyze(mkInput(p), time.Now())
		if rec.Probability < 0 || rec.Probability > 1 {
			t.Errorf("case %d: probability out of bounds: %v", i, rec.Probability)
		}
		if rec.Confidence < 0 || rec.Confidence > 1 {
			t.Errorf("case %d: confidence out of bounds: %v", i, rec.Confidence)
		}
	}
}

// rank orders classifications from most bullish to most bearish.
func rank(c models.Classification) int {
	switch c {
	case models.StrongBuy:
		return 2
	case models.Buy:
		return 1
	case models.Sell:
		return -1
	case models.StrongSell:
		return -2
	default:
		return 0
	}
}

func TestClassificationMonotonicOverRSI(t *testing.T) {
	e := testEngine(t)
	prev := math.MaxInt32

	for rsi := 0.0; rsi <= 100; rsi++ {
		p := inputParams{
			rsiShort:   rsi,
			rsiMedium:  rsi,
			rsiLong:    rsi,
			histShort:  (50 - rsi) / 50,
			histMedium: (50 - rsi) / 50,
			price:      100,
			volatility: 1.2,
			forecast:   100 + (50-rsi)/5, // positive forecast when oversold
		}
		// band position tracks rsi: oversold sits near the lower band
		p.lower = 100 - rsi/100*20
		p.upper = p.lower + 20
		p.middle = p.lower + 10

		rec := e.Analyze(mkInput(p), time.Now())
		r := rank(rec.Classification)
		if r > prev {
			t.Fatalf("classification became more bullish as RSI rose: rsi=%v got %s", rsi, rec.Classification)
		}
		if prev-r > 1 && prev != math.MaxInt32 {
			t.Fatalf("classification skipped a state at rsi=%v: rank %d -> %d", rsi, prev, r)
		}
		prev = r
	}

	if prev != -2 {
		t.Errorf("walk never reached STRONG_SELL, ended at rank %d", prev)
	}
}

func TestGateExclusivityWitness(t *testing.T) {
	e := testEngine(t)
	// Probability gates alone make buy-side and sell-side outcomes
	// mutually exclusive; sweep a coarse grid and check the witness.
	for rsi := 0.0; rsi <= 100; rsi += 5 {
		for vol := 0.1; vol <= 3; vol += 0.4 {
			for fd := -10.0; fd <= 10; fd += 2.5 {
				for bb := 0.0; bb <= 1; bb += 0.25 {
					lower := 100 - bb*20
					p := inputParams{
						rsiShort: rsi, rsiMedium: rsi, rsiLong: rsi,
						price: 100, lower: lower, middle: lower + 10, upper: lower + 20,
						forecast: 100 * (1 + fd/100), volatility: vol,
					}
					rec := e.Analyze(mkInput(p), time.Now())
					if rec.Classification.Bullish() && rec.Probability < 0.75 {
						t.Fatalf("bullish outcome below buy probability gate: %+v", rec)
					}
					if rec.Classification.Bearish() && rec.Probability > 0.25 {
						t.Fatalf("bearish outcome above sell probability gate: %+v", rec)
					}
				}
			}
		}
	}
}

func TestRiskRewardRatio(t *testing.T) {
	e := testEngine(t)

	buy := e.Analyze(mkInput(strongBuyParams()), time.Now())
	if buy.Target == nil {
		t.Fatalf("expected target")
	}
	checkRatio(t, buy.Target)

	sell := e.Analyze(mkInput(inputParams{
		rsiShort: 75, rsiMedium: 75, rsiLong: 80,
		histShort: -0.5, histMedium: -0.5,
		price: 100, lower: 81, middle: 91, upper: 101, // bbPosition 0.95
		forecast: 92, volatility: 1.2, // forecastDiff -8%
	}), time.Now())
	if sell.Classification != models.StrongSell {
		t.Fatalf("classification = %s, want STRONG_SELL", sell.Classification)
	}
	if !(sell.Target.TakeProfit < sell.Target.Entry && sell.Target.Entry < sell.Target.StopLoss) {
		t.Errorf("sell target ordering violated: %+v", sell.Target)
	}
	checkRatio(t, sell.Target)
}

func checkRatio(t *testing.T, target *models.SwingTarget) {
	t.Helper()
	risk := math.Abs(target.Entry - target.StopLoss)
	reward := math.Abs(target.TakeProfit - target.Entry)
	if risk == 0 {
		t.Fatalf("zero risk distance: %+v", target)
	}
	if ratio := reward / risk; math.Abs(ratio-3) > 1e-9 {
		t.Errorf("reward:risk = %v, want 3", ratio)
	}
}

func TestForecastFallbackSkewsTowardHold(t *testing.T) {
	// Fallback forecast equals the current price, so forecastDiff is 0
	// and no directional gate can fire.
	p := strongBuyParams()
	p.forecast = p.price
	p.volatility = 0.02

	rec := testEngine(t).Analyze(mkInput(p), time.Now())
	if rec.Classification != models.Hold {
		t.Fatalf("classification = %s, want HOLD under fallback forecast", rec.Classification)
	}
}

func TestTrendStrength(t *testing.T) {
	if got := trendStrength(nil); got != 0 {
		t.Errorf("empty history trend = %v, want 0", got)
	}

	short := make([]models.Candle, 100)
	if got := trendStrength(short); got != 0 {
		t.Errorf("short history trend = %v, want 0", got)
	}

	// 168 candles: old window at 100, recent window at 150.
	candles := make([]models.Candle, 168)
	for i := range candles {
		candles[i].Close = 100
	}
	for i := len(candles) - 48; i < len(candles); i++ {
		candles[i].Close = 150
	}
	if got := trendStrength(candles); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("trend = %v, want 0.5", got)
	}
}
