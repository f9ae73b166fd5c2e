package engine

import (
	"fmt"
	"time"

	"SwingRadar/internal/domain/models"
	"SwingRadar/internal/services/indicators"
	"SwingRadar/pkg/config"
)

// Trend strength compares the average close of the most recent window
// against a window further back in the short-timeframe history.
const (
	trendRecentWindow = 48
	trendOldStart     = 168
	trendOldEnd       = 120
)

const swingHorizon = "3-7 days"

// Input is everything the engine needs for one pair. Candle histories
// and indicator series are fetched by the caller; the engine itself is
// a pure function of this input.
type Input struct {
	Pair         string
	Exchange     string
	Price        float64
	ShortCandles []models.Candle
	Short        models.IndicatorSet
	Medium       models.IndicatorSet
	Long         models.IndicatorSet
	Forecast     models.ForecastResult
}

// swingContext holds the intermediate scoring state for one analysis.
// Built fresh per pair, never persisted.
type swingContext struct {
	rsiShort      float64
	rsiMedium     float64
	rsiLong       float64
	histShort     float64
	histMedium    float64
	bbPosition    float64
	bandWidth     float64
	trendStrength float64
	volatility    float64
	forecastDiff  float64
	confluence    int
	rsiDivergence float64
	probability   float64
	confidence    float64
}

// Engine turns market inputs into a classified recommendation. All
// classification thresholds come from configuration.
type Engine struct {
	th config.Thresholds
}

func New(th config.Thresholds) *Engine {
	return &Engine{th: th}
}

// Analyze produces exactly one recommendation for the pair. Identical
// inputs always yield identical classification, probability and
// confidence.
func (e *Engine) Analyze(in Input, now time.Time) models.Recommendation {
	sc := e.buildContext(in)
	classification := e.classify(sc)

	rec := models.Recommendation{
		Pair:           in.Pair,
		Exchange:       in.Exchange,
		Price:          in.Price,
		Probability:    sc.probability,
		Confidence:     sc.confidence,
		Classification: classification,
		Reasoning:      e.reason(sc, classification),
		CreatedAt:      now,
	}
	if classification != models.Hold {
		rec.Target = e.target(in.Price, sc.bandWidth, classification)
	}
	return rec
}

func (e *Engine) buildContext(in Input) swingContext {
	var sc swingContext

	sc.rsiShort = indicators.LatestRSI(in.Short)
	sc.rsiMedium = indicators.LatestRSI(in.Medium)
	sc.rsiLong = indicators.LatestRSI(in.Long)

	_, _, sc.histShort = indicators.LatestMACD(in.Short)
	_, _, sc.histMedium = indicators.LatestMACD(in.Medium)

	upper, middle, lower := indicators.LatestBands(in.Long)
	if upper > lower {
		// Not hard-clamped: values outside [0,1] mean price outside the bands.
		sc.bbPosition = (in.Price - lower) / (upper - lower)
	} else {
		sc.bbPosition = 0.5
	}
	if middle > 0 && upper > lower {
		sc.bandWidth = (upper - lower) / middle
	}

	sc.trendStrength = trendStrength(in.ShortCandles)
	sc.volatility = in.Forecast.Volatility
	if in.Price > 0 {
		sc.forecastDiff = (in.Forecast.PointForecast - in.Price) / in.Price * 100
	}

	sc.confluence = confluence(sc)
	sc.rsiDivergence = abs(sc.rsiShort-sc.rsiMedium) + abs(sc.rsiMedium-sc.rsiLong)
	sc.probability = probability(sc)
	sc.confidence = confidence(sc)
	return sc
}

// trendStrength is the relative change between the average close of
// the latest 48 candles and the average of candles 168..120 back. With
// fewer than 168 candles there is no opinion.
func trendStrength(candles []models.Candle) float64 {
	n := len(candles)
	if n < trendOldStart {
		return 0
	}
	recent := avgClose(candles[n-trendRecentWindow:])
	old := avgClose(candles[n-trendOldStart : n-trendOldEnd])
	if old == 0 {
		return 0
	}
	return (recent - old) / old
}

func avgClose(candles []models.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.Close
	}
	return sum / float64(len(candles))
}

// confluence is a coarse agreement score across timeframes and
// indicator families, roughly -5..+5.
func confluence(sc swingContext) int {
	score := 0
	if sc.rsiShort < 30 && sc.rsiMedium < 35 && sc.rsiLong < 40 {
		score += 3
	}
	if sc.rsiShort > 70 && sc.rsiMedium > 65 && sc.rsiLong > 60 {
		score -= 3
	}
	if sc.histShort > 0 && sc.histMedium > 0 {
		score += 2
	}
	if sc.histShort < 0 && sc.histMedium < 0 {
		score -= 2
	}
	return score
}

func probability(sc swingContext) float64 {
	p := 50.0

	switch {
	case sc.rsiLong < 25:
		p += 25
	case sc.rsiLong < 35:
		p += 15
	case sc.rsiLong > 75:
		p -= 25
	case sc.rsiLong > 65:
		p -= 15
	}

	if sc.confluence >= 3 {
		p += 20
	} else if sc.confluence <= -3 {
		p -= 20
	}

	if sc.bbPosition < 0.1 {
		p += 15
	} else if sc.bbPosition > 0.9 {
		p -= 15
	}

	if sc.forecastDiff > 5 {
		p += 20
	} else if sc.forecastDiff < -5 {
		p -= 20
	}

	if sc.trendStrength > 0.7 {
		p += 10
	} else if sc.trendStrength < -0.7 {
		p -= 10
	}

	if sc.volatility > 2.0 {
		p -= 10
	} else if sc.volatility < 0.3 {
		p -= 5
	}

	return clamp(p, 0, 100) / 100
}

func confidence(sc swingContext) float64 {
	c := 0.5
	if sc.confluence >= 3 || sc.confluence <= -3 {
		c += 0.2
	}
	if sc.rsiDivergence < 10 {
		c += 0.1
	}
	if sc.volatility > 0.5 && sc.volatility < 1.5 {
		c += 0.1
	}
	if abs(sc.forecastDiff) > 2 {
		c += 0.1
	}
	return clamp(c, 0, 1)
}

// classify applies the ordered gates; first match wins. Every non-HOLD
// outcome requires agreement across probability, confidence,
// multi-timeframe RSI or confluence, band position, forecast direction
// and a volatility bound.
func (e *Engine) classify(sc swingContext) models.Classification {
	t := e.th

	if sc.probability >= t.StrongBuy.Probability &&
		sc.confidence >= t.StrongBuy.Confidence &&
		sc.rsiLong < t.StrongBuy.RSILong &&
		sc.rsiMedium < t.StrongBuy.RSIMedium &&
		sc.confluence >= t.StrongBuy.Confluence &&
		sc.bbPosition < t.StrongBuy.BBPosition &&
		sc.forecastDiff > t.StrongBuy.ForecastDiff &&
		sc.volatility < t.StrongBuy.Volatility {
		return models.StrongBuy
	}

	if sc.probability >= t.Buy.Probability &&
		sc.confidence >= t.Buy.Confidence &&
		((sc.rsiLong < t.Buy.RSILong && sc.rsiMedium < t.Buy.RSIMedium) || sc.confluence >= t.Buy.Confluence) &&
		sc.bbPosition < t.Buy.BBPosition &&
		sc.forecastDiff > t.Buy.ForecastDiff &&
		sc.volatility < t.Buy.Volatility {
		return models.Buy
	}

	if sc.probability <= t.StrongSell.Probability &&
		sc.confidence >= t.StrongSell.Confidence &&
		sc.rsiLong > t.StrongSell.RSILong &&
		sc.rsiMedium > t.StrongSell.RSIMedium &&
		sc.confluence <= t.StrongSell.Confluence &&
		sc.bbPosition > t.StrongSell.BBPosition &&
		sc.forecastDiff < t.StrongSell.ForecastDiff &&
		sc.volatility > t.StrongSell.Volatility {
		return models.StrongSell
	}

	if sc.probability <= t.Sell.Probability &&
		sc.confidence >= t.Sell.Confidence &&
		((sc.rsiLong > t.Sell.RSILong && sc.rsiMedium > t.Sell.RSIMedium) || sc.confluence <= t.Sell.Confluence) &&
		sc.bbPosition > t.Sell.BBPosition &&
		sc.forecastDiff < t.Sell.ForecastDiff &&
		sc.volatility > t.Sell.Volatility {
		return models.Sell
	}

	return models.Hold
}

func (e *Engine) reason(sc swingContext, cls models.Classification) models.Reasoning {
	var technical []string

	switch {
	case sc.rsiLong < 30:
		technical = append(technical, fmt.Sprintf("RSI oversold on the daily timeframe (%.1f)", sc.rsiLong))
	case sc.rsiLong > 70:
		technical = append(technical, fmt.Sprintf("RSI overbought on the daily timeframe (%.1f)", sc.rsiLong))
	}
	if sc.confluence >= 3 {
		technical = append(technical, fmt.Sprintf("bullish confluence across timeframes (%+d)", sc.confluence))
	} else if sc.confluence <= -3 {
		technical = append(technical, fmt.Sprintf("bearish confluence across timeframes (%+d)", sc.confluence))
	}
	if sc.bbPosition < 0.15 {
		technical = append(technical, fmt.Sprintf("price near the lower volatility band (position %.2f)", sc.bbPosition))
	} else if sc.bbPosition > 0.85 {
		technical = append(technical, fmt.Sprintf("price near the upper volatility band (position %.2f)", sc.bbPosition))
	}
	if sc.trendStrength > 0.7 {
		technical = append(technical, fmt.Sprintf("strong uptrend (%.2f)", sc.trendStrength))
	} else if sc.trendStrength < -0.7 {
		technical = append(technical, fmt.Sprintf("strong downtrend (%.2f)", sc.trendStrength))
	}
	if len(technical) == 0 {
		technical = append(technical, "indicators undetermined, no directional edge")
	}

	var fundamental []string
	if sc.forecastDiff > 2 {
		fundamental = append(fundamental, fmt.Sprintf("forecast %.1f%% above current price", sc.forecastDiff))
	} else if sc.forecastDiff < -2 {
		fundamental = append(fundamental, fmt.Sprintf("forecast %.1f%% below current price", sc.forecastDiff))
	}
	if sc.volatility > 2.0 {
		fundamental = append(fundamental, fmt.Sprintf("elevated volatility (%.2f)", sc.volatility))
	} else if sc.volatility < 0.3 {
		fundamental = append(fundamental, fmt.Sprintf("unusually quiet market (volatility %.2f)", sc.volatility))
	}

	return models.Reasoning{
		Technical:   technical,
		Fundamental: fundamental,
		RiskLevel:   riskLevel(cls, sc.volatility),
		Horizon:     swingHorizon,
	}
}

func riskLevel(cls models.Classification, volatility float64) models.RiskLevel {
	if cls == models.StrongBuy || cls == models.StrongSell {
		if volatility > 1.5 {
			return models.RiskHigh
		}
		return models.RiskModerate
	}
	switch {
	case volatility > 2.0:
		return models.RiskHigh
	case volatility < 0.5:
		return models.RiskLow
	default:
		return models.RiskModerate
	}
}

// target derives the entry/stop/take plan from the band-implied
// volatility. The 0.5x/1.5x multipliers encode a fixed 3:1 reward to
// risk ratio.
func (e *Engine) target(price, bandWidth float64, cls models.Classification) *models.SwingTarget {
	risk := bandWidth * e.th.StopLossMult
	reward := bandWidth * e.th.TakeProfitMult

	t := &models.SwingTarget{Entry: price}
	if cls.Bullish() {
		t.StopLoss = price * (1 - risk)
		t.TakeProfit = price * (1 + reward)
	} else {
		t.StopLoss = price * (1 + risk)
		t.TakeProfit = price * (1 - reward)
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
