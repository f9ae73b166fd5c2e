package models

import "time"

// Classification is the outcome of one pair analysis.
type Classification string

const (
	StrongBuy  Classification = "STRONG_BUY"
	Buy        Classification = "BUY"
	Hold       Classification = "HOLD"
	Sell       Classification = "SELL"
	StrongSell Classification = "STRONG_SELL"
)

// Bullish reports whether the classification is on the buy side.
func (c Classification) Bullish() bool {
	return c == StrongBuy || c == Buy
}

// Bearish reports whether the classification is on the sell side.
func (c Classification) Bearish() bool {
	return c == StrongSell || c == Sell
}

// RiskLevel labels the volatility-derived risk of acting on a recommendation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// IndicatorSet holds the computed indicator series for one timeframe.
// All series are aligned by index and shorter than the candle history
// that produced them by each indicator's warm-up period.
type IndicatorSet struct {
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	BBUpper    []float64
	BBMiddle   []float64
	BBLower    []float64
}

// ForecastResult is the sidecar's point forecast for a pair.
type ForecastResult struct {
	Pair          string  `json:"pair"`
	PointForecast float64 `json:"pointForecast"`
	Volatility    float64 `json:"volatility"`
}

// Reasoning is the human-readable justification attached to a recommendation.
type Reasoning struct {
	Technical   []string  `json:"technical"`
	Fundamental []string  `json:"fundamental"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Horizon     string    `json:"horizon"`
}

// SwingTarget is the entry/exit price plan for a non-HOLD recommendation.
type SwingTarget struct {
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
}

// Recommendation is the full analysis outcome for one pair in one pass.
// Immutable once produced; the next pass replaces it wholesale.
type Recommendation struct {
	Pair           string         `json:"pair"`
	Exchange       string         `json:"exchange"`
	Price          float64        `json:"price"`
	Probability    float64        `json:"probability"`
	Confidence     float64        `json:"confidence"`
	Classification Classification `json:"classification"`
	Reasoning      Reasoning      `json:"reasoning"`
	Target         *SwingTarget   `json:"target,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// TradingSignal is a recommendation that cleared the confidence gate.
type TradingSignal struct {
	ID             string         `json:"id"`
	Pair           string         `json:"pair"`
	Exchange       string         `json:"exchange"`
	Classification Classification `json:"classification"`
	Price          float64        `json:"price"`
	Probability    float64        `json:"probability"`
	Confidence     float64        `json:"confidence"`
	Entry          float64        `json:"entry"`
	StopLoss       float64        `json:"stopLoss"`
	TakeProfit     float64        `json:"takeProfit"`
	RiskLevel      RiskLevel      `json:"riskLevel"`
	Horizon        string         `json:"horizon"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// MarketSentiment is the aggregate mood across the analyzed pairs.
type MarketSentiment string

const (
	SentimentBullish MarketSentiment = "BULLISH"
	SentimentBearish MarketSentiment = "BEARISH"
	SentimentNeutral MarketSentiment = "NEUTRAL"
)

// MarketConditions aggregates classification counts for one batch.
type MarketConditions struct {
	Bullish           int             `json:"bullish"`
	Bearish           int             `json:"bearish"`
	Neutral           int             `json:"neutral"`
	AverageConfidence float64         `json:"averageConfidence"`
	Sentiment         MarketSentiment `json:"sentiment"`
}

// BatchSnapshot is the most recent analysis batch, replaced as a whole
// after every pass.
type BatchSnapshot struct {
	Analyses   []Recommendation `json:"analyses"`
	Signals    []TradingSignal  `json:"signals"`
	Conditions MarketConditions `json:"conditions"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ComputeConditions derives the aggregate market mood from a batch of
// recommendations. Sentiment flips only when one side clearly outnumbers
// the other.
func ComputeConditions(analyses []Recommendation) MarketConditions {
	var c MarketConditions
	var confSum float64
	for _, a := range analyses {
		switch {
		case a.Classification.Bullish():
			c.Bullish++
		case a.Classification.Bearish():
			c.Bearish++
		default:
			c.Neutral++
		}
		confSum += a.Confidence
	}
	if len(analyses) > 0 {
		c.AverageConfidence = confSum / float64(len(analyses))
	}
	switch {
	case c.Bullish > c.Bearish+2:
		c.Sentiment = SentimentBullish
	case c.Bearish > c.Bullish+2:
		c.Sentiment = SentimentBearish
	default:
		c.Sentiment = SentimentNeutral
	}
	return c
}
