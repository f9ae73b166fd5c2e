package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SwingRadar/internal/domain/models"
	drepo "SwingRadar/internal/domain/repository"
	"SwingRadar/internal/service/ratelimit"
	"SwingRadar/pkg/config"
	xhttp "SwingRadar/pkg/http"
	applogger "SwingRadar/pkg/logger"
)

const limiterKey = "bybit-rest"

// BybitClient implements MarketData over the Bybit v5 public REST API.
// When a ticker stream is attached, CurrentPrice prefers the live
// stream price and falls back to REST.
type BybitClient struct {
	baseURL  string
	category string
	rps      float64
	client   *xhttp.Client
	limiter  *ratelimit.Limiter
	stream   *TickerStream
	logger   *applogger.Logger
}

func NewBybit(cfg *config.Config, l *applogger.Logger, stream *TickerStream) *BybitClient {
	timeout := cfg.Exchange.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.Exchange.RequestsPerS
	if rps <= 0 {
		rps = 5
	}
	return &BybitClient{
		baseURL:  cfg.Exchange.BaseURL,
		category: cfg.Exchange.Category,
		rps:      rps,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:  ratelimit.New(),
		stream:   stream,
		logger:   l,
	}
}

// Symbol converts BASE/QUOTE pair syntax to the exchange symbol, e.g.
// BTC/USDT -> BTCUSDT.
func Symbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "")
}

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string     `json:"category"`
		Symbol   string     `json:"symbol"`
		List     [][]string `json:"list"`
	} `json:"result"`
}

// FetchCandles returns up to limit candles for the pair and timeframe,
// ascending by open time.
func (b *BybitClient) FetchCandles(ctx context.Context, pair string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	if err := b.throttle(ctx); err != nil {
		return nil, err
	}

	var resp klineResponse
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/v5/market/kline",
		QueryParams: map[string][]string{
			"category": {b.category},
			"symbol":   {Symbol(pair)},
			"interval": {tf.BybitInterval()},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("bybit kline %s %s: %w", pair, tf, err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit kline %s %s: retCode=%d %s", pair, tf, resp.RetCode, resp.RetMsg)
	}

	// Bybit returns newest-first; reverse into ascending order.
	rows := resp.Result.List
	candles := make([]models.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		c, err := parseKlineRow(rows[i])
		if err != nil {
			return nil, fmt.Errorf("bybit kline %s %s: %w", pair, tf, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseKlineRow(row []string) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("short kline row: %d fields", len(row))
	}
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("kline timestamp %q: %w", row[0], err)
	}
	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("kline field %q: %w", row[i+1], err)
		}
		vals[i] = v
	}
	return models.Candle{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

type tickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []tickerRow `json:"list"`
	} `json:"result"`
}

type tickerRow struct {
	Symbol       string `json:"symbol"`
	LastPrice    string `json:"lastPrice"`
	Price24hPcnt string `json:"price24hPcnt"`
	HighPrice24h string `json:"highPrice24h"`
	LowPrice24h  string `json:"lowPrice24h"`
	Volume24h    string `json:"volume24h"`
	Turnover24h  string `json:"turnover24h"`
	Bid1Price    string `json:"bid1Price"`
	Ask1Price    string `json:"ask1Price"`
}

// CurrentPrice returns the latest trade price for the pair.
func (b *BybitClient) CurrentPrice(ctx context.Context, pair string) (float64, error) {
	if b.stream != nil {
		if p, ok := b.stream.LastPrice(Symbol(pair)); ok && p > 0 {
			return p, nil
		}
	}

	row, err := b.fetchTicker(ctx, pair)
	if err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(row.LastPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("bybit ticker %s: lastPrice %q: %w", pair, row.LastPrice, err)
	}
	return price, nil
}

// MarketInfo returns the 24h market summary for the pair.
func (b *BybitClient) MarketInfo(ctx context.Context, pair string) (*models.MarketInfo, error) {
	row, err := b.fetchTicker(ctx, pair)
	if err != nil {
		return nil, err
	}

	info := &models.MarketInfo{Pair: pair}
	info.LastPrice = parseFloatLoose(row.LastPrice)
	info.Change24hPct = parseFloatLoose(row.Price24hPcnt) * 100
	info.High24h = parseFloatLoose(row.HighPrice24h)
	info.Low24h = parseFloatLoose(row.LowPrice24h)
	info.Volume24h = parseFloatLoose(row.Volume24h)
	info.Turnover24h = parseFloatLoose(row.Turnover24h)
	info.BidPrice = parseFloatLoose(row.Bid1Price)
	info.AskPrice = parseFloatLoose(row.Ask1Price)
	return info, nil
}

func (b *BybitClient) fetchTicker(ctx context.Context, pair string) (*tickerRow, error) {
	if err := b.throttle(ctx); err != nil {
		return nil, err
	}

	var resp tickersResponse
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/v5/market/tickers",
		QueryParams: map[string][]string{
			"category": {b.category},
			"symbol":   {Symbol(pair)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("bybit tickers %s: %w", pair, err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit tickers %s: retCode=%d %s", pair, resp.RetCode, resp.RetMsg)
	}
	if len(resp.Result.List) == 0 {
		return nil, fmt.Errorf("bybit tickers %s: empty result", pair)
	}
	return &resp.Result.List[0], nil
}

// throttle blocks until the token bucket admits one more REST call.
func (b *BybitClient) throttle(ctx context.Context) error {
	for !b.limiter.Allow(limiterKey, b.rps, b.rps) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

func parseFloatLoose(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

var _ drepo.MarketData = (*BybitClient)(nil)
