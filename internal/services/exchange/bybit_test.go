package exchange

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	drepo "SwingRadar/internal/domain/repository"
	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testBybit(t *testing.T, url string) *BybitClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.Exchange.BaseURL = url
	cfg.Exchange.Category = "spot"
	cfg.Exchange.RequestsPerS = 100
	return NewBybit(cfg, testLogger(t), nil)
}

func TestSymbol(t *testing.T) {
	if got := Symbol("BTC/USDT"); got != "BTCUSDT" {
		t.Fatalf("Symbol = %q, want BTCUSDT", got)
	}
}

func TestFetchCandlesAscending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/kline" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "60" || q.Get("limit") != "3" {
			t.Errorf("unexpected query: %v", q)
		}
		// newest first, per the v5 kline contract
		w.Write([]byte(`{
			"retCode": 0,
			"result": {
				"category": "spot",
				"symbol": "BTCUSDT",
				"list": [
					["3000", "103", "104", "102", "103.5", "11", "1100"],
					["2000", "102", "103", "101", "102.5", "12", "1200"],
					["1000", "101", "102", "100", "101.5", "13", "1300"]
				]
			}
		}`))
	}))
	defer srv.Close()

	candles, err := testBybit(t, srv.URL).FetchCandles(context.Background(), "BTC/USDT", drepo.TimeframeHour, 3)
	if err != nil {
		t.Fatalf("FetchCandles: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("got %d candles, want 3", len(candles))
	}
	if candles[0].Timestamp != 1000 || candles[2].Timestamp != 3000 {
		t.Errorf("candles not ascending: %v", candles)
	}
	if candles[2].Close != 103.5 || candles[0].Volume != 13 {
		t.Errorf("unexpected candle values: %+v", candles)
	}
}

func TestFetchCandlesRetCodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode": 10001, "retMsg": "params error", "result": {}}`))
	}))
	defer srv.Close()

	_, err := testBybit(t, srv.URL).FetchCandles(context.Background(), "BTC/USDT", drepo.TimeframeHour, 10)
	if err == nil {
		t.Fatalf("expected retCode error")
	}
}

func TestCurrentPriceREST(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/tickers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"retCode": 0,
			"result": {"list": [{"symbol": "ETHUSDT", "lastPrice": "2500.25"}]}
		}`))
	}))
	defer srv.Close()

	price, err := testBybit(t, srv.URL).CurrentPrice(context.Background(), "ETH/USDT")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if price != 2500.25 {
		t.Errorf("price = %v, want 2500.25", price)
	}
}

func TestCurrentPricePrefersStream(t *testing.T) {
	stream := &TickerStream{prices: map[string]float64{"ETHUSDT": 2600}}

	cfg := &config.Config{}
	cfg.Exchange.BaseURL = "http://127.0.0.1:0" // must not be hit
	cfg.Exchange.RequestsPerS = 100
	b := NewBybit(cfg, testLogger(t), stream)

	price, err := b.CurrentPrice(context.Background(), "ETH/USDT")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if price != 2600 {
		t.Errorf("price = %v, want streamed 2600", price)
	}
}

func TestMarketInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"retCode": 0,
			"result": {"list": [{
				"symbol": "BTCUSDT",
				"lastPrice": "50000",
				"price24hPcnt": "0.025",
				"highPrice24h": "51000",
				"lowPrice24h": "49000",
				"volume24h": "1234.5",
				"turnover24h": "61725000",
				"bid1Price": "49999",
				"ask1Price": "50001"
			}]}
		}`))
	}))
	defer srv.Close()

	info, err := testBybit(t, srv.URL).MarketInfo(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("MarketInfo: %v", err)
	}
	if info.LastPrice != 50000 {
		t.Errorf("unexpected last price: %+v", info)
	}
	if math.Abs(info.Change24hPct-2.5) > 1e-9 {
		t.Errorf("change pct = %v, want 2.5", info.Change24hPct)
	}
	if info.High24h != 51000 || info.Low24h != 49000 {
		t.Errorf("unexpected 24h range: %+v", info)
	}
}

func TestParseKlineRowShort(t *testing.T) {
	if _, err := parseKlineRow([]string{"1000", "1"}); err == nil {
		t.Fatalf("expected error for short row")
	}
}
