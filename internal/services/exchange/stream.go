package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

// TickerStream keeps a last-price map fresh from the Bybit v5 public
// ticker WebSocket. REST remains the fallback when the stream has no
// price for a symbol yet.
type TickerStream struct {
	url            string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *applogger.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	prices    map[string]float64
}

func NewTickerStream(cfg *config.Config, l *applogger.Logger) *TickerStream {
	symbols := make([]string, 0, len(cfg.Analysis.Pairs))
	for _, p := range cfg.Analysis.Pairs {
		symbols = append(symbols, Symbol(p))
	}
	reconnect := cfg.Exchange.Stream.ReconnectDelay
	if reconnect <= 0 {
		reconnect = 5 * time.Second
	}
	ping := cfg.Exchange.Stream.PingInterval
	if ping <= 0 {
		ping = 20 * time.Second
	}
	return &TickerStream{
		url:            cfg.Exchange.Stream.WebSocketURL,
		symbols:        symbols,
		reconnectDelay: reconnect,
		pingInterval:   ping,
		logger:         l,
		prices:         make(map[string]float64),
	}
}

// LastPrice returns the most recent streamed price for a symbol.
func (s *TickerStream) LastPrice(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// IsConnected indicates stream status.
func (s *TickerStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Run connects and consumes ticker frames until ctx is cancelled,
// reconnecting after transient failures.
func (s *TickerStream) Run(ctx context.Context) {
	for {
		if err := s.connect(ctx); err != nil {
			s.logger.Warn("ticker stream connect failed", applogger.Error(err))
		} else {
			s.consume(ctx)
		}

		select {
		case <-ctx.Done():
			s.close()
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *TickerStream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	args := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		args = append(args, "tickers."+sym)
	}
	sub := map[string]any{"op": "subscribe", "args": args}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	s.logger.Info("ticker stream connected", applogger.Int("symbols", len(s.symbols)))
	return nil
}

type tickerFrame struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

func (s *TickerStream) consume(ctx context.Context) {
	defer s.close()

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go s.pingLoop(pingCtx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, b, err := s.conn.ReadMessage()
		if err != nil {
			s.logger.Warn("ticker stream read failed", applogger.Error(err))
			return
		}

		var frame tickerFrame
		if err := json.Unmarshal(b, &frame); err != nil {
			continue // op acks and pongs
		}
		if frame.Data.Symbol == "" || frame.Data.LastPrice == "" {
			continue
		}
		price, err := strconv.ParseFloat(frame.Data.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}

		s.mu.Lock()
		s.prices[frame.Data.Symbol] = price
		s.mu.Unlock()
	}
}

func (s *TickerStream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn != nil {
				_ = conn.WriteJSON(map[string]string{"op": "ping"})
			}
		}
	}
}

func (s *TickerStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
