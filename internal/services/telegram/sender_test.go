package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/creasty/defaults"

	"SwingRadar/internal/domain/models"
	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

func testSender(t *testing.T, apiURL string) *Sender {
	t.Helper()

	cfg := &config.Config{}
	if err := defaults.Set(cfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "-42"
	cfg.Telegram.APIBaseURL = apiURL
	cfg.Telegram.ChunkPause = 0
	cfg.Telegram.MaxMessageLength = 200

	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewSender(cfg, logger)
}

func TestNotifySignalPostsHTMLMessage(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bot123:abc/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer srv.Close()

	s := testSender(t, srv.URL)
	sig := models.TradingSignal{
		Pair:           "BTC/USDT",
		Exchange:       "bybit",
		Classification: models.StrongBuy,
		Price:          45000,
		Probability:    0.9,
		Confidence:     0.85,
		Entry:          45000,
		StopLoss:       44000,
		TakeProfit:     48000,
		RiskLevel:      models.RiskModerate,
		Horizon:        "3-7 days",
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.NotifySignal(context.Background(), sig); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.ChatID != "-42" {
		t.Errorf("expected chat id -42, got %q", got.ChatID)
	}
	if got.ParseMode != "HTML" {
		t.Errorf("expected HTML parse mode, got %q", got.ParseMode)
	}
	if !strings.Contains(got.Text, "BTC/USDT") {
		t.Errorf("expected pair in message, got %q", got.Text)
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(apiResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	s := testSender(t, srv.URL)
	err := s.NotifySignal(context.Background(), models.TradingSignal{Pair: "BTC/USDT"})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestSendReportDeliversEveryChunk(t *testing.T) {
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		texts = append(texts, req.Text)
		_ = json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer srv.Close()

	s := testSender(t, srv.URL)

	snap := models.BatchSnapshot{UpdatedAt: time.Now().UTC()}
	for i := 0; i < 20; i++ {
		snap.Analyses = append(snap.Analyses, models.Recommendation{
			Pair:           "PAIR" + string(rune('A'+i)) + "/USDT",
			Classification: models.Hold,
			Price:          100,
			Confidence:     0.5,
		})
	}

	if err := s.SendReport(context.Background(), snap); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(texts) < 2 {
		t.Fatalf("expected the 200-char limit to force chunking, got %d messages", len(texts))
	}
	for i, txt := range texts[1:] {
		if !strings.Contains(txt, "continued") {
			t.Errorf("chunk %d: expected continuation header, got %q", i+2, txt)
		}
	}
}

func TestValidateCallsGetMe(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer srv.Close()

	s := testSender(t, srv.URL)
	if err := s.Validate(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.HasSuffix(path, "/getMe") {
		t.Errorf("expected getMe call, got %s", path)
	}
}
