package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/creasty/defaults"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	var c Config
	if err := defaults.Set(&c); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	c.Telegram.BotToken = "123:abc"
	c.Telegram.ChatID = "-100200300"
	c.Analysis.Pairs = []string{"BTC/USDT", "ETH/USDT"}
	return &c
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := validConfig(t)
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresTelegramCredentials(t *testing.T) {
	c := validConfig(t)
	c.Telegram.BotToken = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing bot token")
	}

	c = validConfig(t)
	c.Telegram.ChatID = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing chat id")
	}
}

func TestValidatePairSyntax(t *testing.T) {
	bad := []string{"", "BTCUSDT", "btc/usdt", "BTC/", "/USDT", "B/USDT", "TOOLONGBASE1/USDT"}
	for _, p := range bad {
		c := validConfig(t)
		c.Analysis.Pairs = []string{p}
		if err := c.Validate(); err == nil {
			t.Errorf("pair %q: expected validation error", p)
		}
	}

	c := validConfig(t)
	c.Analysis.Pairs = nil
	if err := c.Validate(); err == nil {
		t.Error("expected error for empty pair list")
	}
}

func TestValidateSignalGateBounds(t *testing.T) {
	for _, gate := range []float64{-0.1, 1.1} {
		c := validConfig(t)
		c.Analysis.SignalGate = gate
		if err := c.Validate(); err == nil {
			t.Errorf("gate %v: expected validation error", gate)
		}
	}
}

func TestValidateConditionalBackends(t *testing.T) {
	c := validConfig(t)
	c.Kafka.Enabled = true
	c.Kafka.Brokers = nil
	if err := c.Validate(); err == nil {
		t.Error("expected error for kafka without brokers")
	}

	c = validConfig(t)
	c.ClickHouse.Enabled = true
	c.ClickHouse.Host = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error for clickhouse without host")
	}
}

func TestDefaultsApplied(t *testing.T) {
	c := validConfig(t)
	if c.Exchange.BaseURL != "https://api.bybit.com" {
		t.Errorf("unexpected exchange base url %q", c.Exchange.BaseURL)
	}
	if c.Analysis.SignalGate != 0.65 {
		t.Errorf("unexpected signal gate %v", c.Analysis.SignalGate)
	}
	if c.Analysis.Thresholds.Buy.Probability != 0.75 {
		t.Errorf("unexpected buy probability %v", c.Analysis.Thresholds.Buy.Probability)
	}
	if c.Analysis.Thresholds.TakeProfitMult != 1.5 {
		t.Errorf("unexpected take profit multiplier %v", c.Analysis.Thresholds.TakeProfitMult)
	}
	if c.Analysis.SnapshotTTL != 0 {
		t.Errorf("snapshot ttl must default to no expiry, got %v", c.Analysis.SnapshotTTL)
	}
}

func TestValidateSnapshotTTLNotShorterThanStaleAfter(t *testing.T) {
	c := validConfig(t)
	c.Analysis.SnapshotTTL = 30 * time.Minute
	c.Analysis.StaleAfter = 45 * time.Minute
	if err := c.Validate(); err == nil {
		t.Error("expected error when snapshot ttl undercuts the staleness window")
	}

	c = validConfig(t)
	c.Analysis.SnapshotTTL = time.Hour
	c.Analysis.StaleAfter = 45 * time.Minute
	if err := c.Validate(); err != nil {
		t.Errorf("ttl above the staleness window must be valid, got %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
environment: test
telegram:
  bot_token: "123:abc"
  chat_id: "-42"
analysis:
  pairs:
    - BTC/USDT
  signal_confidence_gate: 0.7
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "test" {
		t.Errorf("expected environment test, got %q", c.Environment)
	}
	if c.Analysis.SignalGate != 0.7 {
		t.Errorf("expected gate override 0.7, got %v", c.Analysis.SignalGate)
	}
	// untouched sections keep their defaults
	if c.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", c.Server.Port)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
telegram:
  bot_token: "file-token"
  chat_id: "file-chat"
analysis:
  pairs:
    - BTC/USDT
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("ANALYSIS_PAIRS", "SOL/USDT, DOGE/USDT")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if c.Telegram.BotToken != "env-token" {
		t.Errorf("expected env token override, got %q", c.Telegram.BotToken)
	}
	if c.Telegram.ChatID != "file-chat" {
		t.Errorf("expected file chat id kept, got %q", c.Telegram.ChatID)
	}
	if want := []string{"SOL/USDT", "DOGE/USDT"}; !reflect.DeepEqual(c.Analysis.Pairs, want) {
		t.Errorf("expected pairs %v, got %v", want, c.Analysis.Pairs)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Errorf("expected kafka enabled with 2 brokers, got %v %v", c.Kafka.Enabled, c.Kafka.Brokers)
	}
}

func TestSplitTrim(t *testing.T) {
	got := splitTrim(" a, b ,, c ")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
