package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// pairPattern matches the BASE/QUOTE pair syntax, e.g. BTC/USDT.
var pairPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}/[A-Z0-9]{2,10}$`)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Exchange struct {
		Name         string        `yaml:"name" default:"bybit"`
		BaseURL      string        `yaml:"base_url" default:"https://api.bybit.com"`
		Category     string        `yaml:"category" default:"spot"`
		Timeout      time.Duration `yaml:"timeout" default:"15s"`
		RequestsPerS float64       `yaml:"requests_per_second" default:"5"`
		Stream       struct {
			Enabled        bool          `yaml:"enabled"`
			WebSocketURL   string        `yaml:"websocket_url" default:"wss://stream.bybit.com/v5/public/spot"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
			PingInterval   time.Duration `yaml:"ping_interval" default:"20s"`
		} `yaml:"stream"`
	} `yaml:"exchange"`
	Analysis struct {
		Pairs          []string      `yaml:"pairs"`
		CheckCron      string        `yaml:"check_cron" default:"*/30 * * * *"`
		ReportCron     string        `yaml:"report_cron" default:"0 */4 * * *"`
		PairPause      time.Duration `yaml:"pair_pause" default:"1s"`
		ShortCandles   int           `yaml:"short_candles" default:"200"`
		MediumCandles  int           `yaml:"medium_candles" default:"50"`
		LongCandles    int           `yaml:"long_candles" default:"30"`
		SignalGate     float64       `yaml:"signal_confidence_gate" default:"0.65"`
		Thresholds     Thresholds    `yaml:"thresholds"`
		// zero = no expiry; replace-on-write already bounds the cache,
		// and eviction must not outrun the stale_after status window
		SnapshotTTL    time.Duration `yaml:"snapshot_ttl" default:"0"`
		StaleAfter     time.Duration `yaml:"stale_after" default:"45m"`
		RunOnStart     bool          `yaml:"run_on_start" default:"true"`
		ResendInterval time.Duration `yaml:"resend_interval" default:"4h"`
		ConfidenceStep float64       `yaml:"confidence_step" default:"0.1"`
	} `yaml:"analysis"`
	Forecast struct {
		URL               string        `yaml:"url" default:"http://localhost:8000"`
		Timeout           time.Duration `yaml:"timeout" default:"30s"`
		DefaultVolatility float64       `yaml:"default_volatility" default:"0.02"`
	} `yaml:"forecast"`
	Telegram struct {
		BotToken         string        `yaml:"bot_token"`
		ChatID           string        `yaml:"chat_id"`
		APIBaseURL       string        `yaml:"api_base_url" default:"https://api.telegram.org"`
		MaxMessageLength int           `yaml:"max_message_length" default:"4000"`
		SignalPause      time.Duration `yaml:"signal_pause" default:"2s"`
		ChunkPause       time.Duration `yaml:"chunk_pause" default:"1s"`
		Timeout          time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"telegram"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"swingradar"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert" default:"true"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"swing-signals"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	} `yaml:"kafka"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
}

// Thresholds holds every tunable constant of the signal engine classification
// gates. The defaults are deliberately conservative; they are configuration,
// not literals buried in code.
type Thresholds struct {
	StrongBuy struct {
		Probability  float64 `yaml:"probability" default:"0.85"`
		Confidence   float64 `yaml:"confidence" default:"0.8"`
		RSILong      float64 `yaml:"rsi_long" default:"25"`
		RSIMedium    float64 `yaml:"rsi_medium" default:"30"`
		Confluence   int     `yaml:"confluence" default:"4"`
		BBPosition   float64 `yaml:"bb_position" default:"0.15"`
		ForecastDiff float64 `yaml:"forecast_diff" default:"5"`
		Volatility   float64 `yaml:"volatility" default:"1.5"`
	} `yaml:"strong_buy"`
	Buy struct {
		Probability  float64 `yaml:"probability" default:"0.75"`
		Confidence   float64 `yaml:"confidence" default:"0.7"`
		RSILong      float64 `yaml:"rsi_long" default:"35"`
		RSIMedium    float64 `yaml:"rsi_medium" default:"40"`
		Confluence   int     `yaml:"confluence" default:"3"`
		BBPosition   float64 `yaml:"bb_position" default:"0.3"`
		ForecastDiff float64 `yaml:"forecast_diff" default:"2"`
		Volatility   float64 `yaml:"volatility" default:"2.0"`
	} `yaml:"buy"`
	StrongSell struct {
		Probability  float64 `yaml:"probability" default:"0.15"`
		Confidence   float64 `yaml:"confidence" default:"0.8"`
		RSILong      float64 `yaml:"rsi_long" default:"75"`
		RSIMedium    float64 `yaml:"rsi_medium" default:"70"`
		Confluence   int     `yaml:"confluence" default:"-4"`
		BBPosition   float64 `yaml:"bb_position" default:"0.85"`
		ForecastDiff float64 `yaml:"forecast_diff" default:"-5"`
		Volatility   float64 `yaml:"volatility" default:"1.0"`
	} `yaml:"strong_sell"`
	Sell struct {
		Probability  float64 `yaml:"probability" default:"0.25"`
		Confidence   float64 `yaml:"confidence" default:"0.7"`
		RSILong      float64 `yaml:"rsi_long" default:"65"`
		RSIMedium    float64 `yaml:"rsi_medium" default:"60"`
		Confluence   int     `yaml:"confluence" default:"-3"`
		BBPosition   float64 `yaml:"bb_position" default:"0.7"`
		ForecastDiff float64 `yaml:"forecast_diff" default:"-2"`
		Volatility   float64 `yaml:"volatility" default:"0.8"`
	} `yaml:"sell"`
	StopLossMult   float64 `yaml:"stop_loss_mult" default:"0.5"`
	TakeProfitMult float64 `yaml:"take_profit_mult" default:"1.5"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := loadNoValidate(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("ANALYSIS_PAIRS"); v != "" {
		c.Analysis.Pairs = splitTrim(v)
	}
	if v := os.Getenv("FORECAST_SERVICE_URL"); v != "" {
		c.Forecast.URL = v
	}
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		c.Exchange.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = splitTrim(v)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func loadNoValidate(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid. Invalid configuration is
// fatal at startup; the process must not run half-configured.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if err := ValidatePairs(c.Analysis.Pairs); err != nil {
		return err
	}
	if c.Analysis.SignalGate < 0 || c.Analysis.SignalGate > 1 {
		return fmt.Errorf("analysis.signal_confidence_gate must be within [0,1], got %v", c.Analysis.SignalGate)
	}
	if c.Analysis.SnapshotTTL > 0 && c.Analysis.SnapshotTTL < c.Analysis.StaleAfter {
		return fmt.Errorf("analysis.snapshot_ttl (%v) must not be shorter than analysis.stale_after (%v)",
			c.Analysis.SnapshotTTL, c.Analysis.StaleAfter)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}

// ValidatePairs checks the BASE/QUOTE syntax of every pair.
func ValidatePairs(pairs []string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("analysis.pairs cannot be empty")
	}
	for _, p := range pairs {
		if !pairPattern.MatchString(p) {
			return fmt.Errorf("invalid pair %q, expected BASE/QUOTE like BTC/USDT", p)
		}
	}
	return nil
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
