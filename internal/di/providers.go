package di

import (
	"context"
	"fmt"
	"io"
	"time"

	drepo "SwingRadar/internal/domain/repository"
	domsvc "SwingRadar/internal/domain/service"
	"SwingRadar/internal/engine"
	"SwingRadar/internal/handler/api"
	internalrepo "SwingRadar/internal/repository"
	"SwingRadar/internal/scheduler"
	"SwingRadar/internal/service/cache"
	"SwingRadar/internal/services/admin"
	"SwingRadar/internal/services/exchange"
	"SwingRadar/internal/services/forecast"
	"SwingRadar/internal/services/indicators"
	"SwingRadar/internal/services/telegram"
	"SwingRadar/internal/usecase"
	pkgch "SwingRadar/pkg/clickhouse"
	"SwingRadar/pkg/config"
	xhttp "SwingRadar/pkg/http"
	pkgkafka "SwingRadar/pkg/kafka"
	applogger "SwingRadar/pkg/logger"
	"SwingRadar/pkg/metrics"
	"SwingRadar/pkg/server"
)

const adminConfigPath = "bot-config.json"

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideTickerStream creates the Bybit WebSocket ticker stream, or
// nil when streaming is disabled.
func ProvideTickerStream(cfg *config.Config, l *applogger.Logger) *exchange.TickerStream {
	if !cfg.Exchange.Stream.Enabled {
		return nil
	}
	return exchange.NewTickerStream(cfg, l)
}

// ProvideMarketData creates the Bybit REST client.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger, stream *exchange.TickerStream) drepo.MarketData {
	return exchange.NewBybit(cfg, l, stream)
}

// ProvideIndicators creates the indicator provider.
func ProvideIndicators() *indicators.Provider {
	return indicators.NewProvider()
}

// ProvideForecaster creates the ARIMA/GARCH sidecar client.
func ProvideForecaster(cfg *config.Config, l *applogger.Logger) domsvc.Forecaster {
	return forecast.NewClient(cfg, l)
}

// ProvideEngine creates the signal engine with the configured gates.
func ProvideEngine(cfg *config.Config) *engine.Engine {
	return engine.New(cfg.Analysis.Thresholds)
}

// ProvideBytesCache picks Redis when enabled, with an in-process TTL
// cache as the default.
func ProvideBytesCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, error) {
	if !cfg.Redis.Enabled {
		return cache.NewTTLCache(), nil
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	l.Info("redis cache connected", applogger.String("addr", cfg.Redis.Addr))
	return rc, nil
}

// ProvideSnapshotStore creates the batch snapshot store.
func ProvideSnapshotStore(c cache.BytesCache, cfg *config.Config) drepo.SnapshotStore {
	return cache.NewSnapshotStore(c, cfg.Analysis.SnapshotTTL)
}

// ProvideNotifier creates the Telegram sender.
func ProvideNotifier(cfg *config.Config, l *applogger.Logger) domsvc.Notifier {
	return telegram.NewSender(cfg, l)
}

// ProvideLedger creates the in-memory signal dedup ledger.
func ProvideLedger() *usecase.SignalLedger {
	return usecase.NewSignalLedger()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when
// signal history storage is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSignalHistory creates the ClickHouse signal store, or nil
// when ClickHouse is disabled.
func ProvideSignalHistory(client *pkgch.Client) (drepo.SignalHistory, error) {
	if client == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return internalrepo.NewClickHouseSignals(ctx, client)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when event
// publishing is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the Kafka signal publisher, or nil
// when Kafka is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	cfg *config.Config,
	market drepo.MarketData,
	provider *indicators.Provider,
	forecaster domsvc.Forecaster,
	eng *engine.Engine,
	snapshots drepo.SnapshotStore,
	notifier domsvc.Notifier,
	ledger *usecase.SignalLedger,
	history drepo.SignalHistory,
	publisher drepo.EventPublisher,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(cfg, market, provider, forecaster, eng, snapshots, notifier, ledger, history, publisher, m, l)
}

// ProvideScheduler creates the cron scheduler.
func ProvideScheduler(cfg *config.Config, analyzer *usecase.Analyzer, l *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(cfg, analyzer, l)
}

// ProvideAdminStore creates the admin config store and applies any
// persisted overrides.
func ProvideAdminStore(cfg *config.Config, l *applogger.Logger) (*admin.Store, error) {
	store := admin.NewStore(adminConfigPath, cfg, l)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideAPIHandler creates the HTTP API handler.
func ProvideAPIHandler(
	cfg *config.Config,
	snapshots drepo.SnapshotStore,
	analyzer *usecase.Analyzer,
	history drepo.SignalHistory,
	notifier domsvc.Notifier,
	adminStore *admin.Store,
	l *applogger.Logger,
) xhttp.Handler {
	return api.NewHandler(cfg, snapshots, analyzer, history, notifier, adminStore, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	sched *scheduler.Scheduler,
	stream *exchange.TickerStream,
	handler xhttp.Handler,
	bytesCache cache.BytesCache,
	chClient *pkgch.Client,
	publisher drepo.EventPublisher,
) *server.App {
	var closers []io.Closer
	if rc, ok := bytesCache.(*cache.RedisCache); ok {
		closers = append(closers, rc)
	}
	if chClient != nil {
		closers = append(closers, chClient)
	}
	if kp, ok := publisher.(*internalrepo.KafkaPublisher); ok && kp != nil {
		closers = append(closers, kp)
	}
	return server.New(cfg, l, sched, stream, handler, closers)
}
