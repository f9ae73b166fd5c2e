package repository

import (
	"context"
	"time"

	"SwingRadar/internal/domain/models"
)

// MarketData provides candle history and prices for configured pairs.
// Errors surface to the orchestration layer, which skips the pair for
// the current pass.
type MarketData interface {
	FetchCandles(ctx context.Context, pair string, tf Timeframe, limit int) ([]models.Candle, error)
	CurrentPrice(ctx context.Context, pair string) (float64, error)
	MarketInfo(ctx context.Context, pair string) (*models.MarketInfo, error)
}

// SnapshotStore holds the latest analysis batch, replaced as a whole
// after every pass.
type SnapshotStore interface {
	SetBatch(snap models.BatchSnapshot) error
	Latest() (*models.BatchSnapshot, bool, error)
	Fresh(maxAge time.Duration) (bool, error)
}

// SignalHistory persists emitted trading signals. Best-effort: callers
// log insert failures and move on. Zero from/to bounds mean unbounded.
type SignalHistory interface {
	InsertSignals(ctx context.Context, signals []models.TradingSignal) error
	RecentSignals(ctx context.Context, pair string, from, to time.Time, limit int) ([]models.TradingSignal, error)
}

// EventPublisher pushes emitted signals onto an event stream.
type EventPublisher interface {
	PublishSignals(ctx context.Context, signals []models.TradingSignal) error
}

// Metrics records operational counters for the analysis pipeline.
type Metrics interface {
	RecordPass()
	RecordPairAnalyzed()
	RecordPairSkipped()
	RecordSignal(classification string)
	RecordNotification(kind, result string)
	RecordError(kind string)
	RecordLastPrice(pair string, price float64)
	RecordLatency(op string, seconds float64)
}
