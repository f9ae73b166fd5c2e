package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"SwingRadar/internal/domain/models"
	drepo "SwingRadar/internal/domain/repository"
	domsvc "SwingRadar/internal/domain/service"
	"SwingRadar/internal/engine"
	"SwingRadar/internal/services/indicators"
	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

// Analyzer runs the signal engine across the configured pairs and
// decides which results become outward-facing signals. Pairs are
// processed strictly sequentially with a pause in between to respect
// upstream rate limits; a pass is best-effort and partial success is
// success.
type Analyzer struct {
	cfg        *config.Config
	market     drepo.MarketData
	indicators *indicators.Provider
	forecaster domsvc.Forecaster
	engine     *engine.Engine
	snapshots  drepo.SnapshotStore
	notifier   domsvc.Notifier
	ledger     *SignalLedger
	history    drepo.SignalHistory  // optional
	publisher  drepo.EventPublisher // optional
	metrics    drepo.Metrics
	logger     *applogger.Logger
}

func NewAnalyzer(
	cfg *config.Config,
	market drepo.MarketData,
	provider *indicators.Provider,
	forecaster domsvc.Forecaster,
	eng *engine.Engine,
	snapshots drepo.SnapshotStore,
	notifier domsvc.Notifier,
	ledger *SignalLedger,
	history drepo.SignalHistory,
	publisher drepo.EventPublisher,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		market:     market,
		indicators: provider,
		forecaster: forecaster,
		engine:     eng,
		snapshots:  snapshots,
		notifier:   notifier,
		ledger:     ledger,
		history:    history,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// AnalyzePair fetches market inputs for one pair and runs the engine.
func (a *Analyzer) AnalyzePair(ctx context.Context, pair string) (models.Recommendation, error) {
	price, err := a.market.CurrentPrice(ctx, pair)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("current price %s: %w", pair, err)
	}
	if price <= 0 {
		return models.Recommendation{}, fmt.Errorf("non-positive price for %s: %v", pair, price)
	}

	short, err := a.market.FetchCandles(ctx, pair, drepo.TimeframeHour, a.cfg.Analysis.ShortCandles)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("candles %s 1h: %w", pair, err)
	}
	medium, err := a.market.FetchCandles(ctx, pair, drepo.TimeframeFour, a.cfg.Analysis.MediumCandles)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("candles %s 4h: %w", pair, err)
	}
	long, err := a.market.FetchCandles(ctx, pair, drepo.TimeframeDay, a.cfg.Analysis.LongCandles)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("candles %s 1d: %w", pair, err)
	}

	in := engine.Input{
		Pair:         pair,
		Exchange:     a.cfg.Exchange.Name,
		Price:        price,
		ShortCandles: short,
		Short:        a.indicators.Compute(indicators.Closes(short)),
		Medium:       a.indicators.Compute(indicators.Closes(medium)),
		Long:         a.indicators.Compute(indicators.Closes(long)),
		Forecast:     a.forecaster.Forecast(ctx, pair, short),
	}

	a.metrics.RecordLastPrice(pair, price)
	return a.engine.Analyze(in, time.Now().UTC()), nil
}

// RunPass analyzes every configured pair, refreshes the snapshot and
// dispatches notifications for signals that changed. Failing pairs are
// skipped, never retried within the pass.
func (a *Analyzer) RunPass(ctx context.Context) error {
	start := time.Now()
	pairs := a.cfg.Analysis.Pairs
	firstPass := a.ledger.Empty()

	analyses := make([]models.Recommendation, 0, len(pairs))
	for i, pair := range pairs {
		if i > 0 && a.cfg.Analysis.PairPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.cfg.Analysis.PairPause):
			}
		}

		rec, err := a.AnalyzePair(ctx, pair)
		if err != nil {
			a.metrics.RecordPairSkipped()
			a.metrics.RecordError("pair_analysis")
			a.logger.Warn("pair skipped", applogger.String("pair", pair), applogger.Error(err))
			continue
		}
		a.metrics.RecordPairAnalyzed()
		analyses = append(analyses, rec)
	}

	signals := a.GenerateSignals(analyses)
	snap := models.BatchSnapshot{
		Analyses:   analyses,
		Signals:    signals,
		Conditions: models.ComputeConditions(analyses),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := a.snapshots.SetBatch(snap); err != nil {
		a.metrics.RecordError("snapshot_store")
		a.logger.Error("snapshot update failed", applogger.Error(err))
	}

	a.persistSignals(ctx, signals)

	fresh := a.FilterNew(signals, time.Now().UTC())
	a.notifySignals(ctx, fresh)

	// The very first pass has no notification history, so it gets the
	// full report immediately instead of waiting for the report cadence.
	if firstPass {
		if err := a.notifier.SendReport(ctx, snap); err != nil {
			a.metrics.RecordNotification("report", "error")
			a.logger.Warn("initial report failed", applogger.Error(err))
		} else {
			a.metrics.RecordNotification("report", "ok")
		}
	}

	a.metrics.RecordPass()
	a.metrics.RecordLatency("analysis_pass", time.Since(start).Seconds())
	a.logger.Info("analysis pass complete",
		applogger.Int("pairs_configured", len(pairs)),
		applogger.Int("pairs_analyzed", len(analyses)),
		applogger.Int("signals", len(signals)),
		applogger.Int("notified", len(fresh)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

// GenerateSignals applies the tradeable gate and sorts the survivors
// by confidence, highest first.
func (a *Analyzer) GenerateSignals(analyses []models.Recommendation) []models.TradingSignal {
	gate := a.cfg.Analysis.SignalGate
	signals := make([]models.TradingSignal, 0)
	for _, rec := range analyses {
		if rec.Classification == models.Hold || rec.Confidence <= gate || rec.Target == nil {
			continue
		}
		sig := models.TradingSignal{
			ID:             uuid.NewString(),
			Pair:           rec.Pair,
			Exchange:       rec.Exchange,
			Classification: rec.Classification,
			Price:          rec.Price,
			Probability:    rec.Probability,
			Confidence:     rec.Confidence,
			Entry:          rec.Target.Entry,
			StopLoss:       rec.Target.StopLoss,
			TakeProfit:     rec.Target.TakeProfit,
			RiskLevel:      rec.Reasoning.RiskLevel,
			Horizon:        rec.Reasoning.Horizon,
			CreatedAt:      rec.CreatedAt,
		}
		a.metrics.RecordSignal(string(sig.Classification))
		signals = append(signals, sig)
	}
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	})
	return signals
}

// FilterNew keeps the signals worth notifying about, judged against
// the last successfully delivered signal per pair.
func (a *Analyzer) FilterNew(signals []models.TradingSignal, now time.Time) []models.TradingSignal {
	fresh := make([]models.TradingSignal, 0, len(signals))
	for _, sig := range signals {
		if a.ledger.IsNew(sig, now, a.cfg.Analysis.ConfidenceStep, a.cfg.Analysis.ResendInterval) {
			fresh = append(fresh, sig)
		}
	}
	return fresh
}

func (a *Analyzer) notifySignals(ctx context.Context, signals []models.TradingSignal) {
	for i, sig := range signals {
		if i > 0 && a.cfg.Telegram.SignalPause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.cfg.Telegram.SignalPause):
			}
		}
		if err := a.notifier.NotifySignal(ctx, sig); err != nil {
			a.metrics.RecordNotification("signal", "error")
			a.logger.Warn("signal notification failed",
				applogger.String("pair", sig.Pair), applogger.Error(err))
			continue
		}
		// only a delivered signal suppresses future notifications;
		// a failed send stays eligible for the next pass
		a.ledger.Remember(sig)
		a.metrics.RecordNotification("signal", "ok")
	}
}

// persistSignals inserts and publishes signals best-effort.
func (a *Analyzer) persistSignals(ctx context.Context, signals []models.TradingSignal) {
	if len(signals) == 0 {
		return
	}
	if a.history != nil {
		if err := a.history.InsertSignals(ctx, signals); err != nil {
			a.metrics.RecordError("signal_history")
			a.logger.Warn("signal history insert failed", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.PublishSignals(ctx, signals); err != nil {
			a.metrics.RecordError("signal_publish")
			a.logger.Warn("signal publish failed", applogger.Error(err))
		}
	}
}

// SendFullReport delivers the latest snapshot as a batch report. Runs
// on its own slower cadence, not gated by the change filter.
func (a *Analyzer) SendFullReport(ctx context.Context) error {
	snap, ok, err := a.snapshots.Latest()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		a.logger.Info("no snapshot yet, skipping report")
		return nil
	}
	if err := a.notifier.SendReport(ctx, *snap); err != nil {
		a.metrics.RecordNotification("report", "error")
		return err
	}
	a.metrics.RecordNotification("report", "ok")
	return nil
}

// Health reports component status for the query surface.
func (a *Analyzer) Health(ctx context.Context) map[string]string {
	out := map[string]string{"forecast": "ok"}
	if err := a.forecaster.Health(ctx); err != nil {
		out["forecast"] = err.Error()
	}
	if _, err := a.market.CurrentPrice(ctx, a.cfg.Analysis.Pairs[0]); err != nil {
		out["exchange"] = err.Error()
	} else {
		out["exchange"] = "ok"
	}
	return out
}
