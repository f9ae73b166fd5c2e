package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"SwingRadar/internal/usecase"
	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

// Scheduler triggers analysis passes and batch reports on cron
// cadences. Passes are not reentrant: a tick that arrives while a pass
// is still running is dropped, not queued.
type Scheduler struct {
	cron     *cron.Cron
	analyzer *usecase.Analyzer
	cfg      *config.Config
	logger   *applogger.Logger
	inFlight atomic.Bool
}

func New(cfg *config.Config, analyzer *usecase.Analyzer, logger *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the cron entries and launches the initial pass.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Analysis.CheckCron, func() { s.runPass(ctx) }); err != nil {
		return fmt.Errorf("check cron %q: %w", s.cfg.Analysis.CheckCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Analysis.ReportCron, func() { s.runReport(ctx) }); err != nil {
		return fmt.Errorf("report cron %q: %w", s.cfg.Analysis.ReportCron, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		applogger.String("check_cron", s.cfg.Analysis.CheckCron),
		applogger.String("report_cron", s.cfg.Analysis.ReportCron),
	)

	if s.cfg.Analysis.RunOnStart {
		go s.runPass(ctx)
	}
	return nil
}

// Stop halts the cron schedule and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runPass(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("analysis pass still running, tick skipped")
		return
	}
	defer s.inFlight.Store(false)

	if err := s.analyzer.RunPass(ctx); err != nil {
		s.logger.Error("analysis pass failed", applogger.Error(err))
	}
}

func (s *Scheduler) runReport(ctx context.Context) {
	if err := s.analyzer.SendFullReport(ctx); err != nil {
		s.logger.Error("batch report failed", applogger.Error(err))
	}
}
