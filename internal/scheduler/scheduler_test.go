package scheduler

import (
	"context"
	"testing"

	"github.com/creasty/defaults"

	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	if err := defaults.Set(cfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg.Analysis.RunOnStart = false
	return cfg
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestStartAndStop(t *testing.T) {
	s := New(testConfig(t), nil, testLogger(t))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}

func TestStartRejectsInvalidCron(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.CheckCron = "not a cron"
	s := New(cfg, nil, testLogger(t))
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid check cron")
	}

	cfg = testConfig(t)
	cfg.Analysis.ReportCron = "61 * * * *"
	s = New(cfg, nil, testLogger(t))
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid report cron")
	}
}
