package admin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creasty/defaults"

	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

func testStore(t *testing.T) (*Store, *config.Config, string) {
	t.Helper()

	cfg := &config.Config{}
	if err := defaults.Set(cfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg.Analysis.Pairs = []string{"BTC/USDT"}

	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bot-config.json")
	return NewStore(path, cfg, logger), cfg, path
}

func TestLoadMissingFileIsNoop(t *testing.T) {
	s, cfg, _ := testStore(t)
	if err := s.Load(); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if len(cfg.Analysis.Pairs) != 1 || cfg.Analysis.Pairs[0] != "BTC/USDT" {
		t.Errorf("expected pairs untouched, got %v", cfg.Analysis.Pairs)
	}
}

func TestUpdatePersistsAndApplies(t *testing.T) {
	s, cfg, path := testStore(t)

	err := s.Update(RuntimeConfig{
		Pairs:      []string{"ETH/USDT", "SOL/USDT"},
		SignalGate: 0.8,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(cfg.Analysis.Pairs) != 2 || cfg.Analysis.SignalGate != 0.8 {
		t.Errorf("expected live config applied, got %v gate %v", cfg.Analysis.Pairs, cfg.Analysis.SignalGate)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected persisted file: %v", err)
	}

	// a fresh store over the same file picks the overrides back up
	cfg2 := &config.Config{}
	if err := defaults.Set(cfg2); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg2.Analysis.Pairs = []string{"BTC/USDT"}
	logger, _ := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	s2 := NewStore(path, cfg2, logger)
	if err := s2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(cfg2.Analysis.Pairs) != 2 || cfg2.Analysis.SignalGate != 0.8 {
		t.Errorf("expected overrides reloaded, got %v gate %v", cfg2.Analysis.Pairs, cfg2.Analysis.SignalGate)
	}
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	s, cfg, path := testStore(t)

	if err := s.Update(RuntimeConfig{Pairs: []string{"bad"}, SignalGate: 0.5}); err == nil {
		t.Error("expected pair syntax error")
	}
	if err := s.Update(RuntimeConfig{Pairs: []string{"ETH/USDT"}, SignalGate: 1.5}); err == nil {
		t.Error("expected gate bounds error")
	}

	if len(cfg.Analysis.Pairs) != 1 || cfg.Analysis.Pairs[0] != "BTC/USDT" {
		t.Errorf("expected pairs untouched after rejected updates, got %v", cfg.Analysis.Pairs)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file persisted after rejected updates")
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s, cfg, _ := testStore(t)

	rc := s.Current()
	rc.Pairs[0] = "XXX/YYY"
	if cfg.Analysis.Pairs[0] != "BTC/USDT" {
		t.Error("Current must not alias the live pair slice")
	}
}
