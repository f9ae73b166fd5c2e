package admin

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

// RuntimeConfig is the subset of configuration the admin surface may
// change while the process runs. Cron changes take effect on restart;
// pairs and the confidence gate apply from the next pass.
type RuntimeConfig struct {
	Pairs      []string `json:"pairs" validate:"required,min=1"`
	SignalGate float64  `json:"signalConfidenceGate" validate:"gte=0,lte=1"`
	CheckCron  string   `json:"checkCron,omitempty"`
	ReportCron string   `json:"reportCron,omitempty"`
}

// Store persists admin overrides to a JSON file next to the process
// and applies them onto the live configuration.
type Store struct {
	mu     sync.Mutex
	path   string
	cfg    *config.Config
	logger *applogger.Logger
}

func NewStore(path string, cfg *config.Config, l *applogger.Logger) *Store {
	return &Store{path: path, cfg: cfg, logger: l}
}

// Load applies a previously persisted override file, if any.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read admin config: %w", err)
	}

	var rc RuntimeConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return fmt.Errorf("parse admin config: %w", err)
	}
	if err := s.applyLocked(rc); err != nil {
		return fmt.Errorf("apply admin config: %w", err)
	}
	s.logger.Info("admin config overrides loaded", applogger.String("path", s.path))
	return nil
}

// Current returns the live values of the admin-editable settings.
func (s *Store) Current() RuntimeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs := make([]string, len(s.cfg.Analysis.Pairs))
	copy(pairs, s.cfg.Analysis.Pairs)
	return RuntimeConfig{
		Pairs:      pairs,
		SignalGate: s.cfg.Analysis.SignalGate,
		CheckCron:  s.cfg.Analysis.CheckCron,
		ReportCron: s.cfg.Analysis.ReportCron,
	}
}

// Update validates, applies and persists new settings.
func (s *Store) Update(rc RuntimeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyLocked(rc); err != nil {
		return err
	}

	b, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode admin config: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("persist admin config: %w", err)
	}
	return nil
}

func (s *Store) applyLocked(rc RuntimeConfig) error {
	if err := config.ValidatePairs(rc.Pairs); err != nil {
		return err
	}
	if rc.SignalGate < 0 || rc.SignalGate > 1 {
		return fmt.Errorf("signal confidence gate must be within [0,1], got %v", rc.SignalGate)
	}

	s.cfg.Analysis.Pairs = rc.Pairs
	s.cfg.Analysis.SignalGate = rc.SignalGate
	if rc.CheckCron != "" {
		s.cfg.Analysis.CheckCron = rc.CheckCron
	}
	if rc.ReportCron != "" {
		s.cfg.Analysis.ReportCron = rc.ReportCron
	}
	return nil
}
