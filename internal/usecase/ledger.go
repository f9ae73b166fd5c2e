package usecase

import (
	"sync"
	"time"

	"SwingRadar/internal/domain/models"
)

// SignalLedger retains the last notified signal per pair for change
// detection. It is threaded explicitly through the orchestration; only
// the analysis pass reads or writes it, but the mutex keeps it safe if
// the host ever runs passes concurrently.
type SignalLedger struct {
	mu   sync.Mutex
	prev map[string]models.TradingSignal
}

func NewSignalLedger() *SignalLedger {
	return &SignalLedger{prev: make(map[string]models.TradingSignal)}
}

// Previous returns the last remembered signal for the pair.
func (l *SignalLedger) Previous(pair string) (models.TradingSignal, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sig, ok := l.prev[pair]
	return sig, ok
}

// Remember stores the signal as the last one sent for its pair.
func (l *SignalLedger) Remember(sig models.TradingSignal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prev[sig.Pair] = sig
}

// Empty reports whether any signal has ever been remembered.
func (l *SignalLedger) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prev) == 0
}

// IsNew decides whether a freshly computed signal is worth notifying:
// no prior signal for the pair, a different classification, a
// confidence move beyond confidenceStep, or a prior older than
// resendInterval.
func (l *SignalLedger) IsNew(sig models.TradingSignal, now time.Time, confidenceStep float64, resendInterval time.Duration) bool {
	prev, ok := l.Previous(sig.Pair)
	if !ok {
		return true
	}
	if prev.Classification != sig.Classification {
		return true
	}
	if diff := sig.Confidence - prev.Confidence; diff > confidenceStep || diff < -confidenceStep {
		return true
	}
	return now.Sub(prev.CreatedAt) > resendInterval
}

// Snapshot copies the ledger state, for inspection and test setup.
func (l *SignalLedger) Snapshot() map[string]models.TradingSignal {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]models.TradingSignal, len(l.prev))
	for k, v := range l.prev {
		out[k] = v
	}
	return out
}

// Restore replaces the ledger state wholesale.
func (l *SignalLedger) Restore(state map[string]models.TradingSignal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prev = make(map[string]models.TradingSignal, len(state))
	for k, v := range state {
		l.prev[k] = v
	}
}
