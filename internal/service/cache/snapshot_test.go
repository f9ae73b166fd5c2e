package cache

import (
	"testing"
	"time"

	"SwingRadar/internal/domain/models"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store := NewSnapshotStore(NewTTLCache(), time.Minute)

	if _, ok, err := store.Latest(); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	snap := models.BatchSnapshot{
		Analyses: []models.Recommendation{
			{Pair: "BTC/USDT", Classification: models.Hold, Confidence: 0.5},
		},
		Signals: []models.TradingSignal{
			{ID: "abc", Pair: "BTC/USDT", Classification: models.Buy, Confidence: 0.72},
		},
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.SetBatch(snap); err != nil {
		t.Fatalf("SetBatch: %v", err)
	}

	got, ok, err := store.Latest()
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if len(got.Analyses) != 1 || got.Analyses[0].Pair != "BTC/USDT" {
		t.Errorf("unexpected analyses: %+v", got.Analyses)
	}
	if len(got.Signals) != 1 || got.Signals[0].ID != "abc" {
		t.Errorf("unexpected signals: %+v", got.Signals)
	}
}

func TestSnapshotStoreReplaceOnWrite(t *testing.T) {
	store := NewSnapshotStore(NewTTLCache(), time.Minute)

	first := models.BatchSnapshot{
		Signals:   []models.TradingSignal{{ID: "one"}, {ID: "two"}},
		UpdatedAt: time.Now(),
	}
	second := models.BatchSnapshot{
		Signals:   []models.TradingSignal{{ID: "three"}},
		UpdatedAt: time.Now(),
	}
	if err := store.SetBatch(first); err != nil {
		t.Fatalf("SetBatch: %v", err)
	}
	if err := store.SetBatch(second); err != nil {
		t.Fatalf("SetBatch: %v", err)
	}

	got, _, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(got.Signals) != 1 || got.Signals[0].ID != "three" {
		t.Errorf("write did not replace previous batch: %+v", got.Signals)
	}
}

func TestSnapshotStoreFresh(t *testing.T) {
	store := NewSnapshotStore(NewTTLCache(), time.Minute)

	fresh, err := store.Fresh(time.Minute)
	if err != nil {
		t.Fatalf("Fresh: %v", err)
	}
	if fresh {
		t.Errorf("empty store reported fresh")
	}

	if err := store.SetBatch(models.BatchSnapshot{UpdatedAt: time.Now().Add(-2 * time.Hour)}); err != nil {
		t.Fatalf("SetBatch: %v", err)
	}
	if fresh, _ = store.Fresh(time.Hour); fresh {
		t.Errorf("stale snapshot reported fresh")
	}

	if err := store.SetBatch(models.BatchSnapshot{UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("SetBatch: %v", err)
	}
	if fresh, _ = store.Fresh(time.Hour); !fresh {
		t.Errorf("recent snapshot reported stale")
	}
}
