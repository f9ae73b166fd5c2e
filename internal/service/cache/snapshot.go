package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"SwingRadar/internal/domain/models"
)

const snapshotKey = "swingradar:batch:latest"

// SnapshotStore keeps the most recent analysis batch in a BytesCache.
// Writes replace the whole snapshot; there is no partial update.
type SnapshotStore struct {
	c   BytesCache
	ttl time.Duration
}

func NewSnapshotStore(c BytesCache, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{c: c, ttl: ttl}
}

func (s *SnapshotStore) SetBatch(snap models.BatchSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.c.SetBytes(snapshotKey, b, s.ttl); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Latest() (*models.BatchSnapshot, bool, error) {
	b, ok, err := s.c.GetBytes(snapshotKey)
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var snap models.BatchSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, true, nil
}

// Fresh reports whether a snapshot exists and is younger than maxAge.
func (s *SnapshotStore) Fresh(maxAge time.Duration) (bool, error) {
	snap, ok, err := s.Latest()
	if err != nil || !ok {
		return false, err
	}
	return time.Since(snap.UpdatedAt) <= maxAge, nil
}
