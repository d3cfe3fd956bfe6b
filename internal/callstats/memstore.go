package callstats

import (
	"context"
	"sync"
)

// MemStore is an in-memory [Store]. It is the default when no Postgres DSN
// is configured, and doubles as a test double.
type MemStore struct {
	mu    sync.RWMutex
	stats map[string]CallStats
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{stats: make(map[string]CallStats)}
}

// Record stores the stats, replacing any earlier row for the same StreamSID.
func (s *MemStore) Record(_ context.Context, stats *CallStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.StreamSID] = *stats
	return nil
}

// Ping always succeeds.
func (s *MemStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *MemStore) Close() {}

// Get returns the recorded stats for a stream and whether they exist.
func (s *MemStore) Get(streamSID string) (CallStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[streamSID]
	return st, ok
}

// Len returns the number of recorded streams.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stats)
}
