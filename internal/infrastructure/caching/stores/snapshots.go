// Package stores holds the specialized in-memory cache stores behind the
// cache manager.
package stores

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/types"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
)

// SnapshotStore keeps the last good raw snapshot. Expired entries are kept
// around as the fallback for failed upstream fetches.
type SnapshotStore struct {
	mu     sync.RWMutex
	entry  *types.CachedSnapshot
	ttl    time.Duration
	hits   int64
	misses int64
	logger *logging.ChanneledLogger
}

func NewSnapshotStore(ttl time.Duration, logger *logging.ChanneledLogger) *SnapshotStore {
	return &SnapshotStore{ttl: ttl, logger: logger}
}

// Get returns the snapshot when present and fresh.
func (s *SnapshotStore) Get() (*snapshot.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil || s.entry.IsExpired() {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&s.hits, 1)
	return s.entry.Snapshot, true
}

// GetAny returns the snapshot regardless of freshness.
func (s *SnapshotStore) GetAny() (*snapshot.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil {
		return nil, false
	}
	return s.entry.Snapshot, true
}

func (s *SnapshotStore) Set(snap *snapshot.Snapshot) {
	s.mu.Lock()
	s.entry = &types.CachedSnapshot{
		Snapshot: snap,
		CachedAt: time.Now().UTC(),
		TTL:      s.ttl,
	}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Cache().Debug("Cached snapshot", "snapshotId", snap.ID, "rows", snap.RowCount)
	}
}

func (s *SnapshotStore) Stats() types.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := 0
	if s.entry != nil {
		entries = 1
	}
	return types.StoreStats{
		Entries: entries,
		Hits:    atomic.LoadInt64(&s.hits),
		Misses:  atomic.LoadInt64(&s.misses),
	}
}
