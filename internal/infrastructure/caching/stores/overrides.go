package stores

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kladi/pulso-go/internal/infrastructure/caching/types"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
)

// OverrideStore keeps the manual test-account flag map.
type OverrideStore struct {
	mu     sync.RWMutex
	entry  *types.CachedOverrides
	ttl    time.Duration
	hits   int64
	misses int64
	logger *logging.ChanneledLogger
}

func NewOverrideStore(ttl time.Duration, logger *logging.ChanneledLogger) *OverrideStore {
	return &OverrideStore{ttl: ttl, logger: logger}
}

func (s *OverrideStore) Get() (map[string]bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil || s.entry.IsExpired() {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&s.hits, 1)
	return s.entry.Overrides, true
}

func (s *OverrideStore) Set(overrides map[string]bool) {
	s.mu.Lock()
	s.entry = &types.CachedOverrides{
		Overrides: overrides,
		CachedAt:  time.Now().UTC(),
		TTL:       s.ttl,
	}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Cache().Debug("Cached override map", "overrides", len(overrides))
	}
}

func (s *OverrideStore) Invalidate() {
	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()
}

func (s *OverrideStore) Stats() types.StoreStats {
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
