package stores

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/types"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
)

// DashboardStore keeps computed engine outputs keyed by input-tuple hash.
type DashboardStore struct {
	mu      sync.RWMutex
	entries map[string]*types.CachedDashboard
	ttl     time.Duration
	hits    int64
	misses  int64
	logger  *logging.ChanneledLogger
}

func NewDashboardStore(ttl time.Duration, logger *logging.ChanneledLogger) *DashboardStore {
	return &DashboardStore{
		entries: make(map[string]*types.CachedDashboard),
		ttl:     ttl,
		logger:  logger,
	}
}

func (s *DashboardStore) Get(key string) (*analytics.EngineOutput, bool) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists || entry.IsExpired() {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&s.hits, 1)
	return entry.Output, true
}

func (s *DashboardStore) Set(key string, output *analytics.EngineOutput) {
	s.mu.Lock()
	s.entries[key] = &types.CachedDashboard{
		Key:        key,
		Output:     output,
		ComputedAt: time.Now().UTC(),
		TTL:        s.ttl,
	}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Cache().Debug("Cached dashboard", "key", key)
	}
}

// Invalidate drops every cached dashboard. Called when a new snapshot or
// override map arrives.
func (s *DashboardStore) Invalidate() {
	s.mu.Lock()
	dropped := len(s.entries)
	s.entries = make(map[string]*types.CachedDashboard)
	s.mu.Unlock()

	if s.logger != nil && dropped > 0 {
		s.logger.Cache().Info("Invalidated dashboard cache", "dropped", dropped)
	}
}

// Cleanup removes expired entries.
func (s *DashboardStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if entry.IsExpired() {
			delete(s.entries, key)
		}
	}
}

func (s *DashboardStore) Stats() types.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return types.StoreStats{
		Entries: len(s.entries),
		Hits:    atomic.LoadInt64(&s.hits),
		Misses:  atomic.LoadInt64(&s.misses),
	}
}
