// Package types defines the cached value shapes for snapshot, dashboard,
// and override caching.
package types

import (
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
)

// CachedSnapshot holds the last good raw snapshot. It outlives its TTL as a
// fallback when the upstream fetch fails; expiry only signals staleness.
type CachedSnapshot struct {
	Snapshot *snapshot.Snapshot `json:"snapshot"`
	CachedAt time.Time          `json:"cachedAt"`
	TTL      time.Duration      `json:"ttl"`
}

// IsExpired reports whether the snapshot is older than its TTL.
func (c *CachedSnapshot) IsExpired() bool {
	return time.Since(c.CachedAt) > c.TTL
}

// CachedDashboard holds one computed engine output, keyed by the hash of
// the input tuple that produced it. Identical inputs always hash to the
// same key, so a hit can never serve a stale configuration.
type CachedDashboard struct {
	Key        string                  `json:"key"`
	Output     *analytics.EngineOutput `json:"output"`
	ComputedAt time.Time               `json:"computedAt"`
	TTL        time.Duration           `json:"ttl"`
}

// IsExpired reports whether the computed dashboard is older than its TTL.
func (c *CachedDashboard) IsExpired() bool {
	return time.Since(c.ComputedAt) > c.TTL
}

// CachedOverrides holds the manual test-account flag map.
type CachedOverrides struct {
	Overrides map[string]bool `json:"overrides"`
	CachedAt  time.Time       `json:"cachedAt"`
	TTL       time.Duration   `json:"ttl"`
}

// IsExpired reports whether the override map is older than its TTL.
func (c *CachedOverrides) IsExpired() bool {
	return time.Since(c.CachedAt) > c.TTL
}

// StoreStats reports hit/miss/entry counts for one store.
type StoreStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
