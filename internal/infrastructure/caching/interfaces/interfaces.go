// Package interfaces defines the cache contracts consumed by the
// application layer.
package interfaces

import (
	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/types"
)

// SnapshotCache stores the last good raw snapshot.
type SnapshotCache interface {
	GetSnapshot() (*snapshot.Snapshot, bool)
	// GetSnapshotAny returns the cached snapshot even when expired, for
	// fallback after a failed upstream fetch.
	GetSnapshotAny() (*snapshot.Snapshot, bool)
	SetSnapshot(snap *snapshot.Snapshot)
}

// DashboardCache stores computed engine outputs keyed by input-tuple hash.
type DashboardCache interface {
	GetDashboard(key string) (*analytics.EngineOutput, bool)
	SetDashboard(key string, output *analytics.EngineOutput)
	InvalidateDashboards()
}

// OverrideCache stores the manual test-account flag map.
type OverrideCache interface {
	GetOverrides() (map[string]bool, bool)
	SetOverrides(overrides map[string]bool)
	InvalidateOverrides()
}

// Cache is the full cache surface wired through the container.
type Cache interface {
	SnapshotCache
	DashboardCache
	OverrideCache

	Cleanup()
	GetStats() map[string]types.StoreStats
}
