// Package manager provides centralized cache operations by delegating to
// specialized stores.
package manager

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/interfaces"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/stores"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/types"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/pkg/config"
)

// Interface assertion to ensure Manager implements the cache surface.
var _ interfaces.Cache = (*Manager)(nil)

// Manager delegates to the snapshot, dashboard, and override stores.
type Manager struct {
	snapshotStore  *stores.SnapshotStore
	dashboardStore *stores.DashboardStore
	overrideStore  *stores.OverrideStore
	logger         *logging.ChanneledLogger
}

func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"snapshots", "dashboards", "overrides"})
	}

	return &Manager{
		snapshotStore:  stores.NewSnapshotStore(config.SnapshotTTL, logger),
		dashboardStore: stores.NewDashboardStore(config.DashboardTTL, logger),
		overrideStore:  stores.NewOverrideStore(config.OverridesTTL, logger),
		logger:         logger,
	}
}

func (m *Manager) GetSnapshot() (*snapshot.Snapshot, bool)    { return m.snapshotStore.Get() }
func (m *Manager) GetSnapshotAny() (*snapshot.Snapshot, bool) { return m.snapshotStore.GetAny() }

// SetSnapshot stores a new snapshot and drops every computed dashboard,
// which was keyed to the previous snapshot id.
func (m *Manager) SetSnapshot(snap *snapshot.Snapshot) {
	m.snapshotStore.Set(snap)
	m.dashboardStore.Invalidate()
}

func (m *Manager) GetDashboard(key string) (*analytics.EngineOutput, bool) {
	return m.dashboardStore.Get(key)
}

func (m *Manager) SetDashboard(key string, output *analytics.EngineOutput) {
	m.dashboardStore.Set(key, output)
}

func (m *Manager) InvalidateDashboards() { m.dashboardStore.Invalidate() }

func (m *Manager) GetOverrides() (map[string]bool, bool) { return m.overrideStore.Get() }

// SetOverrides stores a new override map and drops computed dashboards;
// classification results depend on the map.
func (m *Manager) SetOverrides(overrides map[string]bool) {
	m.overrideStore.Set(overrides)
	m.dashboardStore.Invalidate()
}

func (m *Manager) InvalidateOverrides() { m.overrideStore.Invalidate() }

// Cleanup removes expired dashboard entries. The snapshot store is exempt:
// its stale entry is the upstream-failure fallback.
func (m *Manager) Cleanup() {
	m.dashboardStore.Cleanup()
}

func (m *Manager) GetStats() map[string]types.StoreStats {
	return map[string]types.StoreStats{
		"snapshots":  m.snapshotStore.Stats(),
		"dashboards": m.dashboardStore.Stats(),
		"overrides":  m.overrideStore.Stats(),
	}
}

// DashboardKey hashes the full engine input tuple. Every field that can
// change the output participates; override keys are sorted so map iteration
// order cannot perturb the hash.
func DashboardKey(input *analytics.EngineInput) string {
	h, _ := blake2b.New256(nil)

	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	if input.Snapshot != nil {
		write(input.Snapshot.ID)
	}
	write(input.Now.UTC().Format(time.RFC3339Nano))
	write(strconv.Itoa(input.WindowDays))
	write(input.Filters.Plan)
	write(input.Filters.Status)
	if input.Filters.DateFrom != nil {
		write(input.Filters.DateFrom.UTC().Format(time.RFC3339))
	}
	if input.Filters.DateTo != nil {
		write(input.Filters.DateTo.UTC().Format(time.RFC3339))
	}
	write(input.Filters.SearchQuery)

	keys := make([]string, 0, len(input.Overrides))
	for k := range input.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(fmt.Sprintf("%s=%t", k, input.Overrides[k]))
	}

	return hex.EncodeToString(h.Sum(nil))
}
