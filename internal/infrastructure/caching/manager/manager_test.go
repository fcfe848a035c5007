package manager

import (
	"testing"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
)

func testInput() *analytics.EngineInput {
	return &analytics.EngineInput{
		Snapshot:   &snapshot.Snapshot{ID: "snap-1"},
		Now:        time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		WindowDays: 7,
		Overrides:  map[string]bool{"a": true, "b": false},
	}
}

func TestDashboardKeyIsDeterministic(t *testing.T) {
	first := DashboardKey(testInput())
	second := DashboardKey(testInput())
	if first != second {
		t.Error("identical inputs must hash to the same key")
	}
}

func TestDashboardKeyChangesWithEveryInputField(t *testing.T) {
	base := DashboardKey(testInput())

	changed := testInput()
	changed.Snapshot.ID = "snap-2"
	if DashboardKey(changed) == base {
		t.Error("snapshot id must participate in the key")
	}

	changed = testInput()
	changed.Now = changed.Now.Add(time.Second)
	if DashboardKey(changed) == base {
		t.Error("now must participate in the key")
	}

	changed = testInput()
	changed.WindowDays = 30
	if DashboardKey(changed) == base {
		t.Error("window must participate in the key")
	}

	changed = testInput()
	changed.Filters.Plan = "gold"
	if DashboardKey(changed) == base {
		t.Error("plan filter must participate in the key")
	}

	changed = testInput()
	changed.Overrides["a"] = false
	if DashboardKey(changed) == base {
		t.Error("override values must participate in the key")
	}

	changed = testInput()
	delete(changed.Overrides, "b")
	if DashboardKey(changed) == base {
		t.Error("override keys must participate in the key")
	}
}

func TestManagerSnapshotInvalidatesDashboards(t *testing.T) {
	m := NewManager(nil)

	key := DashboardKey(testInput())
	m.SetDashboard(key, &analytics.EngineOutput{WindowDays: 7})
	if _, ok := m.GetDashboard(key); !ok {
		t.Fatal("dashboard should be cached")
	}

	m.SetSnapshot(&snapshot.Snapshot{ID: "snap-2"})
	if _, ok := m.GetDashboard(key); ok {
		t.Error("a new snapshot must drop every computed dashboard")
	}
}

func TestManagerOverridesInvalidateDashboards(t *testing.T) {
	m := NewManager(nil)

	key := DashboardKey(testInput())
	m.SetDashboard(key, &analytics.EngineOutput{WindowDays: 7})

	m.SetOverrides(map[string]bool{"x": true})
	if _, ok := m.GetDashboard(key); ok {
		t.Error("a new override map must drop every computed dashboard")
	}

	overrides, ok := m.GetOverrides()
	if !ok || !overrides["x"] {
		t.Error("override map should be cached")
	}
}

func TestManagerSnapshotFallback(t *testing.T) {
	m := NewManager(nil)

	if _, ok := m.GetSnapshotAny(); ok {
		t.Error("empty store should miss")
	}

	m.SetSnapshot(&snapshot.Snapshot{ID: "snap-1"})
	if snap, ok := m.GetSnapshot(); !ok || snap.ID != "snap-1" {
		t.Error("fresh snapshot should hit")
	}
	if snap, ok := m.GetSnapshotAny(); !ok || snap.ID != "snap-1" {
		t.Error("GetSnapshotAny should return the stored snapshot")
	}
}
