package services

import (
	"reflect"
	"testing"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/pkg/config"
)

func newTestDashboardService(t *testing.T) *DashboardService {
	t.Helper()
	logger := newTestLogger(t)
	tracker := newTestTracker()
	rules := newTestRules()

	return NewDashboardService(
		logger, tracker,
		NewDeduplicationService(logger, tracker),
		NewNormalizationService(logger, tracker, rules),
		NewClassificationService(logger, tracker, rules),
		NewTrialService(logger, tracker, rules),
		NewActivityService(logger, tracker),
		NewKPIService(logger, tracker),
		NewFunnelService(logger, tracker),
		NewUsageService(logger, tracker),
		NewAdoptionService(logger, tracker),
		NewCohortService(logger, tracker),
		NewRiskService(logger, tracker, rules),
	)
}

func testSnapshot() *snapshot.Snapshot {
	records := []snapshot.Record{
		{
			ID: "101", CompanyName: "Panaderia La Espiga", AdministratorName: "Maria Lopez",
			Email: "maria@espiga.mx", CreatedAt: "2024-01-10", Plan: "Gold", Status: "activa",
			TotalTickets: "40", TotalCustomers: "15", TotalItems: "120",
			NewTickets7d: "4", NewItems7d: "6",
			LastSale: "2024-06-12",
		},
		{
			ID: "102", CompanyName: "Abarrotes El Centro", AdministratorName: "Pedro Ruiz",
			Email: "pedro@centro.mx", CreatedAt: "2024-06-05", Plan: "", Status: "",
			TotalItems: "3", LastNewItem: "2024-06-10",
		},
		{
			ID: "103", CompanyName: "Cuenta Test", AdministratorName: "Equipo QA",
			Email: "qa@negocio.mx", CreatedAt: "2024-02-01", Plan: "Silver", Status: "activa",
			TotalTickets: "99",
		},
		// Duplicate of 101 with less activity; dedup drops it.
		{
			ID: "104", CompanyName: "panaderia la espiga", CreatedAt: "2024-01-09",
			TotalTickets: "1",
		},
	}
	return &snapshot.Snapshot{
		ID:       "snap-1",
		Records:  records,
		RowCount: len(records),
	}
}

func TestComputeDashboardEndToEnd(t *testing.T) {
	svc := newTestDashboardService(t)

	input := &analytics.EngineInput{
		Snapshot:   testSnapshot(),
		Now:        mustTime(t, "2024-06-15T00:00:00Z"),
		WindowDays: 7,
	}

	output := svc.ComputeDashboard(input)

	// 4 raw rows, 1 duplicate dropped, 1 test account excluded.
	if len(output.Accounts) != 3 {
		t.Fatalf("expected 3 deduped accounts, got %d", len(output.Accounts))
	}
	if len(output.Filtered) != 2 {
		t.Fatalf("expected 2 non-test accounts, got %d", len(output.Filtered))
	}

	if output.KPIs.TotalAccounts != 2 {
		t.Errorf("KPIs.TotalAccounts = %d, want 2", output.KPIs.TotalAccounts)
	}
	if output.KPIs.Paying != 1 {
		t.Errorf("KPIs.Paying = %d, want 1", output.KPIs.Paying)
	}
	if output.KPIs.TotalMRR != 220 {
		t.Errorf("KPIs.TotalMRR = %v, want 220", output.KPIs.TotalMRR)
	}

	// Account 102 registered Jun 5, trial ends Jun 20, not paying.
	if output.KPIs.InTrial != 1 {
		t.Errorf("KPIs.InTrial = %d, want 1", output.KPIs.InTrial)
	}
	if len(output.TrialAccounts) != 1 || output.TrialAccounts[0].ID != "102" {
		t.Errorf("expected account 102 in trial, got %+v", output.TrialAccounts)
	}

	if output.ActivityOverview.Active != 1 || output.ActivityOverview.Exploring != 1 {
		t.Errorf("activity overview wrong: %+v", output.ActivityOverview)
	}

	// The excluded test account still carries derived fields for the admin view.
	for _, a := range output.Accounts {
		if a.ID == "103" {
			if !a.IsTest {
				t.Error("account 103 should be flagged as test")
			}
			if a.ActivityState == "" {
				t.Error("test accounts still get an activity state")
			}
		}
	}
}

func TestComputeDashboardFullListCarriesDerivedFields(t *testing.T) {
	svc := newTestDashboardService(t)

	output := svc.ComputeDashboard(&analytics.EngineInput{
		Snapshot:   testSnapshot(),
		Now:        mustTime(t, "2024-06-15T00:00:00Z"),
		WindowDays: 7,
	})

	// Every account in the full list, test or not, gets the per-account
	// derivation; the filtered subset must not be the only derived view.
	for _, a := range output.Accounts {
		if a.ActivityState == "" {
			t.Errorf("account %s in the full list has no activity state", a.ID)
		}
	}
	for _, a := range output.Accounts {
		if a.ID != "101" {
			continue
		}
		if a.EstimatedMRR != 220 {
			t.Errorf("paying gold account in the full list shows MRR %v, want 220", a.EstimatedMRR)
		}
		if a.TrialEndDate == nil {
			t.Error("full-list account is missing its trial end date")
		}
	}
	for _, a := range output.Accounts {
		if a.ID == "102" && !a.InTrial {
			t.Error("in-trial account must show inTrial in the full list too")
		}
	}
}

func TestComputeDashboardIsDeterministic(t *testing.T) {
	svc := newTestDashboardService(t)

	input := &analytics.EngineInput{
		Snapshot:   testSnapshot(),
		Now:        mustTime(t, "2024-06-15T00:00:00Z"),
		WindowDays: 7,
	}

	first := svc.ComputeDashboard(input)
	second := svc.ComputeDashboard(input)

	if !reflect.DeepEqual(first.KPIs, second.KPIs) {
		t.Error("identical inputs must yield identical KPIs")
	}
	if !reflect.DeepEqual(first.Funnel, second.Funnel) {
		t.Error("identical inputs must yield identical funnels")
	}
	if !reflect.DeepEqual(first.Filtered, second.Filtered) {
		t.Error("identical inputs must yield identical filtered sets")
	}
}

func TestComputeDashboardEmptySnapshot(t *testing.T) {
	svc := newTestDashboardService(t)

	output := svc.ComputeDashboard(&analytics.EngineInput{
		Snapshot:   &snapshot.Snapshot{ID: "empty"},
		Now:        mustTime(t, "2024-06-15T00:00:00Z"),
		WindowDays: 7,
	})

	if len(output.Accounts) != 0 || len(output.Filtered) != 0 {
		t.Error("empty snapshot should produce empty account sets")
	}
	if output.KPIs.TotalAccounts != 0 {
		t.Error("empty snapshot should produce a zero KPI report")
	}
	if output.Funnel.Stages[0].Percentage != 0 {
		t.Error("empty funnel baseline shows 0%")
	}
}

func TestComputeDashboardOverridesWin(t *testing.T) {
	svc := newTestDashboardService(t)

	input := &analytics.EngineInput{
		Snapshot:   testSnapshot(),
		Now:        mustTime(t, "2024-06-15T00:00:00Z"),
		WindowDays: 7,
		Overrides:  map[string]bool{"103": false},
	}

	output := svc.ComputeDashboard(input)
	if len(output.Filtered) != 3 {
		t.Errorf("override should re-include the test account, got %d filtered", len(output.Filtered))
	}
}

func TestComputeDashboardWindowClamping(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, config.DefaultWindowDays},
		{-5, config.DefaultWindowDays},
		{7, 7},
		{1, config.MinWindowDays},
		{500, config.MaxWindowDays},
	}

	for _, tt := range tests {
		if got := clampWindow(tt.in); got != tt.want {
			t.Errorf("clampWindow(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestApplyFiltersNarrowsAndSorts(t *testing.T) {
	svc := newTestDashboardService(t)
	now := mustTime(t, "2024-06-15T00:00:00Z")

	base := &analytics.EngineInput{
		Snapshot:   testSnapshot(),
		Now:        now,
		WindowDays: 7,
	}

	planFiltered := svc.ComputeDashboard(&analytics.EngineInput{
		Snapshot: base.Snapshot, Now: now, WindowDays: 7,
		Filters: analytics.Filters{Plan: "gold"},
	})
	if len(planFiltered.Filtered) != 1 || planFiltered.Filtered[0].ID != "101" {
		t.Errorf("plan filter wrong: %+v", planFiltered.Filtered)
	}

	statusFiltered := svc.ComputeDashboard(&analytics.EngineInput{
		Snapshot: base.Snapshot, Now: now, WindowDays: 7,
		Filters: analytics.Filters{Status: "trial"},
	})
	if len(statusFiltered.Filtered) != 1 || statusFiltered.Filtered[0].ID != "102" {
		t.Errorf("status filter wrong: %+v", statusFiltered.Filtered)
	}

	queryFiltered := svc.ComputeDashboard(&analytics.EngineInput{
		Snapshot: base.Snapshot, Now: now, WindowDays: 7,
		Filters: analytics.Filters{SearchQuery: "espiga"},
	})
	if len(queryFiltered.Filtered) != 1 || queryFiltered.Filtered[0].ID != "101" {
		t.Errorf("search filter wrong: %+v", queryFiltered.Filtered)
	}

	from := mustTime(t, "2024-06-01T00:00:00Z")
	dateFiltered := svc.ComputeDashboard(&analytics.EngineInput{
		Snapshot: base.Snapshot, Now: now, WindowDays: 7,
		Filters: analytics.Filters{DateFrom: &from},
	})
	if len(dateFiltered.Filtered) != 1 || dateFiltered.Filtered[0].ID != "102" {
		t.Errorf("date filter wrong: %+v", dateFiltered.Filtered)
	}

	unfiltered := svc.ComputeDashboard(base)
	for i := 1; i < len(unfiltered.Filtered); i++ {
		if unfiltered.Filtered[i-1].ID > unfiltered.Filtered[i].ID {
			t.Error("filtered output must be sorted by id")
		}
	}
}
