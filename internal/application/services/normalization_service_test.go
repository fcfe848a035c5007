package services

import (
	"testing"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/pkg/config"
)

func TestNormalizePlanPriorityOrder(t *testing.T) {
	tests := []struct {
		raw  string
		want account.PlanKey
	}{
		{"Silver", account.PlanSilver},
		{"Plan Plata 2024", account.PlanSilver},
		{"ORO", account.PlanGold},
		{"Titanio Legacy Especial", account.PlanTitanium},
		{"Legacy Especial", account.PlanLegacy},
		{"Paquete Especial", account.PlanSpecial},
		{"sin plan", account.PlanNone},
		{"", account.PlanNone},
		{"Basico", account.PlanOther},
		{"Silver y Oro", account.PlanSilver},
	}

	for _, tt := range tests {
		if got := normalizePlan(tt.raw); got != tt.want {
			t.Errorf("normalizePlan(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestIsActiveStatusExactSet(t *testing.T) {
	svc := NewNormalizationService(newTestLogger(t), newTestTracker(), newTestRules())

	tests := []struct {
		status string
		want   bool
	}{
		{"Activa", true},
		{"ACTIVE", true},
		{"pagando", true},
		{"cuenta activa", false}, // not a bare token
		{"cancelada", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := svc.isActiveStatus(tt.status); got != tt.want {
			t.Errorf("isActiveStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestIsActiveStatusContainsActive(t *testing.T) {
	rules := newTestRules()
	rules.StatusPredicate = config.StatusPredicateContainsActive
	svc := NewNormalizationService(newTestLogger(t), newTestTracker(), rules)

	if !svc.isActiveStatus("Cuenta Activa") {
		t.Error("contains_active predicate should match a status containing 'activa'")
	}
	if svc.isActiveStatus("pagando") {
		t.Error("contains_active predicate should not match 'pagando'")
	}
}

func TestNormalizeIsPayingRequiresPlan(t *testing.T) {
	svc := NewNormalizationService(newTestLogger(t), newTestTracker(), newTestRules())

	paying := svc.Normalize(snapshot.Record{ID: "1", Plan: "Gold", Status: "activa"})
	if !paying.IsPaying {
		t.Error("active status with a real plan should be paying")
	}

	noPlan := svc.Normalize(snapshot.Record{ID: "2", Plan: "sin plan", Status: "activa"})
	if noPlan.IsPaying {
		t.Error("active status without a plan must not count as paying")
	}
	if !noPlan.IsActiveStatus {
		t.Error("status activity is independent of the plan")
	}
}

func TestParseFloatDegradesToZero(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"42", 42},
		{"1,234.5", 1234.5},
		{" 7 ", 7},
		{"-3", 0},
		{"abc", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseFloat(tt.raw); got != tt.want {
			t.Errorf("parseFloat(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	if got := parseDate("2024-05-17"); got == nil || got.Day() != 17 {
		t.Errorf("parseDate ISO date failed: %v", got)
	}
	if got := parseDate("2024-05-17 08:30:00"); got == nil || got.Hour() != 8 {
		t.Errorf("parseDate datetime failed: %v", got)
	}
	if got := parseDate("31/12/2024"); got == nil || got.Month() != 12 || got.Day() != 31 {
		t.Errorf("parseDate day-first failed: %v", got)
	}
	if got := parseDate("not a date"); got != nil {
		t.Errorf("parseDate should return nil for garbage, got %v", got)
	}
	if got := parseDate(""); got != nil {
		t.Errorf("parseDate should return nil for blank, got %v", got)
	}
}

func TestNormalizeNeverDropsRecords(t *testing.T) {
	svc := NewNormalizationService(newTestLogger(t), newTestTracker(), newTestRules())

	records := []snapshot.Record{
		{ID: "1", TotalTickets: "garbage", CreatedAt: "not a date"},
		{ID: "2"},
	}
	accounts := svc.NormalizeAll(records)
	if len(accounts) != 2 {
		t.Fatalf("normalization must preserve row count, got %d", len(accounts))
	}
	if accounts[0].TotalTickets != 0 {
		t.Errorf("bad numeric should normalize to 0, got %v", accounts[0].TotalTickets)
	}
	if accounts[0].CreatedAt != nil {
		t.Error("bad date should normalize to nil")
	}
}
