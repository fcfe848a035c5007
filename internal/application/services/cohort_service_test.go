package services

import (
	"testing"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
)

func TestMonthlyStatesGroupsByRegistrationMonth(t *testing.T) {
	svc := NewCohortService(newTestLogger(t), newTestTracker())

	accounts := []account.Account{
		{ID: "1", CreatedAt: timePtr(t, "2024-01-05T00:00:00Z"), ActivityState: account.StateActive},
		{ID: "2", CreatedAt: timePtr(t, "2024-01-20T00:00:00Z"), ActivityState: account.StateDormant},
		{ID: "3", CreatedAt: timePtr(t, "2024-02-02T00:00:00Z"), ActivityState: account.StateExploring},
		{ID: "4"}, // no creation date, not in any cohort
	}

	series := svc.MonthlyStates(accounts)
	if len(series) != 2 {
		t.Fatalf("expected 2 months, got %d", len(series))
	}

	jan := series[0]
	if jan.Month != "2024-01" || jan.Total != 2 || jan.Active != 1 || jan.Dormant != 1 {
		t.Errorf("january wrong: %+v", jan)
	}
	if jan.PercentActive != 50 {
		t.Errorf("january PercentActive = %v, want 50", jan.PercentActive)
	}

	feb := series[1]
	if feb.Month != "2024-02" || feb.Total != 1 || feb.Exploring != 1 {
		t.Errorf("february wrong: %+v", feb)
	}
}

func TestChurnByMonthWalksEveryMonth(t *testing.T) {
	svc := NewCohortService(newTestLogger(t), newTestTracker())
	now := mustTime(t, "2024-03-15T00:00:00Z")

	accounts := []account.Account{
		{
			ID:        "1",
			CreatedAt: timePtr(t, "2024-01-05T00:00:00Z"),
			LastSale:  timePtr(t, "2024-01-20T00:00:00Z"),
		},
		{
			ID:        "2",
			CreatedAt: timePtr(t, "2024-02-10T00:00:00Z"),
		},
	}

	series := svc.ChurnByMonth(accounts, now)
	if len(series) != 3 {
		t.Fatalf("expected Jan, Feb, Mar, got %d months", len(series))
	}

	jan := series[0]
	if jan.Month != "2024-01" || jan.TotalExisting != 1 {
		t.Fatalf("january wrong: %+v", jan)
	}
	if jan.Active != 1 || jan.Inactive != 0 {
		t.Errorf("the Jan 20 sale falls in January's lookback: %+v", jan)
	}
	if jan.RetentionRate != 100 || jan.ChurnRate != 0 {
		t.Errorf("january rates wrong: %+v", jan)
	}

	feb := series[1]
	if feb.TotalExisting != 2 {
		t.Fatalf("both accounts existed by February's end: %+v", feb)
	}
	// The Jan 20 sale is before Feb's lookback window (Jan 29 onward).
	if feb.Active != 0 || feb.Inactive != 2 {
		t.Errorf("february activity wrong: %+v", feb)
	}
	if feb.ChurnRate != 100 {
		t.Errorf("february ChurnRate = %v, want 100", feb.ChurnRate)
	}
}

func TestChurnByMonthEmptyWithoutCreationDates(t *testing.T) {
	svc := NewCohortService(newTestLogger(t), newTestTracker())

	series := svc.ChurnByMonth([]account.Account{{ID: "1"}}, mustTime(t, "2024-03-15T00:00:00Z"))
	if len(series) != 0 {
		t.Errorf("no dated accounts means no months, got %d", len(series))
	}
}

func TestCohortRetentionLooksBackFromNow(t *testing.T) {
	svc := NewCohortService(newTestLogger(t), newTestTracker())
	now := mustTime(t, "2024-06-15T00:00:00Z")

	accounts := []account.Account{
		{
			ID:          "1",
			CreatedAt:   timePtr(t, "2024-01-05T00:00:00Z"),
			LastInvoice: timePtr(t, "2024-06-10T00:00:00Z"),
		},
		{
			ID:        "2",
			CreatedAt: timePtr(t, "2024-01-20T00:00:00Z"),
			LastSale:  timePtr(t, "2024-02-01T00:00:00Z"),
		},
		{
			ID:          "3",
			CreatedAt:   timePtr(t, "2024-03-10T00:00:00Z"),
			LastNewItem: timePtr(t, "2024-06-14T00:00:00Z"),
		},
	}

	series := svc.CohortRetention(accounts, now)
	if len(series) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(series))
	}

	jan := series[0]
	if jan.Month != "2024-01" || jan.NewAccounts != 2 || jan.Retained != 1 || jan.Churned != 1 {
		t.Errorf("january cohort wrong: %+v", jan)
	}
	if jan.RetentionRate != 50 || jan.ChurnRate != 50 {
		t.Errorf("january rates wrong: %+v", jan)
	}

	mar := series[1]
	if mar.Month != "2024-03" || mar.Retained != 1 || mar.Churned != 0 {
		t.Errorf("march cohort wrong: %+v", mar)
	}
}

func TestSignalBetweenUsesAllSixSignals(t *testing.T) {
	from := mustTime(t, "2024-06-01T00:00:00Z")
	to := mustTime(t, "2024-06-30T00:00:00Z")

	a := account.Account{LastNewSupplier: timePtr(t, "2024-06-15T00:00:00Z")}
	if !signalBetween(&a, from, to) {
		t.Error("exploratory signals count toward churn activity")
	}

	b := account.Account{LastSale: timePtr(t, "2024-06-01T00:00:00Z")}
	if signalBetween(&b, from, to) {
		t.Error("a signal exactly at the window start is outside (from, to]")
	}

	c := account.Account{LastSale: timePtr(t, "2024-06-30T00:00:00Z")}
	if !signalBetween(&c, from, to) {
		t.Error("a signal exactly at the window end is inside (from, to]")
	}
}
