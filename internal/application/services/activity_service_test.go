package services

import (
	"testing"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
)

func TestClassifyActivityStates(t *testing.T) {
	svc := NewActivityService(newTestLogger(t), newTestTracker())
	now := mustTime(t, "2024-06-15T00:00:00Z")
	const window = 7

	tests := []struct {
		name string
		acct account.Account
		want account.ActivityState
	}{
		{
			name: "recent sale is active",
			acct: account.Account{LastSale: timePtr(t, "2024-06-12T00:00:00Z")},
			want: account.StateActive,
		},
		{
			name: "commercial wins over exploratory",
			acct: account.Account{
				LastInvoice:     timePtr(t, "2024-06-10T00:00:00Z"),
				LastNewCustomer: timePtr(t, "2024-06-14T00:00:00Z"),
			},
			want: account.StateActive,
		},
		{
			name: "recent setup only is exploring",
			acct: account.Account{LastNewItem: timePtr(t, "2024-06-13T00:00:00Z")},
			want: account.StateExploring,
		},
		{
			name: "stale commercial signal is dormant",
			acct: account.Account{LastSale: timePtr(t, "2024-04-01T00:00:00Z")},
			want: account.StateDormant,
		},
		{
			name: "signal exactly at the cutoff is outside the window",
			acct: account.Account{LastSale: timePtr(t, "2024-06-08T00:00:00Z")},
			want: account.StateDormant,
		},
		{
			name: "future-dated signal still counts as recent",
			acct: account.Account{LastSale: timePtr(t, "2024-06-16T00:00:00Z")},
			want: account.StateActive,
		},
		{
			name: "no signals at all is never active",
			acct: account.Account{TotalTickets: 50},
			want: account.StateNeverActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Classify(&tt.acct, now, window); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyWindowSizeChangesState(t *testing.T) {
	svc := NewActivityService(newTestLogger(t), newTestTracker())
	now := mustTime(t, "2024-06-15T00:00:00Z")

	a := account.Account{LastSale: timePtr(t, "2024-06-01T00:00:00Z")}
	if got := svc.Classify(&a, now, 7); got != account.StateDormant {
		t.Errorf("7-day window: got %s, want dormant", got)
	}
	if got := svc.Classify(&a, now, 30); got != account.StateActive {
		t.Errorf("30-day window: got %s, want active", got)
	}
}

func TestOverviewPartitionsAccounts(t *testing.T) {
	svc := NewActivityService(newTestLogger(t), newTestTracker())

	accounts := []account.Account{
		{ActivityState: account.StateActive},
		{ActivityState: account.StateActive},
		{ActivityState: account.StateExploring},
		{ActivityState: account.StateDormant},
		{ActivityState: account.StateNeverActive},
	}

	overview := svc.Overview(accounts)
	if overview.Total != 5 {
		t.Errorf("Total = %d, want 5", overview.Total)
	}
	if overview.Active != 2 || overview.Exploring != 1 || overview.Dormant != 1 || overview.NeverActive != 1 {
		t.Errorf("unexpected breakdown: %+v", overview)
	}
	if overview.Active+overview.Exploring+overview.Dormant+overview.NeverActive != overview.Total {
		t.Error("the four states must partition the account set")
	}
}
