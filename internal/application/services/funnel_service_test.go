package services

import (
	"testing"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
)

func TestComputeFunnelChain(t *testing.T) {
	svc := NewFunnelService(newTestLogger(t), newTestTracker())
	now := mustTime(t, "2024-06-01T00:00:00Z")

	past := timePtr(t, "2024-05-01T00:00:00Z")
	future := timePtr(t, "2024-07-01T00:00:00Z")

	accounts := []account.Account{
		{ID: "1", ActivatedIn7d: true, TrialEndDate: past, IsPaying: true},
		{ID: "2", ActivatedIn7d: true, TrialEndDate: future},
		{ID: "3", TrialEndDate: past},
		{ID: "4"},
	}

	report := svc.Compute(accounts, now)

	if report.Created != 4 || report.Activated != 2 || report.TrialEnd != 2 || report.Paying != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if len(report.Stages) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(report.Stages))
	}

	created := report.Stages[0]
	if created.Stage != "created" || created.Percentage != 100 || created.ConversionRate != nil {
		t.Errorf("baseline stage wrong: %+v", created)
	}

	activated := report.Stages[1]
	if activated.Percentage != 50 || activated.ConversionRate == nil || *activated.ConversionRate != 50 {
		t.Errorf("activated stage wrong: %+v", activated)
	}

	trialEnd := report.Stages[2]
	if trialEnd.Percentage != 50 || trialEnd.ConversionRate == nil || *trialEnd.ConversionRate != 100 {
		t.Errorf("trial_end stage wrong: %+v", trialEnd)
	}

	paying := report.Stages[3]
	if paying.Percentage != 25 || paying.ConversionRate == nil || *paying.ConversionRate != 50 {
		t.Errorf("paying stage wrong: %+v", paying)
	}
}

func TestComputeFunnelTrialEndBoundary(t *testing.T) {
	svc := NewFunnelService(newTestLogger(t), newTestTracker())
	now := mustTime(t, "2024-06-01T00:00:00Z")

	atNow := account.Account{ID: "1", TrialEndDate: timePtr(t, "2024-06-01T00:00:00Z")}
	report := svc.Compute([]account.Account{atNow}, now)
	if report.TrialEnd != 1 {
		t.Error("a trial ending exactly now has reached the trial_end stage")
	}
}

func TestComputeFunnelEmptySet(t *testing.T) {
	svc := NewFunnelService(newTestLogger(t), newTestTracker())

	report := svc.Compute(nil, mustTime(t, "2024-06-01T00:00:00Z"))
	if report.Created != 0 {
		t.Errorf("Created = %d, want 0", report.Created)
	}
	if report.Stages[0].Percentage != 0 {
		t.Error("an empty funnel shows 0%, not 100%, at the baseline")
	}
}

func TestRatePercentRounding(t *testing.T) {
	if got := ratePercent(1, 3); got != 33.3 {
		t.Errorf("ratePercent(1,3) = %v, want 33.3", got)
	}
	if got := ratePercent(2, 3); got != 66.7 {
		t.Errorf("ratePercent(2,3) = %v, want 66.7", got)
	}
	if got := ratePercent(5, 0); got != 0 {
		t.Errorf("ratePercent with zero base = %v, want 0", got)
	}
}
