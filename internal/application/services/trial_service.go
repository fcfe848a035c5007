package services

import (
	"math"
	"sort"
	"time"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	"github.com/kladi/pulso-go/pkg/config"
)

// TrialService computes the temporal derivations: elapsed days, trial
// window flags, and plan pricing. Everything is evaluated against the
// caller-supplied now, never a captured wall clock.
type TrialService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	rules       *config.Rules
}

func NewTrialService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, rules *config.Rules) *TrialService {
	return &TrialService{
		logger:      logger,
		perfTracker: perfTracker,
		rules:       rules,
	}
}

// Derive fills the temporal and pricing fields of one account in place.
// A missing creation date leaves every temporal derivation nil/false.
func (s *TrialService) Derive(a *account.Account, now time.Time) {
	a.MonthlyPrice = s.rules.PlanPricing[string(a.PlanKey)]
	if a.IsPaying {
		a.EstimatedMRR = a.MonthlyPrice
	} else {
		a.EstimatedMRR = 0
	}

	a.ActivatedIn7d = a.NewItems7d >= s.rules.ActivationMinItems7d &&
		a.NewTickets7d >= s.rules.ActivationMinTickets7d
	a.DormantIn7d = a.NewTickets7d == 0 && a.IsActiveStatus

	if a.CreatedAt == nil {
		a.DaysSinceCreation = 0
		a.TrialEndDate = nil
		a.InTrial = false
		a.TrialExpired = false
		a.TrialEndingSoon = false
		return
	}

	a.DaysSinceCreation = daysBetween(*a.CreatedAt, now)

	// Calendar-day addition, with month/year rollover. A fixed millisecond
	// offset would drift across DST boundaries.
	trialEnd := a.CreatedAt.AddDate(0, 0, s.rules.TrialDays)
	a.TrialEndDate = &trialEnd

	a.InTrial = !now.After(trialEnd) && !a.IsPaying
	a.TrialExpired = now.After(trialEnd) && !a.IsPaying

	daysLeft := int(math.Ceil(trialEnd.Sub(now).Hours() / 24))
	a.TrialEndingSoon = a.InTrial && daysLeft >= 0 && daysLeft <= s.rules.TrialEndingSoonDays
}

// TrialAccounts returns every in-trial account annotated with remaining
// days and follow-up priority, sorted ascending by days remaining. Ties
// sort by id for deterministic output.
func (s *TrialService) TrialAccounts(accounts []account.Account, now time.Time) []account.TrialAccount {
	marker := s.perfTracker.StartOperation("engine:trial_accounts")
	defer s.perfTracker.CompleteOperation(marker)

	trials := make([]account.TrialAccount, 0)
	for _, a := range accounts {
		if !a.InTrial || a.TrialEndDate == nil {
			continue
		}
		// InTrial already guarantees now is not past the trial end, so the
		// remaining-day count is never negative.
		daysRemaining := daysBetween(now, *a.TrialEndDate)
		trials = append(trials, account.TrialAccount{
			Account:       a,
			DaysRemaining: daysRemaining,
			Priority:      trialPriority(daysRemaining),
		})
	}

	sort.Slice(trials, func(i, j int) bool {
		if trials[i].DaysRemaining != trials[j].DaysRemaining {
			return trials[i].DaysRemaining < trials[j].DaysRemaining
		}
		return trials[i].ID < trials[j].ID
	})

	marker.AddMetadata("trialAccounts", len(trials))
	marker.SetSuccess(true)

	return trials
}

func trialPriority(daysRemaining int) account.TrialPriority {
	switch {
	case daysRemaining <= 3:
		return account.PriorityHigh
	case daysRemaining <= 7:
		return account.PriorityMedium
	default:
		return account.PriorityLow
	}
}

// daysBetween returns the floor of (to - from) in days, clamped at 0.
func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
