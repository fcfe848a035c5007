package services

import (
	"sort"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// churnLookbackDays is the fixed lookback used by both monthly-churn and
// cohort-retention. It is deliberately distinct from the slider-controlled
// activity window.
const churnLookbackDays = 30

// CohortService computes the monthly series. Two temporal framings coexist
// and must not be conflated: cohort views ask about accounts grouped by
// registration month evaluated against today, the churn view asks about
// everyone who existed by a month's end evaluated against that month's end.
type CohortService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewCohortService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CohortService {
	return &CohortService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// MonthlyStates groups accounts by registration month and counts their
// activity states as classified at snapshot time with the caller's window.
func (s *CohortService) MonthlyStates(accounts []account.Account) []analytics.MonthlyState {
	marker := s.perfTracker.StartOperation("analytics:cohort_monthly_states")
	defer s.perfTracker.CompleteOperation(marker)

	byMonth := make(map[string]*analytics.MonthlyState)
	for _, a := range accounts {
		month := a.CohortMonth()
		if month == "" {
			continue
		}
		entry, ok := byMonth[month]
		if !ok {
			entry = &analytics.MonthlyState{Month: month}
			byMonth[month] = entry
		}
		entry.Total++
		switch a.ActivityState {
		case account.StateActive:
			entry.Active++
		case account.StateExploring:
			entry.Exploring++
		case account.StateDormant:
			entry.Dormant++
		default:
			entry.NeverActive++
		}
	}

	series := make([]analytics.MonthlyState, 0, len(byMonth))
	for _, entry := range byMonth {
		entry.PercentActive = ratePercent(entry.Active, entry.Total)
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })

	marker.AddMetadata("months", len(series))
	marker.SetSuccess(true)

	return series
}

// ChurnByMonth walks every month from the earliest registration to now. For
// each month M: accounts existing by M's end, split into those with any
// activity signal in the 30 days before M's end and those without.
func (s *CohortService) ChurnByMonth(accounts []account.Account, now time.Time) []analytics.MonthlyChurn {
	marker := s.perfTracker.StartOperation("analytics:cohort_churn_by_month")
	defer s.perfTracker.CompleteOperation(marker)

	earliest := earliestCreation(accounts)
	if earliest == nil {
		marker.SetSuccess(true)
		return []analytics.MonthlyChurn{}
	}

	series := make([]analytics.MonthlyChurn, 0)
	cursor := time.Date(earliest.Year(), earliest.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for !cursor.After(last) {
		// Day 28 exists in every month, so it stands in for "month end"
		// without per-month length arithmetic.
		monthEnd := time.Date(cursor.Year(), cursor.Month(), 28, 23, 59, 59, 0, time.UTC)
		lookbackStart := monthEnd.AddDate(0, 0, -churnLookbackDays)

		entry := analytics.MonthlyChurn{Month: cursor.Format("2006-01")}
		for i := range accounts {
			a := &accounts[i]
			if a.CreatedAt == nil || a.CreatedAt.After(monthEnd) {
				continue
			}
			entry.TotalExisting++
			if signalBetween(a, lookbackStart, monthEnd) {
				entry.Active++
			} else {
				entry.Inactive++
			}
		}
		if entry.TotalExisting > 0 {
			entry.ChurnRate = ratePercent(entry.Inactive, entry.TotalExisting)
			entry.RetentionRate = ratePercent(entry.Active, entry.TotalExisting)
		}
		series = append(series, entry)

		cursor = cursor.AddDate(0, 1, 0)
	}

	marker.AddMetadata("months", len(series))
	marker.SetSuccess(true)

	return series
}

// CohortRetention groups accounts by registration month and asks, of each
// cohort, how many still show a signal within the last 30 days from now.
func (s *CohortService) CohortRetention(accounts []account.Account, now time.Time) []analytics.CohortRetention {
	marker := s.perfTracker.StartOperation("analytics:cohort_retention")
	defer s.perfTracker.CompleteOperation(marker)

	lookbackStart := now.AddDate(0, 0, -churnLookbackDays)

	byMonth := make(map[string]*analytics.CohortRetention)
	for i := range accounts {
		a := &accounts[i]
		month := a.CohortMonth()
		if month == "" {
			continue
		}
		entry, ok := byMonth[month]
		if !ok {
			entry = &analytics.CohortRetention{Month: month}
			byMonth[month] = entry
		}
		entry.NewAccounts++
		if signalBetween(a, lookbackStart, now.AddDate(0, 0, 1)) {
			entry.Retained++
		} else {
			entry.Churned++
		}
	}

	series := make([]analytics.CohortRetention, 0, len(byMonth))
	for _, entry := range byMonth {
		entry.RetentionRate = ratePercent(entry.Retained, entry.NewAccounts)
		entry.ChurnRate = ratePercent(entry.Churned, entry.NewAccounts)
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })

	marker.AddMetadata("cohorts", len(series))
	marker.SetSuccess(true)

	return series
}

// signalBetween reports whether any of the six activity timestamps falls in
// (from, to].
func signalBetween(a *account.Account, from, to time.Time) bool {
	signals := append(a.CommercialSignals(), a.ExploratorySignals()...)
	for _, t := range signals {
		if t.After(from) && !t.After(to) {
			return true
		}
	}
	return false
}

func earliestCreation(accounts []account.Account) *time.Time {
	var earliest *time.Time
	for i := range accounts {
		c := accounts[i].CreatedAt
		if c == nil {
			continue
		}
		if earliest == nil || c.Before(*earliest) {
			earliest = c
		}
	}
	return earliest
}
