package services

import (
	"sort"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// AdoptionService reports, per feature, how many accounts ever used it and
// how many used it within the lookback window.
type AdoptionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewAdoptionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AdoptionService {
	return &AdoptionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// featureProbe describes how one feature's historical and recent usage is
// read off an account. Tickets have no last-used date upstream, so their
// recency comes from the 7-day counter instead.
type featureProbe struct {
	name   string
	ever   func(a *account.Account) bool
	recent func(a *account.Account, cutoff time.Time) bool
}

var featureProbes = []featureProbe{
	{
		name:   "tickets",
		ever:   func(a *account.Account) bool { return a.TotalTickets > 0 },
		recent: func(a *account.Account, _ time.Time) bool { return a.NewTickets7d > 0 },
	},
	{
		name:   "invoices",
		ever:   func(a *account.Account) bool { return a.TotalInvoices > 0 },
		recent: func(a *account.Account, cutoff time.Time) bool { return after(a.LastInvoice, cutoff) },
	},
	{
		name:   "quotes",
		ever:   func(a *account.Account) bool { return a.TotalQuotes > 0 },
		recent: func(a *account.Account, cutoff time.Time) bool { return after(a.LastQuote, cutoff) },
	},
	{
		name:   "customers",
		ever:   func(a *account.Account) bool { return a.TotalCustomers > 0 },
		recent: func(a *account.Account, cutoff time.Time) bool { return after(a.LastNewCustomer, cutoff) },
	},
	{
		name:   "suppliers",
		ever:   func(a *account.Account) bool { return a.TotalSuppliers > 0 },
		recent: func(a *account.Account, cutoff time.Time) bool { return after(a.LastNewSupplier, cutoff) },
	},
	{
		name:   "items",
		ever:   func(a *account.Account) bool { return a.TotalItems > 0 },
		recent: func(a *account.Account, cutoff time.Time) bool { return after(a.LastNewItem, cutoff) },
	},
}

// Compute builds the adoption table, sorted descending by share. Ties sort
// by feature name for deterministic output.
func (s *AdoptionService) Compute(accounts []account.Account, now time.Time, windowDays int) []analytics.FeatureAdoption {
	marker := s.perfTracker.StartOperation("analytics:feature_adoption")
	defer s.perfTracker.CompleteOperation(marker)

	cutoff := now.AddDate(0, 0, -windowDays)
	total := len(accounts)

	adoption := make([]analytics.FeatureAdoption, 0, len(featureProbes))
	for _, probe := range featureProbes {
		entry := analytics.FeatureAdoption{Feature: probe.name, Total: total}
		for i := range accounts {
			if probe.ever(&accounts[i]) {
				entry.Accounts++
			}
			if probe.recent(&accounts[i], cutoff) {
				entry.Recent++
			}
		}
		entry.Share = ratePercent(entry.Accounts, total)
		adoption = append(adoption, entry)
	}

	sort.Slice(adoption, func(i, j int) bool {
		if adoption[i].Share != adoption[j].Share {
			return adoption[i].Share > adoption[j].Share
		}
		return adoption[i].Feature < adoption[j].Feature
	})

	marker.SetSuccess(true)

	return adoption
}

func after(t *time.Time, cutoff time.Time) bool {
	return t != nil && t.After(cutoff)
}
