package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	"github.com/kladi/pulso-go/pkg/config"
)

// DashboardService orchestrates one full engine pass: dedup, normalize,
// classify, per-account derivation, then the aggregate reports. The pass is
// a pure function of its EngineInput; identical inputs yield identical
// outputs with no hidden state.
type DashboardService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	dedup      *DeduplicationService
	normalizer *NormalizationService
	classifier *ClassificationService
	trial      *TrialService
	activity   *ActivityService
	kpis       *KPIService
	funnel     *FunnelService
	usage      *UsageService
	adoption   *AdoptionService
	cohorts    *CohortService
	risk       *RiskService
}

func NewDashboardService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	dedup *DeduplicationService,
	normalizer *NormalizationService,
	classifier *ClassificationService,
	trial *TrialService,
	activity *ActivityService,
	kpis *KPIService,
	funnel *FunnelService,
	usage *UsageService,
	adoption *AdoptionService,
	cohorts *CohortService,
	risk *RiskService,
) *DashboardService {
	return &DashboardService{
		logger:      logger,
		perfTracker: perfTracker,
		dedup:       dedup,
		normalizer:  normalizer,
		classifier:  classifier,
		trial:       trial,
		activity:    activity,
		kpis:        kpis,
		funnel:      funnel,
		usage:       usage,
		adoption:    adoption,
		cohorts:     cohorts,
		risk:        risk,
	}
}

// ComputeDashboard runs the full engine pass for one input tuple. An empty
// snapshot produces zero-valued reports, never an error.
func (s *DashboardService) ComputeDashboard(input *analytics.EngineInput) *analytics.EngineOutput {
	start := time.Now()
	marker := s.perfTracker.StartOperation("engine:compute_dashboard")
	defer s.perfTracker.CompleteOperation(marker)

	windowDays := clampWindow(input.WindowDays)

	records := s.dedup.Deduplicate(input.Snapshot.Records)
	accounts := s.normalizer.NormalizeAll(records)

	// Derivation runs over the full slice before classification copies the
	// non-test subset out of it, so both the full list and the filtered one
	// carry the derived fields. Test accounts are included; the admin
	// listing shows their trial and activity fields.
	s.deriveAll(accounts, input.Now, windowDays)

	// The override map is fully loaded by the caller before this pass; the
	// classifier reads it, never mutates it.
	filtered := s.classifier.ClassifyAll(accounts, input.Overrides)

	filtered = applyFilters(filtered, input.Filters)

	// Aggregations need the completed per-account pass; everything below
	// runs over the same filtered slice.
	output := &analytics.EngineOutput{
		GeneratedAt:      input.Now,
		WindowDays:       windowDays,
		Accounts:         accounts,
		Filtered:         filtered,
		KPIs:             s.kpis.Compute(filtered),
		Funnel:           s.funnel.Compute(filtered, input.Now),
		Usage:            s.usage.Compute(filtered),
		Adoption:         s.adoption.Compute(filtered, input.Now, windowDays),
		ActivityOverview: s.activity.Overview(filtered),
		MonthlyStates:    s.cohorts.MonthlyStates(filtered),
		ChurnByMonth:     s.cohorts.ChurnByMonth(filtered, input.Now),
		CohortRetention:  s.cohorts.CohortRetention(filtered, input.Now),
		TrialAccounts:    s.trial.TrialAccounts(filtered, input.Now),
		RiskAccounts:     s.risk.Score(filtered),
	}

	marker.AddMetadata("rows", len(records))
	marker.AddMetadata("filtered", len(filtered))
	marker.SetSuccess(true)
	s.logger.Engine().Info("Computed dashboard",
		"rows", len(records),
		"accounts", len(accounts),
		"filtered", len(filtered),
		"windowDays", windowDays,
		"duration", time.Since(start),
	)

	return output
}

// deriveAll runs the per-account derivations across a worker pool. Each
// account depends only on itself plus the shared scalars, so the fan-out
// has no ordering constraints; the WaitGroup is the aggregation barrier.
func (s *DashboardService) deriveAll(accounts []account.Account, now time.Time, windowDays int) {
	workers := config.EngineWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(accounts) {
		workers = len(accounts)
	}
	if workers == 0 {
		return
	}

	var wg sync.WaitGroup
	chunk := (len(accounts) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(accounts) {
			hi = len(accounts)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(batch []account.Account) {
			defer wg.Done()
			for i := range batch {
				s.trial.Derive(&batch[i], now)
				batch[i].ActivityState = s.activity.Classify(&batch[i], now, windowDays)
			}
		}(accounts[lo:hi])
	}
	wg.Wait()
}

// applyFilters narrows the non-test set by plan, status, creation date
// range, and free-text search. Output order is stable by id.
func applyFilters(accounts []account.Account, f analytics.Filters) []account.Account {
	plan := strings.ToLower(strings.TrimSpace(f.Plan))
	status := strings.ToLower(strings.TrimSpace(f.Status))
	query := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	out := make([]account.Account, 0, len(accounts))
	for _, a := range accounts {
		if plan != "" && plan != "all" && string(a.PlanKey) != plan {
			continue
		}
		if !matchesStatus(&a, status) {
			continue
		}
		if f.DateFrom != nil && (a.CreatedAt == nil || a.CreatedAt.Before(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && (a.CreatedAt == nil || a.CreatedAt.After(*f.DateTo)) {
			continue
		}
		if query != "" && !matchesQuery(&a, query) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesStatus(a *account.Account, status string) bool {
	switch status {
	case "", "all":
		return true
	case "paying":
		return a.IsPaying
	case "trial":
		return a.InTrial
	case "expired":
		return a.TrialExpired
	default:
		return strings.Contains(strings.ToLower(a.SubscriptionRaw), status)
	}
}

func matchesQuery(a *account.Account, query string) bool {
	return strings.Contains(strings.ToLower(a.CompanyName), query) ||
		strings.Contains(strings.ToLower(a.AdministratorName), query) ||
		strings.Contains(strings.ToLower(a.Email), query) ||
		strings.Contains(strings.ToLower(a.ID), query)
}

func clampWindow(windowDays int) int {
	if windowDays <= 0 {
		return config.DefaultWindowDays
	}
	if windowDays < config.MinWindowDays {
		return config.MinWindowDays
	}
	if windowDays > config.MaxWindowDays {
		return config.MaxWindowDays
	}
	return windowDays
}
