package services

import (
	"sort"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	"github.com/kladi/pulso-go/pkg/config"
)

// Risk factor labels. Order here fixes the factor-list display order; the
// score is order-independent because factors are additive and independent.
const (
	riskPayingButDormant = "paying_but_dormant"
	riskTrialExpired     = "trial_expired"
	riskNotActivated     = "not_activated"
	riskNoRecentActivity = "no_recent_activity"
	riskVeryLowUsage     = "very_low_usage"
)

// RiskService assigns each account an additive risk score from independent
// all-or-nothing factors. An account can trigger several factors at once;
// accounts scoring zero are not emitted at all.
type RiskService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	rules       *config.Rules
}

func NewRiskService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, rules *config.Rules) *RiskService {
	return &RiskService{
		logger:      logger,
		perfTracker: perfTracker,
		rules:       rules,
	}
}

// Score evaluates every account and returns the scored subset, sorted
// descending by score. Ties sort by id for deterministic output.
func (s *RiskService) Score(accounts []account.Account) []account.RiskAccount {
	marker := s.perfTracker.StartOperation("analytics:risk_scoring")
	defer s.perfTracker.CompleteOperation(marker)

	scored := make([]account.RiskAccount, 0)
	for i := range accounts {
		score, factors := s.evaluate(&accounts[i])
		if score == 0 {
			continue
		}
		scored = append(scored, account.RiskAccount{
			Account:     accounts[i],
			RiskScore:   score,
			RiskFactors: factors,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RiskScore != scored[j].RiskScore {
			return scored[i].RiskScore > scored[j].RiskScore
		}
		return scored[i].ID < scored[j].ID
	})

	marker.AddMetadata("accounts", len(accounts))
	marker.AddMetadata("atRisk", len(scored))
	marker.SetSuccess(true)
	s.logger.Analytics().Debug("Scored accounts for risk", "accounts", len(accounts), "atRisk", len(scored))

	return scored
}

func (s *RiskService) evaluate(a *account.Account) (int, []string) {
	w := s.rules.RiskWeights
	score := 0
	var factors []string

	if a.IsPaying && a.DormantIn7d {
		score += w.PayingButDormant
		factors = append(factors, riskPayingButDormant)
	}
	if a.TrialExpired {
		score += w.TrialExpired
		factors = append(factors, riskTrialExpired)
	}
	if !a.ActivatedIn7d && a.DaysSinceCreation > s.rules.NotActivatedMinDays {
		score += w.NotActivated
		factors = append(factors, riskNotActivated)
	}
	if a.DormantIn7d {
		score += w.NoRecentActivity
		factors = append(factors, riskNoRecentActivity)
	}
	if a.TotalTickets < s.rules.LowUsageMaxTickets && a.DaysSinceCreation > s.rules.LowUsageMinDays {
		score += w.VeryLowUsage
		factors = append(factors, riskVeryLowUsage)
	}

	return score, factors
}
