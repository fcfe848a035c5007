package services

import (
	"math"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// KPIService computes the headline roll-up over the filtered account set.
type KPIService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewKPIService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *KPIService {
	return &KPIService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Compute rolls up counts, plan and status distributions, and estimated
// MRR. An empty account set yields a zero-valued report.
func (s *KPIService) Compute(accounts []account.Account) *analytics.KPIReport {
	marker := s.perfTracker.StartOperation("analytics:aggregate_kpis")
	defer s.perfTracker.CompleteOperation(marker)

	report := &analytics.KPIReport{
		TotalAccounts: len(accounts),
		ByStatus:      make(map[string]int),
	}

	for _, a := range accounts {
		if a.IsPaying {
			report.Paying++
		}
		if a.InTrial {
			report.InTrial++
		}
		if a.TrialExpired {
			report.TrialExpired++
		}
		if a.TrialEndingSoon {
			report.TrialEndingSoon++
		}
		if a.DormantIn7d {
			report.Dormant7d++
		}
		report.TotalMRR += a.EstimatedMRR

		switch a.PlanKey {
		case account.PlanSilver:
			report.ByPlan.Silver++
		case account.PlanGold:
			report.ByPlan.Gold++
		case account.PlanTitanium:
			report.ByPlan.Titanium++
		default:
			report.ByPlan.Other++
		}

		status := a.SubscriptionRaw
		if status == "" {
			status = "no_status"
		}
		report.ByStatus[status]++
	}

	report.TotalMRR = math.Round(report.TotalMRR*100) / 100

	marker.AddMetadata("accounts", len(accounts))
	marker.SetSuccess(true)

	return report
}
