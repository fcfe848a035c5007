package services

import (
	"math"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// FunnelService computes the four-stage lifecycle funnel:
// Created -> Activated -> TrialEnd -> Paying.
type FunnelService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewFunnelService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FunnelService {
	return &FunnelService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Compute counts the stages and derives the conversion chain. Percentage is
// always relative to the Created baseline; conversion rate is relative to
// the immediately preceding stage.
func (s *FunnelService) Compute(accounts []account.Account, now time.Time) *analytics.FunnelReport {
	marker := s.perfTracker.StartOperation("analytics:funnel_stages")
	defer s.perfTracker.CompleteOperation(marker)

	report := &analytics.FunnelReport{Created: len(accounts)}
	for _, a := range accounts {
		if a.ActivatedIn7d {
			report.Activated++
		}
		if a.TrialEndDate != nil && !a.TrialEndDate.After(now) {
			report.TrialEnd++
		}
		if a.IsPaying {
			report.Paying++
		}
	}

	report.Stages = []analytics.FunnelStage{
		{
			Stage:      "created",
			Count:      report.Created,
			Percentage: 100,
		},
		{
			Stage:          "activated",
			Count:          report.Activated,
			Percentage:     ratePercent(report.Activated, report.Created),
			ConversionRate: ratePtr(report.Activated, report.Created),
		},
		{
			Stage:          "trial_end",
			Count:          report.TrialEnd,
			Percentage:     ratePercent(report.TrialEnd, report.Created),
			ConversionRate: ratePtr(report.TrialEnd, report.Activated),
		},
		{
			Stage:          "paying",
			Count:          report.Paying,
			Percentage:     ratePercent(report.Paying, report.Created),
			ConversionRate: ratePtr(report.Paying, report.TrialEnd),
		},
	}

	if report.Created == 0 {
		report.Stages[0].Percentage = 0
	}

	marker.AddMetadata("created", report.Created)
	marker.SetSuccess(true)

	return report
}

// ratePercent returns count/base as a percentage rounded to 1 decimal, or 0
// when the base is empty.
func ratePercent(count, base int) float64 {
	if base == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(base)*1000) / 10
}

func ratePtr(count, base int) *float64 {
	r := ratePercent(count, base)
	return &r
}
