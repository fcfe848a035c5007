package services

import (
	"math"
	"sort"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// UsageService computes nearest-rank percentile statistics over the
// lifetime usage counters.
type UsageService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewUsageService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UsageService {
	return &UsageService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Compute builds the usage report for tickets, customers, and items.
func (s *UsageService) Compute(accounts []account.Account) *analytics.UsageReport {
	marker := s.perfTracker.StartOperation("analytics:usage_percentiles")
	defer s.perfTracker.CompleteOperation(marker)

	tickets := make([]float64, len(accounts))
	customers := make([]float64, len(accounts))
	items := make([]float64, len(accounts))
	for i, a := range accounts {
		tickets[i] = a.TotalTickets
		customers[i] = a.TotalCustomers
		items[i] = a.TotalItems
	}

	report := &analytics.UsageReport{
		Tickets:   ComputePercentiles("tickets", tickets),
		Customers: ComputePercentiles("customers", customers),
		Items:     ComputePercentiles("items", items),
	}

	marker.AddMetadata("accounts", len(accounts))
	marker.SetSuccess(true)

	return report
}

// ComputePercentiles computes P25/P50/P75/P90 by the nearest-rank method:
// sort ascending, index = ceil(p/100 * n) - 1, clamped to [0, n-1]. Empty
// input yields all zeros.
func ComputePercentiles(metric string, values []float64) analytics.UsagePercentiles {
	out := analytics.UsagePercentiles{Metric: metric}
	if len(values) == 0 {
		return out
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	out.P25 = nearestRank(sorted, 25)
	out.P50 = nearestRank(sorted, 50)
	out.P75 = nearestRank(sorted, 75)
	out.P90 = nearestRank(sorted, 90)
	out.Max = sorted[len(sorted)-1]

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	out.Avg = math.Round(sum/float64(len(sorted))*100) / 100

	return out
}

func nearestRank(sorted []float64, percentile float64) float64 {
	idx := int(math.Ceil(percentile/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
