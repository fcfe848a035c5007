package services

import (
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// ActivityService classifies accounts into the four-state activity machine.
// Classification is a pure function of the account, now, and the window;
// it holds no cached state between window values.
type ActivityService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewActivityService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ActivityService {
	return &ActivityService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Classify returns the activity state for one account. Precedence is fixed:
// Active > Exploring > Dormant > NeverActive. A commercial signal inside the
// window always wins, even when exploratory signals are also inside it. The
// four states partition the account set.
func (s *ActivityService) Classify(a *account.Account, now time.Time, windowDays int) account.ActivityState {
	cutoff := now.AddDate(0, 0, -windowDays)

	if anyWithin(a.CommercialSignals(), cutoff) {
		return account.StateActive
	}
	if anyWithin(a.ExploratorySignals(), cutoff) {
		return account.StateExploring
	}
	if a.HasAnySignal() {
		return account.StateDormant
	}
	return account.StateNeverActive
}

// Overview totals the four states over an already-classified account set.
func (s *ActivityService) Overview(accounts []account.Account) *analytics.ActivityOverview {
	overview := &analytics.ActivityOverview{Total: len(accounts)}
	for _, a := range accounts {
		switch a.ActivityState {
		case account.StateActive:
			overview.Active++
		case account.StateExploring:
			overview.Exploring++
		case account.StateDormant:
			overview.Dormant++
		default:
			overview.NeverActive++
		}
	}
	return overview
}

// anyWithin reports whether any timestamp falls after the window cutoff.
// Signals timestamped after now (clock skew upstream) still count as recent.
func anyWithin(signals []time.Time, cutoff time.Time) bool {
	for _, t := range signals {
		if t.After(cutoff) {
			return true
		}
	}
	return false
}
