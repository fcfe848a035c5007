package services

import (
	"strconv"
	"strings"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	"github.com/kladi/pulso-go/pkg/config"
)

// ClassificationService decides whether an account is internal/test traffic.
// Resolution order: manual override by composite key, manual override by
// plain id, configured exception table, banned email domains, numeric id
// threshold, name keywords, default not-test. Exceptions sit above the
// domain and keyword rules so named carve-outs can re-include accounts that
// would otherwise match.
type ClassificationService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	rules       *config.Rules
}

func NewClassificationService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, rules *config.Rules) *ClassificationService {
	return &ClassificationService{
		logger:      logger,
		perfTracker: perfTracker,
		rules:       rules,
	}
}

// ClassifyAll sets IsTest on every account and returns the non-test subset.
// The full slice is mutated in place so the admin listing can still see the
// flagged accounts.
func (s *ClassificationService) ClassifyAll(accounts []account.Account, overrides map[string]bool) []account.Account {
	marker := s.perfTracker.StartOperation("engine:classify_accounts")
	defer s.perfTracker.CompleteOperation(marker)

	filtered := make([]account.Account, 0, len(accounts))
	testCount := 0
	for i := range accounts {
		accounts[i].IsTest = s.IsTest(&accounts[i], overrides)
		if accounts[i].IsTest {
			testCount++
			continue
		}
		filtered = append(filtered, accounts[i])
	}

	marker.AddMetadata("accounts", len(accounts))
	marker.AddMetadata("testAccounts", testCount)
	marker.SetSuccess(true)
	s.logger.Engine().Info("Classified accounts",
		"accounts", len(accounts),
		"testAccounts", testCount,
		"overrides", len(overrides),
	)

	return filtered
}

// IsTest classifies one account. An empty override map behaves identically
// to a populated one.
func (s *ClassificationService) IsTest(a *account.Account, overrides map[string]bool) bool {
	if v, ok := overrides[a.CompositeKey()]; ok {
		return v
	}
	if v, ok := overrides[a.ID]; ok {
		return v
	}

	if matched, isTest := s.matchException(a); matched {
		return isTest
	}

	if s.hasBannedDomain(a.Email) {
		return true
	}

	if id, err := strconv.ParseInt(strings.TrimSpace(a.ID), 10, 64); err == nil && id >= s.rules.TestIDThreshold {
		return true
	}

	if s.matchesKeyword(a.CompanyName) || s.matchesKeyword(a.AdministratorName) {
		return true
	}

	return false
}

// matchException walks the ordered exception table; the first entry whose
// pattern matches the company or administrator name decides.
func (s *ClassificationService) matchException(a *account.Account) (matched, isTest bool) {
	company := strings.ToLower(a.CompanyName)
	admin := strings.ToLower(a.AdministratorName)

	for _, exc := range s.rules.Exceptions {
		pattern := strings.ToLower(strings.TrimSpace(exc.Match))
		if pattern == "" {
			continue
		}
		if strings.Contains(company, pattern) || strings.Contains(admin, pattern) {
			return true, exc.IsTest
		}
	}
	return false, false
}

func (s *ClassificationService) hasBannedDomain(email string) bool {
	lower := strings.ToLower(strings.TrimSpace(email))
	if lower == "" {
		return false
	}
	for _, domain := range s.rules.BannedEmailDomains {
		if strings.HasSuffix(lower, domain) {
			return true
		}
	}
	return false
}

func (s *ClassificationService) matchesKeyword(name string) bool {
	lower := strings.ToLower(name)
	if lower == "" {
		return false
	}
	for _, kw := range s.rules.TestKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
