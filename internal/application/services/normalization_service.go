package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	"github.com/kladi/pulso-go/pkg/config"
)

// planMatch is one entry of the priority-ordered plan matching table.
// First match wins; the order is part of the contract, a label containing
// both "titanio" and "legacy" classifies as titanium.
type planMatch struct {
	key    account.PlanKey
	tokens []string
}

var planMatchers = []planMatch{
	{account.PlanSilver, []string{"silver", "plata"}},
	{account.PlanGold, []string{"gold", "oro"}},
	{account.PlanTitanium, []string{"titanium", "titanio"}},
	{account.PlanLegacy, []string{"legacy"}},
	{account.PlanSpecial, []string{"special", "especial"}},
	{account.PlanNone, []string{"no plan", "sin plan"}},
}

// dateLayouts are the formats observed in upstream snapshots, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// NormalizationService maps raw snapshot records onto canonical accounts.
// Malformed values resolve to safe defaults and never abort the pass.
type NormalizationService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	rules       *config.Rules
}

func NewNormalizationService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, rules *config.Rules) *NormalizationService {
	return &NormalizationService{
		logger:      logger,
		perfTracker: perfTracker,
		rules:       rules,
	}
}

// NormalizeAll maps every record onto an account. No record is ever dropped
// here; bad values degrade field by field.
func (s *NormalizationService) NormalizeAll(records []snapshot.Record) []account.Account {
	marker := s.perfTracker.StartOperation("engine:normalize_rows")
	defer s.perfTracker.CompleteOperation(marker)

	accounts := make([]account.Account, len(records))
	for i, rec := range records {
		accounts[i] = s.Normalize(rec)
	}

	marker.AddMetadata("rows", len(records))
	marker.SetSuccess(true)
	s.logger.Engine().Debug("Normalized snapshot rows", "rows", len(records))

	return accounts
}

// Normalize maps one raw record onto a canonical account.
func (s *NormalizationService) Normalize(rec snapshot.Record) account.Account {
	planRaw := strings.TrimSpace(rec.Plan)
	statusRaw := strings.TrimSpace(rec.Status)
	isActive := s.isActiveStatus(statusRaw)
	planKey := normalizePlan(planRaw)

	return account.Account{
		ID:        strings.TrimSpace(rec.ID),
		CreatedAt: parseDate(rec.CreatedAt),

		PlanKey:           planKey,
		PlanRaw:           planRaw,
		SubscriptionRaw:   statusRaw,
		IsActiveStatus:    isActive,
		IsPaying:          isActive && planKey != account.PlanNone,
		CompanyName:       strings.TrimSpace(rec.CompanyName),
		AdministratorName: strings.TrimSpace(rec.AdministratorName),
		Email:             strings.TrimSpace(rec.Email),
		Phone:             strings.TrimSpace(rec.Phone),

		NewTickets7d:   parseFloat(rec.NewTickets7d),
		NewCustomers7d: parseFloat(rec.NewCustomers7d),
		NewItems7d:     parseFloat(rec.NewItems7d),
		TotalTickets:   parseFloat(rec.TotalTickets),
		TotalCustomers: parseFloat(rec.TotalCustomers),
		TotalItems:     parseFloat(rec.TotalItems),
		TotalInvoices:  parseFloat(rec.TotalInvoices),
		TotalQuotes:    parseFloat(rec.TotalQuotes),
		TotalSuppliers: parseFloat(rec.TotalSuppliers),

		LastSale:        parseDate(rec.LastSale),
		LastInvoice:     parseDate(rec.LastInvoice),
		LastQuote:       parseDate(rec.LastQuote),
		LastNewCustomer: parseDate(rec.LastNewCustomer),
		LastNewSupplier: parseDate(rec.LastNewSupplier),
		LastNewItem:     parseDate(rec.LastNewItem),
	}
}

// isActiveStatus applies the configured paying-status predicate. Two rules
// coexist in production data and neither is silently preferred; the choice
// lives in the rules file.
func (s *NormalizationService) isActiveStatus(statusRaw string) bool {
	lower := strings.ToLower(strings.TrimSpace(statusRaw))
	if lower == "" {
		return false
	}

	switch s.rules.StatusPredicate {
	case config.StatusPredicateContainsActive:
		return strings.Contains(lower, "activa")
	default:
		for _, token := range s.rules.ActiveStatusTokens {
			if lower == token {
				return true
			}
		}
		return false
	}
}

// normalizePlan buckets a free-text plan label via case-insensitive
// substring matching in fixed priority order.
func normalizePlan(planRaw string) account.PlanKey {
	lower := strings.ToLower(strings.TrimSpace(planRaw))
	if lower == "" {
		return account.PlanNone
	}

	for _, m := range planMatchers {
		for _, token := range m.tokens {
			if strings.Contains(lower, token) {
				return m.key
			}
		}
	}
	return account.PlanOther
}

// parseFloat parses a numeric field. Parse failures and negative values
// normalize to 0; arithmetic downstream never sees NaN.
func parseFloat(v string) float64 {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != f || f < 0 {
		return 0
	}
	return f
}

// parseDate parses a date field, returning nil when the value is blank or
// matches none of the known layouts.
func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
