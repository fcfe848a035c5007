// Package account defines the canonical account entity produced by snapshot
// normalization, together with the derived trial, activity, and risk values
// the engine recomputes on every pass.
package account

import (
	"strings"
	"time"
)

// PlanKey is the normalized subscription plan bucket.
type PlanKey string

const (
	PlanSilver   PlanKey = "silver"
	PlanGold     PlanKey = "gold"
	PlanTitanium PlanKey = "titanium"
	PlanLegacy   PlanKey = "legacy"
	PlanSpecial  PlanKey = "special"
	PlanNone     PlanKey = "no_plan"
	PlanOther    PlanKey = "other"
)

// ActivityState classifies an account by recency of its activity signals.
// The four states partition the account set: every account is in exactly one.
type ActivityState string

const (
	StateActive      ActivityState = "active"
	StateExploring   ActivityState = "exploring"
	StateDormant     ActivityState = "dormant"
	StateNeverActive ActivityState = "never_active"
)

// TrialPriority is the follow-up urgency band for an in-trial account.
type TrialPriority string

const (
	PriorityHigh   TrialPriority = "high"   // <= 3 days remaining
	PriorityMedium TrialPriority = "medium" // 4-7 days remaining
	PriorityLow    TrialPriority = "low"    // > 7 days remaining
)

// Account is the canonical post-normalization record for one business.
// Numeric fields are always non-negative; parse failures normalize to zero.
// Optional dates are nil when the source value was blank or malformed.
type Account struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`

	PlanKey           PlanKey `json:"planKey"`
	PlanRaw           string  `json:"planRaw"`
	SubscriptionRaw   string  `json:"subscriptionStatusRaw"`
	IsActiveStatus    bool    `json:"isActiveStatus"`
	IsPaying          bool    `json:"isPaying"`
	CompanyName       string  `json:"companyName"`
	AdministratorName string  `json:"administratorName"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`

	NewTickets7d   float64 `json:"newTickets7d"`
	NewCustomers7d float64 `json:"newCustomers7d"`
	NewItems7d     float64 `json:"newItems7d"`
	TotalTickets   float64 `json:"totalTickets"`
	TotalCustomers float64 `json:"totalCustomers"`
	TotalItems     float64 `json:"totalItems"`
	TotalInvoices  float64 `json:"totalInvoices"`
	TotalQuotes    float64 `json:"totalQuotes"`
	TotalSuppliers float64 `json:"totalSuppliers"`

	// Commercial signals
	LastSale    *time.Time `json:"lastSale,omitempty"`
	LastInvoice *time.Time `json:"lastInvoice,omitempty"`
	LastQuote   *time.Time `json:"lastQuote,omitempty"`

	// Exploratory signals
	LastNewCustomer *time.Time `json:"lastNewCustomer,omitempty"`
	LastNewSupplier *time.Time `json:"lastNewSupplier,omitempty"`
	LastNewItem     *time.Time `json:"lastNewItem,omitempty"`

	// Derived fields, recomputed on every engine pass against the
	// caller-supplied "now". Zero-valued until the pass runs.
	DaysSinceCreation int           `json:"daysSinceCreation"`
	TrialEndDate      *time.Time    `json:"trialEndDate,omitempty"`
	InTrial           bool          `json:"inTrial"`
	TrialExpired      bool          `json:"trialExpired"`
	TrialEndingSoon   bool          `json:"trialEndingSoon"`
	MonthlyPrice      float64       `json:"monthlyPrice"`
	EstimatedMRR      float64       `json:"estimatedMrr"`
	ActivatedIn7d     bool          `json:"activatedIn7d"`
	DormantIn7d       bool          `json:"dormantIn7d"`
	ActivityState     ActivityState `json:"activityState,omitempty"`

	IsTest bool `json:"isTest"`
}

// CompositeKey returns the duplicate-safe identifier: the account id joined
// with the normalized administrator name. Source data has colliding ids
// with different administrators; the composite key disambiguates them.
func (a *Account) CompositeKey() string {
	id := a.ID
	if id == "" {
		id = "unknown"
	}
	admin := strings.TrimSpace(strings.ToLower(a.AdministratorName))
	if admin == "" {
		admin = "unknown"
	}
	admin = strings.Join(strings.Fields(admin), "_")
	return id + "_" + admin
}

// CommercialSignals returns the revenue-action timestamps (sale, invoice,
// quote). Nil entries are omitted.
func (a *Account) CommercialSignals() []time.Time {
	return presentTimes(a.LastSale, a.LastInvoice, a.LastQuote)
}

// ExploratorySignals returns the setup-action timestamps (new customer,
// supplier, item). Nil entries are omitted.
func (a *Account) ExploratorySignals() []time.Time {
	return presentTimes(a.LastNewCustomer, a.LastNewSupplier, a.LastNewItem)
}

// HasAnySignal reports whether any of the six activity timestamps is present.
func (a *Account) HasAnySignal() bool {
	return len(a.CommercialSignals()) > 0 || len(a.ExploratorySignals()) > 0
}

// CohortMonth returns the registration month as "YYYY-MM", or "" when the
// creation date is absent.
func (a *Account) CohortMonth() string {
	if a.CreatedAt == nil {
		return ""
	}
	return a.CreatedAt.Format("2006-01")
}

func presentTimes(ts ...*time.Time) []time.Time {
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// TrialAccount is an in-trial account annotated with its remaining trial
// days and follow-up priority. Only in-trial accounts are listed, so
// DaysRemaining is always non-negative.
type TrialAccount struct {
	Account
	DaysRemaining int           `json:"daysRemaining"`
	Priority      TrialPriority `json:"priority"`
}

// RiskAccount is an account annotated with its additive risk score and the
// list of triggered risk factor labels. Only accounts with a score above
// zero are emitted by the risk scorer.
type RiskAccount struct {
	Account
	RiskScore   int      `json:"riskScore"`
	RiskFactors []string `json:"riskFactors"`
}
