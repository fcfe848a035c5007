// Package analytics defines the engine's input and output contracts: the
// explicit value object a dashboard computation runs against, and the fully
// derived dataset it produces. Every output is recomputable from the same
// input tuple with no hidden state.
package analytics

import (
	"time"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
)

// Filters narrows the non-test account set before aggregation.
type Filters struct {
	Plan        string     `json:"plan,omitempty"`   // normalized plan key, "" or "all" for no filter
	Status      string     `json:"status,omitempty"` // "paying" | "trial" | "expired" | "" | "all"
	DateFrom    *time.Time `json:"dateFrom,omitempty"`
	DateTo      *time.Time `json:"dateTo,omitempty"`
	SearchQuery string     `json:"searchQuery,omitempty"`
}

// EngineInput is the complete input tuple for one dashboard computation.
// Identical inputs must yield byte-identical outputs.
type EngineInput struct {
	Snapshot   *snapshot.Snapshot
	Now        time.Time
	WindowDays int
	Filters    Filters
	Overrides  map[string]bool
}

// EngineOutput is the fully derived dataset handed to the presentation layer.
type EngineOutput struct {
	GeneratedAt time.Time `json:"generatedAt"`
	WindowDays  int       `json:"windowDays"`

	Accounts []account.Account `json:"accounts"`
	Filtered []account.Account `json:"filtered"`

	KPIs             *KPIReport             `json:"kpis"`
	Funnel           *FunnelReport          `json:"funnel"`
	Usage            *UsageReport           `json:"usage"`
	Adoption         []FeatureAdoption      `json:"adoption"`
	ActivityOverview *ActivityOverview      `json:"activityOverview"`
	MonthlyStates    []MonthlyState         `json:"monthlyStates"`
	ChurnByMonth     []MonthlyChurn         `json:"churnByMonth"`
	CohortRetention  []CohortRetention      `json:"cohortRetention"`
	TrialAccounts    []account.TrialAccount `json:"trialAccounts"`
	RiskAccounts     []account.RiskAccount  `json:"riskAccounts"`
}

// PlanDistribution buckets accounts by normalized plan. Plans outside the
// three priced tiers fold into Other.
type PlanDistribution struct {
	Silver   int `json:"silver"`
	Gold     int `json:"gold"`
	Titanium int `json:"titanium"`
	Other    int `json:"other"`
}

// KPIReport is the headline roll-up over the filtered account set.
type KPIReport struct {
	TotalAccounts   int              `json:"totalAccounts"`
	Paying          int              `json:"paying"`
	InTrial         int              `json:"inTrial"`
	TrialExpired    int              `json:"trialExpired"`
	TrialEndingSoon int              `json:"trialEndingSoon"`
	Dormant7d       int              `json:"dormant7d"`
	TotalMRR        float64          `json:"totalMrr"`
	ByPlan          PlanDistribution `json:"byPlan"`
	ByStatus        map[string]int   `json:"byStatus"`
}

// FunnelStage is one step of the created-to-paying funnel. Percentage is
// relative to the Created baseline; ConversionRate is relative to the
// immediately preceding stage and is nil for the baseline stage.
type FunnelStage struct {
	Stage          string   `json:"stage"`
	Count          int      `json:"count"`
	Percentage     float64  `json:"percentage"`
	ConversionRate *float64 `json:"conversionRate,omitempty"`
}

// FunnelReport holds the four funnel stages and their raw counts.
type FunnelReport struct {
	Created   int           `json:"created"`
	Activated int           `json:"activated"`
	TrialEnd  int           `json:"trialEnd"`
	Paying    int           `json:"paying"`
	Stages    []FunnelStage `json:"stages"`
}

// UsagePercentiles holds nearest-rank percentile statistics for one metric.
type UsagePercentiles struct {
	Metric string  `json:"metric"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Avg    float64 `json:"avg"`
	Max    float64 `json:"max"`
}

// UsageReport groups percentile statistics for the three usage counters.
type UsageReport struct {
	Tickets   UsagePercentiles `json:"tickets"`
	Customers UsagePercentiles `json:"customers"`
	Items     UsagePercentiles `json:"items"`
}

// FeatureAdoption reports how many accounts ever used a feature and how
// many used it within the lookback window.
type FeatureAdoption struct {
	Feature  string  `json:"feature"`
	Accounts int     `json:"accounts"`
	Recent   int     `json:"recent"`
	Share    float64 `json:"share"`
	Total    int     `json:"total"`
}

// ActivityOverview totals the four activity states over the filtered set.
type ActivityOverview struct {
	Active      int `json:"active"`
	Exploring   int `json:"exploring"`
	Dormant     int `json:"dormant"`
	NeverActive int `json:"neverActive"`
	Total       int `json:"total"`
}

// MonthlyState is the activity-state breakdown of one registration cohort,
// evaluated at snapshot time.
type MonthlyState struct {
	Month         string  `json:"month"` // "YYYY-MM"
	Active        int     `json:"active"`
	Exploring     int     `json:"exploring"`
	Dormant       int     `json:"dormant"`
	NeverActive   int     `json:"neverActive"`
	Total         int     `json:"total"`
	PercentActive float64 `json:"percentActive"`
}

// MonthlyChurn is the point-in-time churn framing: of every account that
// existed by month end, how many had any signal in the 30 days before that
// month ended.
type MonthlyChurn struct {
	Month         string  `json:"month"`
	TotalExisting int     `json:"totalExisting"`
	Active        int     `json:"active"`
	Inactive      int     `json:"inactive"`
	ChurnRate     float64 `json:"churnRate"`
	RetentionRate float64 `json:"retentionRate"`
}

// CohortRetention is the cohort framing: of the accounts registered in a
// month, how many are still active today (30-day lookback from now).
type CohortRetention struct {
	Month         string  `json:"month"`
	NewAccounts   int     `json:"newAccounts"`
	Retained      int     `json:"retained"`
	Churned       int     `json:"churned"`
	RetentionRate float64 `json:"retentionRate"`
	ChurnRate     float64 `json:"churnRate"`
}
