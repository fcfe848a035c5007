package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StatusPredicate selects which of the two observed "is this account paying"
// normalization rules is in force. Production data has been seen under both;
// neither is silently preferred.
const (
	StatusPredicateExactSet       = "exact_set"       // lower-cased status is a member of ActiveStatusTokens
	StatusPredicateContainsActive = "contains_active" // lower-cased status contains "activa"
)

// ClassificationException is one entry of the ordered exception table.
// Exceptions are evaluated in order and override keyword/domain rules:
// the first matching entry decides the classification.
type ClassificationException struct {
	Match  string `yaml:"match"`   // case-insensitive substring of company or administrator name
	IsTest bool   `yaml:"is_test"` // forced classification when matched
}

// RiskWeights holds the additive weight of each risk factor. The defaults
// were designed around the High>=50 / Medium 30-49 / Low<30 display bands;
// changing a weight requires re-validating those boundaries.
type RiskWeights struct {
	PayingButDormant int `yaml:"paying_but_dormant"`
	TrialExpired     int `yaml:"trial_expired"`
	NotActivated     int `yaml:"not_activated"`
	NoRecentActivity int `yaml:"no_recent_activity"`
	VeryLowUsage     int `yaml:"very_low_usage"`
}

// Rules is the externally-configurable business rule set: trial window,
// plan pricing, paying-status predicate, test-account rules, and risk
// factor weights. A missing rules file yields the compiled-in defaults.
type Rules struct {
	TrialDays           int `yaml:"trial_days"`
	TrialEndingSoonDays int `yaml:"trial_ending_soon_days"`

	PlanPricing map[string]float64 `yaml:"plan_pricing"`

	StatusPredicate    string   `yaml:"status_predicate"`
	ActiveStatusTokens []string `yaml:"active_status_tokens"`

	BannedEmailDomains []string                  `yaml:"banned_email_domains"`
	TestKeywords       []string                  `yaml:"test_keywords"`
	TestIDThreshold    int64                     `yaml:"test_id_threshold"`
	Exceptions         []ClassificationException `yaml:"exceptions"`

	ActivationMinItems7d   float64 `yaml:"activation_min_items_7d"`
	ActivationMinTickets7d float64 `yaml:"activation_min_tickets_7d"`

	LowUsageMaxTickets  float64 `yaml:"low_usage_max_tickets"`
	LowUsageMinDays     int     `yaml:"low_usage_min_days"`
	NotActivatedMinDays int     `yaml:"not_activated_min_days"`

	RiskWeights RiskWeights `yaml:"risk_weights"`
}

// DefaultRules returns the production rule set observed in the source data.
func DefaultRules() *Rules {
	return &Rules{
		TrialDays:           15,
		TrialEndingSoonDays: 7,
		PlanPricing: map[string]float64{
			"silver":   90,
			"gold":     220,
			"titanium": 440,
		},
		StatusPredicate:    StatusPredicateExactSet,
		ActiveStatusTokens: []string{"activa", "active", "paid", "pagado", "pagando", "suscrito"},
		BannedEmailDomains: []string{"@microsip.com", "@kladi.mx", "@mailinator.com"},
		TestKeywords:       []string{"test", "prueba", "dev", "prod", "migracion", "qa", "demo", "sandbox"},
		TestIDThreshold:    100_000_000,
		Exceptions:         nil,

		ActivationMinItems7d:   5,
		ActivationMinTickets7d: 3,

		LowUsageMaxTickets:  5,
		LowUsageMinDays:     14,
		NotActivatedMinDays: 7,

		RiskWeights: RiskWeights{
			PayingButDormant: 50,
			TrialExpired:     40,
			NotActivated:     20,
			NoRecentActivity: 30,
			VeryLowUsage:     15,
		},
	}
}

// LoadRules reads the rules file at path, overlaying it on the defaults.
// A missing file is not an error; a malformed file is.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	return rules, nil
}
