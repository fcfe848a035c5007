package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesMissingFileYieldsDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("a missing rules file is not an error: %v", err)
	}
	if rules.TrialDays != 15 {
		t.Errorf("TrialDays = %d, want 15", rules.TrialDays)
	}
	if rules.StatusPredicate != StatusPredicateExactSet {
		t.Errorf("StatusPredicate = %q, want exact_set", rules.StatusPredicate)
	}
	if rules.PlanPricing["gold"] != 220 {
		t.Errorf("gold price = %v, want 220", rules.PlanPricing["gold"])
	}
	if rules.RiskWeights.PayingButDormant != 50 {
		t.Errorf("PayingButDormant weight = %d, want 50", rules.RiskWeights.PayingButDormant)
	}
}

func TestLoadRulesOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte("trial_days: 30\nstatus_predicate: contains_active\nexceptions:\n  - match: prodensa\n    is_test: false\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if rules.TrialDays != 30 {
		t.Errorf("TrialDays = %d, want 30 from the file", rules.TrialDays)
	}
	if rules.StatusPredicate != StatusPredicateContainsActive {
		t.Errorf("StatusPredicate = %q, want contains_active", rules.StatusPredicate)
	}
	if len(rules.Exceptions) != 1 || rules.Exceptions[0].Match != "prodensa" {
		t.Errorf("exceptions not loaded: %+v", rules.Exceptions)
	}
	// Untouched fields keep their defaults.
	if rules.TestIDThreshold != 100_000_000 {
		t.Errorf("TestIDThreshold = %d, want default", rules.TestIDThreshold)
	}
}

func TestLoadRulesMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("trial_days: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("a malformed rules file must fail loudly")
	}
}
