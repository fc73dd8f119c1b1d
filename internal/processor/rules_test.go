package processor

import (
	"errors"
	"testing"

	"fraudstream/internal/config"
	"fraudstream/internal/domain"
)

func TestHighAmountRule_StrictBoundary(t *testing.T) {
	rule := HighAmountRule{Threshold: 3000}

	if rule.Evaluate(domain.Transaction{Amount: 3000}) {
		t.Error("amount equal to threshold must not match")
	}
	if !rule.Evaluate(domain.Transaction{Amount: 3000.01}) {
		t.Error("amount above threshold must match")
	}
	if rule.Evaluate(domain.Transaction{Amount: 10}) {
		t.Error("amount below threshold must not match")
	}
}

func TestSuspiciousMerchantRule_CaseSensitiveMembership(t *testing.T) {
	rule := NewSuspiciousMerchantRule([]string{"Unknown_Merchant", "Suspicious_Store"})

	if !rule.Evaluate(domain.Transaction{Merchant: "Unknown_Merchant"}) {
		t.Error("blocklisted merchant must match")
	}
	if rule.Evaluate(domain.Transaction{Merchant: "unknown_merchant"}) {
		t.Error("membership must be case-sensitive")
	}
	if rule.Evaluate(domain.Transaction{Merchant: "Walmart"}) {
		t.Error("unlisted merchant must not match")
	}
}

func TestUnusualLocationRule_SentinelMatch(t *testing.T) {
	rule := UnusualLocationRule{Sentinel: "International"}

	if !rule.Evaluate(domain.Transaction{Location: "International"}) {
		t.Error("sentinel location must match")
	}
	if rule.Evaluate(domain.Transaction{Location: "New York"}) {
		t.Error("other locations must not match")
	}
}

func TestRules_EvaluationIsIdempotent(t *testing.T) {
	tx := domain.Transaction{Amount: 5000, Merchant: "Unknown_Merchant", Location: "International"}
	rules := []Rule{
		HighAmountRule{Threshold: 3000},
		NewSuspiciousMerchantRule([]string{"Unknown_Merchant"}),
		UnusualLocationRule{Sentinel: "International"},
	}

	for _, rule := range rules {
		first := rule.Evaluate(tx)
		for i := 0; i < 10; i++ {
			if rule.Evaluate(tx) != first {
				t.Errorf("rule %s is not a pure function of its input", rule.Name())
			}
		}
	}
}

func TestBuildRegistry_FromConfig(t *testing.T) {
	rules := []config.RuleConfig{
		{Type: config.RuleTypeHighAmount, Threshold: 3000, BaseRiskScore: 90},
		{Type: config.RuleTypeSuspiciousMerchant, Blocklist: []string{"Unknown_Merchant"}, BaseRiskScore: 85},
		{Type: config.RuleTypeUnusualLocation, Sentinel: "International", BaseRiskScore: 80},
	}

	registry, err := BuildRegistry(rules)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registry.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", registry.Len())
	}
	types := map[domain.FraudType]bool{}
	for _, entry := range registry.Entries() {
		types[entry.Rule.FraudType()] = true
	}
	if !types[domain.FraudHighAmount] || !types[domain.FraudMerchant] || !types[domain.FraudLocation] {
		t.Errorf("registry missing expected fraud types: %v", types)
	}
}

func TestBuildRegistry_UnknownRuleType(t *testing.T) {
	_, err := BuildRegistry([]config.RuleConfig{{Type: "velocity_check"}})

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildRegistry_Empty(t *testing.T) {
	_, err := BuildRegistry(nil)

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty rule set, got %v", err)
	}
}
