package processor

import (
	"fmt"

	"fraudstream/internal/config"
	"fraudstream/internal/domain"
)

// Rule is a stateless predicate classifying a single transaction as
// matching a named fraud pattern. Implementations are pure functions of
// their input: no cross-transaction state, no side effects, safe to call
// concurrently from any branch.
type Rule interface {
	Name() string
	FraudType() domain.FraudType
	Evaluate(tx domain.Transaction) bool
}

// HighAmountRule matches transactions whose amount strictly exceeds the
// threshold. Equality does not match.
type HighAmountRule struct {
	Threshold float64
}

func (r HighAmountRule) Name() string                { return "high_amount" }
func (r HighAmountRule) FraudType() domain.FraudType { return domain.FraudHighAmount }

func (r HighAmountRule) Evaluate(tx domain.Transaction) bool {
	return tx.Amount > r.Threshold
}

// SuspiciousMerchantRule matches transactions whose merchant is in a
// blocklist. Membership is case-sensitive exact match.
type SuspiciousMerchantRule struct {
	blocklist map[string]struct{}
}

func NewSuspiciousMerchantRule(merchants []string) SuspiciousMerchantRule {
	blocklist := make(map[string]struct{}, len(merchants))
	for _, m := range merchants {
		blocklist[m] = struct{}{}
	}
	return SuspiciousMerchantRule{blocklist: blocklist}
}

func (r SuspiciousMerchantRule) Name() string                { return "suspicious_merchant" }
func (r SuspiciousMerchantRule) FraudType() domain.FraudType { return domain.FraudMerchant }

func (r SuspiciousMerchantRule) Evaluate(tx domain.Transaction) bool {
	_, ok := r.blocklist[tx.Merchant]
	return ok
}

// UnusualLocationRule matches transactions whose location equals the
// configured sentinel (e.g. "International").
type UnusualLocationRule struct {
	Sentinel string
}

func (r UnusualLocationRule) Name() string                { return "unusual_location" }
func (r UnusualLocationRule) FraudType() domain.FraudType { return domain.FraudLocation }

func (r UnusualLocationRule) Evaluate(tx domain.Transaction) bool {
	return tx.Location == r.Sentinel
}

// RegistryEntry pairs an evaluator with the base risk score handed to the
// synthesizer when its fraud type has no dedicated scoring policy.
type RegistryEntry struct {
	Rule          Rule
	BaseRiskScore float64
}

// Registry holds the active rule set. The router iterates entries
// uniformly; adding a rule is a registry entry, not new branch wiring.
type Registry struct {
	entries []RegistryEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(rule Rule, baseRiskScore float64) {
	r.entries = append(r.entries, RegistryEntry{Rule: rule, BaseRiskScore: baseRiskScore})
}

func (r *Registry) Entries() []RegistryEntry {
	return r.entries
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// BuildRegistry constructs the registry from configuration. An unknown
// rule type is a startup failure, surfaced before any record flows.
func BuildRegistry(rules []config.RuleConfig) (*Registry, error) {
	registry := NewRegistry()

	for i, rc := range rules {
		switch rc.Type {
		case config.RuleTypeHighAmount:
			registry.Register(HighAmountRule{Threshold: rc.Threshold}, rc.BaseRiskScore)
		case config.RuleTypeSuspiciousMerchant:
			registry.Register(NewSuspiciousMerchantRule(rc.Blocklist), rc.BaseRiskScore)
		case config.RuleTypeUnusualLocation:
			registry.Register(UnusualLocationRule{Sentinel: rc.Sentinel}, rc.BaseRiskScore)
		default:
			return nil, fmt.Errorf("%w: rule %d: unknown rule type %q",
				config.ErrInvalidConfig, i, rc.Type)
		}
	}

	if registry.Len() == 0 {
		return nil, fmt.Errorf("%w: no rules configured", config.ErrInvalidConfig)
	}

	return registry, nil
}
