package rules

import (
	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// Registry holds the rule families in evaluation order. Order only affects
// the pre-sort concatenation order of the output, never rule semantics.
type Registry struct {
	rules []Rule
	log   zerolog.Logger
}

// NewRegistry creates an empty rule registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		log: log.With().Str("component", "rule_registry").Logger(),
	}
}

// Register appends a rule to the evaluation order.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
	r.log.Debug().
		Str("name", rule.Name()).
		Str("kind", string(rule.Kind())).
		Msg("Registered rule")
}

// Rules returns the registered rules in evaluation order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// EvaluateAll runs every rule over the context and concatenates the
// results in registration order.
func (r *Registry) EvaluateAll(ctx *Context) []domain.HubAction {
	var all []domain.HubAction

	for _, rule := range r.rules {
		produced := rule.Evaluate(ctx)
		r.log.Debug().
			Str("rule", rule.Name()).
			Int("actions", len(produced)).
			Msg("Rule evaluated")
		all = append(all, produced...)
	}

	return all
}

// NewPopulatedRegistry creates a registry with all five rule families
// registered in their canonical order.
func NewPopulatedRegistry(log zerolog.Logger) *Registry {
	registry := NewRegistry(log)

	registry.Register(NewOverdueInvoiceRule(log))
	registry.Register(NewNearTermUrgencyRule(log))
	registry.Register(NewMissingTravelRule(log))
	registry.Register(NewStaleOfferRule(log))
	registry.Register(NewProjectedLossRule(log))

	return registry
}
