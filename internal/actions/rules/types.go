// Package rules contains the rule families that turn raw business records
// into prioritized hub actions. Each rule is an independent pass over the
// show collection; a single show may fire several rules.
package rules

import (
	"math"
	"time"

	"github.com/aristath/stagehand/internal/domain"
)

// Context carries the inputs for one evaluation pass. Rules read it and
// never mutate it.
type Context struct {
	Now    time.Time
	Shows  []domain.Show
	Travel []domain.TravelItem
}

// Rule is a single family of conditions producing zero or more actions.
type Rule interface {
	// Name returns the rule name for logging.
	Name() string

	// Kind returns the action kind this rule produces.
	Kind() domain.ActionKind

	// Evaluate runs the rule over the context.
	Evaluate(ctx *Context) []domain.HubAction
}

// feeWeight maps a fee to a diminishing-returns urgency contribution,
// capped at 60. Negative fees contribute zero.
func feeWeight(fee float64) float64 {
	return math.Min(60, math.Log10(1+math.Max(0, fee))*18)
}

// showLabel picks the display label for an action: the city when known,
// otherwise the show id.
func showLabel(show domain.Show) string {
	if show.City != "" {
		return show.City
	}
	return show.ID
}

// tierAbove buckets a score against high/med thresholds.
func tierAbove(score, high, med float64) domain.ImpactTier {
	switch {
	case score > high:
		return domain.ImpactHigh
	case score > med:
		return domain.ImpactMed
	default:
		return domain.ImpactLow
	}
}

// tierMedOrLow buckets a score for rules that intentionally never reach
// the high tier.
func tierMedOrLow(score, med float64) domain.ImpactTier {
	if score > med {
		return domain.ImpactMed
	}
	return domain.ImpactLow
}
